package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidateAccount checks a proposed account against the chart invariants.
// It covers both creation and update: when the chart already holds an
// account with the same id, the proposal is treated as a replacement.
// These checks are pure and are reused by the chart importer.
func ValidateAccount(chart *Chart, acc Account) error {
	if acc.Code == "" {
		return fmt.Errorf("ledger: account code required")
	}
	if acc.Name == "" {
		return fmt.Errorf("ledger: account name required")
	}
	if !acc.Nature.Valid() {
		return fmt.Errorf("ledger: unknown nature %q", acc.Nature)
	}
	if !acc.Kind.Valid() {
		return fmt.Errorf("ledger: unknown kind %q", acc.Kind)
	}
	if !acc.IncomeClass.Valid() {
		return fmt.Errorf("ledger: unknown income statement class %q", acc.IncomeClass)
	}
	if acc.CashFlowClass != "" && !acc.CashFlowClass.Valid() {
		return fmt.Errorf("ledger: unknown cash flow class %q", acc.CashFlowClass)
	}

	if existing, ok := chart.ByCode(acc.Code); ok && existing.ID != acc.ID {
		return fmt.Errorf("%w: %s", ErrDuplicateCode, acc.Code)
	}

	if acc.ParentID != nil {
		if circularParent(chart, acc.ID, *acc.ParentID) {
			return ErrCircularParent
		}
		parent, ok := chart.ByID(*acc.ParentID)
		if !ok {
			return fmt.Errorf("%w: parent %s", ErrAccountNotFound, *acc.ParentID)
		}
		if parent.Kind == KindAnalytic {
			return ErrAnalyticParent
		}
		if parent.Nature != acc.Nature {
			return fmt.Errorf("%w: %s under %s", ErrNatureMismatch, acc.Nature, parent.Nature)
		}
	}

	if acc.Kind == KindAnalytic && acc.ParentID == nil {
		return ErrAnalyticWithoutParent
	}
	if acc.Kind == KindAnalytic && chart.HasChildren(acc.ID) {
		return ErrAnalyticWithChildren
	}

	resultAnalytic := acc.Nature.Result() && acc.Kind == KindAnalytic
	if resultAnalytic && acc.IncomeClass == "" {
		return ErrMissingIncomeClass
	}
	if !resultAnalytic && acc.IncomeClass != "" {
		return ErrUnexpectedIncomeClass
	}
	return nil
}

// circularParent walks the proposed parent chain checking that it never
// reaches the account itself. The walk is iterative with a visited guard
// so malformed charts cannot loop it.
func circularParent(chart *Chart, accountID uuid.UUID, parentID uuid.UUID) bool {
	if accountID == parentID {
		return true
	}
	visited := make(map[uuid.UUID]struct{})
	current := parentID
	for {
		if _, seen := visited[current]; seen {
			return true
		}
		visited[current] = struct{}{}
		parent, ok := chart.ByID(current)
		if !ok || parent.ParentID == nil {
			return false
		}
		if *parent.ParentID == accountID {
			return true
		}
		current = *parent.ParentID
	}
}

// ValidateAccountDeletion rejects deleting accounts that still aggregate
// children or that journal entries reference, deleted entries included.
func ValidateAccountDeletion(chart *Chart, entries []JournalEntry, id uuid.UUID) error {
	if _, ok := chart.ByID(id); !ok {
		return ErrAccountNotFound
	}
	if chart.HasChildren(id) {
		return ErrAccountHasChildren
	}
	for _, e := range entries {
		for _, p := range e.Postings {
			if p.AccountID == id {
				return ErrAccountInUse
			}
		}
	}
	return nil
}

// ValidateEntry enforces the journal entry invariants at the mutation
// boundary: at least two postings, analytic accounts only, positive
// amounts, and debits equal to credits to the cent. The aggregator
// trusts entries that passed this check and does not re-validate.
func ValidateEntry(chart *Chart, entry JournalEntry) error {
	if len(entry.Postings) < 2 {
		return ErrTooFewPostings
	}
	debits := decimal.Zero
	credits := decimal.Zero
	for i, p := range entry.Postings {
		acc, ok := chart.ByID(p.AccountID)
		if !ok {
			return fmt.Errorf("%w: posting %d", ErrAccountNotFound, i)
		}
		if !acc.Analytic() {
			return fmt.Errorf("%w: %s", ErrPostingToSynthetic, acc.Code)
		}
		if !p.Amount.IsPositive() {
			return fmt.Errorf("%w: posting %d", ErrNonPositiveAmount, i)
		}
		switch p.Side {
		case Debit:
			debits = debits.Add(p.Amount)
		case Credit:
			credits = credits.Add(p.Amount)
		default:
			return fmt.Errorf("ledger: posting %d has unknown side %q", i, p.Side)
		}
	}
	if !debits.Round(2).Equal(credits.Round(2)) {
		return fmt.Errorf("%w: debits %s, credits %s",
			ErrUnbalancedEntry, debits.StringFixed(2), credits.StringFixed(2))
	}
	return nil
}
