package reports

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/contaflow/contaflow/internal/ledger"
)

// Balances maps account ids to amounts. Missing ids read as zero.
type Balances map[uuid.UUID]decimal.Decimal

// Get returns the balance for an account, zero when absent.
func (b Balances) Get(id uuid.UUID) decimal.Decimal {
	return b[id]
}

// CodeBalance resolves an account by code and returns its balance.
// Unknown codes read as zero.
func CodeBalance(chart *ledger.Chart, b Balances, code string) decimal.Decimal {
	acc, ok := chart.ByCode(code)
	if !ok {
		return decimal.Zero
	}
	return b.Get(acc.ID)
}

// RawBalances sums debit-minus-credit per analytic account across the
// given entries. The caller pre-filters the entry set (deleted entries
// out, period-only when required); postings against unknown or
// synthetic accounts are ignored. The result is nature-agnostic:
// positive means net debited.
func RawBalances(chart *ledger.Chart, entries []ledger.JournalEntry) Balances {
	balances := make(Balances, chart.Len())
	for _, acc := range chart.Accounts() {
		balances[acc.ID] = decimal.Zero
	}
	for _, entry := range entries {
		for _, p := range entry.Postings {
			acc, ok := chart.ByID(p.AccountID)
			if !ok || !acc.Analytic() {
				continue
			}
			if p.Side == ledger.Debit {
				balances[p.AccountID] = balances[p.AccountID].Add(p.Amount)
			} else {
				balances[p.AccountID] = balances[p.AccountID].Sub(p.Amount)
			}
		}
	}
	return balances
}

// PresentationBalances produces the balances shown on statements from
// the full lifetime entry set (non-deleted, closing entries included):
//
//  1. Raw balances are sign-flipped for natural-credit accounts
//     (liability, equity, revenue) unless the account is contra; contra
//     accounts already carry the opposite-of-natural raw sign, which is
//     the correct presentation sign.
//  2. When no closing entry exists the exercise is still open: the
//     period's net income is computed on the fly and injected into the
//     retained earnings account, the algebraic equivalent of closing.
//     This is what makes the balance sheet balance before formal
//     closing entries exist.
//  3. Balances roll up the tree deepest first, so every synthetic
//     account ends up holding the sum of its subtree.
func PresentationBalances(chart *ledger.Chart, entries []ledger.JournalEntry, codes Codes) Balances {
	raw := RawBalances(chart, entries)
	presentation := make(Balances, chart.Len())
	for _, acc := range chart.Accounts() {
		if !acc.Analytic() {
			presentation[acc.ID] = decimal.Zero
			continue
		}
		value := raw[acc.ID]
		if !acc.Nature.DebitNature() && !acc.IsContra {
			value = value.Neg()
		}
		presentation[acc.ID] = value
	}

	if !ledger.Closed(entries) {
		period := ledger.PeriodEntries(entries)
		income := BuildIncomeStatement(chart, RawBalances(chart, period))
		if re, ok := chart.ByCode(codes.RetainedEarnings); ok {
			presentation[re.ID] = presentation[re.ID].Add(income.NetIncome)
		}
	}

	for _, acc := range chart.DeepestFirst() {
		if acc.ParentID == nil {
			continue
		}
		if _, ok := chart.ByID(*acc.ParentID); !ok {
			// Broken parent reference: left out of the roll-up,
			// the diagnostics pass reports it.
			continue
		}
		presentation[*acc.ParentID] = presentation[*acc.ParentID].Add(presentation[acc.ID])
	}
	return presentation
}

// Movement totals debit and credit activity for a set of accounts over
// a period. NetChange is always debit minus credit; interpretation is
// the caller's.
type Movement struct {
	Debits    decimal.Decimal
	Credits   decimal.Decimal
	NetChange decimal.Decimal
}

// SubtreeMovement totals the period activity of every analytic account
// in the subtree rooted at the given account, the root itself included
// when analytic.
func SubtreeMovement(chart *ledger.Chart, rootID uuid.UUID, entries []ledger.JournalEntry) Movement {
	members := make(map[uuid.UUID]struct{})
	for _, id := range chart.Subtree(rootID) {
		members[id] = struct{}{}
	}
	mv := Movement{Debits: decimal.Zero, Credits: decimal.Zero}
	for _, entry := range entries {
		for _, p := range entry.Postings {
			if _, ok := members[p.AccountID]; !ok {
				continue
			}
			if p.Side == ledger.Debit {
				mv.Debits = mv.Debits.Add(p.Amount)
			} else {
				mv.Credits = mv.Credits.Add(p.Amount)
			}
		}
	}
	mv.NetChange = mv.Debits.Sub(mv.Credits)
	return mv
}

// AccountActivity is the general ledger view of a single account:
// gross debit and credit totals plus the natural-side final balance.
type AccountActivity struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
	Balance decimal.Decimal
}

// AccountLedger totals one account's postings and computes the final
// balance on the account's natural side; contra accounts invert it.
func AccountLedger(chart *ledger.Chart, id uuid.UUID, entries []ledger.JournalEntry) AccountActivity {
	act := AccountActivity{Debits: decimal.Zero, Credits: decimal.Zero, Balance: decimal.Zero}
	for _, entry := range entries {
		for _, p := range entry.Postings {
			if p.AccountID != id {
				continue
			}
			if p.Side == ledger.Debit {
				act.Debits = act.Debits.Add(p.Amount)
			} else {
				act.Credits = act.Credits.Add(p.Amount)
			}
		}
	}
	acc, ok := chart.ByID(id)
	if !ok {
		return act
	}
	debitNature := acc.Nature.DebitNature()
	if acc.IsContra {
		debitNature = !debitNature
	}
	if debitNature {
		act.Balance = act.Debits.Sub(act.Credits)
	} else {
		act.Balance = act.Credits.Sub(act.Debits)
	}
	return act
}
