package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Nature enumerates the account natures of the chart of accounts.
type Nature string

const (
	NatureAsset     Nature = "ASSET"
	NatureLiability Nature = "LIABILITY"
	NatureEquity    Nature = "EQUITY"
	NatureRevenue   Nature = "REVENUE"
	NatureExpense   Nature = "EXPENSE"
	NatureCost      Nature = "COST"
)

// DebitNature reports whether the nature normally increases on the debit side.
func (n Nature) DebitNature() bool {
	switch n {
	case NatureAsset, NatureExpense, NatureCost:
		return true
	default:
		return false
	}
}

// Result reports whether the nature belongs to the income statement.
func (n Nature) Result() bool {
	switch n {
	case NatureRevenue, NatureExpense, NatureCost:
		return true
	default:
		return false
	}
}

// Valid reports whether the nature is a known value.
func (n Nature) Valid() bool {
	switch n {
	case NatureAsset, NatureLiability, NatureEquity, NatureRevenue, NatureExpense, NatureCost:
		return true
	default:
		return false
	}
}

// Kind distinguishes aggregator nodes from postable leaves.
type Kind string

const (
	KindSynthetic Kind = "SYNTHETIC"
	KindAnalytic  Kind = "ANALYTIC"
)

// Valid reports whether the kind is a known value.
func (k Kind) Valid() bool {
	return k == KindSynthetic || k == KindAnalytic
}

// IncomeClass tags analytic result accounts with their income statement line.
// Empty means unclassified.
type IncomeClass string

const (
	IncomeGrossRevenue     IncomeClass = "GROSS_REVENUE"
	IncomeRevenueDeduction IncomeClass = "REVENUE_DEDUCTION"
	IncomeCostOfSales      IncomeClass = "COST_OF_SALES"
	IncomeOperatingExpense IncomeClass = "OPERATING_EXPENSE"
	IncomeFinancialRevenue IncomeClass = "FINANCIAL_REVENUE"
	IncomeFinancialExpense IncomeClass = "FINANCIAL_EXPENSE"
	IncomeOtherRevenue     IncomeClass = "OTHER_REVENUE"
	IncomeOtherExpense     IncomeClass = "OTHER_EXPENSE"
	IncomeTax              IncomeClass = "INCOME_TAX"
)

// Valid reports whether the class is a known value. Empty is allowed.
func (c IncomeClass) Valid() bool {
	switch c {
	case "", IncomeGrossRevenue, IncomeRevenueDeduction, IncomeCostOfSales,
		IncomeOperatingExpense, IncomeFinancialRevenue, IncomeFinancialExpense,
		IncomeOtherRevenue, IncomeOtherExpense, IncomeTax:
		return true
	default:
		return false
	}
}

// CashFlowClass assigns balance sheet accounts to a cash flow bucket.
type CashFlowClass string

const (
	CashFlowOperating     CashFlowClass = "OPERATING"
	CashFlowInvesting     CashFlowClass = "INVESTING"
	CashFlowFinancing     CashFlowClass = "FINANCING"
	CashFlowNotApplicable CashFlowClass = "NOT_APPLICABLE"
)

// Valid reports whether the class is a known value.
func (c CashFlowClass) Valid() bool {
	switch c {
	case CashFlowOperating, CashFlowInvesting, CashFlowFinancing, CashFlowNotApplicable:
		return true
	default:
		return false
	}
}

// Side is the debit or credit side of a posting.
type Side string

const (
	Debit  Side = "D"
	Credit Side = "C"
)

// Account is a node in the chart of accounts. Synthetic accounts aggregate
// their subtree and are never posted directly; analytic accounts are the
// postable leaves.
type Account struct {
	ID            uuid.UUID
	Code          string
	Name          string
	Description   string
	Nature        Nature
	Kind          Kind
	ParentID      *uuid.UUID
	IsContra      bool
	IncomeClass   IncomeClass
	CashFlowClass CashFlowClass
}

// Analytic reports whether the account is postable.
func (a Account) Analytic() bool {
	return a.Kind == KindAnalytic
}

// Posting is one side of a double entry. Amount is always positive; the
// side carries the direction.
type Posting struct {
	AccountID uuid.UUID
	Side      Side
	Amount    decimal.Decimal
}

// JournalEntry is a dated, balanced set of postings. Entries are soft
// deleted; closing entries are generated by the closing workflow and are
// excluded from period aggregations.
type JournalEntry struct {
	ID          uuid.UUID
	Date        time.Time
	Description string
	Postings    []Posting
	IsDeleted   bool
	IsClosing   bool
}

// Company owns one chart of accounts and one ledger for the current
// fiscal exercise.
type Company struct {
	ID              uuid.UUID
	Name            string
	FiscalYearStart time.Time
	Accounts        []Account
	Entries         []JournalEntry
}

// ActiveEntries returns the non-deleted entries, closing included.
func ActiveEntries(entries []JournalEntry) []JournalEntry {
	out := make([]JournalEntry, 0, len(entries))
	for _, e := range entries {
		if !e.IsDeleted {
			out = append(out, e)
		}
	}
	return out
}

// PeriodEntries returns the non-deleted, non-closing entries of the
// current exercise.
func PeriodEntries(entries []JournalEntry) []JournalEntry {
	out := make([]JournalEntry, 0, len(entries))
	for _, e := range entries {
		if !e.IsDeleted && !e.IsClosing {
			out = append(out, e)
		}
	}
	return out
}

// Closed reports whether closing entries exist among the active entries.
func Closed(entries []JournalEntry) bool {
	for _, e := range entries {
		if !e.IsDeleted && e.IsClosing {
			return true
		}
	}
	return false
}

var (
	// ErrCompanyNotFound indicates an unknown company id.
	ErrCompanyNotFound = errors.New("ledger: company not found")
	// ErrAccountNotFound indicates an unknown account id.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrEntryNotFound indicates an unknown journal entry id.
	ErrEntryNotFound = errors.New("ledger: journal entry not found")
	// ErrDuplicateCode indicates the account code is already taken.
	ErrDuplicateCode = errors.New("ledger: account code already exists")
	// ErrNatureMismatch indicates a child whose nature differs from its parent.
	ErrNatureMismatch = errors.New("ledger: account nature must match parent nature")
	// ErrAnalyticWithoutParent indicates a postable account outside the tree.
	ErrAnalyticWithoutParent = errors.New("ledger: analytic account requires a synthetic parent")
	// ErrAnalyticParent indicates a parent reference to a postable account.
	ErrAnalyticParent = errors.New("ledger: parent account must be synthetic")
	// ErrCircularParent indicates a cycle in the parent chain.
	ErrCircularParent = errors.New("ledger: circular account parentage")
	// ErrAnalyticWithChildren indicates a reclassification that would orphan children.
	ErrAnalyticWithChildren = errors.New("ledger: account with children cannot be analytic")
	// ErrMissingIncomeClass indicates a result account without DRE classification.
	ErrMissingIncomeClass = errors.New("ledger: result account requires an income statement class")
	// ErrUnexpectedIncomeClass indicates a classification on a non-result account.
	ErrUnexpectedIncomeClass = errors.New("ledger: only result accounts carry an income statement class")
	// ErrAccountInUse indicates a deletion attempt on a posted-to account.
	ErrAccountInUse = errors.New("ledger: account referenced by journal entries")
	// ErrAccountHasChildren indicates a deletion attempt on a non-leaf account.
	ErrAccountHasChildren = errors.New("ledger: account has child accounts")
	// ErrPostingToSynthetic indicates a posting against an aggregator account.
	ErrPostingToSynthetic = errors.New("ledger: cannot post to a synthetic account")
	// ErrTooFewPostings indicates an entry with less than two postings.
	ErrTooFewPostings = errors.New("ledger: journal entry requires at least two postings")
	// ErrNonPositiveAmount indicates a posting with a zero or negative amount.
	ErrNonPositiveAmount = errors.New("ledger: posting amount must be positive")
	// ErrUnbalancedEntry indicates debits != credits.
	ErrUnbalancedEntry = errors.New("ledger: debits and credits must balance")
	// ErrAlreadyClosed indicates closing entries already exist for the exercise.
	ErrAlreadyClosed = errors.New("ledger: period already closed")
	// ErrNotClosed indicates an undo request with no closing entries present.
	ErrNotClosed = errors.New("ledger: period is not closed")
	// ErrNothingToClose indicates a closing request with no result to transfer.
	ErrNothingToClose = errors.New("ledger: no result balances to close")
	// ErrMissingClosingAccounts indicates the income summary or retained
	// earnings account is absent from the chart.
	ErrMissingClosingAccounts = errors.New("ledger: income summary or retained earnings account missing")
	// ErrSuggestionRejected indicates the oracle returned unusable accounts.
	ErrSuggestionRejected = errors.New("ledger: suggestion references unknown or non-postable accounts")
	// ErrCompanyNameRequired indicates a company with a blank name.
	ErrCompanyNameRequired = errors.New("ledger: company name is required")
	// ErrClosingEntryImmutable indicates an edit attempt on a closing entry.
	ErrClosingEntryImmutable = errors.New("ledger: closing entries can only be removed by undoing the closing")
	// ErrOracleUnavailable indicates no suggestion oracle is configured.
	ErrOracleUnavailable = errors.New("ledger: suggestion oracle not configured")
)
