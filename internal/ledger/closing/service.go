// Package closing implements the year-end closing workflow: zeroing the
// result accounts into the income summary, transferring the net result
// to retained earnings, and the convenience postings that usually
// precede a closing.
package closing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/contaflow/contaflow/internal/ledger"
	"github.com/contaflow/contaflow/internal/ledger/reports"
)

var (
	// ErrDepreciationPosted indicates the exercise already carries a
	// depreciation convenience posting.
	ErrDepreciationPosted = errors.New("closing: depreciation already posted for the exercise")
	// ErrCOGSPosted indicates the exercise already carries a cost of
	// goods sold convenience posting.
	ErrCOGSPosted = errors.New("closing: cost of goods sold already posted for the exercise")
)

// Service runs the closing workflow against a company snapshot.
type Service struct {
	repo  ledger.Repository
	codes reports.Codes
	now   func() time.Time
}

func NewService(repo ledger.Repository, codes reports.Codes) *Service {
	return &Service{repo: repo, codes: codes, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// Result summarizes a completed closing.
type Result struct {
	NetIncome decimal.Decimal
	Zeroing   ledger.JournalEntry
	Transfer  ledger.JournalEntry
}

// Close writes the two closing entries for the company's exercise. The
// zeroing entry reverses the period balance of every result account
// with the balancing leg against the income summary; the transfer entry
// moves the net result from the income summary to retained earnings.
// Both entries are appended atomically and dated the last day of the
// fiscal year.
func (s *Service) Close(ctx context.Context, companyID uuid.UUID) (Result, error) {
	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return Result{}, err
	}
	if ledger.Closed(company.Entries) {
		return Result{}, ledger.ErrAlreadyClosed
	}
	chart := ledger.NewChart(company.Accounts)
	summary, okSummary := chart.ByCode(s.codes.IncomeSummary)
	retained, okRetained := chart.ByCode(s.codes.RetainedEarnings)
	if !okSummary || !okRetained {
		return Result{}, ledger.ErrMissingClosingAccounts
	}

	period := ledger.PeriodEntries(company.Entries)
	raw := reports.RawBalances(chart, period)

	var postings []ledger.Posting
	debits := decimal.Zero
	credits := decimal.Zero
	for _, acc := range chart.Accounts() {
		if !acc.Analytic() || !acc.Nature.Result() {
			continue
		}
		balance := raw.Get(acc.ID).Round(2)
		if balance.IsZero() {
			continue
		}
		// Post against the current sign so the account nets to zero.
		if balance.IsPositive() {
			postings = append(postings, ledger.Posting{AccountID: acc.ID, Side: ledger.Credit, Amount: balance})
			credits = credits.Add(balance)
		} else {
			postings = append(postings, ledger.Posting{AccountID: acc.ID, Side: ledger.Debit, Amount: balance.Neg()})
			debits = debits.Add(balance.Neg())
		}
	}
	if len(postings) == 0 {
		return Result{}, ledger.ErrNothingToClose
	}

	// Revenues enter the zeroing entry as debits and expenses as
	// credits, so the debit surplus is exactly the net income.
	netIncome := debits.Sub(credits)
	summarySide := ledger.Credit
	transferFrom, transferTo := summary.ID, retained.ID
	if netIncome.IsNegative() {
		summarySide = ledger.Debit
		transferFrom, transferTo = retained.ID, summary.ID
	}
	resultAbs := netIncome.Abs()
	if !resultAbs.IsZero() {
		postings = append(postings, ledger.Posting{AccountID: summary.ID, Side: summarySide, Amount: resultAbs})
	}

	year := company.FiscalYearStart.Year()
	date := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)

	zeroing := ledger.JournalEntry{
		ID:          uuid.New(),
		Date:        date,
		Description: fmt.Sprintf("Encerramento das contas de resultado %d", year),
		Postings:    postings,
		IsClosing:   true,
	}
	entries := []ledger.JournalEntry{zeroing}

	var transfer ledger.JournalEntry
	if !resultAbs.IsZero() {
		transfer = ledger.JournalEntry{
			ID:          uuid.New(),
			Date:        date,
			Description: fmt.Sprintf("Transferência do resultado do exercício %d", year),
			Postings: []ledger.Posting{
				{AccountID: transferFrom, Side: ledger.Debit, Amount: resultAbs},
				{AccountID: transferTo, Side: ledger.Credit, Amount: resultAbs},
			},
			IsClosing: true,
		}
		entries = append(entries, transfer)
	}

	for _, e := range entries {
		if err := ledger.ValidateEntry(chart, e); err != nil {
			return Result{}, fmt.Errorf("closing entry: %w", err)
		}
	}
	if err := s.repo.AppendEntries(ctx, companyID, entries); err != nil {
		return Result{}, fmt.Errorf("append closing entries: %w", err)
	}
	return Result{NetIncome: netIncome, Zeroing: zeroing, Transfer: transfer}, nil
}

// Undo hard-deletes every closing entry, reopening the exercise. This
// is the only operation that removes entries instead of soft-deleting
// them.
func (s *Service) Undo(ctx context.Context, companyID uuid.UUID) error {
	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return err
	}
	if !ledger.Closed(company.Entries) {
		return ledger.ErrNotClosed
	}
	if err := s.repo.DeleteClosingEntries(ctx, companyID); err != nil {
		return fmt.Errorf("delete closing entries: %w", err)
	}
	return nil
}

// PostDepreciation writes the exercise depreciation entry, debiting
// depreciation expense against accumulated depreciation. At most one
// depreciation posting per exercise.
func (s *Service) PostDepreciation(ctx context.Context, companyID uuid.UUID, amount decimal.Decimal) (ledger.JournalEntry, error) {
	return s.convenience(ctx, companyID, conveniencePosting{
		amount:       amount,
		debitCode:    s.codes.DepreciationExpense,
		creditCode:   s.codes.AccumDepreciation,
		description:  func(y int) string { return fmt.Sprintf("Depreciação do exercício %d", y) },
		marker:       "Depreciação do exercício",
		duplicateErr: ErrDepreciationPosted,
	})
}

// PostCOGS writes the cost of goods sold entry, debiting CMV against
// merchandise inventory. At most one such posting per exercise.
func (s *Service) PostCOGS(ctx context.Context, companyID uuid.UUID, amount decimal.Decimal) (ledger.JournalEntry, error) {
	return s.convenience(ctx, companyID, conveniencePosting{
		amount:       amount,
		debitCode:    s.codes.CostOfGoods,
		creditCode:   s.codes.InventoryGoods,
		description:  func(y int) string { return fmt.Sprintf("Apropriação do CMV do exercício %d", y) },
		marker:       "Apropriação do CMV",
		duplicateErr: ErrCOGSPosted,
	})
}

type conveniencePosting struct {
	amount       decimal.Decimal
	debitCode    string
	creditCode   string
	description  func(year int) string
	marker       string
	duplicateErr error
}

func (s *Service) convenience(ctx context.Context, companyID uuid.UUID, cp conveniencePosting) (ledger.JournalEntry, error) {
	if !cp.amount.IsPositive() {
		return ledger.JournalEntry{}, ledger.ErrNonPositiveAmount
	}
	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return ledger.JournalEntry{}, err
	}
	if ledger.Closed(company.Entries) {
		return ledger.JournalEntry{}, ledger.ErrAlreadyClosed
	}
	chart := ledger.NewChart(company.Accounts)
	debit, okDebit := chart.ByCode(cp.debitCode)
	credit, okCredit := chart.ByCode(cp.creditCode)
	if !okDebit || !okCredit {
		return ledger.JournalEntry{}, ledger.ErrAccountNotFound
	}

	year := company.FiscalYearStart.Year()
	for _, e := range ledger.ActiveEntries(company.Entries) {
		if e.Date.Year() == year && strings.Contains(e.Description, cp.marker) {
			return ledger.JournalEntry{}, cp.duplicateErr
		}
	}

	entry := ledger.JournalEntry{
		ID:          uuid.New(),
		Date:        time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
		Description: cp.description(year),
		Postings: []ledger.Posting{
			{AccountID: debit.ID, Side: ledger.Debit, Amount: cp.amount},
			{AccountID: credit.ID, Side: ledger.Credit, Amount: cp.amount},
		},
	}
	if err := ledger.ValidateEntry(chart, entry); err != nil {
		return ledger.JournalEntry{}, err
	}
	if err := s.repo.AppendEntries(ctx, companyID, []ledger.JournalEntry{entry}); err != nil {
		return ledger.JournalEntry{}, fmt.Errorf("append entry: %w", err)
	}
	return entry, nil
}
