package closing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/contaflow/contaflow/internal/ledger"
	"github.com/contaflow/contaflow/internal/ledger/reports"
)

type env struct {
	repo    *ledger.MemoryRepository
	ledger  *ledger.Service
	closing *Service
	company ledger.Company
	chart   *ledger.Chart
}

func newEnv(t *testing.T) *env {
	t.Helper()
	repo := ledger.NewMemoryRepository()
	svc := ledger.NewService(repo, nil)
	company, err := svc.CreateCompany(context.Background(), "Comércio Aurora", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return &env{
		repo:    repo,
		ledger:  svc,
		closing: NewService(repo, reports.DefaultCodes()),
		company: company,
		chart:   ledger.NewChart(company.Accounts),
	}
}

func (e *env) post(t *testing.T, description string, debitCode, creditCode string, amount int64) {
	t.Helper()
	debit, ok := e.chart.ByCode(debitCode)
	require.True(t, ok, "unknown code %s", debitCode)
	credit, ok := e.chart.ByCode(creditCode)
	require.True(t, ok, "unknown code %s", creditCode)
	_, err := e.ledger.CreateEntry(context.Background(), e.company.ID, ledger.EntryInput{
		Date:        time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		Description: description,
		Postings: []ledger.PostingInput{
			{AccountID: debit.ID, Side: ledger.Debit, Amount: decimal.NewFromInt(amount)},
			{AccountID: credit.ID, Side: ledger.Credit, Amount: decimal.NewFromInt(amount)},
		},
	})
	require.NoError(t, err)
}

func (e *env) rawBalance(t *testing.T, code string) decimal.Decimal {
	t.Helper()
	company, err := e.repo.GetCompany(context.Background(), e.company.ID)
	require.NoError(t, err)
	acc, ok := e.chart.ByCode(code)
	require.True(t, ok)
	raw := reports.RawBalances(e.chart, ledger.ActiveEntries(company.Entries))
	return raw.Get(acc.ID)
}

func (e *env) seedProfitableYear(t *testing.T) {
	t.Helper()
	e.post(t, "venda à vista", "1.1.1.01", "4.1.1.01", 1000)
	e.post(t, "aluguel", "5.2.2.01", "1.1.1.01", 400)
}

func TestCloseZeroesResultAccountsAndTransfersProfit(t *testing.T) {
	e := newEnv(t)
	e.seedProfitableYear(t)

	result, err := e.closing.Close(context.Background(), e.company.ID)
	require.NoError(t, err)
	require.True(t, result.NetIncome.Equal(decimal.NewFromInt(600)), "net income %s", result.NetIncome)
	require.True(t, result.Zeroing.IsClosing)
	require.True(t, result.Transfer.IsClosing)
	require.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), result.Zeroing.Date)

	// Result accounts net to zero once the zeroing entry lands.
	require.True(t, e.rawBalance(t, "4.1.1.01").IsZero())
	require.True(t, e.rawBalance(t, "5.2.2.01").IsZero())
	// The profit sits in retained earnings as a credit balance.
	require.True(t, e.rawBalance(t, "3.2.1.01").Equal(decimal.NewFromInt(-600)))
	// The income summary is a pass-through and ends at zero too.
	require.True(t, e.rawBalance(t, "7.1.1.01").IsZero())

	company, err := e.repo.GetCompany(context.Background(), e.company.ID)
	require.NoError(t, err)
	require.True(t, ledger.Closed(company.Entries))
}

func TestCloseTwiceFails(t *testing.T) {
	e := newEnv(t)
	e.seedProfitableYear(t)

	_, err := e.closing.Close(context.Background(), e.company.ID)
	require.NoError(t, err)
	_, err = e.closing.Close(context.Background(), e.company.ID)
	require.ErrorIs(t, err, ledger.ErrAlreadyClosed)
}

func TestCloseWithoutMovementsFails(t *testing.T) {
	e := newEnv(t)
	_, err := e.closing.Close(context.Background(), e.company.ID)
	require.ErrorIs(t, err, ledger.ErrNothingToClose)
}

func TestCloseLossTransfersFromRetainedEarnings(t *testing.T) {
	e := newEnv(t)
	e.post(t, "venda à vista", "1.1.1.01", "4.1.1.01", 300)
	e.post(t, "salários", "5.2.1.01", "1.1.1.01", 800)

	result, err := e.closing.Close(context.Background(), e.company.ID)
	require.NoError(t, err)
	require.True(t, result.NetIncome.Equal(decimal.NewFromInt(-500)), "net income %s", result.NetIncome)

	// The loss lands on retained earnings as a debit balance.
	require.True(t, e.rawBalance(t, "3.2.1.01").Equal(decimal.NewFromInt(500)))
	require.True(t, e.rawBalance(t, "7.1.1.01").IsZero())
}

func TestUndoReopensTheExercise(t *testing.T) {
	e := newEnv(t)
	e.seedProfitableYear(t)
	ctx := context.Background()

	require.ErrorIs(t, e.closing.Undo(ctx, e.company.ID), ledger.ErrNotClosed)

	_, err := e.closing.Close(ctx, e.company.ID)
	require.NoError(t, err)
	require.NoError(t, e.closing.Undo(ctx, e.company.ID))

	company, err := e.repo.GetCompany(ctx, e.company.ID)
	require.NoError(t, err)
	require.False(t, ledger.Closed(company.Entries))
	// Only the closing entries disappear; the movements stay.
	require.Len(t, company.Entries, 2)
	require.True(t, e.rawBalance(t, "4.1.1.01").Equal(decimal.NewFromInt(-1000)))

	// A fresh close after the undo reproduces the same result.
	result, err := e.closing.Close(ctx, e.company.ID)
	require.NoError(t, err)
	require.True(t, result.NetIncome.Equal(decimal.NewFromInt(600)))
}

func TestCloseRequiresClosingAccounts(t *testing.T) {
	repo := ledger.NewMemoryRepository()
	svc := ledger.NewService(repo, nil)
	ctx := context.Background()
	company, err := svc.CreateCompany(ctx, "Empresa", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	codes := reports.DefaultCodes()
	codes.IncomeSummary = "9.9.9.99"
	closing := NewService(repo, codes)
	_, err = closing.Close(ctx, company.ID)
	require.ErrorIs(t, err, ledger.ErrMissingClosingAccounts)
}

func TestPostDepreciation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	entry, err := e.closing.PostDepreciation(ctx, e.company.ID, decimal.NewFromInt(1200))
	require.NoError(t, err)
	require.False(t, entry.IsClosing)
	require.Contains(t, entry.Description, "Depreciação do exercício 2024")
	require.True(t, e.rawBalance(t, "5.2.3.01").Equal(decimal.NewFromInt(1200)))
	require.True(t, e.rawBalance(t, "1.2.1.09").Equal(decimal.NewFromInt(-1200)))

	_, err = e.closing.PostDepreciation(ctx, e.company.ID, decimal.NewFromInt(300))
	require.ErrorIs(t, err, ErrDepreciationPosted)

	_, err = e.closing.PostCOGS(ctx, e.company.ID, decimal.Zero)
	require.ErrorIs(t, err, ledger.ErrNonPositiveAmount)
}

func TestPostCOGS(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.post(t, "compra de mercadorias", "1.1.3.01", "2.1.1.01", 5000)

	entry, err := e.closing.PostCOGS(ctx, e.company.ID, decimal.NewFromInt(3200))
	require.NoError(t, err)
	require.Contains(t, entry.Description, "Apropriação do CMV do exercício 2024")
	require.True(t, e.rawBalance(t, "6.1.1.01").Equal(decimal.NewFromInt(3200)))
	require.True(t, e.rawBalance(t, "1.1.3.01").Equal(decimal.NewFromInt(1800)))

	_, err = e.closing.PostCOGS(ctx, e.company.ID, decimal.NewFromInt(100))
	require.ErrorIs(t, err, ErrCOGSPosted)
}

func TestConveniencePostingsRefuseClosedExercise(t *testing.T) {
	e := newEnv(t)
	e.seedProfitableYear(t)
	ctx := context.Background()

	_, err := e.closing.Close(ctx, e.company.ID)
	require.NoError(t, err)
	_, err = e.closing.PostDepreciation(ctx, e.company.ID, decimal.NewFromInt(100))
	require.ErrorIs(t, err, ledger.ErrAlreadyClosed)
}

func TestClosingEntriesValidate(t *testing.T) {
	e := newEnv(t)
	e.seedProfitableYear(t)

	result, err := e.closing.Close(context.Background(), e.company.ID)
	require.NoError(t, err)
	for _, entry := range []ledger.JournalEntry{result.Zeroing, result.Transfer} {
		require.NotEqual(t, uuid.Nil, entry.ID)
		require.NoError(t, ledger.ValidateEntry(e.chart, entry))
	}
}
