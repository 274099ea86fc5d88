package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/contaflow/contaflow/internal/ledger"
)

type leg struct {
	code   string
	side   ledger.Side
	amount int64
}

type fixture struct {
	chart *ledger.Chart
	codes Codes
}

func newFixture() *fixture {
	return &fixture{
		chart: ledger.NewChart(ledger.DefaultChart()),
		codes: DefaultCodes(),
	}
}

func (f *fixture) entry(t *testing.T, description string, legs ...leg) ledger.JournalEntry {
	t.Helper()
	entry := ledger.JournalEntry{
		ID:          uuid.New(),
		Date:        time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		Description: description,
	}
	for _, l := range legs {
		acc, ok := f.chart.ByCode(l.code)
		if !ok {
			t.Fatalf("fixture references unknown code %s", l.code)
		}
		entry.Postings = append(entry.Postings, ledger.Posting{
			AccountID: acc.ID,
			Side:      l.side,
			Amount:    decimal.NewFromInt(l.amount),
		})
	}
	return entry
}

func (f *fixture) balance(t *testing.T, b Balances, code string) decimal.Decimal {
	t.Helper()
	acc, ok := f.chart.ByCode(code)
	if !ok {
		t.Fatalf("unknown code %s", code)
	}
	return b.Get(acc.ID)
}

func expectAmount(t *testing.T, label string, got decimal.Decimal, want int64) {
	t.Helper()
	if !got.Equal(decimal.NewFromInt(want)) {
		t.Fatalf("%s: expected %d got %s", label, want, got)
	}
}

func TestRawBalancesAreDebitMinusCredit(t *testing.T) {
	f := newFixture()
	entries := []ledger.JournalEntry{
		f.entry(t, "venda à vista",
			leg{"1.1.1.01", ledger.Debit, 1000},
			leg{"4.1.1.01", ledger.Credit, 1000}),
		f.entry(t, "aluguel",
			leg{"5.2.2.01", ledger.Debit, 300},
			leg{"1.1.1.01", ledger.Credit, 300}),
	}
	raw := RawBalances(f.chart, entries)
	expectAmount(t, "cash", f.balance(t, raw, "1.1.1.01"), 700)
	expectAmount(t, "sales", f.balance(t, raw, "4.1.1.01"), -1000)
	expectAmount(t, "rent", f.balance(t, raw, "5.2.2.01"), 300)
	// Synthetic accounts never receive raw balances.
	expectAmount(t, "assets root", f.balance(t, raw, "1"), 0)
}

func TestPresentationFlipsCreditNaturesButNotContra(t *testing.T) {
	f := newFixture()
	entries := []ledger.JournalEntry{
		f.entry(t, "compra de máquina",
			leg{"1.2.1.01", ledger.Debit, 25},
			leg{"3.1.1.01", ledger.Credit, 25}),
		f.entry(t, "depreciação",
			leg{"5.2.3.01", ledger.Debit, 40},
			leg{"1.2.1.09", ledger.Credit, 40}),
	}
	presentation := PresentationBalances(f.chart, entries, f.codes)

	// Equity is credit-natural, so its raw -25 shows as +25.
	expectAmount(t, "capital", f.balance(t, presentation, "3.1.1.01"), 25)
	// Accumulated depreciation is a contra asset: the raw credit
	// balance is kept negative so it nets the asset group down.
	expectAmount(t, "accumulated depreciation", f.balance(t, presentation, "1.2.1.09"), -40)
	expectAmount(t, "fixed assets", f.balance(t, presentation, "1.2.1"), -15)
}

func TestPresentationRollsUpDeepestFirst(t *testing.T) {
	f := newFixture()
	entries := []ledger.JournalEntry{
		f.entry(t, "aporte em caixa",
			leg{"1.1.1.01", ledger.Debit, 100},
			leg{"3.1.1.01", ledger.Credit, 100}),
		f.entry(t, "depósito bancário",
			leg{"1.1.1.02", ledger.Debit, 25},
			leg{"3.1.1.01", ledger.Credit, 25}),
		f.entry(t, "depreciação",
			leg{"5.2.3.01", ledger.Debit, 40},
			leg{"1.2.1.09", ledger.Credit, 40}),
	}
	presentation := PresentationBalances(f.chart, entries, f.codes)

	expectAmount(t, "cash group", f.balance(t, presentation, "1.1.1"), 125)
	expectAmount(t, "current assets", f.balance(t, presentation, "1.1"), 125)
	expectAmount(t, "non-current assets", f.balance(t, presentation, "1.2"), -40)
	expectAmount(t, "assets root", f.balance(t, presentation, "1"), 85)
}

func openPeriodEntries(t *testing.T, f *fixture) []ledger.JournalEntry {
	t.Helper()
	return []ledger.JournalEntry{
		f.entry(t, "integralização de capital",
			leg{"1.1.1.01", ledger.Debit, 50000},
			leg{"3.1.1.01", ledger.Credit, 50000}),
		f.entry(t, "venda a prazo",
			leg{"1.1.2.01", ledger.Debit, 10000},
			leg{"4.1.1.01", ledger.Credit, 10000}),
		f.entry(t, "salários",
			leg{"5.2.1.01", ledger.Debit, 4000},
			leg{"1.1.1.01", ledger.Credit, 4000}),
	}
}

func TestOpenPeriodInjectsNetIncomeIntoRetainedEarnings(t *testing.T) {
	f := newFixture()
	entries := openPeriodEntries(t, f)
	presentation := PresentationBalances(f.chart, entries, f.codes)

	expectAmount(t, "retained earnings", f.balance(t, presentation, "3.2.1.01"), 6000)

	sheet := BuildBalanceSheet(f.chart, presentation)
	expectAmount(t, "assets", sheet.Assets.Total, 56000)
	expectAmount(t, "liabilities and equity", sheet.TotalLiabilitiesAndEquity, 56000)
	if !sheet.Balanced {
		t.Fatalf("expected the balance sheet to balance")
	}
}

func TestBalanceSheetSectionsSortByCode(t *testing.T) {
	f := newFixture()
	sheet := BuildBalanceSheet(f.chart, PresentationBalances(f.chart, nil, f.codes))
	if len(sheet.Assets.Rows) == 0 {
		t.Fatalf("expected asset rows for the seed chart")
	}
	for i := 1; i < len(sheet.Assets.Rows); i++ {
		if CompareCodes(sheet.Assets.Rows[i-1].Code, sheet.Assets.Rows[i].Code) >= 0 {
			t.Fatalf("asset rows out of order: %s before %s",
				sheet.Assets.Rows[i-1].Code, sheet.Assets.Rows[i].Code)
		}
	}
	if sheet.Assets.Rows[0].Code != "1" || !sheet.Assets.Rows[0].Synthetic {
		t.Fatalf("expected the assets root first, got %s", sheet.Assets.Rows[0].Code)
	}
}

func TestIncomeStatementWaterfall(t *testing.T) {
	f := newFixture()
	entries := []ledger.JournalEntry{
		f.entry(t, "venda",
			leg{"1.1.2.01", ledger.Debit, 1000},
			leg{"4.1.1.01", ledger.Credit, 1000}),
		f.entry(t, "impostos sobre venda",
			leg{"4.1.2.01", ledger.Debit, 100},
			leg{"2.1.3.01", ledger.Credit, 100}),
		f.entry(t, "CMV",
			leg{"6.1.1.01", ledger.Debit, 300},
			leg{"1.1.3.01", ledger.Credit, 300}),
		f.entry(t, "salários",
			leg{"5.2.1.01", ledger.Debit, 200},
			leg{"1.1.1.01", ledger.Credit, 200}),
		f.entry(t, "juros ativos",
			leg{"1.1.1.01", ledger.Debit, 50},
			leg{"4.2.1.01", ledger.Credit, 50}),
		f.entry(t, "juros passivos",
			leg{"5.3.1.01", ledger.Debit, 20},
			leg{"1.1.1.01", ledger.Credit, 20}),
		f.entry(t, "IRPJ",
			leg{"5.4.1.01", ledger.Debit, 80},
			leg{"1.1.1.01", ledger.Credit, 80}),
	}
	st := BuildIncomeStatement(f.chart, RawBalances(f.chart, entries))

	expectAmount(t, "gross revenue", st.GrossRevenue, 1000)
	expectAmount(t, "deductions", st.RevenueDeductions, 100)
	expectAmount(t, "net revenue", st.NetRevenue, 900)
	expectAmount(t, "cost of sales", st.CostOfSales, 300)
	expectAmount(t, "gross profit", st.GrossProfit, 600)
	expectAmount(t, "operating result", st.OperatingResult, 400)
	expectAmount(t, "pretax result", st.PretaxResult, 430)
	expectAmount(t, "income tax", st.IncomeTax, 80)
	expectAmount(t, "net income", st.NetIncome, 350)
}

func TestCashFlowBucketsAndOpeningCash(t *testing.T) {
	f := newFixture()
	entries := []ledger.JournalEntry{
		f.entry(t, "integralização de capital",
			leg{"1.1.1.01", ledger.Debit, 50000},
			leg{"3.1.1.01", ledger.Credit, 50000}),
		f.entry(t, "compra de equipamento",
			leg{"1.2.1.01", ledger.Debit, 8000},
			leg{"1.1.1.01", ledger.Credit, 8000}),
		f.entry(t, "venda a prazo",
			leg{"1.1.2.01", ledger.Debit, 10000},
			leg{"4.1.1.01", ledger.Credit, 10000}),
		f.entry(t, "depreciação",
			leg{"5.2.3.01", ledger.Debit, 1000},
			leg{"1.2.1.09", ledger.Credit, 1000}),
	}
	presentation := PresentationBalances(f.chart, entries, f.codes)
	st := BuildCashFlow(f.chart, entries, presentation, f.codes)

	expectAmount(t, "net income", st.NetIncome, 9000)
	expectAmount(t, "depreciation add-back", st.Depreciation, 1000)
	// Receivables grew by 10000, consuming cash.
	expectAmount(t, "operating adjustments", st.Operating.Total, -10000)
	expectAmount(t, "operating total", st.OperatingTotal, 0)
	expectAmount(t, "investing", st.Investing.Total, -8000)
	expectAmount(t, "financing", st.Financing.Total, 50000)
	expectAmount(t, "net cash change", st.NetCashChange, 42000)
	expectAmount(t, "closing cash", st.ClosingCash, 42000)
	if !st.OpeningCash.Equal(st.ClosingCash.Sub(st.NetCashChange)) {
		t.Fatalf("opening cash must derive from closing minus net change, got %s", st.OpeningCash)
	}
	if len(st.Investing.Lines) != 1 || st.Investing.Lines[0].Code != "1.2.1.01" {
		t.Fatalf("expected a single investing line for the equipment purchase, got %+v", st.Investing.Lines)
	}
}

func TestEquityChangesInferOpeningBackwards(t *testing.T) {
	f := newFixture()
	entries := openPeriodEntries(t, f)
	presentation := PresentationBalances(f.chart, entries, f.codes)
	eq := BuildEquityChanges(f.chart, entries, presentation, f.codes)

	expectAmount(t, "capital contributions", eq.Capital.Contributions, 50000)
	expectAmount(t, "capital opening", eq.Capital.Opening, 0)
	expectAmount(t, "capital closing", eq.Capital.Closing, 50000)
	expectAmount(t, "retained net income", eq.RetainedEarnings.NetIncome, 6000)
	expectAmount(t, "retained opening", eq.RetainedEarnings.Opening, 0)
	expectAmount(t, "retained closing", eq.RetainedEarnings.Closing, 6000)
	expectAmount(t, "total closing", eq.TotalClosing, 56000)
}

func TestRatiosBattery(t *testing.T) {
	f := newFixture()
	entries := []ledger.JournalEntry{
		f.entry(t, "venda à vista",
			leg{"1.1.1.01", ledger.Debit, 1000},
			leg{"4.1.1.01", ledger.Credit, 1000}),
		f.entry(t, "depreciação",
			leg{"5.2.3.01", ledger.Debit, 100},
			leg{"1.2.1.09", ledger.Credit, 100}),
		f.entry(t, "compra a prazo de mercadorias",
			leg{"1.1.3.01", ledger.Debit, 400},
			leg{"2.1.1.01", ledger.Credit, 400}),
	}
	presentation := PresentationBalances(f.chart, entries, f.codes)
	r := BuildRatios(f.chart, entries, presentation, f.codes)

	expectAmount(t, "net income", r.Income.NetIncome, 900)
	expectAmount(t, "ebitda", r.EBITDA, 1000)
	if !r.CurrentLiquidity.Equal(decimal.RequireFromString("3.5")) {
		t.Fatalf("expected current liquidity 3.5 got %s", r.CurrentLiquidity)
	}
	if !r.QuickLiquidity.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("expected quick liquidity 2.5 got %s", r.QuickLiquidity)
	}
	expectAmount(t, "roe", r.ROE, 1)
	if !r.DuPont.ROE.Equal(r.NetMargin.Mul(r.AssetTurnover).Mul(r.FinancialLeverage)) {
		t.Fatalf("dupont decomposition must multiply back to roe")
	}
}

func TestSafeDivisionReportsZero(t *testing.T) {
	f := newFixture()
	r := BuildRatios(f.chart, nil, PresentationBalances(f.chart, nil, f.codes), f.codes)
	if !r.GrossMargin.IsZero() || !r.CurrentLiquidity.IsZero() || !r.ROE.IsZero() {
		t.Fatalf("ratios over empty books must read zero, got %+v", r)
	}
}

func TestCompareCodes(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.2", "1.10", -1},
		{"1.10", "1.2", 1},
		{"1.1", "1.1.1", -1},
		{"2", "10", -1},
		{"1.1.1.01", "1.1.1.01", 0},
	}
	for _, c := range cases {
		if got := CompareCodes(c.a, c.b); got != c.want {
			t.Fatalf("CompareCodes(%s, %s) = %d, expected %d", c.a, c.b, got, c.want)
		}
	}
}

func TestAccountLedgerNaturalSideBalance(t *testing.T) {
	f := newFixture()
	entries := []ledger.JournalEntry{
		f.entry(t, "empréstimo",
			leg{"1.1.1.01", ledger.Debit, 5000},
			leg{"2.2.1.01", ledger.Credit, 5000}),
		f.entry(t, "amortização",
			leg{"2.2.1.01", ledger.Debit, 1000},
			leg{"1.1.1.01", ledger.Credit, 1000}),
	}
	loan, _ := f.chart.ByCode("2.2.1.01")
	act := AccountLedger(f.chart, loan.ID, entries)
	expectAmount(t, "loan debits", act.Debits, 1000)
	expectAmount(t, "loan credits", act.Credits, 5000)
	expectAmount(t, "loan balance", act.Balance, 4000)

	accum, _ := f.chart.ByCode("1.2.1.09")
	dep := []ledger.JournalEntry{
		f.entry(t, "depreciação",
			leg{"5.2.3.01", ledger.Debit, 40},
			leg{"1.2.1.09", ledger.Credit, 40}),
	}
	act = AccountLedger(f.chart, accum.ID, dep)
	expectAmount(t, "contra balance", act.Balance, 40)
}

func TestBuildBundle(t *testing.T) {
	f := newFixture()
	entries := openPeriodEntries(t, f)
	bundle, err := BuildBundle(context.Background(), f.chart, entries, f.codes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectAmount(t, "bundle net income", bundle.IncomeStatement.NetIncome, 6000)
	if !bundle.BalanceSheet.Balanced {
		t.Fatalf("expected a balanced bundle balance sheet")
	}
	expectAmount(t, "bundle closing cash", bundle.CashFlow.ClosingCash, 46000)
}
