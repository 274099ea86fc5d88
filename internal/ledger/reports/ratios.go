package reports

import (
	"github.com/shopspring/decimal"

	"github.com/contaflow/contaflow/internal/ledger"
)

// DuPont decomposes return on equity into margin, turnover and
// leverage.
type DuPont struct {
	NetMargin     decimal.Decimal
	AssetTurnover decimal.Decimal
	Leverage      decimal.Decimal
	ROE           decimal.Decimal
}

// Ratios carries the financial indicator battery. Ratios whose
// denominator is zero are reported as zero rather than an error: the
// statement set is advisory, not a computation that may fail.
type Ratios struct {
	Income IncomeStatement

	EBITDA       decimal.Decimal
	EBITDAMargin decimal.Decimal
	GrossMargin  decimal.Decimal
	NetMargin    decimal.Decimal

	CurrentLiquidity decimal.Decimal
	QuickLiquidity   decimal.Decimal

	ROA           decimal.Decimal
	ROE           decimal.Decimal
	AssetTurnover decimal.Decimal

	DaysReceivable      decimal.Decimal
	DaysPayable         decimal.Decimal
	DaysInventory       decimal.Decimal
	CashConversionCycle decimal.Decimal

	GrossDebt         decimal.Decimal
	NetDebt           decimal.Decimal
	NetDebtToEBITDA   decimal.Decimal
	FinancialLeverage decimal.Decimal

	DuPont DuPont
}

var daysInYear = decimal.NewFromInt(360)

// BuildRatios computes the indicator battery. Flow figures (margins,
// turnover, cycles) come from the period income statement; stock
// figures (liquidity, debt, leverage) come from the lifetime
// presentation balances.
func BuildRatios(chart *ledger.Chart, periodEntries []ledger.JournalEntry, presentation Balances, codes Codes) Ratios {
	periodRaw := RawBalances(chart, periodEntries)
	income := BuildIncomeStatement(chart, periodRaw)

	totalAssets := CodeBalance(chart, presentation, codes.AssetsRoot)
	equity := CodeBalance(chart, presentation, codes.EquityRoot)
	currentAssets := CodeBalance(chart, presentation, codes.CurrentAssets)
	currentLiabilities := CodeBalance(chart, presentation, codes.CurrentLiabilities)
	nonCurrentLiabilities := CodeBalance(chart, presentation, codes.NonCurrentLiabilities)
	inventory := CodeBalance(chart, presentation, codes.Inventory)
	receivables := CodeBalance(chart, presentation, codes.Receivables)
	suppliers := CodeBalance(chart, presentation, codes.Suppliers)
	cash := CodeBalance(chart, presentation, codes.Cash)
	depreciation := CodeBalance(chart, periodRaw, codes.DepreciationExpense)

	r := Ratios{Income: income}
	r.EBITDA = income.OperatingResult.Add(depreciation)
	r.GrossMargin = safeDiv(income.GrossProfit, income.NetRevenue)
	r.NetMargin = safeDiv(income.NetIncome, income.NetRevenue)
	r.EBITDAMargin = safeDiv(r.EBITDA, income.NetRevenue)

	r.CurrentLiquidity = safeDiv(currentAssets, currentLiabilities)
	r.QuickLiquidity = safeDiv(currentAssets.Sub(inventory), currentLiabilities)

	r.ROA = safeDiv(income.NetIncome, totalAssets)
	r.ROE = safeDiv(income.NetIncome, equity)
	r.AssetTurnover = safeDiv(income.NetRevenue, totalAssets)

	r.DaysReceivable = safeDiv(receivables, income.NetRevenue).Mul(daysInYear)
	r.DaysPayable = safeDiv(suppliers, income.CostOfSales).Mul(daysInYear)
	r.DaysInventory = safeDiv(inventory, income.CostOfSales).Mul(daysInYear)
	r.CashConversionCycle = r.DaysInventory.Add(r.DaysReceivable).Sub(r.DaysPayable)

	r.GrossDebt = currentLiabilities.Add(nonCurrentLiabilities)
	r.NetDebt = r.GrossDebt.Sub(cash)
	r.NetDebtToEBITDA = safeDiv(r.NetDebt, r.EBITDA)
	r.FinancialLeverage = safeDiv(totalAssets, equity)

	r.DuPont = DuPont{
		NetMargin:     r.NetMargin,
		AssetTurnover: r.AssetTurnover,
		Leverage:      r.FinancialLeverage,
		ROE:           r.NetMargin.Mul(r.AssetTurnover).Mul(r.FinancialLeverage),
	}
	return r
}

func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}
