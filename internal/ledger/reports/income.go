package reports

import (
	"github.com/shopspring/decimal"

	"github.com/contaflow/contaflow/internal/ledger"
)

// IncomeStatement is the fixed DRE waterfall. All figures are positive
// in their natural statement sense: revenues positive, deductions and
// expenses positive amounts that the waterfall subtracts.
type IncomeStatement struct {
	GrossRevenue      decimal.Decimal
	RevenueDeductions decimal.Decimal
	NetRevenue        decimal.Decimal
	CostOfSales       decimal.Decimal
	GrossProfit       decimal.Decimal
	OperatingExpenses decimal.Decimal
	OperatingResult   decimal.Decimal
	FinancialRevenue  decimal.Decimal
	FinancialExpenses decimal.Decimal
	OtherRevenue      decimal.Decimal
	OtherExpenses     decimal.Decimal
	PretaxResult      decimal.Decimal
	IncomeTax         decimal.Decimal
	NetIncome         decimal.Decimal
}

// BuildIncomeStatement aggregates classified analytic result accounts
// into the DRE buckets and runs the waterfall. The balance map must be
// raw (debit minus credit) and period-only; lifetime or presentation
// balances would mix prior exercises into the current flow.
//
// A non-contra revenue account carries a negative raw balance (natural
// credit), so it is negated to enter the statement as a positive
// figure. Deductions, costs and expenses already carry positive raw
// balances. Unclassified accounts contribute nothing; the diagnostics
// pass reports them.
func BuildIncomeStatement(chart *ledger.Chart, raw Balances) IncomeStatement {
	var st IncomeStatement
	st.GrossRevenue = decimal.Zero
	st.RevenueDeductions = decimal.Zero
	st.CostOfSales = decimal.Zero
	st.OperatingExpenses = decimal.Zero
	st.FinancialRevenue = decimal.Zero
	st.FinancialExpenses = decimal.Zero
	st.OtherRevenue = decimal.Zero
	st.OtherExpenses = decimal.Zero
	st.IncomeTax = decimal.Zero

	for _, acc := range chart.Accounts() {
		if !acc.Analytic() || acc.IncomeClass == "" {
			continue
		}
		value := raw.Get(acc.ID)
		if acc.Nature == ledger.NatureRevenue && !acc.IsContra {
			value = value.Neg()
		}
		switch acc.IncomeClass {
		case ledger.IncomeGrossRevenue:
			st.GrossRevenue = st.GrossRevenue.Add(value)
		case ledger.IncomeRevenueDeduction:
			st.RevenueDeductions = st.RevenueDeductions.Add(value)
		case ledger.IncomeCostOfSales:
			st.CostOfSales = st.CostOfSales.Add(value)
		case ledger.IncomeOperatingExpense:
			st.OperatingExpenses = st.OperatingExpenses.Add(value)
		case ledger.IncomeFinancialRevenue:
			st.FinancialRevenue = st.FinancialRevenue.Add(value)
		case ledger.IncomeFinancialExpense:
			st.FinancialExpenses = st.FinancialExpenses.Add(value)
		case ledger.IncomeOtherRevenue:
			st.OtherRevenue = st.OtherRevenue.Add(value)
		case ledger.IncomeOtherExpense:
			st.OtherExpenses = st.OtherExpenses.Add(value)
		case ledger.IncomeTax:
			st.IncomeTax = st.IncomeTax.Add(value)
		}
	}

	st.NetRevenue = st.GrossRevenue.Sub(st.RevenueDeductions)
	st.GrossProfit = st.NetRevenue.Sub(st.CostOfSales)
	st.OperatingResult = st.GrossProfit.Sub(st.OperatingExpenses)
	st.PretaxResult = st.OperatingResult.
		Add(st.FinancialRevenue).
		Sub(st.FinancialExpenses).
		Add(st.OtherRevenue).
		Sub(st.OtherExpenses)
	st.NetIncome = st.PretaxResult.Sub(st.IncomeTax)
	return st
}
