package reports

import (
	"github.com/shopspring/decimal"

	"github.com/contaflow/contaflow/internal/ledger"
)

// EquityColumn is one component of the equity roll-forward.
type EquityColumn struct {
	Label         string
	Opening       decimal.Decimal
	Contributions decimal.Decimal
	NetIncome     decimal.Decimal
	Closing       decimal.Decimal
}

// EquityChanges is the DMPL: a two-column roll-forward of paid-in
// capital and retained earnings. No equity history is stored; opening
// balances are inferred backwards from the closing balances minus the
// period's movements. This holds only while equity moves through
// capital contributions and net income. Dividends or other
// comprehensive income would break the inference and require a stored
// equity-movement ledger instead.
type EquityChanges struct {
	Capital          EquityColumn
	RetainedEarnings EquityColumn
	TotalOpening     decimal.Decimal
	TotalClosing     decimal.Decimal
}

// BuildEquityChanges reconstructs the equity roll-forward from the
// period entries and the lifetime presentation balances.
func BuildEquityChanges(chart *ledger.Chart, periodEntries []ledger.JournalEntry, presentation Balances, codes Codes) EquityChanges {
	capital := EquityColumn{Label: "Paid-in Capital"}
	retained := EquityColumn{Label: "Retained Earnings"}

	capital.Contributions = decimal.Zero
	if capAcc, ok := chart.ByCode(codes.PaidInCapital); ok {
		mv := SubtreeMovement(chart, capAcc.ID, periodEntries)
		capital.Contributions = mv.Credits.Sub(mv.Debits)
		capital.Closing = presentation.Get(capAcc.ID)
	} else {
		capital.Closing = decimal.Zero
	}
	capital.NetIncome = decimal.Zero
	capital.Opening = capital.Closing.Sub(capital.Contributions)

	retained.Contributions = decimal.Zero
	retained.NetIncome = BuildIncomeStatement(chart, RawBalances(chart, periodEntries)).NetIncome
	retained.Closing = CodeBalance(chart, presentation, codes.RetainedEarnings)
	retained.Opening = retained.Closing.Sub(retained.NetIncome)

	return EquityChanges{
		Capital:          capital,
		RetainedEarnings: retained,
		TotalOpening:     capital.Opening.Add(retained.Opening),
		TotalClosing:     capital.Closing.Add(retained.Closing),
	}
}
