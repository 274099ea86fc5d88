package reports

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/contaflow/contaflow/internal/ledger"
)

// centNoise is the threshold under which a cash movement is treated as
// rounding noise and dropped from the detail lines.
var centNoise = decimal.NewFromFloat(0.01)

// CashFlowLine details one account's cash effect inside a bucket.
type CashFlowLine struct {
	AccountID string
	Code      string
	Label     string
	Amount    decimal.Decimal
}

// CashFlowSection groups the detail lines of one cash flow bucket.
type CashFlowSection struct {
	Label string
	Lines []CashFlowLine
	Total decimal.Decimal
}

// CashFlowStatement is the indirect-method DFC. Operating holds only
// the working-capital adjustments; OperatingTotal adds net income and
// depreciation back on top. OpeningCash is never stored anywhere: it is
// derived from the closing balance minus the period's net change.
type CashFlowStatement struct {
	NetIncome      decimal.Decimal
	Depreciation   decimal.Decimal
	Operating      CashFlowSection
	Investing      CashFlowSection
	Financing      CashFlowSection
	OperatingTotal decimal.Decimal
	NetCashChange  decimal.Decimal
	OpeningCash    decimal.Decimal
	ClosingCash    decimal.Decimal
}

// BuildCashFlow classifies the period movement of every balance sheet
// analytic account into operating, investing or financing cash effects.
//
// Operating accounts follow the working-capital reading: a net debit
// movement (asset grew) consumed cash, so the effect is the negated net
// change. Investing and financing accounts follow the proceeds reading:
// credits are inflows (disposal, loan drawdown), debits are outflows
// (purchase, repayment), so the effect is credits minus debits.
//
// periodEntries must be the non-deleted, non-closing entries;
// presentation must come from PresentationBalances over the lifetime
// set, because the closing cash figure is a balance sheet number.
func BuildCashFlow(chart *ledger.Chart, periodEntries []ledger.JournalEntry, presentation Balances, codes Codes) CashFlowStatement {
	st := CashFlowStatement{
		Operating: CashFlowSection{Label: "Operating Activities", Total: decimal.Zero},
		Investing: CashFlowSection{Label: "Investing Activities", Total: decimal.Zero},
		Financing: CashFlowSection{Label: "Financing Activities", Total: decimal.Zero},
	}

	periodRaw := RawBalances(chart, periodEntries)
	st.NetIncome = BuildIncomeStatement(chart, periodRaw).NetIncome
	st.Depreciation = CodeBalance(chart, periodRaw, codes.DepreciationExpense)

	for _, acc := range chart.Accounts() {
		if !acc.Analytic() {
			continue
		}
		switch acc.Nature {
		case ledger.NatureAsset, ledger.NatureLiability, ledger.NatureEquity:
		default:
			continue
		}
		if acc.CashFlowClass == "" || acc.CashFlowClass == ledger.CashFlowNotApplicable {
			continue
		}
		mv := SubtreeMovement(chart, acc.ID, periodEntries)
		switch acc.CashFlowClass {
		case ledger.CashFlowOperating:
			effect := mv.NetChange.Neg()
			if effect.Abs().GreaterThan(centNoise) {
				st.Operating.Lines = append(st.Operating.Lines, CashFlowLine{
					AccountID: acc.ID.String(),
					Code:      acc.Code,
					Label:     fmt.Sprintf("Change in %s", acc.Name),
					Amount:    effect,
				})
				st.Operating.Total = st.Operating.Total.Add(effect)
			}
		case ledger.CashFlowInvesting, ledger.CashFlowFinancing:
			effect := mv.Credits.Sub(mv.Debits)
			if effect.Abs().GreaterThan(centNoise) {
				line := CashFlowLine{
					AccountID: acc.ID.String(),
					Code:      acc.Code,
					Label:     fmt.Sprintf("Movement in %s", acc.Name),
					Amount:    effect,
				}
				if acc.CashFlowClass == ledger.CashFlowInvesting {
					st.Investing.Lines = append(st.Investing.Lines, line)
					st.Investing.Total = st.Investing.Total.Add(effect)
				} else {
					st.Financing.Lines = append(st.Financing.Lines, line)
					st.Financing.Total = st.Financing.Total.Add(effect)
				}
			}
		}
	}

	st.OperatingTotal = st.NetIncome.Add(st.Depreciation).Add(st.Operating.Total)
	st.NetCashChange = st.OperatingTotal.Add(st.Investing.Total).Add(st.Financing.Total)
	st.ClosingCash = CodeBalance(chart, presentation, codes.Cash)
	st.OpeningCash = st.ClosingCash.Sub(st.NetCashChange)
	return st
}
