package reports

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/contaflow/contaflow/internal/ledger"
)

// Bundle packs one consistent statement set derived from a single
// snapshot: every statement saw the same chart and the same entries.
type Bundle struct {
	BalanceSheet    BalanceSheet
	IncomeStatement IncomeStatement
	CashFlow        CashFlowStatement
	EquityChanges   EquityChanges
	Ratios          Ratios
}

// BuildBundle derives the four statements plus ratios from one
// snapshot. The derivers are pure functions over immutable inputs, so
// they fan out concurrently; the shared balance maps are computed once
// up front.
func BuildBundle(ctx context.Context, chart *ledger.Chart, entries []ledger.JournalEntry, codes Codes) (Bundle, error) {
	active := ledger.ActiveEntries(entries)
	period := ledger.PeriodEntries(entries)
	presentation := PresentationBalances(chart, active, codes)
	periodRaw := RawBalances(chart, period)

	var bundle Bundle
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		bundle.BalanceSheet = BuildBalanceSheet(chart, presentation)
		return nil
	})
	g.Go(func() error {
		bundle.IncomeStatement = BuildIncomeStatement(chart, periodRaw)
		return nil
	})
	g.Go(func() error {
		bundle.CashFlow = BuildCashFlow(chart, period, presentation, codes)
		return nil
	})
	g.Go(func() error {
		bundle.EquityChanges = BuildEquityChanges(chart, period, presentation, codes)
		return nil
	})
	g.Go(func() error {
		bundle.Ratios = BuildRatios(chart, period, presentation, codes)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Bundle{}, err
	}
	return bundle, nil
}
