// Package diagnostics runs advisory health checks over a company's
// books. Findings never block operations; they point at data that will
// distort the statements.
package diagnostics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/contaflow/contaflow/internal/ledger"
	"github.com/contaflow/contaflow/internal/ledger/reports"
)

// Severity grades a finding.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Check identifies one of the diagnostic passes.
type Check string

const (
	CheckUnbalancedEntries  Check = "UNBALANCED_ENTRIES"
	CheckUnclassifiedResult Check = "UNCLASSIFIED_RESULT_ACCOUNTS"
	CheckOrphanedAccounts   Check = "ORPHANED_ACCOUNTS"
	CheckBalanceSheet       Check = "BALANCE_SHEET_EQUALITY"
)

// Finding is a single diagnostic hit.
type Finding struct {
	Check    Check
	Severity Severity
	Message  string
}

// Report is the outcome of a full diagnostic run.
type Report struct {
	Findings []Finding
}

// Healthy reports whether the run produced no findings.
func (r Report) Healthy() bool {
	return len(r.Findings) == 0
}

var tolerance = decimal.NewFromFloat(0.01)

// Run executes every check against the company snapshot.
func Run(company ledger.Company, codes reports.Codes) Report {
	chart := ledger.NewChart(company.Accounts)
	var findings []Finding
	findings = append(findings, unbalancedEntries(company.Entries)...)
	findings = append(findings, unclassifiedResultAccounts(chart, company.Entries)...)
	findings = append(findings, orphanedAccounts(chart)...)
	findings = append(findings, balanceSheetEquality(chart, company.Entries, codes)...)
	return Report{Findings: findings}
}

// unbalancedEntries flags active entries whose debits and credits
// diverge beyond rounding tolerance. They should be impossible through
// the validated write path and usually indicate a bad import.
func unbalancedEntries(entries []ledger.JournalEntry) []Finding {
	var findings []Finding
	for _, e := range ledger.ActiveEntries(entries) {
		debits := decimal.Zero
		credits := decimal.Zero
		for _, p := range e.Postings {
			if p.Side == ledger.Debit {
				debits = debits.Add(p.Amount)
			} else {
				credits = credits.Add(p.Amount)
			}
		}
		if debits.Sub(credits).Abs().GreaterThan(tolerance) {
			findings = append(findings, Finding{
				Check:    CheckUnbalancedEntries,
				Severity: SeverityError,
				Message:  fmt.Sprintf("entry %q of %s: debits %s differ from credits %s", e.Description, e.Date.Format("2006-01-02"), debits.StringFixed(2), credits.StringFixed(2)),
			})
		}
	}
	return findings
}

// unclassifiedResultAccounts flags result accounts that moved during
// the period but carry no income statement class. Their balance is
// silently dropped from the income statement waterfall.
func unclassifiedResultAccounts(chart *ledger.Chart, entries []ledger.JournalEntry) []Finding {
	raw := reports.RawBalances(chart, ledger.PeriodEntries(entries))
	var findings []Finding
	for _, acc := range chart.Accounts() {
		if !acc.Analytic() || !acc.Nature.Result() {
			continue
		}
		if acc.IncomeClass != "" {
			continue
		}
		if raw.Get(acc.ID).Abs().LessThanOrEqual(tolerance) {
			continue
		}
		findings = append(findings, Finding{
			Check:    CheckUnclassifiedResult,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("account %s %q has period movement but no income statement class", acc.Code, acc.Name),
		})
	}
	return findings
}

// orphanedAccounts flags accounts whose parent chain does not resolve,
// which excludes them from the balance roll-up.
func orphanedAccounts(chart *ledger.Chart) []Finding {
	var findings []Finding
	for _, acc := range chart.Accounts() {
		if chart.Resolvable(acc.ID) {
			continue
		}
		findings = append(findings, Finding{
			Check:    CheckOrphanedAccounts,
			Severity: SeverityError,
			Message:  fmt.Sprintf("account %s %q has a broken parent chain", acc.Code, acc.Name),
		})
	}
	return findings
}

// balanceSheetEquality checks assets against liabilities plus equity on
// the presentation balances.
func balanceSheetEquality(chart *ledger.Chart, entries []ledger.JournalEntry, codes reports.Codes) []Finding {
	sheet := reports.BuildBalanceSheet(chart, reports.PresentationBalances(chart, ledger.ActiveEntries(entries), codes))
	if sheet.Balanced {
		return nil
	}
	diff := sheet.Assets.Total.Sub(sheet.TotalLiabilitiesAndEquity)
	return []Finding{{
		Check:    CheckBalanceSheet,
		Severity: SeverityError,
		Message:  fmt.Sprintf("assets %s differ from liabilities plus equity by %s", sheet.Assets.Total.StringFixed(2), diff.StringFixed(2)),
	}}
}
