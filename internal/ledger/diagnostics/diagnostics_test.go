package diagnostics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/contaflow/contaflow/internal/ledger"
	"github.com/contaflow/contaflow/internal/ledger/reports"
)

func testCompany(t *testing.T) ledger.Company {
	t.Helper()
	return ledger.Company{
		ID:              uuid.New(),
		Name:            "Mercearia Central",
		FiscalYearStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Accounts:        ledger.DefaultChart(),
	}
}

func accountByCode(t *testing.T, company ledger.Company, code string) ledger.Account {
	t.Helper()
	acc, ok := ledger.NewChart(company.Accounts).ByCode(code)
	if !ok {
		t.Fatalf("account %s missing from the seed chart", code)
	}
	return acc
}

func findingsFor(report Report, check Check) []Finding {
	var out []Finding
	for _, f := range report.Findings {
		if f.Check == check {
			out = append(out, f)
		}
	}
	return out
}

func TestHealthyBooksProduceNoFindings(t *testing.T) {
	company := testCompany(t)
	cash := accountByCode(t, company, "1.1.1.01")
	capital := accountByCode(t, company, "3.1.1.01")
	company.Entries = []ledger.JournalEntry{{
		ID:          uuid.New(),
		Date:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Description: "aporte de capital",
		Postings: []ledger.Posting{
			{AccountID: cash.ID, Side: ledger.Debit, Amount: decimal.NewFromInt(1000)},
			{AccountID: capital.ID, Side: ledger.Credit, Amount: decimal.NewFromInt(1000)},
		},
	}}

	report := Run(company, reports.DefaultCodes())
	if !report.Healthy() {
		t.Fatalf("expected no findings, got %+v", report.Findings)
	}
}

func TestUnbalancedEntryIsAnError(t *testing.T) {
	company := testCompany(t)
	cash := accountByCode(t, company, "1.1.1.01")
	capital := accountByCode(t, company, "3.1.1.01")
	company.Entries = []ledger.JournalEntry{{
		ID:          uuid.New(),
		Date:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Description: "importação corrompida",
		Postings: []ledger.Posting{
			{AccountID: cash.ID, Side: ledger.Debit, Amount: decimal.NewFromInt(100)},
			{AccountID: capital.ID, Side: ledger.Credit, Amount: decimal.NewFromInt(60)},
		},
	}}

	report := Run(company, reports.DefaultCodes())
	found := findingsFor(report, CheckUnbalancedEntries)
	if len(found) != 1 {
		t.Fatalf("expected one unbalanced finding, got %+v", report.Findings)
	}
	if found[0].Severity != SeverityError {
		t.Fatalf("expected severity %s got %s", SeverityError, found[0].Severity)
	}
}

func TestDeletedEntriesAreIgnored(t *testing.T) {
	company := testCompany(t)
	cash := accountByCode(t, company, "1.1.1.01")
	capital := accountByCode(t, company, "3.1.1.01")
	company.Entries = []ledger.JournalEntry{{
		ID:          uuid.New(),
		Date:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Description: "lançamento descartado",
		IsDeleted:   true,
		Postings: []ledger.Posting{
			{AccountID: cash.ID, Side: ledger.Debit, Amount: decimal.NewFromInt(100)},
			{AccountID: capital.ID, Side: ledger.Credit, Amount: decimal.NewFromInt(60)},
		},
	}}

	report := Run(company, reports.DefaultCodes())
	if !report.Healthy() {
		t.Fatalf("deleted entries must not produce findings, got %+v", report.Findings)
	}
}

func TestUnclassifiedResultAccountWithMovementWarns(t *testing.T) {
	company := testCompany(t)
	chart := ledger.NewChart(company.Accounts)
	parent, _ := chart.ByCode("5.2")
	parentID := parent.ID
	unclassified := ledger.Account{
		ID:            uuid.New(),
		Code:          "5.2.9.01",
		Name:          "Despesas Diversas",
		Nature:        ledger.NatureExpense,
		Kind:          ledger.KindAnalytic,
		ParentID:      &parentID,
		CashFlowClass: ledger.CashFlowNotApplicable,
	}
	company.Accounts = append(company.Accounts, unclassified)

	cash := accountByCode(t, company, "1.1.1.01")
	company.Entries = []ledger.JournalEntry{{
		ID:          uuid.New(),
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Description: "despesa sem classe",
		Postings: []ledger.Posting{
			{AccountID: unclassified.ID, Side: ledger.Debit, Amount: decimal.NewFromInt(50)},
			{AccountID: cash.ID, Side: ledger.Credit, Amount: decimal.NewFromInt(50)},
		},
	}}

	report := Run(company, reports.DefaultCodes())
	found := findingsFor(report, CheckUnclassifiedResult)
	if len(found) != 1 {
		t.Fatalf("expected one unclassified finding, got %+v", report.Findings)
	}
	if found[0].Severity != SeverityWarning {
		t.Fatalf("expected severity %s got %s", SeverityWarning, found[0].Severity)
	}
}

func TestOrphanedAccountIsAnError(t *testing.T) {
	company := testCompany(t)
	missing := uuid.New()
	company.Accounts = append(company.Accounts, ledger.Account{
		ID:            uuid.New(),
		Code:          "1.9.9.01",
		Name:          "Conta Órfã",
		Nature:        ledger.NatureAsset,
		Kind:          ledger.KindAnalytic,
		ParentID:      &missing,
		CashFlowClass: ledger.CashFlowNotApplicable,
	})

	report := Run(company, reports.DefaultCodes())
	found := findingsFor(report, CheckOrphanedAccounts)
	if len(found) != 1 {
		t.Fatalf("expected one orphan finding, got %+v", report.Findings)
	}
}

func TestBalanceSheetInequalityIsAnError(t *testing.T) {
	company := testCompany(t)
	cash := accountByCode(t, company, "1.1.1.01")
	capital := accountByCode(t, company, "3.1.1.01")
	// The same broken entry trips both the per-entry check and the
	// accounting identity.
	company.Entries = []ledger.JournalEntry{{
		ID:          uuid.New(),
		Date:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Description: "importação corrompida",
		Postings: []ledger.Posting{
			{AccountID: cash.ID, Side: ledger.Debit, Amount: decimal.NewFromInt(500)},
			{AccountID: capital.ID, Side: ledger.Credit, Amount: decimal.NewFromInt(200)},
		},
	}}

	report := Run(company, reports.DefaultCodes())
	if len(findingsFor(report, CheckBalanceSheet)) != 1 {
		t.Fatalf("expected a balance sheet finding, got %+v", report.Findings)
	}
}
