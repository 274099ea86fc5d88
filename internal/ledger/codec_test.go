package ledger

import (
	"strings"
	"testing"
)

func TestChartExportImportRoundTrip(t *testing.T) {
	original := DefaultChart()
	payload, err := ExportChart(NewChart(original))
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	imported, err := ImportChart(payload)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(imported) != len(original) {
		t.Fatalf("expected %d accounts, got %d", len(original), len(imported))
	}

	chart := NewChart(imported)
	for _, want := range original {
		got, ok := chart.ByCode(want.Code)
		if !ok {
			t.Fatalf("account %s lost in round trip", want.Code)
		}
		if got.Nature != want.Nature || got.Kind != want.Kind || got.IsContra != want.IsContra {
			t.Fatalf("account %s changed: %+v vs %+v", want.Code, got, want)
		}
		if got.IncomeClass != want.IncomeClass || got.CashFlowClass != want.CashFlowClass {
			t.Fatalf("account %s classification changed", want.Code)
		}
		if (got.ParentID == nil) != (want.ParentID == nil) {
			t.Fatalf("account %s parentage changed", want.Code)
		}
	}
}

func TestImportChartInfersParentFromDottedCode(t *testing.T) {
	payload := `[
		{"code": "1", "name": "Ativo", "nature": "ASSET", "kind": "SYNTHETIC"},
		{"code": "1.1", "name": "Circulante", "nature": "ASSET", "kind": "SYNTHETIC"},
		{"code": "1.1.1.01", "name": "Caixa", "nature": "ASSET", "kind": "ANALYTIC"}
	]`
	accounts, err := ImportChart([]byte(payload))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	chart := NewChart(accounts)
	caixa, _ := chart.ByCode("1.1.1.01")
	if caixa.ParentID == nil {
		t.Fatal("expected inferred parent")
	}
	parent, _ := chart.ByID(*caixa.ParentID)
	// "1.1.1" is absent, so the walk lands on "1.1".
	if parent.Code != "1.1" {
		t.Fatalf("expected parent 1.1, got %s", parent.Code)
	}
}

func TestImportChartAccumulatesProblems(t *testing.T) {
	payload := `[
		{"code": "1", "name": "Ativo", "nature": "ASSET", "kind": "SYNTHETIC"},
		{"code": "1", "name": "Duplicado", "nature": "ASSET", "kind": "SYNTHETIC"},
		{"code": "2.1.01", "name": "Sem Pai", "nature": "LIABILITY", "kind": "ANALYTIC", "parentCode": "2.9"},
		{"code": "4.1.01", "name": "Receita", "nature": "REVENUE", "kind": "SYNTHETIC", "incomeClass": "GROSS_REVENUE"}
	]`
	_, err := ImportChart([]byte(payload))
	if err == nil {
		t.Fatal("expected import errors")
	}
	msg := err.Error()
	for _, fragment := range []string{"code already exists", "unknown parent code 2.9", "income statement class"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in accumulated error, got: %s", fragment, msg)
		}
	}
}

func TestImportChartRejectsEmpty(t *testing.T) {
	if _, err := ImportChart([]byte("[]")); err == nil {
		t.Fatal("expected error for empty chart")
	}
	if _, err := ImportChart([]byte("{")); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
