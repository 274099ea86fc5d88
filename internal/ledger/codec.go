package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ChartAccountJSON is the portable form of an account. Parentage
// travels as a code, not an id, so a chart exported from one company
// imports cleanly into another.
type ChartAccountJSON struct {
	Code          string        `json:"code"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	Nature        Nature        `json:"nature"`
	Kind          Kind          `json:"kind"`
	ParentCode    string        `json:"parentCode,omitempty"`
	IsContra      bool          `json:"isContra,omitempty"`
	IncomeClass   IncomeClass   `json:"incomeClass,omitempty"`
	CashFlowClass CashFlowClass `json:"cashFlowClass,omitempty"`
}

// ExportChart serializes a chart to its portable JSON form, ordered by
// code.
func ExportChart(chart *Chart) ([]byte, error) {
	accounts := make([]Account, chart.Len())
	copy(accounts, chart.Accounts())
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })

	out := make([]ChartAccountJSON, 0, len(accounts))
	for _, acc := range accounts {
		row := ChartAccountJSON{
			Code:          acc.Code,
			Name:          acc.Name,
			Description:   acc.Description,
			Nature:        acc.Nature,
			Kind:          acc.Kind,
			IsContra:      acc.IsContra,
			IncomeClass:   acc.IncomeClass,
			CashFlowClass: acc.CashFlowClass,
		}
		if acc.ParentID != nil {
			if parent, ok := chart.ByID(*acc.ParentID); ok {
				row.ParentCode = parent.Code
			}
		}
		out = append(out, row)
	}
	return json.MarshalIndent(out, "", "  ")
}

// ImportChart parses a portable chart and rebuilds it with fresh ids.
// Parent references resolve by explicit parentCode first, then by
// walking up the dotted code. Problems accumulate so the caller sees
// every defect of the file at once.
func ImportChart(data []byte) ([]Account, error) {
	var rows []ChartAccountJSON
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse chart: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("ledger: chart file contains no accounts")
	}

	var problems []error
	byCode := make(map[string]int, len(rows))
	for i, row := range rows {
		code := strings.TrimSpace(row.Code)
		if code == "" {
			problems = append(problems, fmt.Errorf("row %d: missing code", i+1))
			continue
		}
		if _, dup := byCode[code]; dup {
			problems = append(problems, fmt.Errorf("row %d: %w (%s)", i+1, ErrDuplicateCode, code))
			continue
		}
		byCode[code] = i
	}

	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = uuid.New()
	}

	accounts := make([]Account, 0, len(rows))
	for i, row := range rows {
		code := strings.TrimSpace(row.Code)
		acc := Account{
			ID:            ids[i],
			Code:          code,
			Name:          strings.TrimSpace(row.Name),
			Description:   strings.TrimSpace(row.Description),
			Nature:        row.Nature,
			Kind:          row.Kind,
			IsContra:      row.IsContra,
			IncomeClass:   row.IncomeClass,
			CashFlowClass: row.CashFlowClass,
		}
		parentCode := strings.TrimSpace(row.ParentCode)
		if parentCode == "" {
			parentCode = inferParentCode(code, byCode)
		}
		if parentCode != "" {
			j, ok := byCode[parentCode]
			if !ok {
				problems = append(problems, fmt.Errorf("account %s: unknown parent code %s", code, parentCode))
			} else {
				id := ids[j]
				acc.ParentID = &id
			}
		}
		accounts = append(accounts, acc)
	}

	chart := NewChart(accounts)
	for _, acc := range accounts {
		if err := ValidateAccount(chart, acc); err != nil {
			problems = append(problems, fmt.Errorf("account %s: %w", acc.Code, err))
		}
	}
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}
	return accounts, nil
}

// inferParentCode walks up the dotted segments of a code until one
// matches an account in the file.
func inferParentCode(code string, byCode map[string]int) string {
	for {
		dot := strings.LastIndex(code, ".")
		if dot < 0 {
			return ""
		}
		code = code[:dot]
		if _, ok := byCode[code]; ok {
			return code
		}
	}
}
