package reports

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/contaflow/contaflow/internal/ledger"
)

// BalanceSheetRow is one account line, synthetic rows included so a
// renderer can show the tree with subtotals.
type BalanceSheetRow struct {
	Code      string
	Name      string
	Synthetic bool
	Contra    bool
	Level     int
	Balance   decimal.Decimal
}

// BalanceSheetSection contains the rows and total for one side of the
// statement.
type BalanceSheetSection struct {
	Label string
	Rows  []BalanceSheetRow
	Total decimal.Decimal
}

// BalanceSheet is the structured balance sheet.
type BalanceSheet struct {
	Assets                    BalanceSheetSection
	Liabilities               BalanceSheetSection
	Equity                    BalanceSheetSection
	TotalLiabilitiesAndEquity decimal.Decimal
	Balanced                  bool
}

// BuildBalanceSheet lays presentation balances out into asset,
// liability and equity sections. Section totals sum the root accounts
// only; every other row is already contained in a root through the
// roll-up. Balanced reports the accounting identity to the cent.
func BuildBalanceSheet(chart *ledger.Chart, presentation Balances) BalanceSheet {
	assets := BalanceSheetSection{Label: "Assets", Total: decimal.Zero}
	liabilities := BalanceSheetSection{Label: "Liabilities", Total: decimal.Zero}
	equity := BalanceSheetSection{Label: "Equity", Total: decimal.Zero}

	for _, acc := range chart.Accounts() {
		row := BalanceSheetRow{
			Code:      acc.Code,
			Name:      acc.Name,
			Synthetic: !acc.Analytic(),
			Contra:    acc.IsContra,
			Level:     chart.Depth(acc.ID),
			Balance:   presentation.Get(acc.ID),
		}
		var section *BalanceSheetSection
		switch acc.Nature {
		case ledger.NatureAsset:
			section = &assets
		case ledger.NatureLiability:
			section = &liabilities
		case ledger.NatureEquity:
			section = &equity
		default:
			continue
		}
		section.Rows = append(section.Rows, row)
		if acc.ParentID == nil {
			section.Total = section.Total.Add(row.Balance)
		}
	}

	for _, section := range []*BalanceSheetSection{&assets, &liabilities, &equity} {
		rows := section.Rows
		sort.SliceStable(rows, func(i, j int) bool {
			return CompareCodes(rows[i].Code, rows[j].Code) < 0
		})
	}

	totalLE := liabilities.Total.Add(equity.Total)
	return BalanceSheet{
		Assets:                    assets,
		Liabilities:               liabilities,
		Equity:                    equity,
		TotalLiabilitiesAndEquity: totalLE,
		Balanced:                  assets.Total.Sub(totalLE).Abs().LessThanOrEqual(centNoise),
	}
}

// CompareCodes orders dotted account codes lexically-numeric, so "1.2"
// sorts before "1.10". Non-numeric segments fall back to string order.
func CompareCodes(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		if aerr == nil && berr == nil {
			if an < bn {
				return -1
			}
			return 1
		}
		if as[i] < bs[i] {
			return -1
		}
		return 1
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	default:
		return 0
	}
}
