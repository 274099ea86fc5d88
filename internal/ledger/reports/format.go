package reports

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders an amount as Brazilian currency for report
// viewmodels. Negative amounts follow the accounting convention of
// parentheses instead of a minus sign.
func FormatBRL(value decimal.Decimal) string {
	cents := value.Round(2)
	abs, _ := cents.Abs().Float64()
	formatted := ptBR.Sprintf("R$ %.2f", abs)
	if cents.IsNegative() {
		return "(" + formatted + ")"
	}
	return formatted
}
