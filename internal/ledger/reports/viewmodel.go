package reports

// BundleViewModel holds rendering data for the statement set of one
// company, consumed by export layers (tables, PDF).
type BundleViewModel struct {
	CompanyName    string
	PeriodLabel    string
	Closed         bool
	NetIncomeLabel string
	Bundle         Bundle
}

// NewBundleViewModel attaches presentation labels to a derived bundle.
func NewBundleViewModel(companyName, periodLabel string, closed bool, bundle Bundle) BundleViewModel {
	return BundleViewModel{
		CompanyName:    companyName,
		PeriodLabel:    periodLabel,
		Closed:         closed,
		NetIncomeLabel: FormatBRL(bundle.IncomeStatement.NetIncome),
		Bundle:         bundle,
	}
}

// LedgerViewModel holds rendering data for a single account's general
// ledger view.
type LedgerViewModel struct {
	CompanyName  string
	AccountCode  string
	AccountName  string
	BalanceLabel string
	Activity     AccountActivity
}
