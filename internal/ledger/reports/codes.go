package reports

// Codes binds the statement derivers to well-known accounts by chart
// code. Explicit bindings replace any matching by account name, so a
// renamed account keeps its statement role as long as its code stands.
type Codes struct {
	AssetsRoot            string
	CurrentAssets         string
	Cash                  string
	Receivables           string
	Inventory             string
	InventoryGoods        string
	AccumDepreciation     string
	LiabilitiesRoot       string
	CurrentLiabilities    string
	Suppliers             string
	NonCurrentLiabilities string
	EquityRoot            string
	PaidInCapital         string
	RetainedEarnings      string
	DepreciationExpense   string
	CostOfGoods           string
	IncomeSummary         string
}

// DefaultCodes returns the bindings for the seed chart of accounts.
func DefaultCodes() Codes {
	return Codes{
		AssetsRoot:            "1",
		CurrentAssets:         "1.1",
		Cash:                  "1.1.1",
		Receivables:           "1.1.2",
		Inventory:             "1.1.3",
		InventoryGoods:        "1.1.3.01",
		AccumDepreciation:     "1.2.1.09",
		LiabilitiesRoot:       "2",
		CurrentLiabilities:    "2.1",
		Suppliers:             "2.1.1",
		NonCurrentLiabilities: "2.2",
		EquityRoot:            "3",
		PaidInCapital:         "3.1",
		RetainedEarnings:      "3.2.1.01",
		DepreciationExpense:   "5.2.3.01",
		CostOfGoods:           "6.1.1.01",
		IncomeSummary:         "7.1.1.01",
	}
}
