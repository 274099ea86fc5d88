package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/contaflow/contaflow/internal/ledger"
)

const dateLayout = "2006-01-02"

type companyRequest struct {
	Name            string `json:"name" validate:"required"`
	FiscalYearStart string `json:"fiscalYearStart" validate:"required,datetime=2006-01-02"`
}

type companyResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	FiscalYearStart string    `json:"fiscalYearStart"`
	Accounts        int       `json:"accounts"`
	Entries         int       `json:"entries"`
	Closed          bool      `json:"closed"`
}

func toCompanyResponse(c ledger.Company) companyResponse {
	return companyResponse{
		ID:              c.ID,
		Name:            c.Name,
		FiscalYearStart: c.FiscalYearStart.Format(dateLayout),
		Accounts:        len(c.Accounts),
		Entries:         len(c.Entries),
		Closed:          ledger.Closed(c.Entries),
	}
}

type accountRequest struct {
	Code          string     `json:"code" validate:"required"`
	Name          string     `json:"name" validate:"required"`
	Description   string     `json:"description"`
	Nature        string     `json:"nature" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE COST"`
	Kind          string     `json:"kind" validate:"required,oneof=SYNTHETIC ANALYTIC"`
	ParentID      *uuid.UUID `json:"parentId"`
	IsContra      bool       `json:"isContra"`
	IncomeClass   string     `json:"incomeClass" validate:"omitempty,oneof=GROSS_REVENUE REVENUE_DEDUCTION COST_OF_SALES OPERATING_EXPENSE FINANCIAL_REVENUE FINANCIAL_EXPENSE OTHER_REVENUE OTHER_EXPENSE INCOME_TAX"`
	CashFlowClass string     `json:"cashFlowClass" validate:"omitempty,oneof=OPERATING INVESTING FINANCING NOT_APPLICABLE"`
}

func (r accountRequest) toInput() ledger.AccountInput {
	return ledger.AccountInput{
		Code:          r.Code,
		Name:          r.Name,
		Description:   r.Description,
		Nature:        ledger.Nature(r.Nature),
		Kind:          ledger.Kind(r.Kind),
		ParentID:      r.ParentID,
		IsContra:      r.IsContra,
		IncomeClass:   ledger.IncomeClass(r.IncomeClass),
		CashFlowClass: ledger.CashFlowClass(r.CashFlowClass),
	}
}

type accountResponse struct {
	ID            uuid.UUID  `json:"id"`
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Nature        string     `json:"nature"`
	Kind          string     `json:"kind"`
	ParentID      *uuid.UUID `json:"parentId,omitempty"`
	IsContra      bool       `json:"isContra"`
	IncomeClass   string     `json:"incomeClass,omitempty"`
	CashFlowClass string     `json:"cashFlowClass,omitempty"`
}

func toAccountResponse(a ledger.Account) accountResponse {
	return accountResponse{
		ID:            a.ID,
		Code:          a.Code,
		Name:          a.Name,
		Description:   a.Description,
		Nature:        string(a.Nature),
		Kind:          string(a.Kind),
		ParentID:      a.ParentID,
		IsContra:      a.IsContra,
		IncomeClass:   string(a.IncomeClass),
		CashFlowClass: string(a.CashFlowClass),
	}
}

type postingRequest struct {
	AccountID uuid.UUID       `json:"accountId" validate:"required"`
	Side      string          `json:"side" validate:"required,oneof=D C"`
	Amount    decimal.Decimal `json:"amount"`
}

type entryRequest struct {
	Date        string           `json:"date" validate:"required,datetime=2006-01-02"`
	Description string           `json:"description" validate:"required"`
	Postings    []postingRequest `json:"postings" validate:"required,min=2,dive"`
}

func (r entryRequest) toInput() (ledger.EntryInput, error) {
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return ledger.EntryInput{}, err
	}
	postings := make([]ledger.PostingInput, len(r.Postings))
	for i, p := range r.Postings {
		postings[i] = ledger.PostingInput{
			AccountID: p.AccountID,
			Side:      ledger.Side(p.Side),
			Amount:    p.Amount,
		}
	}
	return ledger.EntryInput{Date: date, Description: r.Description, Postings: postings}, nil
}

type postingResponse struct {
	AccountID uuid.UUID       `json:"accountId"`
	Side      string          `json:"side"`
	Amount    decimal.Decimal `json:"amount"`
}

type entryResponse struct {
	ID          uuid.UUID         `json:"id"`
	Date        string            `json:"date"`
	Description string            `json:"description"`
	Postings    []postingResponse `json:"postings"`
	IsDeleted   bool              `json:"isDeleted"`
	IsClosing   bool              `json:"isClosing"`
}

func toEntryResponse(e ledger.JournalEntry) entryResponse {
	postings := make([]postingResponse, len(e.Postings))
	for i, p := range e.Postings {
		postings[i] = postingResponse{AccountID: p.AccountID, Side: string(p.Side), Amount: p.Amount}
	}
	return entryResponse{
		ID:          e.ID,
		Date:        e.Date.Format(dateLayout),
		Description: e.Description,
		Postings:    postings,
		IsDeleted:   e.IsDeleted,
		IsClosing:   e.IsClosing,
	}
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type suggestRequest struct {
	Description string `json:"description" validate:"required"`
}

type suggestResponse struct {
	DebitAccountID  uuid.UUID `json:"debitAccountId"`
	CreditAccountID uuid.UUID `json:"creditAccountId"`
}

type documentSuggestResponse struct {
	suggestResponse
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}
