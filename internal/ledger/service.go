package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountInput carries the caller-supplied fields of an account.
type AccountInput struct {
	Code          string
	Name          string
	Description   string
	Nature        Nature
	Kind          Kind
	ParentID      *uuid.UUID
	IsContra      bool
	IncomeClass   IncomeClass
	CashFlowClass CashFlowClass
}

// PostingInput is one leg of an entry as submitted by the caller.
type PostingInput struct {
	AccountID uuid.UUID
	Side      Side
	Amount    decimal.Decimal
}

// EntryInput carries the caller-supplied fields of a journal entry.
type EntryInput struct {
	Date        time.Time
	Description string
	Postings    []PostingInput
}

// Service implements the bookkeeping operations over a Repository.
type Service struct {
	repo   Repository
	oracle SuggestionOracle
	now    func() time.Time
}

func NewService(repo Repository, oracle SuggestionOracle) *Service {
	return &Service{repo: repo, oracle: oracle, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) ListCompanies(ctx context.Context) ([]Company, error) {
	return s.repo.ListCompanies(ctx)
}

func (s *Service) GetCompany(ctx context.Context, id uuid.UUID) (Company, error) {
	return s.repo.GetCompany(ctx, id)
}

// CreateCompany registers a company seeded with the default chart of
// accounts. fiscalYearStart marks the first day of the reporting year.
func (s *Service) CreateCompany(ctx context.Context, name string, fiscalYearStart time.Time) (Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Company{}, ErrCompanyNameRequired
	}
	company := Company{
		ID:              uuid.New(),
		Name:            name,
		FiscalYearStart: fiscalYearStart,
		Accounts:        DefaultChart(),
	}
	if err := s.repo.CreateCompany(ctx, company); err != nil {
		return Company{}, fmt.Errorf("create company: %w", err)
	}
	return company, nil
}

// CreateAccount validates the input against the company's chart and
// persists the grown chart.
func (s *Service) CreateAccount(ctx context.Context, companyID uuid.UUID, in AccountInput) (Account, error) {
	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return Account{}, err
	}
	acc := Account{
		ID:            uuid.New(),
		Code:          strings.TrimSpace(in.Code),
		Name:          strings.TrimSpace(in.Name),
		Description:   strings.TrimSpace(in.Description),
		Nature:        in.Nature,
		Kind:          in.Kind,
		ParentID:      in.ParentID,
		IsContra:      in.IsContra,
		IncomeClass:   in.IncomeClass,
		CashFlowClass: in.CashFlowClass,
	}
	chart := NewChart(company.Accounts)
	if err := ValidateAccount(chart, acc); err != nil {
		return Account{}, err
	}
	accounts := append(company.Accounts, acc)
	if err := s.repo.ReplaceAccounts(ctx, companyID, accounts); err != nil {
		return Account{}, fmt.Errorf("save accounts: %w", err)
	}
	return acc, nil
}

// UpdateAccount replaces the mutable fields of an existing account.
func (s *Service) UpdateAccount(ctx context.Context, companyID uuid.UUID, accountID uuid.UUID, in AccountInput) (Account, error) {
	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return Account{}, err
	}
	chart := NewChart(company.Accounts)
	current, ok := chart.ByID(accountID)
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	acc := current
	acc.Code = strings.TrimSpace(in.Code)
	acc.Name = strings.TrimSpace(in.Name)
	acc.Description = strings.TrimSpace(in.Description)
	acc.Nature = in.Nature
	acc.Kind = in.Kind
	acc.ParentID = in.ParentID
	acc.IsContra = in.IsContra
	acc.IncomeClass = in.IncomeClass
	acc.CashFlowClass = in.CashFlowClass
	if err := ValidateAccount(chart, acc); err != nil {
		return Account{}, err
	}
	accounts := make([]Account, len(company.Accounts))
	copy(accounts, company.Accounts)
	for i := range accounts {
		if accounts[i].ID == accountID {
			accounts[i] = acc
		}
	}
	if err := s.repo.ReplaceAccounts(ctx, companyID, accounts); err != nil {
		return Account{}, fmt.Errorf("save accounts: %w", err)
	}
	return acc, nil
}

// DeleteAccount removes an account that has no children and no
// postings, deleted entries included.
func (s *Service) DeleteAccount(ctx context.Context, companyID uuid.UUID, accountID uuid.UUID) error {
	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return err
	}
	chart := NewChart(company.Accounts)
	if _, ok := chart.ByID(accountID); !ok {
		return ErrAccountNotFound
	}
	if err := ValidateAccountDeletion(chart, company.Entries, accountID); err != nil {
		return err
	}
	accounts := make([]Account, 0, len(company.Accounts)-1)
	for _, acc := range company.Accounts {
		if acc.ID != accountID {
			accounts = append(accounts, acc)
		}
	}
	if err := s.repo.ReplaceAccounts(ctx, companyID, accounts); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	return nil
}

// ReplaceChart swaps the whole chart at once, used by the JSON
// importer. Every account is validated against the incoming chart and
// no existing posting may reference an account absent from it.
func (s *Service) ReplaceChart(ctx context.Context, companyID uuid.UUID, accounts []Account) error {
	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return err
	}
	chart := NewChart(accounts)
	for _, acc := range accounts {
		if err := ValidateAccount(chart, acc); err != nil {
			return fmt.Errorf("account %s: %w", acc.Code, err)
		}
	}
	for _, entry := range company.Entries {
		for _, p := range entry.Postings {
			if _, ok := chart.ByID(p.AccountID); !ok {
				return fmt.Errorf("%w: entry %q references a missing account", ErrAccountNotFound, entry.Description)
			}
		}
	}
	if err := s.repo.ReplaceAccounts(ctx, companyID, accounts); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	return nil
}

// CreateEntry validates and appends a journal entry.
func (s *Service) CreateEntry(ctx context.Context, companyID uuid.UUID, in EntryInput) (JournalEntry, error) {
	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return JournalEntry{}, err
	}
	entry := JournalEntry{
		ID:          uuid.New(),
		Date:        in.Date,
		Description: strings.TrimSpace(in.Description),
		Postings:    postingsFromInput(in.Postings),
	}
	chart := NewChart(company.Accounts)
	if err := ValidateEntry(chart, entry); err != nil {
		return JournalEntry{}, err
	}
	if err := s.repo.AppendEntries(ctx, companyID, []JournalEntry{entry}); err != nil {
		return JournalEntry{}, fmt.Errorf("append entry: %w", err)
	}
	return entry, nil
}

// UpdateEntry replaces an existing non-closing entry in place.
func (s *Service) UpdateEntry(ctx context.Context, companyID uuid.UUID, entryID uuid.UUID, in EntryInput) (JournalEntry, error) {
	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return JournalEntry{}, err
	}
	current, ok := findEntry(company.Entries, entryID)
	if !ok {
		return JournalEntry{}, ErrEntryNotFound
	}
	if current.IsClosing {
		return JournalEntry{}, ErrClosingEntryImmutable
	}
	entry := current
	entry.Date = in.Date
	entry.Description = strings.TrimSpace(in.Description)
	entry.Postings = postingsFromInput(in.Postings)
	chart := NewChart(company.Accounts)
	if err := ValidateEntry(chart, entry); err != nil {
		return JournalEntry{}, err
	}
	if err := s.repo.UpdateEntry(ctx, companyID, entry); err != nil {
		return JournalEntry{}, fmt.Errorf("update entry: %w", err)
	}
	return entry, nil
}

// DeleteEntry soft-deletes an entry. The entry stays in storage and
// can be restored; balances ignore it while deleted.
func (s *Service) DeleteEntry(ctx context.Context, companyID uuid.UUID, entryID uuid.UUID) error {
	return s.setEntryDeleted(ctx, companyID, entryID, true)
}

// RestoreEntry reverses a soft delete.
func (s *Service) RestoreEntry(ctx context.Context, companyID uuid.UUID, entryID uuid.UUID) error {
	return s.setEntryDeleted(ctx, companyID, entryID, false)
}

func (s *Service) setEntryDeleted(ctx context.Context, companyID, entryID uuid.UUID, deleted bool) error {
	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return err
	}
	entry, ok := findEntry(company.Entries, entryID)
	if !ok {
		return ErrEntryNotFound
	}
	if entry.IsClosing {
		return ErrClosingEntryImmutable
	}
	if err := s.repo.SetEntryDeleted(ctx, companyID, entryID, deleted); err != nil {
		return fmt.Errorf("set entry deleted: %w", err)
	}
	return nil
}

// SuggestEntry asks the oracle for a debit/credit pair matching the
// description. Oracle output that references unknown or synthetic
// accounts is rejected.
func (s *Service) SuggestEntry(ctx context.Context, companyID uuid.UUID, description string) (Suggestion, error) {
	if s.oracle == nil {
		return Suggestion{}, ErrOracleUnavailable
	}
	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return Suggestion{}, err
	}
	chart := NewChart(company.Accounts)
	sg, err := s.oracle.SuggestAccounts(ctx, description, postable(chart))
	if err != nil {
		return Suggestion{}, fmt.Errorf("suggest accounts: %w", err)
	}
	if err := validateSuggestion(chart, sg); err != nil {
		return Suggestion{}, err
	}
	return sg, nil
}

// AnalyzeDocument extracts an entry draft from an uploaded document.
func (s *Service) AnalyzeDocument(ctx context.Context, companyID uuid.UUID, document []byte, mimeType string) (DocumentSuggestion, error) {
	if s.oracle == nil {
		return DocumentSuggestion{}, ErrOracleUnavailable
	}
	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return DocumentSuggestion{}, err
	}
	chart := NewChart(company.Accounts)
	ds, err := s.oracle.AnalyzeDocument(ctx, document, mimeType, postable(chart))
	if err != nil {
		return DocumentSuggestion{}, fmt.Errorf("analyze document: %w", err)
	}
	if err := validateSuggestion(chart, ds.Suggestion); err != nil {
		return DocumentSuggestion{}, err
	}
	if !ds.Amount.IsPositive() {
		return DocumentSuggestion{}, fmt.Errorf("%w: non-positive amount", ErrSuggestionRejected)
	}
	if ds.Date.IsZero() {
		ds.Date = s.now()
	}
	return ds, nil
}

func validateSuggestion(chart *Chart, sg Suggestion) error {
	for _, id := range []uuid.UUID{sg.DebitAccountID, sg.CreditAccountID} {
		acc, ok := chart.ByID(id)
		if !ok {
			return fmt.Errorf("%w: unknown account %s", ErrSuggestionRejected, id)
		}
		if acc.Kind != KindAnalytic {
			return fmt.Errorf("%w: account %s is synthetic", ErrSuggestionRejected, acc.Code)
		}
	}
	if sg.DebitAccountID == sg.CreditAccountID {
		return fmt.Errorf("%w: debit and credit accounts coincide", ErrSuggestionRejected)
	}
	return nil
}

func postable(chart *Chart) []Account {
	out := make([]Account, 0, chart.Len())
	for _, acc := range chart.Accounts() {
		if acc.Kind == KindAnalytic {
			out = append(out, acc)
		}
	}
	return out
}

func postingsFromInput(in []PostingInput) []Posting {
	out := make([]Posting, len(in))
	for i, p := range in {
		out[i] = Posting{AccountID: p.AccountID, Side: p.Side, Amount: p.Amount}
	}
	return out
}

func findEntry(entries []JournalEntry, id uuid.UUID) (JournalEntry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return JournalEntry{}, false
}
