package ledger

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps companies in process memory. It backs tests
// and the zero-configuration mode where no database is reachable.
type MemoryRepository struct {
	mu        sync.RWMutex
	companies map[uuid.UUID]Company
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{companies: make(map[uuid.UUID]Company)}
}

func (r *MemoryRepository) ListCompanies(ctx context.Context) ([]Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Company, 0, len(r.companies))
	for _, c := range r.companies {
		out = append(out, cloneCompany(c))
	}
	return out, nil
}

func (r *MemoryRepository) GetCompany(ctx context.Context, id uuid.UUID) (Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.companies[id]
	if !ok {
		return Company{}, ErrCompanyNotFound
	}
	return cloneCompany(c), nil
}

func (r *MemoryRepository) CreateCompany(ctx context.Context, company Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companies[company.ID] = cloneCompany(company)
	return nil
}

func (r *MemoryRepository) ReplaceAccounts(ctx context.Context, companyID uuid.UUID, accounts []Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[companyID]
	if !ok {
		return ErrCompanyNotFound
	}
	c.Accounts = append([]Account(nil), accounts...)
	r.companies[companyID] = c
	return nil
}

func (r *MemoryRepository) AppendEntries(ctx context.Context, companyID uuid.UUID, entries []JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[companyID]
	if !ok {
		return ErrCompanyNotFound
	}
	for _, e := range entries {
		c.Entries = append(c.Entries, cloneEntry(e))
	}
	r.companies[companyID] = c
	return nil
}

func (r *MemoryRepository) UpdateEntry(ctx context.Context, companyID uuid.UUID, entry JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[companyID]
	if !ok {
		return ErrCompanyNotFound
	}
	for i := range c.Entries {
		if c.Entries[i].ID == entry.ID {
			c.Entries[i] = cloneEntry(entry)
			r.companies[companyID] = c
			return nil
		}
	}
	return ErrEntryNotFound
}

func (r *MemoryRepository) SetEntryDeleted(ctx context.Context, companyID uuid.UUID, entryID uuid.UUID, deleted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[companyID]
	if !ok {
		return ErrCompanyNotFound
	}
	for i := range c.Entries {
		if c.Entries[i].ID == entryID {
			c.Entries[i].IsDeleted = deleted
			r.companies[companyID] = c
			return nil
		}
	}
	return ErrEntryNotFound
}

func (r *MemoryRepository) DeleteClosingEntries(ctx context.Context, companyID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[companyID]
	if !ok {
		return ErrCompanyNotFound
	}
	kept := make([]JournalEntry, 0, len(c.Entries))
	for _, e := range c.Entries {
		if !e.IsClosing {
			kept = append(kept, e)
		}
	}
	c.Entries = kept
	r.companies[companyID] = c
	return nil
}

func cloneCompany(c Company) Company {
	out := c
	out.Accounts = append([]Account(nil), c.Accounts...)
	out.Entries = make([]JournalEntry, len(c.Entries))
	for i, e := range c.Entries {
		out.Entries[i] = cloneEntry(e)
	}
	return out
}

func cloneEntry(e JournalEntry) JournalEntry {
	out := e
	out.Postings = append([]Posting(nil), e.Postings...)
	return out
}
