package ledger

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence boundary. The core works on full
// {accounts, entries} snapshots per company and hands updated slices
// back; the repository owns durability and atomicity. AppendEntries
// must persist all entries or none, which is what keeps the closing
// workflow's two-entry append atomic.
type Repository interface {
	ListCompanies(ctx context.Context) ([]Company, error)
	GetCompany(ctx context.Context, id uuid.UUID) (Company, error)
	CreateCompany(ctx context.Context, company Company) error
	ReplaceAccounts(ctx context.Context, companyID uuid.UUID, accounts []Account) error
	AppendEntries(ctx context.Context, companyID uuid.UUID, entries []JournalEntry) error
	UpdateEntry(ctx context.Context, companyID uuid.UUID, entry JournalEntry) error
	SetEntryDeleted(ctx context.Context, companyID uuid.UUID, entryID uuid.UUID, deleted bool) error
	// DeleteClosingEntries hard-removes every closing entry of the
	// company. It is the only hard delete in the model.
	DeleteClosingEntries(ctx context.Context, companyID uuid.UUID) error
}
