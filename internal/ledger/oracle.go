package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Suggestion pairs a debit and a credit account for a described
// transaction. Advisory only: the caller still builds and validates
// the entry through the normal path.
type Suggestion struct {
	DebitAccountID  uuid.UUID
	CreditAccountID uuid.UUID
}

// DocumentSuggestion is a full entry draft extracted from an uploaded
// document such as an invoice photo or a bank slip.
type DocumentSuggestion struct {
	Suggestion
	Date        time.Time
	Description string
	Amount      decimal.Decimal
}

// SuggestionOracle produces entry drafts from free text or documents.
// Implementations are untrusted: the service re-validates everything an
// oracle returns before it reaches a journal entry.
type SuggestionOracle interface {
	SuggestAccounts(ctx context.Context, description string, accounts []Account) (Suggestion, error)
	AnalyzeDocument(ctx context.Context, document []byte, mimeType string, accounts []Account) (DocumentSuggestion, error)
}
