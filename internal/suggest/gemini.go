// Package suggest implements the entry suggestion oracle on top of the
// Gemini API. The model sees the postable accounts and a description or
// document and proposes a debit and credit pair; everything it returns
// is re-validated by the caller.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/contaflow/contaflow/internal/ledger"
)

const defaultModel = "gemini-2.0-flash"

// Gemini is a ledger.SuggestionOracle backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini constructs the oracle. An empty model selects the default.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("suggest: create genai client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &Gemini{client: client, model: model}, nil
}

var _ ledger.SuggestionOracle = (*Gemini)(nil)

type pairPayload struct {
	DebitAccountID  string `json:"debitAccountId"`
	CreditAccountID string `json:"creditAccountId"`
}

type documentPayload struct {
	pairPayload
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// SuggestAccounts proposes a debit and credit account for a described
// transaction.
func (g *Gemini) SuggestAccounts(ctx context.Context, description string, accounts []ledger.Account) (ledger.Suggestion, error) {
	prompt := "You are a Brazilian double-entry bookkeeping assistant.\n" +
		"Given a transaction description and the chart of postable accounts below,\n" +
		"pick the account to debit and the account to credit.\n\n" +
		"Respond with STRICT JSON only, no markdown, shaped exactly as:\n" +
		`{"debitAccountId": "<uuid>", "creditAccountId": "<uuid>"}` + "\n\n" +
		"Accounts:\n" + accountCatalog(accounts) + "\n" +
		"Transaction: " + description + "\n"

	raw, err := g.generate(ctx, []*genai.Part{{Text: prompt}})
	if err != nil {
		return ledger.Suggestion{}, err
	}
	var payload pairPayload
	if err := decodePayload(raw, &payload); err != nil {
		return ledger.Suggestion{}, err
	}
	return payload.toSuggestion()
}

// AnalyzeDocument extracts a full entry draft from a document such as
// an invoice image or a bank slip PDF.
func (g *Gemini) AnalyzeDocument(ctx context.Context, document []byte, mimeType string, accounts []ledger.Account) (ledger.DocumentSuggestion, error) {
	prompt := "You are a Brazilian double-entry bookkeeping assistant.\n" +
		"Read the attached document and extract the transaction it records,\n" +
		"then pick the account to debit and the account to credit from the chart below.\n\n" +
		"Respond with STRICT JSON only, no markdown, shaped exactly as:\n" +
		`{"date": "YYYY-MM-DD", "description": "...", "amount": 123.45, "debitAccountId": "<uuid>", "creditAccountId": "<uuid>"}` + "\n" +
		"The amount is always positive.\n\n" +
		"Accounts:\n" + accountCatalog(accounts)

	parts := []*genai.Part{
		{Text: prompt},
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: document}},
	}
	raw, err := g.generate(ctx, parts)
	if err != nil {
		return ledger.DocumentSuggestion{}, err
	}
	var payload documentPayload
	if err := decodePayload(raw, &payload); err != nil {
		return ledger.DocumentSuggestion{}, err
	}
	suggestion, err := payload.toSuggestion()
	if err != nil {
		return ledger.DocumentSuggestion{}, err
	}
	out := ledger.DocumentSuggestion{
		Suggestion:  suggestion,
		Description: strings.TrimSpace(payload.Description),
		Amount:      decimal.NewFromFloat(payload.Amount).Round(2),
	}
	if payload.Date != "" {
		date, err := time.Parse("2006-01-02", payload.Date)
		if err != nil {
			return ledger.DocumentSuggestion{}, fmt.Errorf("%w: bad date %q", ledger.ErrSuggestionRejected, payload.Date)
		}
		out.Date = date
	}
	return out, nil
}

func (g *Gemini) generate(ctx context.Context, parts []*genai.Part) (string, error) {
	contents := []*genai.Content{{Role: "user", Parts: parts}}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.1)),
		ResponseMIMEType: "application/json",
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("suggest: generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("suggest: empty model response")
	}
	return text, nil
}

// decodePayload parses model output, running it through json-repair
// when the model ignored the strict JSON instruction.
func decodePayload(raw string, dst any) error {
	cleaned := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(cleaned), dst); err == nil {
		return nil
	}
	repaired, err := jsonrepair.RepairJSON(cleaned)
	if err != nil {
		return fmt.Errorf("suggest: unparseable model response: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), dst); err != nil {
		return fmt.Errorf("suggest: unparseable model response: %w", err)
	}
	return nil
}

func (p pairPayload) toSuggestion() (ledger.Suggestion, error) {
	debit, err := uuid.Parse(strings.TrimSpace(p.DebitAccountID))
	if err != nil {
		return ledger.Suggestion{}, fmt.Errorf("%w: bad debit account id", ledger.ErrSuggestionRejected)
	}
	credit, err := uuid.Parse(strings.TrimSpace(p.CreditAccountID))
	if err != nil {
		return ledger.Suggestion{}, fmt.Errorf("%w: bad credit account id", ledger.ErrSuggestionRejected)
	}
	return ledger.Suggestion{DebitAccountID: debit, CreditAccountID: credit}, nil
}

func accountCatalog(accounts []ledger.Account) string {
	var b strings.Builder
	for _, acc := range accounts {
		fmt.Fprintf(&b, "- id=%s code=%s nature=%s name=%s\n", acc.ID, acc.Code, acc.Nature, acc.Name)
	}
	return b.String()
}
