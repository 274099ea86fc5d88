// Package api exposes the bookkeeping engine over HTTP: chart and
// journal mutations, derived statements, the closing workflow,
// diagnostics and the suggestion oracle.
package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/contaflow/contaflow/internal/ledger"
	"github.com/contaflow/contaflow/internal/ledger/closing"
	"github.com/contaflow/contaflow/internal/ledger/diagnostics"
	"github.com/contaflow/contaflow/internal/ledger/reports"
	"github.com/contaflow/contaflow/internal/platform/httpx"
)

// maxDocumentBytes caps uploads forwarded to the suggestion oracle.
const maxDocumentBytes = 10 << 20

// Refresher schedules a background refresh of a company's derived
// statements after a mutation. A nil Refresher disables scheduling.
type Refresher interface {
	EnqueueReportsRefresh(ctx context.Context, companyID uuid.UUID) error
}

// Handler wires the bookkeeping endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *ledger.Service
	closing   *closing.Service
	repo      ledger.Repository
	codes     reports.Codes
	cache     *Cache
	refresher Refresher
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *ledger.Service, closingSvc *closing.Service, repo ledger.Repository, codes reports.Codes, cache *Cache, refresher Refresher) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		closing:   closingSvc,
		repo:      repo,
		codes:     codes,
		cache:     cache,
		refresher: refresher,
		validator: validator.New(),
	}
}

// MountRoutes registers the bookkeeping routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/companies", h.listCompanies)
	r.Post("/companies", h.createCompany)
	r.Route("/companies/{companyID}", func(r chi.Router) {
		r.Get("/", h.getCompany)

		r.Get("/accounts", h.listAccounts)
		r.Post("/accounts", h.createAccount)
		r.Put("/accounts/{accountID}", h.updateAccount)
		r.Delete("/accounts/{accountID}", h.deleteAccount)
		r.Get("/accounts/{accountID}/ledger", h.accountLedger)
		r.Get("/chart/export", h.exportChart)
		r.Post("/chart/import", h.importChart)

		r.Get("/entries", h.listEntries)
		r.Post("/entries", h.createEntry)
		r.Put("/entries/{entryID}", h.updateEntry)
		r.Delete("/entries/{entryID}", h.deleteEntry)
		r.Post("/entries/{entryID}/restore", h.restoreEntry)

		r.Get("/reports", h.reportsBundle)
		r.Get("/diagnostics", h.runDiagnostics)

		r.Post("/closing", h.close)
		r.Delete("/closing", h.undoClosing)
		r.Post("/closing/depreciation", h.postDepreciation)
		r.Post("/closing/cogs", h.postCOGS)

		r.Post("/suggestions", h.suggestEntry)
		r.Post("/suggestions/document", h.analyzeDocument)
	})
}

func (h *Handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.ListCompanies(r.Context())
	if err != nil {
		h.fail(w, r, "list companies", err)
		return
	}
	out := make([]companyResponse, 0, len(companies))
	for _, c := range companies {
		out = append(out, toCompanyResponse(c))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) createCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if !h.decode(w, r, &req) {
		return
	}
	start, err := parseDate(req.FiscalYearStart)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "fiscalYearStart must be YYYY-MM-DD")
		return
	}
	company, err := h.service.CreateCompany(r.Context(), req.Name, start)
	if err != nil {
		h.fail(w, r, "create company", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toCompanyResponse(company))
}

func (h *Handler) getCompany(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, toCompanyResponse(company))
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	out := make([]accountResponse, 0, len(company.Accounts))
	for _, a := range company.Accounts {
		out = append(out, toAccountResponse(a))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return
	}
	var req accountRequest
	if !h.decode(w, r, &req) {
		return
	}
	account, err := h.service.CreateAccount(r.Context(), companyID, req.toInput())
	if err != nil {
		h.fail(w, r, "create account", err)
		return
	}
	h.invalidate(r.Context(), companyID)
	httpx.JSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return
	}
	accountID, ok := h.pathID(w, r, "accountID")
	if !ok {
		return
	}
	var req accountRequest
	if !h.decode(w, r, &req) {
		return
	}
	account, err := h.service.UpdateAccount(r.Context(), companyID, accountID, req.toInput())
	if err != nil {
		h.fail(w, r, "update account", err)
		return
	}
	h.invalidate(r.Context(), companyID)
	httpx.JSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return
	}
	accountID, ok := h.pathID(w, r, "accountID")
	if !ok {
		return
	}
	if err := h.service.DeleteAccount(r.Context(), companyID, accountID); err != nil {
		h.fail(w, r, "delete account", err)
		return
	}
	h.invalidate(r.Context(), companyID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) accountLedger(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.pathID(w, r, "accountID")
	if !ok {
		return
	}
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	chart := ledger.NewChart(company.Accounts)
	account, found := chart.ByID(accountID)
	if !found {
		respondError(w, ledger.ErrAccountNotFound)
		return
	}
	activity := reports.AccountLedger(chart, accountID, ledger.ActiveEntries(company.Entries))
	httpx.JSON(w, http.StatusOK, reports.LedgerViewModel{
		CompanyName:  company.Name,
		AccountCode:  account.Code,
		AccountName:  account.Name,
		BalanceLabel: reports.FormatBRL(activity.Balance),
		Activity:     activity,
	})
}

func (h *Handler) exportChart(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	payload, err := ledger.ExportChart(ledger.NewChart(company.Accounts))
	if err != nil {
		h.fail(w, r, "export chart", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="chart.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (h *Handler) importChart(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return
	}
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unreadable body")
		return
	}
	accounts, err := ledger.ImportChart(payload)
	if err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid Chart", err.Error())
		return
	}
	if err := h.service.ReplaceChart(r.Context(), companyID, accounts); err != nil {
		h.fail(w, r, "import chart", err)
		return
	}
	h.invalidate(r.Context(), companyID)
	httpx.JSON(w, http.StatusOK, map[string]int{"accounts": len(accounts)})
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	includeDeleted := r.URL.Query().Get("includeDeleted") == "true"
	out := make([]entryResponse, 0, len(company.Entries))
	for _, e := range company.Entries {
		if e.IsDeleted && !includeDeleted {
			continue
		}
		out = append(out, toEntryResponse(e))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return
	}
	var req entryRequest
	if !h.decode(w, r, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
		return
	}
	entry, err := h.service.CreateEntry(r.Context(), companyID, input)
	if err != nil {
		h.fail(w, r, "create entry", err)
		return
	}
	h.invalidate(r.Context(), companyID)
	httpx.JSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *Handler) updateEntry(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return
	}
	entryID, ok := h.pathID(w, r, "entryID")
	if !ok {
		return
	}
	var req entryRequest
	if !h.decode(w, r, &req) {
		return
	}
	input, err := req.toInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
		return
	}
	entry, err := h.service.UpdateEntry(r.Context(), companyID, entryID, input)
	if err != nil {
		h.fail(w, r, "update entry", err)
		return
	}
	h.invalidate(r.Context(), companyID)
	httpx.JSON(w, http.StatusOK, toEntryResponse(entry))
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	h.setEntryDeleted(w, r, true)
}

func (h *Handler) restoreEntry(w http.ResponseWriter, r *http.Request) {
	h.setEntryDeleted(w, r, false)
}

func (h *Handler) setEntryDeleted(w http.ResponseWriter, r *http.Request, deleted bool) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return
	}
	entryID, ok := h.pathID(w, r, "entryID")
	if !ok {
		return
	}
	var err error
	if deleted {
		err = h.service.DeleteEntry(r.Context(), companyID, entryID)
	} else {
		err = h.service.RestoreEntry(r.Context(), companyID, entryID)
	}
	if err != nil {
		h.fail(w, r, "set entry deleted", err)
		return
	}
	h.invalidate(r.Context(), companyID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) reportsBundle(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return
	}
	key, err := h.cache.BuildKey(r.Context(), "reports", companyID.String(), "bundle")
	if err != nil {
		h.fail(w, r, "build cache key", err)
		return
	}
	var vm reports.BundleViewModel
	err = h.cache.FetchJSON(r.Context(), key, &vm, func(ctx context.Context) (any, error) {
		company, err := h.repo.GetCompany(ctx, companyID)
		if err != nil {
			return nil, err
		}
		chart := ledger.NewChart(company.Accounts)
		bundle, err := reports.BuildBundle(ctx, chart, company.Entries, h.codes)
		if err != nil {
			return nil, err
		}
		return reports.NewBundleViewModel(
			company.Name,
			company.FiscalYearStart.Format("2006"),
			ledger.Closed(company.Entries),
			bundle,
		), nil
	})
	if err != nil {
		h.fail(w, r, "build reports bundle", err)
		return
	}
	httpx.JSON(w, http.StatusOK, vm)
}

func (h *Handler) runDiagnostics(w http.ResponseWriter, r *http.Request) {
	company, ok := h.company(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, diagnostics.Run(company, h.codes))
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return
	}
	result, err := h.closing.Close(r.Context(), companyID)
	if err != nil {
		h.fail(w, r, "close period", err)
		return
	}
	h.invalidate(r.Context(), companyID)
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"netIncome": result.NetIncome,
		"zeroing":   toEntryResponse(result.Zeroing),
		"transfer":  toEntryResponse(result.Transfer),
	})
}

func (h *Handler) undoClosing(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return
	}
	if err := h.closing.Undo(r.Context(), companyID); err != nil {
		h.fail(w, r, "undo closing", err)
		return
	}
	h.invalidate(r.Context(), companyID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) postDepreciation(w http.ResponseWriter, r *http.Request) {
	h.conveniencePosting(w, r, h.closing.PostDepreciation)
}

func (h *Handler) postCOGS(w http.ResponseWriter, r *http.Request) {
	h.conveniencePosting(w, r, h.closing.PostCOGS)
}

func (h *Handler) conveniencePosting(w http.ResponseWriter, r *http.Request, post func(context.Context, uuid.UUID, decimal.Decimal) (ledger.JournalEntry, error)) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return
	}
	var req amountRequest
	if !h.decode(w, r, &req) {
		return
	}
	entry, err := post(r.Context(), companyID, req.Amount)
	if err != nil {
		h.fail(w, r, "convenience posting", err)
		return
	}
	h.invalidate(r.Context(), companyID)
	httpx.JSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *Handler) suggestEntry(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return
	}
	var req suggestRequest
	if !h.decode(w, r, &req) {
		return
	}
	suggestion, err := h.service.SuggestEntry(r.Context(), companyID, req.Description)
	if err != nil {
		h.fail(w, r, "suggest entry", err)
		return
	}
	httpx.JSON(w, http.StatusOK, suggestResponse{
		DebitAccountID:  suggestion.DebitAccountID,
		CreditAccountID: suggestion.CreditAccountID,
	})
}

func (h *Handler) analyzeDocument(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return
	}
	mimeType := r.Header.Get("Content-Type")
	if mimeType == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "Content-Type required")
		return
	}
	document, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes))
	if err != nil || len(document) == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "document body required")
		return
	}
	ds, err := h.service.AnalyzeDocument(r.Context(), companyID, document, mimeType)
	if err != nil {
		h.fail(w, r, "analyze document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, documentSuggestResponse{
		suggestResponse: suggestResponse{
			DebitAccountID:  ds.DebitAccountID,
			CreditAccountID: ds.CreditAccountID,
		},
		Date:        ds.Date.Format(dateLayout),
		Description: ds.Description,
		Amount:      ds.Amount,
	})
}

func (h *Handler) company(w http.ResponseWriter, r *http.Request) (ledger.Company, bool) {
	companyID, ok := h.pathID(w, r, "companyID")
	if !ok {
		return ledger.Company{}, false
	}
	company, err := h.service.GetCompany(r.Context(), companyID)
	if err != nil {
		h.fail(w, r, "get company", err)
		return ledger.Company{}, false
	}
	return company, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		respondError(w, err)
		return false
	}
	return true
}

func (h *Handler) invalidate(ctx context.Context, companyID uuid.UUID) {
	if err := h.cache.Bump(ctx); err != nil {
		h.logger.Warn("cache bump failed", slog.Any("error", err))
	}
	if h.refresher == nil {
		return
	}
	if err := h.refresher.EnqueueReportsRefresh(ctx, companyID); err != nil {
		h.logger.Warn("reports refresh enqueue failed", slog.Any("error", err))
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	respondError(w, err)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
