package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/contaflow/contaflow/internal/ledger"
	"github.com/contaflow/contaflow/internal/ledger/closing"
	"github.com/contaflow/contaflow/internal/platform/httpx"
)

// respondError translates domain errors into RFC7807 problem responses.
func respondError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", verrs.Error())
		return
	}
	switch {
	case errors.Is(err, ledger.ErrCompanyNotFound),
		errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrEntryNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ledger.ErrDuplicateCode),
		errors.Is(err, ledger.ErrAlreadyClosed),
		errors.Is(err, ledger.ErrNotClosed),
		errors.Is(err, closing.ErrDepreciationPosted),
		errors.Is(err, closing.ErrCOGSPosted):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ledger.ErrSuggestionRejected),
		errors.Is(err, ledger.ErrOracleUnavailable):
		httpx.Problem(w, http.StatusBadGateway, "Suggestion Unavailable", err.Error())
	case isDomainViolation(err):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid Operation", err.Error())
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func isDomainViolation(err error) bool {
	for _, sentinel := range []error{
		ledger.ErrCompanyNameRequired,
		ledger.ErrNatureMismatch,
		ledger.ErrAnalyticWithoutParent,
		ledger.ErrAnalyticParent,
		ledger.ErrCircularParent,
		ledger.ErrAnalyticWithChildren,
		ledger.ErrMissingIncomeClass,
		ledger.ErrUnexpectedIncomeClass,
		ledger.ErrAccountInUse,
		ledger.ErrAccountHasChildren,
		ledger.ErrPostingToSynthetic,
		ledger.ErrTooFewPostings,
		ledger.ErrNonPositiveAmount,
		ledger.ErrUnbalancedEntry,
		ledger.ErrNothingToClose,
		ledger.ErrMissingClosingAccounts,
		ledger.ErrClosingEntryImmutable,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
