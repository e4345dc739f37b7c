package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"wealthflow/internal/core"
	"wealthflow/internal/middleware/trace"
	"wealthflow/internal/services"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Error string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiError{Error: message})
}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrTxNotFound), errors.Is(err, core.ErrGoalNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrNegativeAmount),
		errors.Is(err, core.ErrAmountTooLarge),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidTarget),
		errors.Is(err, core.ErrEmptyCurrency):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrSuggestionBusy):
		return http.StatusConflict
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// userMessage is the text shown to the client for err.
func userMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "Please enter a valid amount."
	case errors.Is(err, core.ErrNegativeAmount):
		return "Amounts cannot be negative."
	case errors.Is(err, core.ErrAmountTooLarge):
		return "That amount is too large."
	case errors.Is(err, core.ErrInvalidType):
		return "Type must be income or expense."
	case errors.Is(err, core.ErrEmptyName):
		return "Please name the goal."
	case errors.Is(err, core.ErrInvalidTarget):
		return "The target must be a positive amount."
	case errors.Is(err, core.ErrTxNotFound):
		return "Transaction not found."
	case errors.Is(err, core.ErrGoalNotFound):
		return "Goal not found."
	case errors.Is(err, errBodyTooLarge):
		return "Request too large."
	default:
		return "Something went wrong. Please try again."
	}
}

// parseTransactionType treats an empty type as an expense.
func parseTransactionType(s string) (core.TransactionType, error) {
	if strings.TrimSpace(s) == "" {
		return core.Expense, nil
	}
	return core.ParseTransactionType(s)
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func requestID(r *http.Request) string {
	return trace.RequestID(r)
}
