package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

const (
	msgMissingFields = "Missing required fields"
	msgNotFound      = "Expense not found"
	msgInvalidBody   = "Invalid JSON body"
	msgInternal      = "Internal server error"
)

type handlers struct {
	svc ExpenseService
}

// expenseRequest uses pointers so an absent field can be told apart from a
// zero value.
type expenseRequest struct {
	Title       *string     `json:"title"`
	Amount      *core.Money `json:"amount"`
	Category    *string     `json:"category"`
	Date        *core.Date  `json:"date"`
	Description string      `json:"description"`
}

func (req expenseRequest) complete() bool {
	return req.Title != nil && req.Amount != nil && req.Category != nil && req.Date != nil
}

func (req expenseRequest) expense() core.Expense {
	return core.Expense{
		Title:       *req.Title,
		Amount:      *req.Amount,
		Category:    core.Category(*req.Category),
		Date:        *req.Date,
		Description: req.Description,
	}
}

type messageResponse struct {
	ID      int64  `json:"id,omitempty"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Health check failed", log.FieldError, err)
		writeError(w, http.StatusServiceUnavailable, "unhealthy")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *handlers) listExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.svc.ListExpenses(r.Context())
	if err != nil {
		h.internalError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (h *handlers) createExpense(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeExpense(w, r)
	if !ok {
		return
	}

	saved, err := h.svc.CreateExpense(r.Context(), req.expense())
	if err != nil {
		if isValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.internalError(w, r, log.OpCreate, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Expense created",
		log.NewFields().WithExpense(saved.ID, saved.Title, saved.Amount.String(), saved.Category.String()).ToSlice()...)
	writeJSON(w, http.StatusCreated, messageResponse{ID: saved.ID, Message: "Expense added successfully"})
}

func (h *handlers) updateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := expenseID(w, r)
	if !ok {
		return
	}
	req, ok := decodeExpense(w, r)
	if !ok {
		return
	}

	_, err := h.svc.UpdateExpense(r.Context(), id, req.expense())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, messageResponse{Message: "Expense updated successfully"})
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, msgNotFound)
	case isValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.internalError(w, r, log.OpUpdate, err)
	}
}

func (h *handlers) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := expenseID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteExpense(r.Context(), id); err != nil {
		h.internalError(w, r, log.OpDelete, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Expense deleted successfully"})
}

func (h *handlers) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Summary(r.Context())
	if err != nil {
		h.internalError(w, r, log.OpSummary, err)
		return
	}
	if s.ByCategory == nil {
		s.ByCategory = []core.CategoryTotal{}
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *handlers) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		log.NewFields().WithOperation(op).WithError(err).ToSlice()...)
	writeError(w, http.StatusInternalServerError, msgInternal)
}

func decodeExpense(w http.ResponseWriter, r *http.Request) (expenseRequest, bool) {
	var req expenseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return req, false
	}
	if !req.complete() {
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return req, false
	}
	return req, true
}

// expenseID parses {id}. Non-numeric ids are treated as unknown routes.
func expenseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, msgNotFound)
		return 0, false
	}
	return id, true
}

func isValidation(err error) bool {
	return errors.Is(err, core.ErrEmptyTitle) ||
		errors.Is(err, core.ErrEmptyCategory) ||
		errors.Is(err, core.ErrTitleTooLong) ||
		errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidAmount)
}
