package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fintrack-backend/application/services"
	"fintrack-backend/domain/finance"
	"fintrack-backend/infrastructure/persistence/store"
	"fintrack-backend/pkg/auth"
	"fintrack-backend/pkg/common"
	"fintrack-backend/pkg/query"
	"fintrack-backend/pkg/utils"
)

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	transactions *services.TransactionService
	logger       *zap.Logger
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(transactions *services.TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, logger: logger}
}

// CreateTransactionRequest is the body of POST /transactions.
type CreateTransactionRequest struct {
	Type        string  `json:"type" validate:"required,oneof=expense income"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description,omitempty" validate:"omitempty,max=500"`
	CategoryID  *string `json:"categoryId,omitempty" validate:"omitempty,uuid"`
	Date        string  `json:"date" validate:"required"`
}

// UpdateTransactionRequest is the body of PUT /transactions/{transactionID}.
// An explicit empty categoryId detaches the transaction from its category.
type UpdateTransactionRequest struct {
	Amount      *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	CategoryID  *string  `json:"categoryId,omitempty"`
	Date        *string  `json:"date,omitempty"`
}

// List handles GET /transactions with offset pagination. Query parameters:
// page, limit, sortBy, order, type, categoryId, startDate, endDate, preset.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	result, err := h.transactions.List(r.Context(), user.UserID, filter, query.PageOptions{
		Page:      page,
		Limit:     limit,
		SortBy:    q.Get("sortBy"),
		SortOrder: parseOrder(q.Get("order")),
	})
	if err != nil {
		h.logger.Error("failed to list transactions",
			zap.String("userId", user.UserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Feed handles GET /transactions/feed with cursor pagination for infinite
// scroll. Query parameters: cursor, limit, sortBy, order plus the filter set.
func (h *TransactionHandler) Feed(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	result, err := h.transactions.Feed(r.Context(), user.UserID, filter, query.CursorOptions{
		Cursor:    q.Get("cursor"),
		Limit:     limit,
		SortBy:    q.Get("sortBy"),
		SortOrder: parseOrder(q.Get("order")),
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Create handles POST /transactions
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req CreateTransactionRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "date must be RFC 3339 or YYYY-MM-DD")
		return
	}

	tx, err := h.transactions.Create(r.Context(), user.UserID, services.CreateTransactionInput{
		Type:        finance.TransactionType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Date:        date,
	})
	if err != nil {
		h.logger.Error("failed to create transaction",
			zap.String("userId", user.UserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, tx)
}

// Update handles PUT /transactions/{transactionID}
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	transactionID := chi.URLParam(r, "transactionID")
	if _, err := uuid.Parse(transactionID); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid transaction ID format")
		return
	}

	var req UpdateTransactionRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	input := services.UpdateTransactionInput{
		Amount:      req.Amount,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION", "date must be RFC 3339 or YYYY-MM-DD")
			return
		}
		input.Date = &date
	}

	tx, err := h.transactions.Update(r.Context(), user.UserID, transactionID, input)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, tx)
}

// Delete handles DELETE /transactions/{transactionID}
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	transactionID := chi.URLParam(r, "transactionID")
	if _, err := uuid.Parse(transactionID); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid transaction ID format")
		return
	}

	if err := h.transactions.Delete(r.Context(), user.UserID, transactionID); err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseFilter reads the shared filter query parameters. On a bad input it
// writes the error response and returns ok=false.
func (h *TransactionHandler) parseFilter(w http.ResponseWriter, r *http.Request) (services.TransactionFilter, bool) {
	q := r.URL.Query()
	filter := services.TransactionFilter{
		Type:       q.Get("type"),
		CategoryID: q.Get("categoryId"),
	}
	if filter.Type != "" && !finance.ValidTransactionType(filter.Type) {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "type must be expense or income")
		return filter, false
	}

	dateRange, err := parseRange(q)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return filter, false
	}
	filter.Range = dateRange
	return filter, true
}

func parseOrder(s string) store.SortOrder {
	if s == string(store.Asc) {
		return store.Asc
	}
	if s == string(store.Desc) {
		return store.Desc
	}
	return ""
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
