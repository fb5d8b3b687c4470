// Package handlers contains the HTTP request handlers. Handlers parse and
// validate input, resolve the authenticated user, delegate to the application
// services, and shape responses; no business logic lives here.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fintrack-backend/application/services"
	"fintrack-backend/domain/finance"
	"fintrack-backend/pkg/auth"
	"fintrack-backend/pkg/common"
	"fintrack-backend/pkg/utils"
)

const maxBodyBytes = 1 << 20

// CategoryHandler handles category-related HTTP requests.
type CategoryHandler struct {
	categories *services.CategoryService
	logger     *zap.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categories *services.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger}
}

// CreateCategoryRequest is the body of POST /categories.
type CreateCategoryRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Type  string `json:"type" validate:"required,oneof=expense income"`
	Color string `json:"color,omitempty" validate:"omitempty,max=30"`
	Icon  string `json:"icon,omitempty" validate:"omitempty,max=50"`
}

// UpdateCategoryRequest is the body of PUT /categories/{categoryID}.
type UpdateCategoryRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Color *string `json:"color,omitempty" validate:"omitempty,max=30"`
	Icon  *string `json:"icon,omitempty" validate:"omitempty,max=50"`
}

// List handles GET /categories?type=expense|income
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	txType := r.URL.Query().Get("type")
	if txType != "" && !finance.ValidTransactionType(txType) {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "type must be expense or income")
		return
	}

	categories, err := h.categories.List(r.Context(), user.UserID, txType)
	if err != nil {
		h.logger.Error("failed to list categories",
			zap.String("userId", user.UserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, categories)
}

// Create handles POST /categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req CreateCategoryRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	category, err := h.categories.Create(r.Context(), user.UserID, services.CreateCategoryInput{
		Name:  req.Name,
		Type:  finance.TransactionType(req.Type),
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		h.logger.Error("failed to create category",
			zap.String("userId", user.UserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, category)
}

// Update handles PUT /categories/{categoryID}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	categoryID := chi.URLParam(r, "categoryID")
	if _, err := uuid.Parse(categoryID); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid category ID format")
		return
	}

	var req UpdateCategoryRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	category, err := h.categories.Update(r.Context(), user.UserID, categoryID, services.UpdateCategoryInput{
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, category)
}

// Delete handles DELETE /categories/{categoryID}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	categoryID := chi.URLParam(r, "categoryID")
	if _, err := uuid.Parse(categoryID); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "invalid category ID format")
		return
	}

	if err := h.categories.Delete(r.Context(), user.UserID, categoryID); err != nil {
		common.RespondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
