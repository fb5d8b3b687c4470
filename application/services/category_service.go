// Package services contains the application layer: each service composes the
// cache registry, the query helpers, and the document store behind the HTTP
// handlers.
package services

import (
	"context"

	"go.uber.org/zap"

	"fintrack-backend/domain/finance"
	"fintrack-backend/infrastructure/persistence/store"
	"fintrack-backend/pkg/cache"
	apperrors "fintrack-backend/pkg/errors"
)

const categoriesCollection = "categories"

// CategoryService manages user-defined categories. Reads go through the
// categories cache; every mutation invalidates the owner's cached entries
// before returning.
type CategoryService struct {
	store  store.Store
	caches *cache.Registry
	logger *zap.Logger
}

// NewCategoryService creates a category service.
func NewCategoryService(st store.Store, caches *cache.Registry, logger *zap.Logger) *CategoryService {
	return &CategoryService{store: st, caches: caches, logger: logger}
}

// CreateCategoryInput carries the fields of a new category.
type CreateCategoryInput struct {
	Name  string
	Type  finance.TransactionType
	Color string
	Icon  string
}

// UpdateCategoryInput carries the mutable fields of a category; nil fields
// are left unchanged.
type UpdateCategoryInput struct {
	Name  *string
	Color *string
	Icon  *string
}

// List returns the user's categories, optionally filtered by transaction
// type, sorted by name. Results are cached under
// user:<id>:categories[:<type>]; a store error is never served from or masked
// by the cache.
func (s *CategoryService) List(ctx context.Context, userID, txType string) ([]finance.Category, error) {
	key := cache.Key(userID, "categories", txType)
	if v, ok := s.caches.Categories.Get(key); ok {
		return v.([]finance.Category), nil
	}

	filter := store.Filter{"userId": userID}
	if txType != "" {
		filter["type"] = txType
	}
	docs, err := s.collection().Find(filter).Sort("name", store.Asc).Exec(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list categories", err)
	}

	categories := make([]finance.Category, 0, len(docs))
	for _, d := range docs {
		categories = append(categories, finance.CategoryFromDocument(d))
	}
	s.caches.Categories.Set(key, categories)
	return categories, nil
}

// Create stores a new category for the user and invalidates their cache.
func (s *CategoryService) Create(ctx context.Context, userID string, input CreateCategoryInput) (finance.Category, error) {
	category := finance.NewCategory(userID, input.Name, input.Type, input.Color, input.Icon)
	if err := s.collection().InsertMany(ctx, []store.Document{category.Document()}); err != nil {
		return finance.Category{}, apperrors.NewDatabaseError("create category", err)
	}
	s.caches.InvalidateUser(userID)
	s.logger.Info("category created",
		zap.String("userId", userID),
		zap.String("categoryId", category.ID),
	)
	return category, nil
}

// Update modifies a category owned by the user and invalidates their cache.
func (s *CategoryService) Update(ctx context.Context, userID, categoryID string, input UpdateCategoryInput) (finance.Category, error) {
	update := store.Document{}
	if input.Name != nil {
		update["name"] = *input.Name
	}
	if input.Color != nil {
		update["color"] = *input.Color
	}
	if input.Icon != nil {
		update["icon"] = *input.Icon
	}
	if len(update) == 0 {
		return finance.Category{}, apperrors.NewValidationError("no fields to update")
	}

	doc, err := s.collection().FindOneAndUpdate(ctx, store.Filter{"id": categoryID, "userId": userID}, update)
	if err != nil {
		return finance.Category{}, apperrors.NewDatabaseError("update category", err)
	}
	if doc == nil {
		return finance.Category{}, apperrors.NewNotFoundError("category")
	}
	s.caches.InvalidateUser(userID)
	return finance.CategoryFromDocument(doc), nil
}

// Delete removes a category owned by the user and invalidates their cache.
// Transactions keep their dangling categoryId; reports fold them into the
// Uncategorized row.
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID string) error {
	doc, err := s.collection().FindOneAndDelete(ctx, store.Filter{"id": categoryID, "userId": userID})
	if err != nil {
		return apperrors.NewDatabaseError("delete category", err)
	}
	if doc == nil {
		return apperrors.NewNotFoundError("category")
	}
	s.caches.InvalidateUser(userID)
	s.logger.Info("category deleted",
		zap.String("userId", userID),
		zap.String("categoryId", categoryID),
	)
	return nil
}

func (s *CategoryService) collection() store.Collection {
	return s.store.Collection(categoriesCollection)
}
