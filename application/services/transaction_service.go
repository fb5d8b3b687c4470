package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fintrack-backend/domain/finance"
	"fintrack-backend/infrastructure/persistence/store"
	"fintrack-backend/pkg/cache"
	apperrors "fintrack-backend/pkg/errors"
	"fintrack-backend/pkg/query"
)

const transactionsCollection = "transactions"

// TransactionService manages expense and income records. Lists are paginated
// rather than cached: transaction pages are too varied for a small cache to
// help, while mutations still invalidate the user's cached aggregates.
type TransactionService struct {
	store  store.Store
	caches *cache.Registry
	logger *zap.Logger
}

// NewTransactionService creates a transaction service.
func NewTransactionService(st store.Store, caches *cache.Registry, logger *zap.Logger) *TransactionService {
	return &TransactionService{store: st, caches: caches, logger: logger}
}

// TransactionFilter narrows a transaction list.
type TransactionFilter struct {
	Type       string
	CategoryID string
	Range      query.DateRange
}

// CreateTransactionInput carries the fields of a new transaction.
type CreateTransactionInput struct {
	Type        finance.TransactionType
	Amount      float64
	Description string
	CategoryID  *string
	Date        time.Time
}

// UpdateTransactionInput carries the mutable fields of a transaction; nil
// fields are left unchanged.
type UpdateTransactionInput struct {
	Amount      *float64
	Description *string
	CategoryID  *string
	Date        *time.Time
}

func (f TransactionFilter) toStoreFilter(userID string) store.Filter {
	filter := store.Filter{"userId": userID}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.CategoryID != "" {
		filter["categoryId"] = f.CategoryID
	}
	for k, v := range query.RangeFilter(f.Range, "date") {
		filter[k] = v
	}
	return filter
}

// List returns one page of the user's transactions with the full pagination
// envelope (exact total, page count, prev/next flags).
func (s *TransactionService) List(ctx context.Context, userID string, filter TransactionFilter, opts query.PageOptions) (*query.Page, error) {
	page, err := query.Paginate(ctx, s.collection(), filter.toStoreFilter(userID), opts)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list transactions", err)
	}
	return page, nil
}

// Feed returns a cursor page of the user's transactions for infinite scroll.
func (s *TransactionService) Feed(ctx context.Context, userID string, filter TransactionFilter, opts query.CursorOptions) (*query.CursorPage, error) {
	page, err := query.CursorPaginate(ctx, s.collection(), filter.toStoreFilter(userID), opts)
	if err != nil {
		if apperrors.GetAppError(err) != nil {
			return nil, err
		}
		return nil, apperrors.NewDatabaseError("transaction feed", err)
	}
	return page, nil
}

// Create stores a new transaction and invalidates the user's caches.
func (s *TransactionService) Create(ctx context.Context, userID string, input CreateTransactionInput) (finance.Transaction, error) {
	tx := finance.NewTransaction(userID, input.Type, input.Amount, input.Description, input.CategoryID, input.Date)
	if err := s.collection().InsertMany(ctx, []store.Document{tx.Document()}); err != nil {
		return finance.Transaction{}, apperrors.NewDatabaseError("create transaction", err)
	}
	s.caches.InvalidateUser(userID)
	s.logger.Info("transaction created",
		zap.String("userId", userID),
		zap.String("transactionId", tx.ID),
		zap.String("type", string(tx.Type)),
	)
	return tx, nil
}

// Update modifies a transaction owned by the user and invalidates their
// caches.
func (s *TransactionService) Update(ctx context.Context, userID, transactionID string, input UpdateTransactionInput) (finance.Transaction, error) {
	update := store.Document{}
	if input.Amount != nil {
		update["amount"] = *input.Amount
	}
	if input.Description != nil {
		update["description"] = *input.Description
	}
	if input.CategoryID != nil {
		if *input.CategoryID == "" {
			update["categoryId"] = nil
		} else {
			update["categoryId"] = *input.CategoryID
		}
	}
	if input.Date != nil {
		update["date"] = *input.Date
	}
	if len(update) == 0 {
		return finance.Transaction{}, apperrors.NewValidationError("no fields to update")
	}

	doc, err := s.collection().FindOneAndUpdate(ctx, store.Filter{"id": transactionID, "userId": userID}, update)
	if err != nil {
		return finance.Transaction{}, apperrors.NewDatabaseError("update transaction", err)
	}
	if doc == nil {
		return finance.Transaction{}, apperrors.NewNotFoundError("transaction")
	}
	s.caches.InvalidateUser(userID)
	return finance.TransactionFromDocument(doc), nil
}

// Delete removes a transaction owned by the user and invalidates their
// caches.
func (s *TransactionService) Delete(ctx context.Context, userID, transactionID string) error {
	doc, err := s.collection().FindOneAndDelete(ctx, store.Filter{"id": transactionID, "userId": userID})
	if err != nil {
		return apperrors.NewDatabaseError("delete transaction", err)
	}
	if doc == nil {
		return apperrors.NewNotFoundError("transaction")
	}
	s.caches.InvalidateUser(userID)
	return nil
}

func (s *TransactionService) collection() store.Collection {
	return s.store.Collection(transactionsCollection)
}
