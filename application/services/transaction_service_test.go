package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fintrack-backend/domain/finance"
	"fintrack-backend/infrastructure/persistence/memory"
	"fintrack-backend/pkg/cache"
	apperrors "fintrack-backend/pkg/errors"
	"fintrack-backend/pkg/query"
)

func newTransactionFixture(t *testing.T) *TransactionService {
	t.Helper()
	cfg := cache.DefaultConfig()
	cfg.SweepInterval = 0
	caches := cache.NewRegistry(cfg, zap.NewNop())
	t.Cleanup(caches.Close)
	return NewTransactionService(memory.NewStore(), caches, zap.NewNop())
}

func TestTransactionService_CreateAndList(t *testing.T) {
	svc := newTransactionFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, "user-1", CreateTransactionInput{
			Type:   finance.Expense,
			Amount: float64(10 * (i + 1)),
			Date:   time.Date(2024, 3, i+1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, "user-1", TransactionFilter{}, query.PageOptions{})

	require.NoError(t, err)
	assert.Len(t, page.Data, 3)
	assert.Equal(t, 3, page.Pagination.Total)
}

func TestTransactionService_List_FilterByTypeAndRange(t *testing.T) {
	svc := newTransactionFixture(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, "user-1", CreateTransactionInput{
		Type: finance.Expense, Amount: 10,
		Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-1", CreateTransactionInput{
		Type: finance.Income, Amount: 500,
		Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	page, err := svc.List(ctx, "user-1", TransactionFilter{
		Type:  "income",
		Range: query.DateRange{Start: &start},
	}, query.PageOptions{})

	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "income", page.Data[0]["type"])
}

func TestTransactionService_Feed_Paginates(t *testing.T) {
	svc := newTransactionFixture(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, "user-1", CreateTransactionInput{
			Type:   finance.Expense,
			Amount: 1,
			Date:   time.Date(2024, 3, i+1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	first, err := svc.Feed(ctx, "user-1", TransactionFilter{}, query.CursorOptions{Limit: 3, SortBy: "date"})
	require.NoError(t, err)
	assert.Len(t, first.Data, 3)
	require.True(t, first.HasMore)

	second, err := svc.Feed(ctx, "user-1", TransactionFilter{}, query.CursorOptions{
		Cursor: *first.NextCursor, Limit: 3, SortBy: "date",
	})
	require.NoError(t, err)
	assert.Len(t, second.Data, 2)
	assert.False(t, second.HasMore)
}

func TestTransactionService_Feed_BadCursor(t *testing.T) {
	svc := newTransactionFixture(t)

	_, err := svc.Feed(context.Background(), "user-1", TransactionFilter{}, query.CursorOptions{Cursor: "!!!"})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err), "a malformed cursor is a client error, not a store failure")
}

func TestTransactionService_Update_DetachCategory(t *testing.T) {
	svc := newTransactionFixture(t)
	ctx := context.Background()
	catID := "cat-1"
	created, err := svc.Create(ctx, "user-1", CreateTransactionInput{
		Type: finance.Expense, Amount: 10, CategoryID: &catID,
		Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotNil(t, created.CategoryID)

	empty := ""
	updated, err := svc.Update(ctx, "user-1", created.ID, UpdateTransactionInput{CategoryID: &empty})

	require.NoError(t, err)
	assert.Nil(t, updated.CategoryID)
}

func TestTransactionService_Update_OwnerScoped(t *testing.T) {
	svc := newTransactionFixture(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, "user-1", CreateTransactionInput{
		Type: finance.Expense, Amount: 10,
		Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	amount := 99.0
	_, err = svc.Update(ctx, "intruder", created.ID, UpdateTransactionInput{Amount: &amount})

	assert.True(t, apperrors.IsNotFound(err))
}

func TestTransactionService_Delete(t *testing.T) {
	svc := newTransactionFixture(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, "user-1", CreateTransactionInput{
		Type: finance.Expense, Amount: 10,
		Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "user-1", created.ID))

	page, err := svc.List(ctx, "user-1", TransactionFilter{}, query.PageOptions{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)

	err = svc.Delete(ctx, "user-1", created.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
