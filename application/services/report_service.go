package services

import (
	"context"

	"go.uber.org/zap"

	"fintrack-backend/infrastructure/persistence/store"
	"fintrack-backend/pkg/cache"
	apperrors "fintrack-backend/pkg/errors"
	"fintrack-backend/pkg/query"
)

// ReportService produces aggregated views of a user's transactions. Results
// go into the aggregation cache, which carries a short TTL so reports stay
// fresh; mutations additionally invalidate the whole user prefix.
type ReportService struct {
	store  store.Store
	caches *cache.Registry
	logger *zap.Logger
}

// NewReportService creates a report service.
func NewReportService(st store.Store, caches *cache.Registry, logger *zap.Logger) *ReportService {
	return &ReportService{store: st, caches: caches, logger: logger}
}

// Summary returns per-type totals (sum, average, count) for the range.
func (s *ReportService) Summary(ctx context.Context, userID string, r query.DateRange) ([]store.Document, error) {
	key := cache.Key(userID, "summary", rangeSuffix(r))
	return s.cached(ctx, key, "summary report", query.SummaryPipeline(userID, r))
}

// ByCategory returns the per-category breakdown for the range, ordered by
// total descending, with unlinked transactions folded into an Uncategorized
// row.
func (s *ReportService) ByCategory(ctx context.Context, userID, txType string, r query.DateRange) ([]store.Document, error) {
	key := cache.Key(userID, "category-summary", txType, rangeSuffix(r))
	return s.cached(ctx, key, "category report", query.CategorySummaryPipeline(userID, txType, r))
}

// TimeSeries returns chronological buckets of transaction totals.
func (s *ReportService) TimeSeries(ctx context.Context, userID, txType string, r query.DateRange, g store.Granularity) ([]store.Document, error) {
	key := cache.Key(userID, "timeseries", txType, string(g), rangeSuffix(r))
	return s.cached(ctx, key, "time series report", query.TimeSeriesPipeline(userID, txType, r, g))
}

// cached serves the pipeline result from the aggregation cache, running the
// aggregation on miss. Store errors pass through uncached.
func (s *ReportService) cached(ctx context.Context, key, op string, stages []store.Stage) ([]store.Document, error) {
	v, err := s.caches.Aggregation.GetOrSet(ctx, key, func(ctx context.Context) (any, error) {
		docs, err := s.store.Collection(transactionsCollection).Aggregate(ctx, stages)
		if err != nil {
			return nil, apperrors.NewDatabaseError(op, err)
		}
		return docs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]store.Document), nil
}

func rangeSuffix(r query.DateRange) string {
	const layout = "2006-01-02"
	start, end := "any", "any"
	if r.Start != nil {
		start = r.Start.Format(layout)
	}
	if r.End != nil {
		end = r.End.Format(layout)
	}
	if start == "any" && end == "any" {
		return ""
	}
	return start + ".." + end
}
