package query

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fintrack-backend/infrastructure/persistence/store"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// PageOptions controls an offset-paginated query. Zero values fall back to
// page 1, limit 20, sorted by createdAt descending. A Limit below 1 means
// "unset" (an absent query parameter parses as 0) and takes the default
// rather than clamping to 1; limits above 100 clamp to 100.
type PageOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder store.SortOrder
}

// PageInfo describes the position of a page within the full result set.
// Total is the exact count of documents matching the filter, not the page
// size.
type PageInfo struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// Page is the envelope returned by Paginate.
type Page struct {
	Data       []store.Document `json:"data"`
	Pagination PageInfo         `json:"pagination"`
}

func (o *PageOptions) normalize() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = defaultLimit
	}
	if o.Limit > maxLimit {
		o.Limit = maxLimit
	}
	if o.SortBy == "" {
		o.SortBy = "createdAt"
	}
	if o.SortOrder == "" {
		o.SortOrder = store.Desc
	}
}

// Paginate runs an offset-paginated read over col. The page fetch and the
// exact count run concurrently. A page past the end of the result set returns
// empty data, never an error; degenerate page/limit inputs are clamped.
// Store errors propagate unchanged.
func Paginate(ctx context.Context, col store.Collection, filter store.Filter, opts PageOptions) (*Page, error) {
	opts.normalize()
	skip := (opts.Page - 1) * opts.Limit

	var (
		docs  []store.Document
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, err = col.Find(filter).
			Sort(opts.SortBy, opts.SortOrder).
			Skip(skip).
			Limit(opts.Limit).
			Exec(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = col.CountDocuments(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totalPages := int((total + int64(opts.Limit) - 1) / int64(opts.Limit))
	if docs == nil {
		docs = []store.Document{}
	}
	return &Page{
		Data: docs,
		Pagination: PageInfo{
			Page:        opts.Page,
			Limit:       opts.Limit,
			Total:       int(total),
			TotalPages:  totalPages,
			HasNextPage: opts.Page < totalPages,
			HasPrevPage: opts.Page > 1,
		},
	}, nil
}
