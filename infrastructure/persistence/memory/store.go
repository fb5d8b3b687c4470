// Package memory provides a map-backed document store adapter. It backs local
// development and the test suite; production deployments use the DynamoDB
// adapter behind the same port.
package memory

import (
	"context"
	"sync"

	"fintrack-backend/infrastructure/persistence/store"
)

// Store keeps every collection in process memory. Insertion order is
// preserved, which gives FindOneAndUpdate/Delete deterministic "first match"
// semantics.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]store.Document
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{collections: make(map[string][]store.Document)}
}

// Collection returns a handle for name, creating the collection lazily on
// first write.
func (s *Store) Collection(name string) store.Collection {
	return &collection{store: s, name: name}
}

// snapshot copies the documents of one collection so readers never observe
// concurrent mutation. Documents are shallow-copied; callers treat them as
// read-only values.
func (s *Store) snapshot(name string) []store.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.collections[name]
	out := make([]store.Document, len(docs))
	for i, d := range docs {
		copied := make(store.Document, len(d))
		for k, v := range d {
			copied[k] = v
		}
		out[i] = copied
	}
	return out
}

type collection struct {
	store *Store
	name  string
}

func (c *collection) Find(filter store.Filter) store.Query {
	return &query{coll: c, filter: filter, limit: -1}
}

func (c *collection) CountDocuments(ctx context.Context, filter store.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int64
	for _, d := range c.store.snapshot(c.name) {
		if store.MatchFilter(d, filter) {
			n++
		}
	}
	return n, nil
}

func (c *collection) Aggregate(ctx context.Context, stages []store.Stage) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs := c.store.snapshot(c.name)
	return store.ExecutePipeline(docs, stages, func(name string) ([]store.Document, error) {
		return c.store.snapshot(name), nil
	})
}

func (c *collection) InsertMany(ctx context.Context, docs []store.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.collections[c.name] = append(c.store.collections[c.name], docs...)
	return nil
}

func (c *collection) FindOneAndUpdate(ctx context.Context, filter store.Filter, update store.Document) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	for _, d := range c.store.collections[c.name] {
		if store.MatchFilter(d, filter) {
			for k, v := range update {
				d[k] = v
			}
			updated := make(store.Document, len(d))
			for k, v := range d {
				updated[k] = v
			}
			return updated, nil
		}
	}
	return nil, nil
}

func (c *collection) FindOneAndDelete(ctx context.Context, filter store.Filter) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	docs := c.store.collections[c.name]
	for i, d := range docs {
		if store.MatchFilter(d, filter) {
			c.store.collections[c.name] = append(docs[:i:i], docs[i+1:]...)
			return d, nil
		}
	}
	return nil, nil
}

type query struct {
	coll   *collection
	filter store.Filter
	sorts  []sortCriterion
	skip   int
	limit  int
	fields []string
}

type sortCriterion struct {
	field string
	order store.SortOrder
}

// Sort accumulates criteria; a second call adds a secondary sort key rather
// than replacing the first.
func (q *query) Sort(field string, order store.SortOrder) store.Query {
	q.sorts = append(q.sorts, sortCriterion{field: field, order: order})
	return q
}

func (q *query) Skip(n int) store.Query {
	q.skip = n
	return q
}

func (q *query) Limit(n int) store.Query {
	q.limit = n
	return q
}

func (q *query) Select(fields ...string) store.Query {
	q.fields = fields
	return q
}

func (q *query) Exec(ctx context.Context) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched := make([]store.Document, 0)
	for _, d := range q.coll.store.snapshot(q.coll.name) {
		if store.MatchFilter(d, q.filter) {
			matched = append(matched, d)
		}
	}

	// Apply sort keys from least to most significant; the stable sort keeps
	// earlier orderings intact within ties of later keys.
	for i := len(q.sorts) - 1; i >= 0; i-- {
		store.SortDocuments(matched, q.sorts[i].field, q.sorts[i].order)
	}
	if q.skip > 0 {
		if q.skip >= len(matched) {
			return []store.Document{}, nil
		}
		matched = matched[q.skip:]
	}
	if q.limit >= 0 && len(matched) > q.limit {
		matched = matched[:q.limit]
	}
	for i, d := range matched {
		matched[i] = store.SelectFields(d, q.fields)
	}
	return matched, nil
}
