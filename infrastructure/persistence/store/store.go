// Package store defines the document store port used by the application layer.
// Concrete adapters (in-memory, DynamoDB) live in sibling packages; everything
// here is backend-agnostic.
package store

import (
	"context"
)

// Document is a single schemaless record.
type Document = map[string]any

// Filter selects documents. Each entry maps a field name either to a literal
// value (equality) or to an operator map such as {"$gte": v}. The reserved
// key "$or" maps to a []Filter whose alternatives are OR-ed together and
// AND-ed with the remaining entries.
type Filter = map[string]any

// Supported comparison operators inside a Filter entry.
const (
	OpGT  = "$gt"
	OpGTE = "$gte"
	OpLT  = "$lt"
	OpLTE = "$lte"
	OpIn  = "$in"
	OpOr  = "$or"
)

// SortOrder controls result ordering.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Query is a chainable read query. Builders return the receiver so calls can
// be chained; Exec runs the query.
type Query interface {
	Sort(field string, order SortOrder) Query
	Skip(n int) Query
	Limit(n int) Query
	Select(fields ...string) Query
	Exec(ctx context.Context) ([]Document, error)
}

// Collection exposes the operations the application needs from one logical
// collection of documents.
type Collection interface {
	Find(filter Filter) Query
	CountDocuments(ctx context.Context, filter Filter) (int64, error)
	Aggregate(ctx context.Context, stages []Stage) ([]Document, error)
	InsertMany(ctx context.Context, docs []Document) error

	// FindOneAndUpdate applies the update fields to the first matching
	// document and returns the updated document, or nil if nothing matched.
	FindOneAndUpdate(ctx context.Context, filter Filter, update Document) (Document, error)

	// FindOneAndDelete removes the first matching document and returns it,
	// or nil if nothing matched.
	FindOneAndDelete(ctx context.Context, filter Filter) (Document, error)
}

// Store hands out named collections.
type Store interface {
	Collection(name string) Collection
}
