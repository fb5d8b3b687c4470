package query

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"fintrack-backend/infrastructure/persistence/store"
	apperrors "fintrack-backend/pkg/errors"
)

// CursorOptions controls a cursor-paginated query for infinite scroll. An
// empty Cursor starts from the beginning.
type CursorOptions struct {
	Cursor    string
	Limit     int
	SortBy    string
	SortOrder store.SortOrder
}

// CursorPage is the envelope returned by CursorPaginate. NextCursor is nil on
// the final page.
type CursorPage struct {
	Data       []store.Document `json:"data"`
	NextCursor *string          `json:"nextCursor"`
	HasMore    bool             `json:"hasMore"`
}

// cursorPayload is the decoded form of the opaque cursor string. The id
// breaks ties between documents sharing the same sort value, so paging never
// skips or repeats an item.
type cursorPayload struct {
	Value any    `json:"v"`
	ID    string `json:"id"`
}

// EncodeCursor packs a sort value and a tiebreaker id into an opaque string.
func EncodeCursor(value any, id string) (string, error) {
	raw, err := json.Marshal(cursorPayload{Value: value, ID: id})
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeCursor unpacks an opaque cursor string. Numeric sort values come back
// as json.Number so no precision is lost on the round trip.
func DecodeCursor(cursor string) (value any, id string, err error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, "", fmt.Errorf("decode cursor: %w", err)
	}
	var payload cursorPayload
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, "", fmt.Errorf("decode cursor: %w", err)
	}
	return payload.Value, payload.ID, nil
}

func (o *CursorOptions) normalize() {
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

// CursorPaginate runs a cursor-paginated read over col. With a cursor, the
// page starts strictly after the last item of the previous page: documents
// whose sort value lies past the cursor value, plus documents sharing the
// value whose id lies past the cursor id. It fetches limit+1 rows to detect
// whether more pages exist without a second count query.
func CursorPaginate(ctx context.Context, col store.Collection, filter store.Filter, opts CursorOptions) (*CursorPage, error) {
	opts.normalize()

	effective := store.Filter{}
	for k, v := range filter {
		effective[k] = v
	}
	if opts.Cursor != "" {
		value, id, err := DecodeCursor(opts.Cursor)
		if err != nil {
			// The cursor is client-supplied input, not a store failure.
			return nil, apperrors.NewValidationError("invalid cursor").WithCause(err)
		}
		strict, tie := store.OpLT, store.OpLT
		if opts.SortOrder == store.Asc {
			strict, tie = store.OpGT, store.OpGT
		}
		effective[store.OpOr] = []store.Filter{
			{opts.SortBy: map[string]any{strict: value}},
			{opts.SortBy: value, "id": map[string]any{tie: id}},
		}
	}

	docs, err := col.Find(effective).
		Sort(opts.SortBy, opts.SortOrder).
		Sort("id", opts.SortOrder). // tiebreaker keeps page boundaries stable
		Limit(opts.Limit + 1).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	hasMore := len(docs) > opts.Limit
	if hasMore {
		docs = docs[:opts.Limit]
	}
	if docs == nil {
		docs = []store.Document{}
	}

	page := &CursorPage{Data: docs, HasMore: hasMore}
	if hasMore && len(docs) > 0 {
		last := docs[len(docs)-1]
		id, _ := last["id"].(string)
		next, err := EncodeCursor(last[opts.SortBy], id)
		if err != nil {
			return nil, err
		}
		page.NextCursor = &next
	}
	return page, nil
}
