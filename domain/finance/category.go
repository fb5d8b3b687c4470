// Package finance holds the domain entities of the expense tracker and their
// document-store representations.
package finance

import (
	"time"

	"github.com/google/uuid"

	"fintrack-backend/infrastructure/persistence/store"
)

// TransactionType distinguishes money leaving from money entering.
type TransactionType string

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

// ValidTransactionType reports whether s names a known type.
func ValidTransactionType(s string) bool {
	return s == string(Expense) || s == string(Income)
}

// Category is a user-defined label for transactions. Categories are scoped to
// their owner; two users can both have a "Groceries" category.
type Category struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	Color     string          `json:"color"`
	Icon      string          `json:"icon"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewCategory creates a category with a fresh id and creation timestamp.
func NewCategory(userID, name string, txType TransactionType, color, icon string) Category {
	return Category{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Type:      txType,
		Color:     color,
		Icon:      icon,
		CreatedAt: time.Now().UTC(),
	}
}

// Document converts the category to its store representation.
func (c Category) Document() store.Document {
	return store.Document{
		"id":        c.ID,
		"userId":    c.UserID,
		"name":      c.Name,
		"type":      string(c.Type),
		"color":     c.Color,
		"icon":      c.Icon,
		"createdAt": c.CreatedAt,
	}
}

// CategoryFromDocument rebuilds a category from its store representation.
func CategoryFromDocument(d store.Document) Category {
	return Category{
		ID:        asString(d["id"]),
		UserID:    asString(d["userId"]),
		Name:      asString(d["name"]),
		Type:      TransactionType(asString(d["type"])),
		Color:     asString(d["color"]),
		Icon:      asString(d["icon"]),
		CreatedAt: asTime(d["createdAt"]),
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
