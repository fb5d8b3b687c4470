package finance

import (
	"time"

	"github.com/google/uuid"

	"fintrack-backend/infrastructure/persistence/store"
)

// Transaction is a single expense or income record. CategoryID is nil for
// uncategorized transactions; reports substitute a placeholder category for
// those.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
	CategoryID  *string         `json:"categoryId"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NewTransaction creates a transaction with a fresh id and creation
// timestamp.
func NewTransaction(userID string, txType TransactionType, amount float64, description string, categoryID *string, date time.Time) Transaction {
	return Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		CategoryID:  categoryID,
		Date:        date,
		CreatedAt:   time.Now().UTC(),
	}
}

// Document converts the transaction to its store representation. A nil
// CategoryID is stored as an explicit nil so aggregation grouping folds all
// uncategorized transactions together.
func (t Transaction) Document() store.Document {
	var categoryID any
	if t.CategoryID != nil {
		categoryID = *t.CategoryID
	}
	return store.Document{
		"id":          t.ID,
		"userId":      t.UserID,
		"type":        string(t.Type),
		"amount":      t.Amount,
		"description": t.Description,
		"categoryId":  categoryID,
		"date":        t.Date,
		"createdAt":   t.CreatedAt,
	}
}

// TransactionFromDocument rebuilds a transaction from its store
// representation.
func TransactionFromDocument(d store.Document) Transaction {
	t := Transaction{
		ID:          asString(d["id"]),
		UserID:      asString(d["userId"]),
		Type:        TransactionType(asString(d["type"])),
		Amount:      asFloat(d["amount"]),
		Description: asString(d["description"]),
		Date:        asTime(d["date"]),
		CreatedAt:   asTime(d["createdAt"]),
	}
	if id, ok := d["categoryId"].(string); ok && id != "" {
		t.CategoryID = &id
	}
	return t
}
