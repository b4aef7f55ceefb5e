package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDescription is substituted when an expense is logged without one.
const DefaultDescription = "지출"

// Expense is one logged expense record. The ID and CreatedAt are assigned by
// whichever repository variant performs the Add; callers leave them zero.
type Expense struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ExpenseRepository is the persistence boundary. Implementations never return
// the post-write record list: after a successful Add or Remove the only source
// of truth is the next snapshot delivered through the ledger store. The synced
// variant in particular must not splice written records into local state, since
// the remote side assigns both the ID and the ordering key.
type ExpenseRepository interface {
	// List returns all records ordered newest first.
	List(ctx context.Context) ([]*Expense, error)

	// Add persists a record without an ID. The repository assigns the ID and
	// CreatedAt.
	Add(ctx context.Context, expense *Expense) error

	// Remove deletes one record by ID. Returns ErrExpenseNotFound when the ID
	// is absent.
	Remove(ctx context.Context, id string) error
}

// BulkRemover is implemented by repositories that can clear every record in a
// single atomic step. The reset coordinator prefers it over per-record fan-out.
type BulkRemover interface {
	RemoveAll(ctx context.Context) error
}
