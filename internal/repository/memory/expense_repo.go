// Package memory implements the expense repository as a mutex-guarded
// in-memory list. Mutations are synchronous and echo the new snapshot into the
// ledger store before returning.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gagyebu/internal/domain"
	"gagyebu/internal/ledger"
)

// ExpenseRepository implements domain.ExpenseRepository in memory.
type ExpenseRepository struct {
	store *ledger.Store

	mu      sync.Mutex
	records []*domain.Expense
	lastID  int64
}

// NewExpenseRepository creates an empty repository bound to the given ledger
// store. The initial (empty) snapshot is applied immediately: the local
// variant has no loading phase.
func NewExpenseRepository(store *ledger.Store) *ExpenseRepository {
	r := &ExpenseRepository{store: store}
	store.Apply(nil)
	return r
}

// List returns the records newest first.
func (r *ExpenseRepository) List(_ context.Context) ([]*domain.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.Expense(nil), r.records...), nil
}

// Add assigns an ID and creation timestamp, prepends the record, and delivers
// the new snapshot synchronously. The snapshot is applied under the mutex so
// concurrent mutations cannot publish out of order.
func (r *ExpenseRepository) Add(_ context.Context, expense *domain.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	expense.ID = r.nextIDLocked(now)
	expense.CreatedAt = now
	r.records = append([]*domain.Expense{expense}, r.records...)
	r.store.Apply(r.records)
	return nil
}

// Remove deletes one record by ID.
func (r *ExpenseRepository) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, e := range r.records {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrExpenseNotFound
	}
	r.records = append(r.records[:idx], r.records[idx+1:]...)
	r.store.Apply(r.records)
	return nil
}

// RemoveAll clears every record in one atomic step. Implements
// domain.BulkRemover, so a local reset cannot partially fail.
func (r *ExpenseRepository) RemoveAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = nil
	r.store.Apply(nil)
	return nil
}

// nextIDLocked derives a unique token from the creation time, bumped past the
// previous one when two adds land in the same nanosecond.
func (r *ExpenseRepository) nextIDLocked(now time.Time) string {
	n := now.UnixNano()
	if n <= r.lastID {
		n = r.lastID + 1
	}
	r.lastID = n
	return fmt.Sprintf("exp-%d", n)
}

var _ domain.ExpenseRepository = (*ExpenseRepository)(nil)
var _ domain.BulkRemover = (*ExpenseRepository)(nil)
