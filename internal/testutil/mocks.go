package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gagyebu/internal/domain"
	"gagyebu/internal/ledger"
)

// MockExpenseRepository is a mock implementation of domain.ExpenseRepository.
// It mirrors the memory variant (mutations echo into the bound ledger store
// synchronously) but adds per-operation failure hooks. It deliberately does
// NOT implement domain.BulkRemover, so resets against it exercise the
// per-record fan-out path.
type MockExpenseRepository struct {
	Store *ledger.Store

	mu      sync.Mutex
	records []*domain.Expense
	nextID  int

	ListFn   func(ctx context.Context) ([]*domain.Expense, error)
	AddFn    func(ctx context.Context, expense *domain.Expense) error
	RemoveFn func(ctx context.Context, id string) error
}

// NewMockExpenseRepository creates a mock bound to the given ledger store and
// applies the initial empty snapshot.
func NewMockExpenseRepository(store *ledger.Store) *MockExpenseRepository {
	m := &MockExpenseRepository{Store: store, nextID: 1}
	store.Apply(nil)
	return m
}

// List returns the current records, newest first.
func (m *MockExpenseRepository) List(ctx context.Context) ([]*domain.Expense, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Expense(nil), m.records...), nil
}

// Add assigns a sequential ID and prepends the record.
func (m *MockExpenseRepository) Add(ctx context.Context, expense *domain.Expense) error {
	if m.AddFn != nil {
		if err := m.AddFn(ctx, expense); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	expense.ID = fmt.Sprintf("mock-%d", m.nextID)
	m.nextID++
	expense.CreatedAt = time.Now()
	m.records = append([]*domain.Expense{expense}, m.records...)
	m.Store.Apply(m.records)
	return nil
}

// Remove deletes one record by ID. A RemoveFn error leaves the record in
// place, which is how tests model a failed backend delete.
func (m *MockExpenseRepository) Remove(ctx context.Context, id string) error {
	if m.RemoveFn != nil {
		if err := m.RemoveFn(ctx, id); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i, e := range m.records {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrExpenseNotFound
	}
	m.records = append(m.records[:idx], m.records[idx+1:]...)
	m.Store.Apply(m.records)
	return nil
}

// AddExpense seeds a record directly, bypassing admission (helper for tests).
func (m *MockExpenseRepository) AddExpense(expense *domain.Expense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if expense.ID == "" {
		expense.ID = fmt.Sprintf("mock-%d", m.nextID)
		m.nextID++
	}
	m.records = append([]*domain.Expense{expense}, m.records...)
	m.Store.Apply(m.records)
}

// IDs returns the current record IDs, newest first (helper for tests).
func (m *MockExpenseRepository) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.records))
	for _, e := range m.records {
		ids = append(ids, e.ID)
	}
	return ids
}

var _ domain.ExpenseRepository = (*MockExpenseRepository)(nil)
