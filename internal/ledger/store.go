// Package ledger owns the canonical record list and fans observed changes out
// to subscribers as immutable snapshots.
package ledger

import (
	"sync"

	"gagyebu/internal/budget"
	"gagyebu/internal/domain"

	"github.com/shopspring/decimal"
)

// Snapshot is the full ordered record list plus derived totals, as of one
// point in observed time. It is a pure function of the record list and the
// budget; delivering it never mutates store state.
type Snapshot struct {
	Records    []*domain.Expense
	Budget     decimal.Decimal
	TotalSpent decimal.Decimal
	Remaining  decimal.Decimal
	OverBudget bool
}

// Store holds the authoritative ordered record list and notifies observers of
// changes. Before the first Apply it is in a distinct loading state so callers
// can tell "no expenses yet" from "not yet loaded".
// It is safe for concurrent use.
type Store struct {
	budget decimal.Decimal

	mu      sync.RWMutex
	records []*domain.Expense
	loaded  bool
	nextSub int
	subs    map[int]func(Snapshot)
}

// NewStore creates a Store with the given session budget.
func NewStore(b decimal.Decimal) *Store {
	return &Store{
		budget: b,
		subs:   make(map[int]func(Snapshot)),
	}
}

// Budget returns the fixed session budget.
func (s *Store) Budget() decimal.Decimal {
	return s.budget
}

// Apply replaces the record list with the given ordered records and delivers
// the resulting snapshot to every subscriber. The memory repository calls it
// synchronously after each mutation; the postgres watcher calls it on every
// push from the remote side.
func (s *Store) Apply(records []*domain.Expense) {
	s.mu.Lock()
	s.records = append([]*domain.Expense(nil), records...)
	s.loaded = true
	snap := s.snapshotLocked()

	// Copy subscribers so callbacks run without the lock held.
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// Subscribe registers an observer and returns its unsubscribe handle. When a
// snapshot has already been loaded the observer receives it immediately;
// otherwise the first delivery happens on the first Apply. The returned
// function is idempotent.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	var initial *Snapshot
	if s.loaded {
		snap := s.snapshotLocked()
		initial = &snap
	}
	s.mu.Unlock()

	if initial != nil {
		fn(*initial)
	}

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Snapshot returns the current snapshot. The second return value is false
// while the first snapshot has not arrived yet.
func (s *Store) Snapshot() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return Snapshot{}, false
	}
	return s.snapshotLocked(), true
}

// SubscriberCount returns the number of registered observers.
func (s *Store) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// snapshotLocked builds a snapshot from the current records. Callers must hold
// at least a read lock.
func (s *Store) snapshotLocked() Snapshot {
	records := append([]*domain.Expense(nil), s.records...)
	spent, remaining := budget.Totals(records, s.budget)
	return Snapshot{
		Records:    records,
		Budget:     s.budget,
		TotalSpent: spent,
		Remaining:  remaining,
		OverBudget: remaining.IsNegative(),
	}
}
