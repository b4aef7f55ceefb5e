package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"gagyebu/internal/budget"
	"gagyebu/internal/domain"
	"gagyebu/internal/ledger"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// resetConcurrency bounds the delete fan-out during a bulk reset.
const resetConcurrency = 8

// LedgerService orchestrates admission, persistence and bulk reset. It never
// mutates the record list itself: mutations go through the repository and the
// resulting truth flows back through the ledger store subscription.
type LedgerService struct {
	repo  domain.ExpenseRepository
	store *ledger.Store
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(repo domain.ExpenseRepository, store *ledger.Store) *LedgerService {
	return &LedgerService{repo: repo, store: store}
}

// AddExpenseInput holds the input for logging an expense.
type AddExpenseInput struct {
	Amount      decimal.Decimal
	Description string
	Date        *time.Time
}

// AddExpense admits the proposed expense against the current snapshot and
// persists it. Admission uses the snapshot before the add; nothing is spliced
// into local state optimistically.
func (s *LedgerService) AddExpense(ctx context.Context, input AddExpenseInput) error {
	snap, loaded := s.store.Snapshot()
	if !loaded {
		return domain.ErrNotLoaded
	}

	if err := budget.Admit(snap.Records, snap.Budget, input.Amount); err != nil {
		return err
	}

	description := input.Description
	if description == "" {
		description = domain.DefaultDescription
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if input.Date != nil {
		date = *input.Date
	}

	expense := &domain.Expense{
		Amount:      input.Amount,
		Description: description,
		Date:        date,
	}

	if err := s.repo.Add(ctx, expense); err != nil {
		return domain.NewStoreError("add", err)
	}
	return nil
}

// DeleteExpense removes one record by ID.
func (s *LedgerService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.repo.Remove(ctx, id); err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return err
		}
		return domain.NewStoreError("remove", err)
	}
	return nil
}

// ResetAll clears every record. The caller is expected to have obtained user
// confirmation already.
//
// When the repository supports an atomic clear (the local variant) that is
// used and the reset cannot partially fail. Otherwise every record in the
// current snapshot gets one concurrent delete; deletions are independent, so
// some may fail while others succeed. In that case the store keeps exactly
// the failed records and the returned ResetError names their IDs so the
// caller can retry selectively.
func (s *LedgerService) ResetAll(ctx context.Context) error {
	if bulk, ok := s.repo.(domain.BulkRemover); ok {
		if err := bulk.RemoveAll(ctx); err != nil {
			return domain.NewStoreError("reset", err)
		}
		return nil
	}

	snap, loaded := s.store.Snapshot()
	if !loaded {
		return domain.ErrNotLoaded
	}
	if len(snap.Records) == 0 {
		return nil
	}

	var (
		mu     sync.Mutex
		failed = make(map[string]bool)
	)

	var g errgroup.Group
	g.SetLimit(resetConcurrency)
	for _, record := range snap.Records {
		id := record.ID
		g.Go(func() error {
			err := s.repo.Remove(ctx, id)
			if err != nil && !errors.Is(err, domain.ErrExpenseNotFound) {
				// Already-gone records count as cleared; anything else is a
				// real failure to report.
				log.Warn().Err(err).Str("expense_id", id).Msg("Reset delete failed")
				mu.Lock()
				failed[id] = true
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) == 0 {
		return nil
	}

	// Report in snapshot order so the error is stable.
	ids := make([]string, 0, len(failed))
	for _, record := range snap.Records {
		if failed[record.ID] {
			ids = append(ids, record.ID)
		}
	}
	return domain.NewStoreError("reset", &domain.ResetError{FailedIDs: ids})
}

// Snapshot returns the current ledger snapshot; the bool is false while the
// first snapshot has not arrived.
func (s *LedgerService) Snapshot() (ledger.Snapshot, bool) {
	return s.store.Snapshot()
}
