// Package postgres implements the expense repository against the remote
// authoritative store. Writes are acknowledged independently of reads: Add and
// Remove never touch the ledger store themselves, the change only becomes
// visible through the next push observed by the watcher.
package postgres

import (
	"context"
	"fmt"

	"gagyebu/internal/domain"
	"gagyebu/internal/ledger"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// changeChannel is the NOTIFY channel carrying change pushes.
const changeChannel = "expenses_changed"

// ExpenseRepository implements domain.ExpenseRepository using PostgreSQL.
type ExpenseRepository struct {
	pool  *pgxpool.Pool
	store *ledger.Store
}

// NewExpenseRepository creates a repository bound to the given ledger store.
// The store stays in its loading state until Watch applies the first snapshot.
func NewExpenseRepository(pool *pgxpool.Pool, store *ledger.Store) *ExpenseRepository {
	return &ExpenseRepository{pool: pool, store: store}
}

// List returns all records ordered by created_at descending.
func (r *ExpenseRepository) List(ctx context.Context) ([]*domain.Expense, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, amount, description, date, created_at
		 FROM expenses
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.Expense
	for rows.Next() {
		var (
			e         domain.Expense
			amount    pgtype.Numeric
			date      pgtype.Date
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&e.ID, &amount, &e.Description, &date, &createdAt); err != nil {
			return nil, err
		}
		e.Amount = pgNumericToDecimal(amount)
		e.Date = date.Time
		e.CreatedAt = createdAt.Time
		records = append(records, &e)
	}
	return records, rows.Err()
}

// Add inserts the record; the store assigns both id and created_at. The
// record passed in is not updated and no snapshot is applied locally.
func (r *ExpenseRepository) Add(ctx context.Context, expense *domain.Expense) error {
	amount, err := decimalToPgNumeric(expense.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	var date pgtype.Date
	date.Time = expense.Date
	date.Valid = true

	_, err = r.pool.Exec(ctx,
		`INSERT INTO expenses (amount, description, date) VALUES ($1, $2, $3)`,
		amount, expense.Description, date)
	if err != nil {
		return err
	}

	r.notify(ctx)
	return nil
}

// Remove deletes one record by ID.
func (r *ExpenseRepository) Remove(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	r.notify(ctx)
	return nil
}

// notify pushes a change signal. Failure to notify is logged, not returned:
// the write itself succeeded and other listeners still see it on their next
// reload.
func (r *ExpenseRepository) notify(ctx context.Context) {
	if _, err := r.pool.Exec(ctx, `SELECT pg_notify($1, '')`, changeChannel); err != nil {
		log.Warn().Err(err).Msg("Failed to notify expense change")
	}
}

// Watch holds a dedicated connection listening for change pushes. It loads
// and applies the initial snapshot, then reloads and re-applies on every
// notification until ctx is cancelled. It should be run in a goroutine.
func (r *ExpenseRepository) Watch(ctx context.Context) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+changeChannel); err != nil {
		return fmt.Errorf("listen %s: %w", changeChannel, err)
	}

	if err := r.reload(ctx); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}
	log.Info().Msg("Expense watcher started")

	for {
		if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("Expense watcher stopped")
				return nil
			}
			return fmt.Errorf("wait for notification: %w", err)
		}

		if err := r.reload(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// Keep listening; the next push retries the reload.
			log.Warn().Err(err).Msg("Failed to reload expenses after change push")
		}
	}
}

func (r *ExpenseRepository) reload(ctx context.Context) error {
	records, err := r.List(ctx)
	if err != nil {
		return err
	}
	r.store.Apply(records)
	return nil
}

func decimalToPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var num pgtype.Numeric
	if err := num.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return num, nil
}

func pgNumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

var _ domain.ExpenseRepository = (*ExpenseRepository)(nil)
