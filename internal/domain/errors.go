package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	ErrInvalidAmount   = errors.New("amount must be a positive number")
	ErrBudgetExceeded  = errors.New("amount exceeds remaining budget")
	ErrExpenseNotFound = errors.New("expense not found")
	ErrNotLoaded       = errors.New("ledger not loaded yet")
)

// StoreError wraps a failure from the persistence backend. The operation that
// triggered it ("add", "remove", "list", "reset") is kept for the user notice.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err as a StoreError for the given operation.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// ResetError reports a partial bulk reset: some deletions succeeded and the
// listed IDs did not. The store is left with exactly the failed records.
type ResetError struct {
	FailedIDs []string
}

func (e *ResetError) Error() string {
	return fmt.Sprintf("reset incomplete: %d expense(s) not deleted: %s",
		len(e.FailedIDs), strings.Join(e.FailedIDs, ", "))
}
