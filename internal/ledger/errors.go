package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrUnknownCategory       = errors.New("unknown ticket category")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	// ErrLedgerCorruption means a prior decrement was lost or applied twice.
	// It is reported to operators and never repaired automatically.
	ErrLedgerCorruption    = errors.New("ledger corruption")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

// LineItemError identifies the line item that failed a ledger operation.
type LineItemError struct {
	Index      int
	CategoryID string
	Requested  int
	Available  int
	Err        error
}

func (e *LineItemError) Error() string {
	switch {
	case errors.Is(e.Err, ErrInsufficientInventory):
		return fmt.Sprintf("%v: category %s requested %d, available %d", e.Err, e.CategoryID, e.Requested, e.Available)
	case errors.Is(e.Err, ErrLedgerCorruption):
		return fmt.Sprintf("%v: category %s would exceed its total by %d", e.Err, e.CategoryID, e.Requested-e.Available)
	default:
		return fmt.Sprintf("%v: line item %d (category %q, quantity %d)", e.Err, e.Index, e.CategoryID, e.Requested)
	}
}

func (e *LineItemError) Unwrap() error { return e.Err }
