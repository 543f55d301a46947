package payment

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Repository defines payment transaction persistence operations
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByReference(ctx context.Context, reference string) (*Transaction, error)

	// Settle moves a PENDING transaction to a terminal status in one conditional update.
	// It returns false when the transaction was no longer PENDING.
	Settle(ctx context.Context, reference string, settlement Settlement) (bool, error)

	HasCompletedPayment(ctx context.Context, userID, courseID int64) (bool, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrTransactionNotFound indicates no transaction exists for the reference
type ErrTransactionNotFound struct {
	Reference string
}

func (e ErrTransactionNotFound) Error() string {
	return "payment transaction not found: " + e.Reference
}

// Is matches any ErrTransactionNotFound when the target carries no reference.
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	return t.Reference == "" || t.Reference == e.Reference
}

// ErrDuplicateReference indicates the reference is already taken
type ErrDuplicateReference struct {
	Reference string
}

func (e ErrDuplicateReference) Error() string {
	return "payment transaction already exists for reference: " + e.Reference
}

func (e ErrDuplicateReference) Is(target error) bool {
	_, ok := target.(ErrDuplicateReference)
	return ok
}

// ValidationError is caller-fixable bad input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}
