package outbox

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/lms-payment-gateway/internal/domain/shared"
)

// Repository manages transactional outbox message persistence
type Repository interface {
	Create(ctx context.Context, message *Message) error
	GetPending(ctx context.Context, limit int) ([]*Message, error)
	GetByReference(ctx context.Context, reference string) (*Message, error)
	UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error
	IncrementAttempts(ctx context.Context, id int64) error
	WithTx(tx pgx.Tx) Repository
}

// ErrMessageNotFound indicates missing outbox message
type ErrMessageNotFound struct {
	ID        int64
	Reference string
}

func (e ErrMessageNotFound) Error() string {
	if e.Reference != "" {
		return "outbox message not found for reference: " + e.Reference
	}
	return "outbox message not found: " + strconv.FormatInt(e.ID, 10)
}

// ErrDuplicateMessage indicates a grant was already queued for the reference
type ErrDuplicateMessage struct {
	Reference string
}

func (e ErrDuplicateMessage) Error() string {
	return "duplicate outbox message for reference: " + e.Reference
}

func (e ErrDuplicateMessage) Is(target error) bool {
	_, ok := target.(ErrDuplicateMessage)
	return ok
}
