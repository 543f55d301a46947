package callback

import (
	"context"
)

// Repository stores the callback audit trail
type Repository interface {
	Create(ctx context.Context, record *Record) error
	GetByReference(ctx context.Context, reference string, limit, offset int) ([]*Record, error)
	CountByReference(ctx context.Context, reference string) (int64, error)
}
