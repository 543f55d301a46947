package enrollment

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// Enrollment grants a user access to a course because of a settled payment.
type Enrollment struct {
	UserID           int64     `json:"user_id"`
	CourseID         int64     `json:"course_id"`
	PaymentReference string    `json:"payment_reference"`
	EnrolledAt       time.Time `json:"enrolled_at"`
}

// Repository persists enrollments. Grant is idempotent per (user, course):
// it reports created=false when the enrollment already existed.
type Repository interface {
	Grant(ctx context.Context, e *Enrollment) (created bool, err error)
	WithTx(tx pgx.Tx) Repository
}
