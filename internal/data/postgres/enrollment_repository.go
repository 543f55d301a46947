package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/lms-payment-gateway/internal/domain/enrollment"
	"github.com/lms-payment-gateway/internal/platform/persistence"
)

// EnrollmentRepository implements the enrollment.Repository interface for PostgreSQL
type EnrollmentRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewEnrollmentRepository creates a new PostgreSQL enrollment repository
func NewEnrollmentRepository(logger *slog.Logger, db *persistence.PostgresDB) enrollment.Repository {
	return &EnrollmentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *EnrollmentRepository) WithTx(tx pgx.Tx) enrollment.Repository {
	return &EnrollmentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Grant inserts the enrollment unless the user already has the course.
// Redelivered grant messages therefore land as no-ops.
func (r *EnrollmentRepository) Grant(ctx context.Context, e *enrollment.Enrollment) (bool, error) {
	query := `
		INSERT INTO course_enrollments (user_id, course_id, payment_reference, enrolled_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, course_id) DO NOTHING
	`

	result, err := r.querier.Exec(ctx, query, e.UserID, e.CourseID, e.PaymentReference, e.EnrolledAt)
	if err != nil {
		r.logger.Error("Failed to grant enrollment",
			"user_id", e.UserID,
			"course_id", e.CourseID,
			"reference", e.PaymentReference,
			"error", err,
		)
		return false, fmt.Errorf("failed to grant enrollment: %w", err)
	}

	return result.RowsAffected() == 1, nil
}
