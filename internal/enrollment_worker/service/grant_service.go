package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lms-payment-gateway/internal/domain/enrollment"
	"github.com/lms-payment-gateway/internal/domain/shared"
)

// GrantServiceImpl writes enrollments through an enrollment.Repository
type GrantServiceImpl struct {
	enrollmentRepo enrollment.Repository
	logger         *slog.Logger
	now            func() time.Time
}

// NewGrantService creates a new grant service
func NewGrantService(logger *slog.Logger, enrollmentRepo enrollment.Repository) *GrantServiceImpl {
	return &GrantServiceImpl{
		enrollmentRepo: enrollmentRepo,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// ProcessGrant enrolls the user in the course. An existing enrollment is not an error.
func (s *GrantServiceImpl) ProcessGrant(ctx context.Context, request *shared.EnrollmentGrantRequest) error {
	if err := request.Validate(); err != nil {
		return fmt.Errorf("invalid enrollment grant %s: %w", request.Reference, err)
	}

	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	created, err := s.enrollmentRepo.Grant(ctx, &enrollment.Enrollment{
		UserID:           request.UserID,
		CourseID:         request.CourseID,
		PaymentReference: request.Reference,
		EnrolledAt:       s.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to grant enrollment for payment %s: %w", request.Reference, err)
	}

	if created {
		logger.Info("Enrollment granted",
			"reference", request.Reference,
			"user_id", request.UserID,
			"course_id", request.CourseID,
		)
	} else {
		logger.Info("User already enrolled, grant ignored",
			"reference", request.Reference,
			"user_id", request.UserID,
			"course_id", request.CourseID,
		)
	}
	return nil
}
