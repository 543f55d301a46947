// Package service holds the enrollment side of a settled payment: turning a grant
// request from Kafka into a course enrollment.
package service

import (
	"context"

	"github.com/lms-payment-gateway/internal/domain/shared"
)

// GrantService applies an enrollment grant. Implementations must be idempotent
// per reference because the consumer redelivers until it commits.
type GrantService interface {
	ProcessGrant(ctx context.Context, request *shared.EnrollmentGrantRequest) error
}
