package shared

import (
	"errors"
	"time"
)

var (
	ErrInvalidGrantUser   = errors.New("enrollment grant requires a user id")
	ErrInvalidGrantCourse = errors.New("enrollment grant requires a course id")
	ErrMissingReference   = errors.New("enrollment grant requires a payment reference")
)

// EnrollmentGrantRequest is the Kafka message asking for a course enrollment
// after its payment settled as SUCCESS.
type EnrollmentGrantRequest struct {
	Reference     string    `json:"reference"`
	UserID        int64     `json:"user_id"`
	CourseID      int64     `json:"course_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	PaidAt        time.Time `json:"paid_at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// Validate checks the fields the enrollment side depends on.
func (r *EnrollmentGrantRequest) Validate() error {
	if r.Reference == "" {
		return ErrMissingReference
	}
	if r.UserID <= 0 {
		return ErrInvalidGrantUser
	}
	if r.CourseID <= 0 {
		return ErrInvalidGrantCourse
	}
	return nil
}
