// Package consumer adapts Kafka messages on the enrollment topic to the grant service.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lms-payment-gateway/internal/domain/shared"
	"github.com/lms-payment-gateway/internal/enrollment_worker/service"
	"github.com/lms-payment-gateway/internal/platform/messaging/producers"
)

// GrantEventHandler handles enrollment grant messages from Kafka
type GrantEventHandler struct {
	grantService service.GrantService
	producer     producers.DeadLetterPublisher
	logger       *slog.Logger
}

// NewGrantEventHandler creates a new handler
func NewGrantEventHandler(
	logger *slog.Logger,
	grantService service.GrantService,
	producer producers.DeadLetterPublisher,
) *GrantEventHandler {
	return &GrantEventHandler{
		grantService: grantService,
		producer:     producer,
		logger:       logger,
	}
}

// HandleMessage returns nil when the offset may be committed. A message that can
// never succeed is parked on the DLQ; processing errors are returned so the
// consumer retries the message.
func (h *GrantEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.EnrollmentGrantRequest
	if err := json.Unmarshal(value, &request); err != nil {
		return h.deadLetter(ctx, key, value, "Failed to unmarshal enrollment grant", err)
	}
	if err := request.Validate(); err != nil {
		return h.deadLetter(ctx, key, value, "Invalid enrollment grant", err)
	}

	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Received enrollment grant",
		"reference", request.Reference,
		"user_id", request.UserID,
		"course_id", request.CourseID,
	)

	if err := h.grantService.ProcessGrant(ctx, &request); err != nil {
		logger.Error("Failed to process enrollment grant",
			"reference", request.Reference,
			"error", err,
		)
		return fmt.Errorf("processing grant %s failed: %w", request.Reference, err)
	}

	return nil
}

func (h *GrantEventHandler) deadLetter(ctx context.Context, key, value []byte, reason string, cause error) error {
	h.logger.Error(reason, "error", cause, "message_key", string(key))

	if h.producer != nil {
		dlqReason := fmt.Sprintf("%s: %s", reason, cause.Error())
		dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason)
		if dlqErr == nil {
			return nil
		}
		// Redelivery cannot fix a poison message, and the consumer retries in place.
		if errors.Is(dlqErr, producers.ErrDLQDisabled) {
			h.logger.Warn("Dropping poison message, no DLQ configured", "message_key", string(key))
			return nil
		}
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", dlqErr,
			"original_error", cause,
			"message_key", string(key),
		)
	}
	return fmt.Errorf("%s: %w", reason, cause)
}
