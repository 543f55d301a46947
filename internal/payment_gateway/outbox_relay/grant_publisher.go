package outbox_relay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lms-payment-gateway/internal/domain/outbox"
	"github.com/lms-payment-gateway/internal/domain/shared"
	"github.com/lms-payment-gateway/internal/platform/messaging/producers"
)

// GrantPublisher publishes outbox messages to the enrollment topic
type GrantPublisher interface {
	PublishGrant(ctx context.Context, message *outbox.Message) error
}

// GrantPublisherImpl implements GrantPublisher on top of a Kafka producer
type GrantPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

func NewGrantPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) GrantPublisher {
	return &GrantPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishGrant sends the stored payload keyed by payment reference and marks the
// message PROCESSED. Messages are keyed by reference so redeliveries of one grant
// land on one partition; the consumer deduplicates on (user, course).
func (p *GrantPublisherImpl) PublishGrant(ctx context.Context, message *outbox.Message) error {
	grant, err := message.EnrollmentGrant()
	if err != nil {
		p.logger.Error("Failed to decode enrollment grant from outbox payload",
			"outbox_id", message.ID, "reference", message.Reference, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to park undecodable outbox message", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("decode payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if grant.CorrelationID != "" {
		logger = p.logger.With("correlation_id", grant.CorrelationID)
	}

	if err := p.producer.Publish(ctx, message.Reference, message.Payload); err != nil {
		logger.Error("Failed to publish enrollment grant", "outbox_id", message.ID, "reference", message.Reference, "error", err)
		return fmt.Errorf("failed to publish enrollment grant %s: %w", message.Reference, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "reference", message.Reference, "error", err,
		)
		return fmt.Errorf("grant %s published, but failed to mark outbox %d as PROCESSED: %w", message.Reference, message.ID, err)
	}

	logger.Info("Enrollment grant published",
		"outbox_id", message.ID,
		"reference", message.Reference,
		"user_id", grant.UserID,
		"course_id", grant.CourseID,
	)
	return nil
}
