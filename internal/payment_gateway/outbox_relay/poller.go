// Package outbox_relay moves queued enrollment grants from the outbox table to Kafka.
package outbox_relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lms-payment-gateway/internal/config"
	"github.com/lms-payment-gateway/internal/domain/outbox"
	"github.com/lms-payment-gateway/internal/domain/shared"
)

// Poller relays pending outbox messages
type Poller struct {
	outboxRepo       outbox.Repository
	grantPublisher   GrantPublisher
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	grantPublisher GrantPublisher,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		grantPublisher:   grantPublisher,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start polls until ctx is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting outbox relay",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox relay stopping")
			return
		case <-ticker.C:
			if err := p.relayPending(ctx); err != nil {
				p.logger.Error("Error relaying pending outbox messages", "error", err)
			}
		}
	}
}

func (p *Poller) relayPending(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}

	if len(messages) == 0 {
		return nil
	}

	p.logger.Debug("Fetched pending outbox messages", "count", len(messages))

	for _, msg := range messages {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := p.grantPublisher.PublishGrant(ctx, msg); err != nil {
			if errInc := p.outboxRepo.IncrementAttempts(ctx, msg.ID); errInc != nil {
				p.logger.Error("Failed to increment attempts for outbox message", "outbox_id", msg.ID, "error", errInc)
				continue
			}

			if msg.ExhaustedAfter(p.maxRetryAttempts) {
				// The payment is SUCCESS but the student has no enrollment yet.
				p.logger.Error("Enrollment grant could not be published, manual intervention required",
					"outbox_id", msg.ID,
					"reference", msg.Reference,
					"attempts_made", msg.Attempts+1,
				)
				if errUpdate := p.outboxRepo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); errUpdate != nil {
					p.logger.Error("Failed to mark outbox message FAILED_TO_PUBLISH", "outbox_id", msg.ID, "error", errUpdate)
				}
			}
		}
	}
	return nil
}
