// Package components holds the pieces the payment services compose inside a database transaction.
package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lms-payment-gateway/internal/domain/outbox"
	"github.com/lms-payment-gateway/internal/domain/payment"
	"github.com/lms-payment-gateway/internal/domain/shared"
)

// GrantOutbox writes enrollment grant requests to the outbox table.
type GrantOutbox struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewGrantOutbox(outboxRepo outbox.Repository, logger *slog.Logger) *GrantOutbox {
	return &GrantOutbox{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// QueueGrant inserts the grant for txn using tx, so it commits or rolls back with the settlement.
func (g *GrantOutbox) QueueGrant(ctx context.Context, tx pgx.Tx, txn *payment.Transaction, paidAt time.Time, correlationID string) error {
	logger := g.logger
	if correlationID != "" {
		logger = g.logger.With("correlation_id", correlationID)
	}

	grant := &shared.EnrollmentGrantRequest{
		Reference:     txn.Reference,
		UserID:        txn.UserID,
		CourseID:      txn.CourseID,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		PaidAt:        paidAt.UTC(),
		CorrelationID: correlationID,
	}

	msg, err := outbox.NewMessage(grant)
	if err != nil {
		return fmt.Errorf("failed to build enrollment grant for %s: %w", txn.Reference, err)
	}

	if err := g.outboxRepo.WithTx(tx).Create(ctx, msg); err != nil {
		logger.Error("Failed to queue enrollment grant", "reference", txn.Reference, "error", err)
		return fmt.Errorf("failed to queue enrollment grant for %s: %w", txn.Reference, err)
	}

	logger.Info("Enrollment grant queued",
		"reference", txn.Reference,
		"outbox_id", msg.ID,
		"user_id", txn.UserID,
		"course_id", txn.CourseID,
	)
	return nil
}
