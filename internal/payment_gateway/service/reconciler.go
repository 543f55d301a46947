package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lms-payment-gateway/internal/config"
	"github.com/lms-payment-gateway/internal/domain/payment"
	"github.com/lms-payment-gateway/internal/platform/persistence"
)

// ReconcilerImpl is the only writer of payment_transactions.status.
type ReconcilerImpl struct {
	db          persistence.TxExecutor
	paymentRepo payment.Repository
	grants      GrantQueuer
	logger      *slog.Logger
	maxAttempts int
	backoff     time.Duration
}

func NewReconciler(
	cfg *config.ReconcilerConfig,
	db persistence.TxExecutor,
	paymentRepo payment.Repository,
	grants GrantQueuer,
	logger *slog.Logger,
) *ReconcilerImpl {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &ReconcilerImpl{
		db:          db,
		paymentRepo: paymentRepo,
		grants:      grants,
		logger:      logger,
		maxAttempts: maxAttempts,
		backoff:     cfg.RetryBackoff,
	}
}

// Reconcile applies the callback to its transaction. Store failures are retried
// up to maxAttempts with linear backoff before giving up with OutcomeInternalError.
func (r *ReconcilerImpl) Reconcile(ctx context.Context, req *ReconcileRequest) (payment.Result, error) {
	logger := r.logger.With("reference", req.Reference)
	if req.CorrelationID != "" {
		logger = logger.With("correlation_id", req.CorrelationID)
	}

	if !req.Verified {
		return payment.Result{Outcome: payment.OutcomeInvalidSignature}, nil
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		result, err := r.reconcileOnce(ctx, req, logger)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt >= r.maxAttempts {
			break
		}
		logger.Warn("Reconciliation attempt failed, retrying", "attempt", attempt, "error", err)

		if err := sleepContext(ctx, r.backoff*time.Duration(attempt)); err != nil {
			lastErr = errors.Join(lastErr, err)
			break
		}
	}

	logger.Error("Reconciliation failed", "max_attempts", r.maxAttempts, "error", lastErr)
	return payment.Result{Outcome: payment.OutcomeInternalError}, fmt.Errorf("failed to reconcile %s: %w", req.Reference, lastErr)
}

func (r *ReconcilerImpl) reconcileOnce(ctx context.Context, req *ReconcileRequest, logger *slog.Logger) (payment.Result, error) {
	txn, err := r.paymentRepo.GetByReference(ctx, req.Reference)
	if err != nil {
		if errors.Is(err, payment.ErrTransactionNotFound{}) {
			logger.Warn("Callback for unknown reference")
			return payment.Result{Outcome: payment.OutcomeUnknownOrder}, nil
		}
		return payment.Result{}, err
	}

	if txn.Status != payment.StatusPending {
		logger.Info("Transaction already settled", "status", string(txn.Status))
		return payment.Result{Outcome: payment.OutcomeAlreadyProcessed, Status: txn.Status}, nil
	}

	if req.Amount != txn.Amount {
		logger.Warn("Callback amount does not match order",
			"expected_amount", txn.Amount,
			"asserted_amount", req.Amount,
		)
		return payment.Result{Outcome: payment.OutcomeAmountMismatch, Status: txn.Status}, nil
	}

	settlement := payment.Settlement{
		Status:               payment.StatusFailed,
		GatewayTransactionID: req.GatewayTransactionID,
		BankCode:             req.BankCode,
		ResponseCode:         req.ResponseCode,
		PaidAt:               req.PaidAt,
	}
	if req.Succeeded {
		settlement.Status = payment.StatusSuccess
	}

	var applied bool
	err = r.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		ok, err := r.paymentRepo.WithTx(tx).Settle(ctx, req.Reference, settlement)
		if err != nil {
			return err
		}
		applied = ok
		if !ok || settlement.Status != payment.StatusSuccess {
			return nil
		}

		paidAt := time.Now()
		if req.PaidAt != nil {
			paidAt = *req.PaidAt
		}
		return r.grants.QueueGrant(ctx, tx, txn, paidAt, req.CorrelationID)
	})
	if err != nil {
		return payment.Result{}, err
	}

	if !applied {
		// A concurrent callback settled the transaction between the read and the update.
		logger.Info("Transaction settled concurrently")
		return payment.Result{Outcome: payment.OutcomeAlreadyProcessed}, nil
	}

	logger.Info("Transaction settled",
		"status", string(settlement.Status),
		"response_code", req.ResponseCode,
		"gateway_transaction_id", req.GatewayTransactionID,
	)
	return payment.Result{Outcome: payment.OutcomeConfirmed, Status: settlement.Status}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
