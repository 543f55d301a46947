// Package postgres provides PostgreSQL implementations of the domain repositories.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lms-payment-gateway/internal/domain/payment"
	"github.com/lms-payment-gateway/internal/platform/persistence"
)

const uniqueViolation = "23505"

// TransactionRepository implements the payment.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier // *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL payment transaction repository.
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) payment.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx.
func (r *TransactionRepository) WithTx(tx pgx.Tx) payment.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts a PENDING transaction. A reference collision yields ErrDuplicateReference.
func (r *TransactionRepository) Create(ctx context.Context, t *payment.Transaction) error {
	query := `
		INSERT INTO payment_transactions
			(id, reference, user_id, course_id, amount, currency, method, status, order_info, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.querier.Exec(ctx, query,
		t.ID,
		t.Reference,
		t.UserID,
		t.CourseID,
		t.Amount,
		t.Currency,
		t.Method,
		t.Status,
		t.OrderInfo,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return payment.ErrDuplicateReference{Reference: t.Reference}
		}
		r.logger.Error("Failed to create payment transaction", "reference", t.Reference, "error", err)
		return fmt.Errorf("failed to create payment transaction: %w", err)
	}

	return nil
}

// GetByReference retrieves a transaction by its gateway reference
func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) (*payment.Transaction, error) {
	query := `
		SELECT id, reference, user_id, course_id, amount, currency, method, status, order_info,
			gateway_transaction_id, bank_code, response_code, paid_at, created_at, updated_at
		FROM payment_transactions
		WHERE reference = $1
	`

	var (
		t                                    payment.Transaction
		gatewayTxnID, bankCode, responseCode *string
	)
	err := r.querier.QueryRow(ctx, query, reference).Scan(
		&t.ID,
		&t.Reference,
		&t.UserID,
		&t.CourseID,
		&t.Amount,
		&t.Currency,
		&t.Method,
		&t.Status,
		&t.OrderInfo,
		&gatewayTxnID,
		&bankCode,
		&responseCode,
		&t.PaidAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payment.ErrTransactionNotFound{Reference: reference}
		}
		r.logger.Error("Failed to get payment transaction", "reference", reference, "error", err)
		return nil, fmt.Errorf("failed to get payment transaction: %w", err)
	}

	t.GatewayTransactionID = deref(gatewayTxnID)
	t.BankCode = deref(bankCode)
	t.ResponseCode = deref(responseCode)

	return &t, nil
}

// Settle applies the single transition out of PENDING. The status predicate in the
// WHERE clause makes the check and the write one statement, so concurrent callbacks
// for the same reference cannot both succeed.
func (r *TransactionRepository) Settle(ctx context.Context, reference string, s payment.Settlement) (bool, error) {
	if !s.Status.IsTerminal() {
		return false, fmt.Errorf("failed to settle payment transaction: %s is not a terminal status", s.Status)
	}

	query := `
		UPDATE payment_transactions
		SET status = $1, gateway_transaction_id = $2, bank_code = $3, response_code = $4,
			paid_at = $5, updated_at = $6
		WHERE reference = $7 AND status = $8
	`

	result, err := r.querier.Exec(ctx, query,
		s.Status,
		nullable(s.GatewayTransactionID),
		nullable(s.BankCode),
		nullable(s.ResponseCode),
		s.PaidAt,
		time.Now().UTC(),
		reference,
		payment.StatusPending,
	)
	if err != nil {
		r.logger.Error("Failed to settle payment transaction",
			"reference", reference,
			"status", string(s.Status),
			"error", err,
		)
		return false, fmt.Errorf("failed to settle payment transaction: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

// HasCompletedPayment reports whether the user has a SUCCESS payment for the course.
func (r *TransactionRepository) HasCompletedPayment(ctx context.Context, userID, courseID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM payment_transactions
			WHERE user_id = $1 AND course_id = $2 AND status = $3
		)
	`

	var exists bool
	if err := r.querier.QueryRow(ctx, query, userID, courseID, payment.StatusSuccess).Scan(&exists); err != nil {
		r.logger.Error("Failed to check completed payment",
			"user_id", userID,
			"course_id", courseID,
			"error", err,
		)
		return false, fmt.Errorf("failed to check completed payment: %w", err)
	}

	return exists, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
