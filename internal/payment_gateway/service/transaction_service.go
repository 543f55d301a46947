package service

import (
	"context"
	"log/slog"

	"github.com/lms-payment-gateway/internal/domain/callback"
	"github.com/lms-payment-gateway/internal/domain/payment"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	paymentRepo  payment.Repository
	callbackRepo callback.Repository
	logger       *slog.Logger
}

func NewTransactionService(logger *slog.Logger, paymentRepo payment.Repository, callbackRepo callback.Repository) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		paymentRepo:  paymentRepo,
		callbackRepo: callbackRepo,
		logger:       logger,
	}
}

// GetByReference returns payment.ErrTransactionNotFound for unknown references.
func (s *TransactionServiceImpl) GetByReference(ctx context.Context, reference string) (*payment.Transaction, error) {
	return s.paymentRepo.GetByReference(ctx, reference)
}

func (s *TransactionServiceImpl) HasCompletedPayment(ctx context.Context, userID, courseID int64) (bool, error) {
	return s.paymentRepo.HasCompletedPayment(ctx, userID, courseID)
}

// GetCallbacks returns one page of the callback audit trail and the total count.
func (s *TransactionServiceImpl) GetCallbacks(ctx context.Context, reference string, limit, offset int) ([]*callback.Record, int64, error) {
	records, err := s.callbackRepo.GetByReference(ctx, reference, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.callbackRepo.CountByReference(ctx, reference)
	if err != nil {
		return nil, 0, err
	}

	s.logger.Debug("Loaded callback history", "reference", reference, "count", len(records), "total", total)
	return records, total, nil
}
