package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lms-payment-gateway/internal/domain/callback"
	"github.com/lms-payment-gateway/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTransactionService_GetByReference(t *testing.T) {
	ctx := context.Background()
	paymentRepo := new(MockPaymentRepository)
	svc := NewTransactionService(newTestLogger(), paymentRepo, new(MockCallbackRepository))

	paymentRepo.On("GetByReference", ctx, "ref42").Return(pendingTransaction(), nil).Once()
	paymentRepo.On("GetByReference", ctx, "missing").Return(nil, payment.ErrTransactionNotFound{Reference: "missing"}).Once()

	txn, err := svc.GetByReference(ctx, "ref42")
	require.NoError(t, err)
	assert.Equal(t, "ref42", txn.Reference)

	_, err = svc.GetByReference(ctx, "missing")
	assert.ErrorIs(t, err, payment.ErrTransactionNotFound{})
}

func TestTransactionService_HasCompletedPayment(t *testing.T) {
	ctx := context.Background()
	paymentRepo := new(MockPaymentRepository)
	paymentRepo.On("HasCompletedPayment", ctx, int64(7), int64(42)).Return(true, nil).Once()

	completed, err := NewTransactionService(newTestLogger(), paymentRepo, nil).HasCompletedPayment(ctx, 7, 42)
	require.NoError(t, err)
	assert.True(t, completed)
}

func TestTransactionService_GetCallbacks(t *testing.T) {
	ctx := context.Background()

	t.Run("page and total", func(t *testing.T) {
		callbackRepo := new(MockCallbackRepository)
		records := []*callback.Record{
			{Reference: "ref42", Channel: callback.ChannelIPN},
			{Reference: "ref42", Channel: callback.ChannelReturn},
		}
		callbackRepo.On("GetByReference", ctx, "ref42", 2, 0).Return(records, nil).Once()
		callbackRepo.On("CountByReference", ctx, "ref42").Return(int64(5), nil).Once()

		got, total, err := NewTransactionService(newTestLogger(), nil, callbackRepo).GetCallbacks(ctx, "ref42", 2, 0)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, int64(5), total)
	})

	t.Run("query error", func(t *testing.T) {
		callbackRepo := new(MockCallbackRepository)
		callbackRepo.On("GetByReference", ctx, "ref42", 10, 0).Return(nil, errors.New("mongo down")).Once()

		_, _, err := NewTransactionService(newTestLogger(), nil, callbackRepo).GetCallbacks(ctx, "ref42", 10, 0)
		assert.Error(t, err)
		callbackRepo.AssertNotCalled(t, "CountByReference", mock.Anything, mock.Anything)
	})
}
