package handler

import (
	"context"
	"log/slog"
	"os"

	"github.com/lms-payment-gateway/internal/domain/callback"
	"github.com/lms-payment-gateway/internal/domain/payment"
	"github.com/lms-payment-gateway/internal/payment_gateway/service"
	"github.com/lms-payment-gateway/internal/platform/vnpay"
	"github.com/stretchr/testify/mock"
)

// PaginatedResponse is a generic version of Response for testing paginated data
type PaginatedResponse[T any] struct {
	Data          []T        `json:"data"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Meta          *MetaInfo  `json:"meta,omitempty"`
}

// TypedResponse is a generic version of Response for decoding data
type TypedResponse[T any] struct {
	Data          T          `json:"data"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req *service.CreateOrderRequest) (*service.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Order), args.Error(1)
}

type MockCallbackService struct {
	mock.Mock
}

func (m *MockCallbackService) HandleIPN(ctx context.Context, in *service.CallbackInput) *service.CallbackResult {
	return m.Called(ctx, in).Get(0).(*service.CallbackResult)
}

func (m *MockCallbackService) HandleReturn(ctx context.Context, in *service.CallbackInput) *service.CallbackResult {
	return m.Called(ctx, in).Get(0).(*service.CallbackResult)
}

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) GetByReference(ctx context.Context, reference string) (*payment.Transaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Transaction), args.Error(1)
}

func (m *MockTransactionService) HasCompletedPayment(ctx context.Context, userID, courseID int64) (bool, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionService) GetCallbacks(ctx context.Context, reference string, limit, offset int) ([]*callback.Record, int64, error) {
	args := m.Called(ctx, reference, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*callback.Record), args.Get(1).(int64), args.Error(2)
}

type staticMerchant vnpay.MerchantConfig

func (m staticMerchant) Merchant() vnpay.MerchantConfig {
	return vnpay.MerchantConfig(m)
}
