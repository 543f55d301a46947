package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/lms-payment-gateway/internal/domain/payment"
	"github.com/lms-payment-gateway/internal/platform/vnpay"
)

// PaymentURLBuilder signs outbound payment requests.
type PaymentURLBuilder interface {
	Merchant() vnpay.MerchantConfig
	BuildPaymentURL(p vnpay.PaymentParams) (string, error)
}

// CallbackVerifier checks and types inbound callbacks.
type CallbackVerifier interface {
	VerifyCallback(values url.Values) (*vnpay.Verification, error)
	ParseCallback(v *vnpay.Verification) (*vnpay.Callback, error)
}

var (
	_ PaymentURLBuilder = (*vnpay.Gateway)(nil)
	_ CallbackVerifier  = (*vnpay.Gateway)(nil)
)

type OrderServiceImpl struct {
	gateway     PaymentURLBuilder
	paymentRepo payment.Repository
	logger      *slog.Logger
	now         func() time.Time
}

func NewOrderService(logger *slog.Logger, gateway PaymentURLBuilder, paymentRepo payment.Repository) *OrderServiceImpl {
	return &OrderServiceImpl{
		gateway:     gateway,
		paymentRepo: paymentRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateOrder persists a PENDING transaction and returns its signed redirect URL.
// A caller-supplied reference makes the call idempotent: an existing PENDING order
// for the same user, course and amount is reused instead of duplicated.
func (s *OrderServiceImpl) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	logger := s.logger
	if req.CorrelationID != "" {
		logger = s.logger.With("correlation_id", req.CorrelationID)
	}

	merchant := s.gateway.Merchant()
	if err := merchant.Validate(); err != nil {
		logger.Error("VNPay merchant configuration is invalid", "error", err)
		return nil, err
	}

	if req.Reference != "" {
		existing, err := s.paymentRepo.GetByReference(ctx, req.Reference)
		switch {
		case err == nil:
			return s.reuse(logger, existing, req)
		case !errors.Is(err, payment.ErrTransactionNotFound{}):
			return nil, fmt.Errorf("failed to look up order %s: %w", req.Reference, err)
		}
	}

	orderInfo := req.OrderInfo
	if orderInfo == "" {
		orderInfo = fmt.Sprintf("course-%d", req.CourseID)
	}

	txn, err := payment.NewTransaction(req.Reference, req.UserID, req.CourseID, req.Amount, merchant.Currency, payment.MethodVNPay, orderInfo)
	if err != nil {
		return nil, err
	}

	// A request that cannot be signed must not leave a PENDING row.
	paymentURL, err := s.buildURL(txn, req, txn.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Create(ctx, txn); err != nil {
		if errors.Is(err, payment.ErrDuplicateReference{}) && req.Reference != "" {
			// Lost a race against a concurrent create with the same reference.
			existing, getErr := s.paymentRepo.GetByReference(ctx, req.Reference)
			if getErr != nil {
				return nil, fmt.Errorf("failed to look up order %s: %w", req.Reference, getErr)
			}
			return s.reuse(logger, existing, req)
		}
		return nil, err
	}

	logger.Info("Payment order created",
		"reference", txn.Reference,
		"user_id", txn.UserID,
		"course_id", txn.CourseID,
		"amount", txn.Amount,
	)

	return &Order{Transaction: txn, PaymentURL: paymentURL}, nil
}

func (s *OrderServiceImpl) reuse(logger *slog.Logger, existing *payment.Transaction, req *CreateOrderRequest) (*Order, error) {
	if existing.Status != payment.StatusPending {
		return nil, &payment.ValidationError{Field: "reference", Reason: "order is already " + string(existing.Status)}
	}
	if existing.Amount != req.Amount || existing.UserID != req.UserID || existing.CourseID != req.CourseID {
		return nil, &payment.ValidationError{Field: "reference", Reason: "already bound to a different order"}
	}

	paymentURL, err := s.buildURL(existing, req, s.now())
	if err != nil {
		return nil, err
	}

	logger.Info("Reusing pending payment order", "reference", existing.Reference)
	return &Order{Transaction: existing, PaymentURL: paymentURL, Reused: true}, nil
}

func (s *OrderServiceImpl) buildURL(txn *payment.Transaction, req *CreateOrderRequest, createdAt time.Time) (string, error) {
	paymentURL, err := s.gateway.BuildPaymentURL(vnpay.PaymentParams{
		Amount:    txn.Amount,
		Reference: txn.Reference,
		OrderInfo: txn.OrderInfo,
		ReturnURL: req.ReturnURL,
		ClientIP:  req.ClientIP,
		CreatedAt: createdAt,
	})
	if err != nil {
		var fieldErr *vnpay.FieldError
		if errors.As(err, &fieldErr) {
			return "", &payment.ValidationError{Field: fieldErr.Field, Reason: fieldErr.Reason}
		}
		return "", err
	}
	return paymentURL, nil
}
