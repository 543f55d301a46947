package service

import (
	"context"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lms-payment-gateway/internal/domain/callback"
	"github.com/lms-payment-gateway/internal/domain/payment"
)

// OrderService is the Order Builder: it persists a PENDING transaction and returns
// the signed VNPay redirect URL for it.
type OrderService interface {
	// CreateOrder returns *vnpay.ConfigurationError when the merchant is not configured
	// and *payment.ValidationError for bad caller input.
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error)
}

// Reconciler converts a callback into at most one durable status transition.
type Reconciler interface {
	// Reconcile never returns an error for expected rejections; those are Outcomes.
	// A non-nil error always comes with OutcomeInternalError.
	Reconcile(ctx context.Context, req *ReconcileRequest) (payment.Result, error)
}

// CallbackService runs the verify, parse, reconcile pipeline for both ingress paths.
type CallbackService interface {
	HandleIPN(ctx context.Context, in *CallbackInput) *CallbackResult
	HandleReturn(ctx context.Context, in *CallbackInput) *CallbackResult
}

// TransactionService answers read-only questions about payments.
type TransactionService interface {
	GetByReference(ctx context.Context, reference string) (*payment.Transaction, error)
	HasCompletedPayment(ctx context.Context, userID, courseID int64) (bool, error)
	GetCallbacks(ctx context.Context, reference string, limit, offset int) ([]*callback.Record, int64, error)
}

// AuditRecorder stores callback records off the request path.
type AuditRecorder interface {
	Record(ctx context.Context, record *callback.Record)
}

// GrantQueuer queues the enrollment grant inside the settlement transaction.
type GrantQueuer interface {
	QueueGrant(ctx context.Context, tx pgx.Tx, txn *payment.Transaction, paidAt time.Time, correlationID string) error
}

// CreateOrderRequest is the input of the Order Builder. Amount is in gateway minor units.
type CreateOrderRequest struct {
	UserID        int64
	CourseID      int64
	Amount        int64
	OrderInfo     string
	ReturnURL     string
	Reference     string
	ClientIP      string
	CorrelationID string
}

// Order is the result of CreateOrder.
type Order struct {
	Transaction *payment.Transaction
	PaymentURL  string
	Reused      bool
}

// ReconcileRequest carries what a callback asserts about one reference.
type ReconcileRequest struct {
	Reference            string
	Verified             bool
	Amount               int64
	Succeeded            bool
	ResponseCode         string
	GatewayTransactionID string
	BankCode             string
	PaidAt               *time.Time
	CorrelationID        string
}

// CallbackInput is one inbound callback as received over HTTP.
type CallbackInput struct {
	Query         url.Values
	ClientIP      string
	CorrelationID string
}

// CallbackResult is what the handlers render back to VNPay or the browser.
type CallbackResult struct {
	Outcome      payment.Outcome
	Status       payment.Status
	Reference    string
	Amount       int64
	ResponseCode string
	Succeeded    bool
}
