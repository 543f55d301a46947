package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the reconciliation state of a payment transaction.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Method identifies the gateway a transaction was created for.
type Method string

const (
	MethodVNPay   Method = "VNPAY"
	MethodZaloPay Method = "ZALOPAY"
)

// Transaction is one payment attempt for one course by one user.
// Reference, Amount, Currency and Method are fixed at creation.
type Transaction struct {
	ID                   uuid.UUID  `json:"id"`
	Reference            string     `json:"reference"`
	UserID               int64      `json:"user_id"`
	CourseID             int64      `json:"course_id"`
	Amount               int64      `json:"amount"` // Gateway minor units (VND x 100)
	Currency             string     `json:"currency"`
	Method               Method     `json:"method"`
	Status               Status     `json:"status"`
	OrderInfo            string     `json:"order_info"`
	GatewayTransactionID string     `json:"gateway_transaction_id,omitempty"`
	BankCode             string     `json:"bank_code,omitempty"`
	ResponseCode         string     `json:"response_code,omitempty"`
	PaidAt               *time.Time `json:"paid_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// NewTransaction creates a PENDING transaction. An empty reference gets a fresh
// unguessable one; a non-empty reference is kept as the caller's pre-bound order id.
func NewTransaction(reference string, userID, courseID, amount int64, currency string, method Method, orderInfo string) (*Transaction, error) {
	if amount <= 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must be greater than 0"}
	}
	if userID <= 0 {
		return nil, &ValidationError{Field: "user_id", Reason: "must be greater than 0"}
	}
	if courseID <= 0 {
		return nil, &ValidationError{Field: "course_id", Reason: "must be greater than 0"}
	}
	if len(currency) != 3 {
		return nil, &ValidationError{Field: "currency", Reason: "must be a 3-letter code"}
	}
	if method != MethodVNPay && method != MethodZaloPay {
		return nil, &ValidationError{Field: "method", Reason: "unsupported payment method"}
	}
	if reference == "" {
		reference = NewReference()
	}

	now := time.Now().UTC()
	return &Transaction{
		ID:        uuid.New(),
		Reference: reference,
		UserID:    userID,
		CourseID:  courseID,
		Amount:    amount,
		Currency:  currency,
		Method:    method,
		Status:    StatusPending,
		OrderInfo: orderInfo,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewReference returns a 32 character hex reference backed by a random UUID.
func NewReference() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Settlement is what a verified callback records on the single transition out of PENDING.
type Settlement struct {
	Status               Status
	GatewayTransactionID string
	BankCode             string
	ResponseCode         string
	PaidAt               *time.Time
}
