package handler

import (
	"time"

	"github.com/lms-payment-gateway/internal/domain/callback"
	"github.com/lms-payment-gateway/internal/domain/payment"
	"github.com/lms-payment-gateway/internal/platform/vnpay"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest represents a request to start a VNPay payment.
// Amount is in VND; the gateway receives it multiplied by 100.
type CreatePaymentRequest struct {
	UserID    int64           `json:"user_id" binding:"required,gt=0"`
	CourseID  int64           `json:"course_id" binding:"required,gt=0"`
	Amount    decimal.Decimal `json:"amount"`
	OrderInfo string          `json:"order_info" binding:"omitempty,max=255"`
	ReturnURL string          `json:"return_url" binding:"omitempty,url"`
	Reference string          `json:"reference" binding:"omitempty,max=100,alphanum"`
}

// CreatePaymentResponse carries the redirect target for the buyer's browser
type CreatePaymentResponse struct {
	Reference  string          `json:"reference"`
	PaymentURL string          `json:"payment_url"`
	Amount     decimal.Decimal `json:"amount"`
	Reused     bool            `json:"reused,omitempty"`
}

// TransactionResponse represents a payment transaction in API responses
type TransactionResponse struct {
	Reference            string          `json:"reference"`
	UserID               int64           `json:"user_id"`
	CourseID             int64           `json:"course_id"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	Method               string          `json:"method"`
	Status               string          `json:"status"`
	OrderInfo            string          `json:"order_info"`
	GatewayTransactionID string          `json:"gateway_transaction_id,omitempty"`
	BankCode             string          `json:"bank_code,omitempty"`
	ResponseCode         string          `json:"response_code,omitempty"`
	CreatedAt            string          `json:"created_at"`
	PaidAt               string          `json:"paid_at,omitempty"`
}

// PaymentStatusResponse answers whether a user has paid for a course
type PaymentStatusResponse struct {
	UserID    int64 `json:"user_id"`
	CourseID  int64 `json:"course_id"`
	Completed bool  `json:"completed"`
}

// CallbackRecordResponse represents one audited callback
type CallbackRecordResponse struct {
	Channel        string            `json:"channel"`
	Outcome        string            `json:"outcome"`
	ResponseCode   string            `json:"response_code,omitempty"`
	SignatureValid bool              `json:"signature_valid"`
	Params         map[string]string `json:"params"`
	ClientIP       string            `json:"client_ip,omitempty"`
	Error          string            `json:"error,omitempty"`
	ReceivedAt     string            `json:"received_at"`
}

// IPNResponse is the body VNPay expects from the IPN endpoint
type IPNResponse struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}

func (p PaginationParams) offset() int {
	return (p.Page - 1) * p.PerPage
}

func mapTransactionToResponse(txn *payment.Transaction) TransactionResponse {
	response := TransactionResponse{
		Reference:            txn.Reference,
		UserID:               txn.UserID,
		CourseID:             txn.CourseID,
		Amount:               vnpay.FromMinorUnits(txn.Amount),
		Currency:             txn.Currency,
		Method:               string(txn.Method),
		Status:               string(txn.Status),
		OrderInfo:            txn.OrderInfo,
		GatewayTransactionID: txn.GatewayTransactionID,
		BankCode:             txn.BankCode,
		ResponseCode:         txn.ResponseCode,
		CreatedAt:            txn.CreatedAt.Format(time.RFC3339),
	}

	if txn.PaidAt != nil {
		response.PaidAt = txn.PaidAt.Format(time.RFC3339)
	}

	return response
}

func mapCallbackRecordToResponse(record *callback.Record) CallbackRecordResponse {
	return CallbackRecordResponse{
		Channel:        string(record.Channel),
		Outcome:        record.Outcome,
		ResponseCode:   record.ResponseCode,
		SignatureValid: record.SignatureValid,
		Params:         record.Params,
		ClientIP:       record.ClientIP,
		Error:          record.Error,
		ReceivedAt:     record.ReceivedAt.Format(time.RFC3339),
	}
}
