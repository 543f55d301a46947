package vnpay

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// SuccessCode is the value of vnp_ResponseCode and vnp_TransactionStatus for a paid order.
const SuccessCode = "00"

// Verification is the outcome of checking a callback signature.
type Verification struct {
	Verified  bool
	Params    map[string]string // vnp_* fields without the signature fields
	Canonical string
	Signature string
}

// Callback holds the typed fields of a VNPay return or IPN call.
type Callback struct {
	Reference            string
	Amount               int64
	ResponseCode         string
	TransactionStatus    string
	GatewayTransactionID string
	BankCode             string
	OrderInfo            string
	TmnCode              string
	PayDate              *time.Time
}

// Succeeded reports whether VNPay asserts the payment went through.
// An absent transaction status defers to the response code.
func (c *Callback) Succeeded() bool {
	if c.ResponseCode != SuccessCode {
		return false
	}
	return c.TransactionStatus == "" || c.TransactionStatus == SuccessCode
}

// callbackFields is the raw string form validated before conversion.
type callbackFields struct {
	TxnRef            string `validate:"required,max=100"`
	Amount            string `validate:"required,number,max=18"`
	ResponseCode      string `validate:"required,len=2,number"`
	TransactionStatus string `validate:"omitempty,len=2,number"`
	TransactionNo     string `validate:"omitempty,max=32"`
	BankCode          string `validate:"omitempty,max=20"`
	PayDate           string `validate:"omitempty,len=14,number"`
	TmnCode           string `validate:"omitempty,max=16"`
	OrderInfo         string `validate:"omitempty,max=255"`
}

// ExtractParams keeps the first value of every vnp_ prefixed query parameter.
// Anything else on the URL (tracking params, proxies) is not part of the signed set.
func ExtractParams(values url.Values) map[string]string {
	params := make(map[string]string, len(values))
	for name, vals := range values {
		if !strings.HasPrefix(name, paramPrefix) || len(vals) == 0 {
			continue
		}
		params[name] = vals[0]
	}
	return params
}

// verifyParams strips the signature fields, canonicalizes the rest and checks the HMAC.
func verifyParams(signer *Signer, params map[string]string) (*Verification, error) {
	supplied := params[ParamSecureHash]

	unsigned := make(map[string]string, len(params))
	for name, value := range params {
		if name == ParamSecureHash || name == ParamSecureHashType {
			continue
		}
		unsigned[name] = value
	}

	v := &Verification{Params: unsigned, Signature: supplied}

	canonical, err := Canonicalize(unsigned)
	if err != nil {
		return v, err
	}
	v.Canonical = canonical

	if supplied == "" {
		return v, nil
	}
	v.Verified = signer.Verify(canonical, supplied)

	return v, nil
}

// parseCallback validates the raw fields and converts them to a Callback.
func parseCallback(validate *validator.Validate, params map[string]string, loc *time.Location) (*Callback, error) {
	raw := callbackFields{
		TxnRef:            params[ParamTxnRef],
		Amount:            params[ParamAmount],
		ResponseCode:      params[ParamResponseCode],
		TransactionStatus: params[ParamTransactionStatus],
		TransactionNo:     params[ParamTransactionNo],
		BankCode:          params[ParamBankCode],
		PayDate:           params[ParamPayDate],
		TmnCode:           params[ParamTmnCode],
		OrderInfo:         params[ParamOrderInfo],
	}

	if err := validate.Struct(raw); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return nil, &FieldError{Field: fieldErrs[0].Field(), Reason: fieldErrs[0].Tag()}
		}
		return nil, err
	}

	amount, err := strconv.ParseInt(raw.Amount, 10, 64)
	if err != nil {
		return nil, &FieldError{Field: "Amount", Reason: "out of range"}
	}

	cb := &Callback{
		Reference:            raw.TxnRef,
		Amount:               amount,
		ResponseCode:         raw.ResponseCode,
		TransactionStatus:    raw.TransactionStatus,
		GatewayTransactionID: raw.TransactionNo,
		BankCode:             raw.BankCode,
		OrderInfo:            raw.OrderInfo,
		TmnCode:              raw.TmnCode,
	}

	if raw.PayDate != "" {
		paidAt, err := time.ParseInLocation(TimestampLayout, raw.PayDate, loc)
		if err != nil {
			return nil, &FieldError{Field: "PayDate", Reason: "not a yyyyMMddHHmmss timestamp"}
		}
		cb.PayDate = &paidAt
	}

	return cb, nil
}
