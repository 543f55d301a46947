package vnpay

import (
	"strconv"
	"time"
)

// Parameter names fixed by the VNPay 2.1.0 contract.
const (
	ParamVersion           = "vnp_Version"
	ParamCommand           = "vnp_Command"
	ParamTmnCode           = "vnp_TmnCode"
	ParamAmount            = "vnp_Amount"
	ParamCurrCode          = "vnp_CurrCode"
	ParamTxnRef            = "vnp_TxnRef"
	ParamOrderInfo         = "vnp_OrderInfo"
	ParamOrderType         = "vnp_OrderType"
	ParamLocale            = "vnp_Locale"
	ParamReturnURL         = "vnp_ReturnUrl"
	ParamIPAddr            = "vnp_IpAddr"
	ParamCreateDate        = "vnp_CreateDate"
	ParamExpireDate        = "vnp_ExpireDate"
	ParamBankCode          = "vnp_BankCode"
	ParamTransactionNo     = "vnp_TransactionNo"
	ParamResponseCode      = "vnp_ResponseCode"
	ParamTransactionStatus = "vnp_TransactionStatus"
	ParamPayDate           = "vnp_PayDate"
	ParamSecureHash        = "vnp_SecureHash"
	ParamSecureHashType    = "vnp_SecureHashType"

	paramPrefix = "vnp_"

	// TimestampLayout is yyyyMMddHHmmss in the merchant's business timezone.
	TimestampLayout = "20060102150405"
)

// PaymentParams are the outbound fields of one payment request.
// Amount is already in gateway minor units (VND x 100).
type PaymentParams struct {
	Amount    int64     `validate:"gt=0"`
	Reference string    `validate:"required,max=100,alphanum"`
	OrderInfo string    `validate:"required,max=255"`
	OrderType string    `validate:"omitempty,max=100"`
	Locale    string    `validate:"omitempty,oneof=vn en"`
	BankCode  string    `validate:"omitempty,max=20,alphanum"`
	ReturnURL string    `validate:"omitempty,url"`
	ClientIP  string    `validate:"required,ip"`
	CreatedAt time.Time `validate:"required"`
}

// fields renders the request as the gateway parameter set, filling protocol constants
// and defaults from the merchant config.
func (p PaymentParams) fields(m MerchantConfig) map[string]string {
	created := p.CreatedAt.In(m.Location)

	fields := map[string]string{
		ParamVersion:    m.Version,
		ParamCommand:    m.Command,
		ParamTmnCode:    m.TmnCode,
		ParamAmount:     strconv.FormatInt(p.Amount, 10),
		ParamCurrCode:   m.Currency,
		ParamTxnRef:     p.Reference,
		ParamOrderInfo:  p.OrderInfo,
		ParamOrderType:  firstNonEmpty(p.OrderType, m.OrderType),
		ParamLocale:     firstNonEmpty(p.Locale, m.Locale),
		ParamReturnURL:  firstNonEmpty(p.ReturnURL, m.ReturnURL),
		ParamIPAddr:     p.ClientIP,
		ParamCreateDate: created.Format(TimestampLayout),
		ParamBankCode:   p.BankCode,
	}
	if m.ExpireAfter > 0 {
		fields[ParamExpireDate] = created.Add(m.ExpireAfter).Format(TimestampLayout)
	}

	return fields
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
