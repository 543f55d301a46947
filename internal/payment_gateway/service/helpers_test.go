package service

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/lms-payment-gateway/internal/config"
	"github.com/lms-payment-gateway/internal/platform/vnpay"
	"github.com/stretchr/testify/require"
)

const testSecret = "SECRETKEY"

func newTestGateway(t *testing.T) *vnpay.Gateway {
	t.Helper()
	m, err := vnpay.NewMerchantConfig(config.VNPayConfig{
		TmnCode:     "DEMO1234",
		HashSecret:  testSecret,
		PayURL:      "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:   "https://shop.example/payment/return",
		IPNURL:      "https://shop.example/payment/ipn",
		Version:     "2.1.0",
		Command:     "pay",
		Currency:    "VND",
		Locale:      "vn",
		OrderType:   "other",
		Timezone:    "Asia/Ho_Chi_Minh",
		ExpireAfter: 15 * time.Minute,
	})
	require.NoError(t, err)
	return vnpay.NewGateway(m)
}

// signedCallback builds a callback query the way VNPay would send it.
func signedCallback(t *testing.T, gw *vnpay.Gateway, reference string, amount int64, responseCode, txnStatus string) url.Values {
	t.Helper()
	params := map[string]string{
		vnpay.ParamTmnCode:       "DEMO1234",
		vnpay.ParamTxnRef:        reference,
		vnpay.ParamAmount:        strconv.FormatInt(amount, 10),
		vnpay.ParamResponseCode:  responseCode,
		vnpay.ParamTransactionNo: "14226112",
		vnpay.ParamBankCode:      "NCB",
		vnpay.ParamPayDate:       "20240115103512",
		vnpay.ParamOrderInfo:     "Thanh toan khoa hoc #42",
	}
	if txnStatus != "" {
		params[vnpay.ParamTransactionStatus] = txnStatus
	}

	query, err := gw.SignParams(params)
	require.NoError(t, err)
	values, err := url.ParseQuery(query)
	require.NoError(t, err)
	return values
}

func mustParseQuery(t *testing.T, query string) url.Values {
	t.Helper()
	values, err := url.ParseQuery(query)
	require.NoError(t, err)
	return values
}
