package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/lms-payment-gateway/internal/config"
	"github.com/lms-payment-gateway/internal/platform/vnpay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMerchant(t *testing.T, secret string) vnpay.MerchantConfig {
	t.Helper()
	m, err := vnpay.NewMerchantConfig(config.VNPayConfig{
		TmnCode:     "DEMO1234",
		HashSecret:  secret,
		PayURL:      "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:   "https://shop.example/return",
		Version:     "2.1.0",
		Command:     "pay",
		Currency:    "VND",
		Locale:      "vn",
		OrderType:   "other",
		Timezone:    "Asia/Ho_Chi_Minh",
		ExpireAfter: 15 * time.Minute,
	})
	require.NoError(t, err)
	return m
}

func staticLoader(m vnpay.MerchantConfig) merchantLoader {
	return func(string) (vnpay.MerchantConfig, error) { return m, nil }
}

func run(t *testing.T, load merchantLoader, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(load)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSignURL(t *testing.T) {
	m := testMerchant(t, "SECRETKEY")

	out, err := run(t, staticLoader(m), "sign-url", "--amount", "500000", "--reference", "ref42")
	require.NoError(t, err)

	paymentURL := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(paymentURL, m.PayURL+"?"))

	parsed, err := url.Parse(paymentURL)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "50000000", q.Get("vnp_Amount"))
	assert.Equal(t, "ref42", q.Get("vnp_TxnRef"))

	v, err := vnpay.NewGateway(m).VerifyCallback(q)
	require.NoError(t, err)
	assert.True(t, v.Verified)
}

func TestSignURL_Errors(t *testing.T) {
	m := testMerchant(t, "SECRETKEY")

	t.Run("fractional amount", func(t *testing.T) {
		_, err := run(t, staticLoader(m), "sign-url", "--amount", "0.001")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid amount")
	})

	t.Run("missing amount flag", func(t *testing.T) {
		_, err := run(t, staticLoader(m), "sign-url")
		assert.Error(t, err)
	})

	t.Run("unconfigured merchant", func(t *testing.T) {
		_, err := run(t, staticLoader(testMerchant(t, "")), "sign-url", "--amount", "1000")
		var cfgErr *vnpay.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("loader failure", func(t *testing.T) {
		failing := func(string) (vnpay.MerchantConfig, error) { return vnpay.MerchantConfig{}, errors.New("bad file") }
		_, err := run(t, failing, "sign-url", "--amount", "1000")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad file")
	})
}

func TestVerifyCallback(t *testing.T) {
	m := testMerchant(t, "SECRETKEY")
	signed, err := vnpay.NewGateway(m).SignParams(map[string]string{
		"vnp_TxnRef":            "ref42",
		"vnp_Amount":            "50000000",
		"vnp_ResponseCode":      "00",
		"vnp_TransactionStatus": "00",
		"vnp_TmnCode":           "DEMO1234",
	})
	require.NoError(t, err)

	t.Run("valid signature from a full url", func(t *testing.T) {
		out, err := run(t, staticLoader(m), "verify-callback", "https://shop.example/return?"+signed)
		require.NoError(t, err)

		var report verifyReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.True(t, report.Verified)
		assert.True(t, report.Succeeded)
		assert.Equal(t, "ref42", report.Reference)
		assert.Equal(t, "500000", report.Amount)
		assert.Empty(t, report.ParseError)
	})

	t.Run("tampered amount", func(t *testing.T) {
		tampered := strings.Replace(signed, "vnp_Amount=50000000", "vnp_Amount=100", 1)
		out, err := run(t, staticLoader(m), "verify-callback", tampered)
		require.Error(t, err)

		var report verifyReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.False(t, report.Verified)
		assert.Empty(t, report.Reference)
	})

	t.Run("requires one argument", func(t *testing.T) {
		_, err := run(t, staticLoader(m), "verify-callback")
		assert.Error(t, err)
	})
}

func TestConfigStatus(t *testing.T) {
	out, err := run(t, staticLoader(testMerchant(t, "")), "config-status")
	require.NoError(t, err)

	var status vnpay.ConfigStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.True(t, status.TmnCodeSet)
	assert.False(t, status.HashSecretSet)
	assert.False(t, status.Valid)
	assert.Equal(t, "Asia/Ho_Chi_Minh", status.Timezone)
	assert.NotContains(t, out, "SECRETKEY")
}

func TestParseCallbackQuery(t *testing.T) {
	values, err := parseCallbackQuery("  vnp_TxnRef=a&vnp_Amount=1 ")
	require.NoError(t, err)
	assert.Equal(t, "a", values.Get("vnp_TxnRef"))

	_, err = parseCallbackQuery("vnp_TxnRef=%zz")
	assert.Error(t, err)
}
