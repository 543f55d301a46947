package vnpay

import (
	"fmt"
	"net/url"
	"time"
	_ "time/tzdata" // business timezone must resolve in minimal containers

	"github.com/lms-payment-gateway/internal/config"
)

// MerchantConfig is the merchant identity and protocol settings for one VNPay terminal.
// It is built once and copied by value into the Gateway.
type MerchantConfig struct {
	TmnCode     string
	HashSecret  string
	PayURL      string
	ReturnURL   string
	IPNURL      string
	Version     string
	Command     string
	Currency    string
	Locale      string
	OrderType   string
	Location    *time.Location
	ExpireAfter time.Duration
}

// ConfigStatus describes which merchant settings are present, without exposing the secret.
type ConfigStatus struct {
	TmnCodeSet    bool   `json:"tmn_code_set"`
	HashSecretSet bool   `json:"hash_secret_set"`
	PayURL        string `json:"pay_url"`
	ReturnURL     string `json:"return_url"`
	IPNURL        string `json:"ipn_url"`
	Version       string `json:"version"`
	Timezone      string `json:"timezone"`
	Valid         bool   `json:"valid"`
}

// NewMerchantConfig resolves the business timezone and copies the VNPay settings.
// Credentials are not checked here; call Validate before signing anything.
func NewMerchantConfig(cfg config.VNPayConfig) (MerchantConfig, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return MerchantConfig{}, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}

	return MerchantConfig{
		TmnCode:     cfg.TmnCode,
		HashSecret:  cfg.HashSecret,
		PayURL:      cfg.PayURL,
		ReturnURL:   cfg.ReturnURL,
		IPNURL:      cfg.IPNURL,
		Version:     cfg.Version,
		Command:     cfg.Command,
		Currency:    cfg.Currency,
		Locale:      cfg.Locale,
		OrderType:   cfg.OrderType,
		Location:    loc,
		ExpireAfter: cfg.ExpireAfter,
	}, nil
}

// Validate returns a *ConfigurationError listing every missing or malformed setting.
func (m MerchantConfig) Validate() error {
	var problems []string

	if m.TmnCode == "" {
		problems = append(problems, "VNPAY_TMN_CODE is required")
	}
	if m.HashSecret == "" {
		problems = append(problems, "VNPAY_HASH_SECRET is required")
	}
	if !isAbsoluteURL(m.PayURL) {
		problems = append(problems, "VNPAY_PAY_URL must be an absolute URL")
	}
	if !isAbsoluteURL(m.ReturnURL) {
		problems = append(problems, "VNPAY_RETURN_URL must be an absolute URL")
	}
	if m.Version == "" || m.Command == "" || m.Currency == "" {
		problems = append(problems, "VNPAY_VERSION, VNPAY_COMMAND and VNPAY_CURRENCY are required")
	}
	if m.Location == nil {
		problems = append(problems, "VNPAY_TIMEZONE is not loaded")
	}

	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}

// Status reports the configuration state for operators.
func (m MerchantConfig) Status() ConfigStatus {
	status := ConfigStatus{
		TmnCodeSet:    m.TmnCode != "",
		HashSecretSet: m.HashSecret != "",
		PayURL:        m.PayURL,
		ReturnURL:     m.ReturnURL,
		IPNURL:        m.IPNURL,
		Version:       m.Version,
		Valid:         m.Validate() == nil,
	}
	if m.Location != nil {
		status.Timezone = m.Location.String()
	}
	return status
}

func isAbsoluteURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
