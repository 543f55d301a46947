package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lms-payment-gateway/internal/domain/payment"
	"github.com/lms-payment-gateway/internal/platform/vnpay"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func signURLCmd(load merchantLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign-url",
		Short: "Build a signed VNPay payment URL",
		Long: `Build the redirect URL for a payment without touching the database.
The amount is in VND and is sent to VNPay multiplied by 100.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := gatewayFor(cmd, load)
			if err != nil {
				return err
			}

			rawAmount, _ := cmd.Flags().GetString("amount")
			amount, err := decimal.NewFromString(rawAmount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", rawAmount, err)
			}
			minor, ok := vnpay.ToMinorUnits(amount)
			if !ok {
				return fmt.Errorf("invalid amount %q: must be positive with at most two decimals", rawAmount)
			}

			reference, _ := cmd.Flags().GetString("reference")
			if reference == "" {
				reference = payment.NewReference()
			}
			orderInfo, _ := cmd.Flags().GetString("order-info")
			clientIP, _ := cmd.Flags().GetString("ip")
			bankCode, _ := cmd.Flags().GetString("bank-code")

			paymentURL, err := gateway.BuildPaymentURL(vnpay.PaymentParams{
				Amount:    minor,
				Reference: reference,
				OrderInfo: orderInfo,
				BankCode:  bankCode,
				ClientIP:  clientIP,
				CreatedAt: time.Now(),
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), paymentURL)
			return nil
		},
	}

	cmd.Flags().StringP("amount", "a", "", "Amount in VND")
	cmd.Flags().StringP("reference", "r", "", "Order reference (generated when empty)")
	cmd.Flags().String("order-info", "Manual payment", "Order description")
	cmd.Flags().String("ip", "127.0.0.1", "Client IP address")
	cmd.Flags().String("bank-code", "", "Preselected bank code")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

// verifyReport is what verify-callback prints.
type verifyReport struct {
	Verified     bool              `json:"verified"`
	Canonical    string            `json:"canonical"`
	Reference    string            `json:"reference,omitempty"`
	Amount       string            `json:"amount,omitempty"`
	ResponseCode string            `json:"response_code,omitempty"`
	Succeeded    bool              `json:"succeeded"`
	ParseError   string            `json:"parse_error,omitempty"`
	Params       map[string]string `json:"params"`
}

func verifyCallbackCmd(load merchantLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-callback [query-or-url]",
		Short: "Check the signature of a captured return or IPN query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := gatewayFor(cmd, load)
			if err != nil {
				return err
			}

			values, err := parseCallbackQuery(args[0])
			if err != nil {
				return err
			}

			verification, err := gateway.VerifyCallback(values)
			if err != nil {
				return err
			}

			report := verifyReport{
				Verified:  verification.Verified,
				Canonical: verification.Canonical,
				Params:    verification.Params,
			}
			if verification.Verified {
				cb, err := gateway.ParseCallback(verification)
				if err != nil {
					report.ParseError = err.Error()
				} else {
					report.Reference = cb.Reference
					report.Amount = vnpay.FromMinorUnits(cb.Amount).String()
					report.ResponseCode = cb.ResponseCode
					report.Succeeded = cb.Succeeded()
				}
			}

			if err := writeJSON(cmd, report); err != nil {
				return err
			}
			if !report.Verified {
				return fmt.Errorf("signature mismatch")
			}
			return nil
		},
	}
}

func configStatusCmd(load merchantLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "config-status",
		Short: "Show which merchant settings are present",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configName, _ := cmd.Flags().GetString("config")
			merchant, err := load(configName)
			if err != nil {
				return fmt.Errorf("failed to load merchant configuration: %w", err)
			}
			return writeJSON(cmd, merchant.Status())
		},
	}
}

// parseCallbackQuery accepts a full URL or a bare query string.
func parseCallbackQuery(raw string) (url.Values, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid callback query: %w", err)
	}
	return values, nil
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
