// Command paymentctl is an operator tool for the VNPay merchant integration: it signs
// payment URLs, verifies captured callbacks and reports the merchant configuration
// using the same settings as the gateway.
package main

import (
	"fmt"
	"os"

	"github.com/lms-payment-gateway/internal/config"
	"github.com/lms-payment-gateway/internal/platform/vnpay"
	"github.com/spf13/cobra"
)

var Version = "dev"

// merchantLoader resolves the merchant settings a command runs against.
type merchantLoader func(configName string) (vnpay.MerchantConfig, error)

func loadMerchant(configName string) (vnpay.MerchantConfig, error) {
	cfg, err := config.LoadConfig(configName)
	if err != nil {
		return vnpay.MerchantConfig{}, err
	}
	return vnpay.NewMerchantConfig(cfg.VNPay)
}

func main() {
	if err := newRootCmd(loadMerchant).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(load merchantLoader) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "paymentctl",
		Short:         "Operate the VNPay merchant integration",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "payment_gateway", "Config file base name under ./configs")

	rootCmd.AddCommand(signURLCmd(load))
	rootCmd.AddCommand(verifyCallbackCmd(load))
	rootCmd.AddCommand(configStatusCmd(load))

	return rootCmd
}

// gatewayFor loads the merchant and refuses to continue when it cannot sign.
func gatewayFor(cmd *cobra.Command, load merchantLoader) (*vnpay.Gateway, error) {
	configName, _ := cmd.Flags().GetString("config")
	merchant, err := load(configName)
	if err != nil {
		return nil, fmt.Errorf("failed to load merchant configuration: %w", err)
	}
	if err := merchant.Validate(); err != nil {
		return nil, err
	}
	return vnpay.NewGateway(merchant), nil
}
