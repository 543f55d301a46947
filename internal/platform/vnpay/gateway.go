// Package vnpay builds signed VNPay payment URLs and verifies VNPay callbacks.
//
// Outbound and inbound traffic share one canonical form (see Canonicalize):
// the string that is signed is byte-for-byte the query that is sent, and inbound
// values are re-encoded the same way before their signature is checked.
package vnpay

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Gateway is the merchant-side VNPay client. It is safe for concurrent use.
type Gateway struct {
	merchant MerchantConfig
	signer   *Signer
	validate *validator.Validate
}

// NewGateway creates a gateway bound to one merchant configuration.
func NewGateway(merchant MerchantConfig) *Gateway {
	return &Gateway{
		merchant: merchant,
		signer:   NewSigner(merchant.HashSecret),
		validate: validator.New(),
	}
}

// Merchant returns a copy of the merchant configuration.
func (g *Gateway) Merchant() MerchantConfig {
	return g.merchant
}

// BuildPaymentURL validates p, signs the canonical parameter set and appends
// vnp_SecureHash as the last query parameter of the pay URL.
func (g *Gateway) BuildPaymentURL(p PaymentParams) (string, error) {
	if err := g.merchant.Validate(); err != nil {
		return "", err
	}
	if err := g.validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return "", &FieldError{Field: fieldErrs[0].Field(), Reason: fieldErrs[0].Tag()}
		}
		return "", fmt.Errorf("failed to validate payment params: %w", err)
	}

	query, err := g.SignParams(p.fields(g.merchant))
	if err != nil {
		return "", err
	}

	separator := "?"
	if strings.Contains(g.merchant.PayURL, "?") {
		separator = "&"
	}

	return g.merchant.PayURL + separator + query, nil
}

// SignParams returns the canonical query for params followed by its vnp_SecureHash.
func (g *Gateway) SignParams(params map[string]string) (string, error) {
	canonical, err := Canonicalize(params)
	if err != nil {
		return "", err
	}
	return canonical + "&" + ParamSecureHash + "=" + g.signer.Sign(canonical), nil
}

// VerifyCallback checks the signature of an inbound return or IPN query.
// A missing or wrong signature yields Verified=false, not an error; an error
// means the parameters could not be canonicalized at all.
func (g *Gateway) VerifyCallback(values url.Values) (*Verification, error) {
	return verifyParams(g.signer, ExtractParams(values))
}

// ParseCallback validates and types the fields of a verified callback.
func (g *Gateway) ParseCallback(v *Verification) (*Callback, error) {
	return parseCallback(g.validate, v.Params, g.merchant.Location)
}
