package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

// Sign returns the lowercase hex HMAC-SHA-512 of message keyed by secret.
func Sign(secret, message string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether supplied is the signature of message under secret.
// Hex case is ignored; the comparison itself is constant-time.
func Verify(secret, message, supplied string) bool {
	expected := Sign(secret, message)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(supplied)))
}

// Signer binds the merchant hash secret so callers never handle it directly.
type Signer struct {
	secret string
}

// NewSigner creates a signer for the given merchant hash secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: secret}
}

func (s *Signer) Sign(message string) string {
	return Sign(s.secret, message)
}

func (s *Signer) Verify(message, supplied string) bool {
	return Verify(s.secret, message, supplied)
}
