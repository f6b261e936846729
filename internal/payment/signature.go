package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/anigawade45/grocery-market/internal/market"
)

// SignatureHeader carries the hex-encoded HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Payment-Signature"

// Sign computes the signature the gateway is expected to send.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature fails closed: any absent, malformed or mismatching
// signature is market.ErrVerification and no state may change after it.
func VerifySignature(secret string, body []byte, signature string) error {
	if signature == "" {
		return fmt.Errorf("missing signature header: %w", market.ErrVerification)
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("malformed signature: %w", market.ErrVerification)
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), got) {
		return fmt.Errorf("signature mismatch: %w", market.ErrVerification)
	}
	return nil
}
