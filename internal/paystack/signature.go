package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// ValidateSignature checks the x-paystack-signature header against an
// HMAC-SHA512 hex digest of the exact raw body bytes. It fails closed: a
// missing secret or any mismatch means invalid.
func (c *Client) ValidateSignature(body []byte, signature string) bool {
	if c.secret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(c.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
