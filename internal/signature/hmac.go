// Package signature signs and verifies webhook bodies with HMAC-SHA256.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Header carries the hex-encoded HMAC-SHA256 of the raw request body.
const Header = "X-HMAC-SIGNATURE"

func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func Verify(body []byte, signature, secret string) bool {
	signature = strings.ToLower(strings.TrimSpace(signature))
	if signature == "" || secret == "" {
		return false
	}
	expected := Sign(body, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
