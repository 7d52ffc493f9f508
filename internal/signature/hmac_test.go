package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret-key"

func reference(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestSign(t *testing.T) {
	body := `{"type":"verification.success"}`
	assert.Equal(t, reference(body, testSecret), Sign([]byte(body), testSecret))
}

func TestVerify(t *testing.T) {
	body := `{"verification":{"id":"abc"}}`

	tests := []struct {
		name      string
		body      string
		signature string
		secret    string
		want      bool
	}{
		{
			name:      "valid signature",
			body:      body,
			signature: reference(body, testSecret),
			secret:    testSecret,
			want:      true,
		},
		{
			name:      "uppercase hex",
			body:      body,
			signature: strings.ToUpper(reference(body, testSecret)),
			secret:    testSecret,
			want:      true,
		},
		{
			name:      "wrong signature",
			body:      body,
			signature: "deadbeef",
			secret:    testSecret,
			want:      false,
		},
		{
			name:      "empty signature",
			body:      body,
			signature: "",
			secret:    testSecret,
			want:      false,
		},
		{
			name:      "wrong secret",
			body:      body,
			signature: reference(body, "other-secret"),
			secret:    testSecret,
			want:      false,
		},
		{
			name:      "tampered body",
			body:      body + " ",
			signature: reference(body, testSecret),
			secret:    testSecret,
			want:      false,
		},
		{
			name:      "empty secret never verifies",
			body:      body,
			signature: reference(body, ""),
			secret:    "",
			want:      false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Verify([]byte(tc.body), tc.signature, tc.secret))
		})
	}
}
