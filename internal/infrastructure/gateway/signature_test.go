package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testSecret = "webhook-secret"

func signB64(t *testing.T, secret string, body []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func signHex(t *testing.T, secret string, body []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	body := []byte("TransactionId=12345&Amount=1500.00&InvoiceId=MS1700000000")

	t.Run("accepts base64 signature", func(t *testing.T) {
		assert.True(t, VerifySignature(testSecret, body, signB64(t, testSecret, body)))
	})

	t.Run("accepts hex signature", func(t *testing.T) {
		assert.True(t, VerifySignature(testSecret, body, signHex(t, testSecret, body)))
	})

	t.Run("accepts uppercase hex signature", func(t *testing.T) {
		sig := strings.ToUpper(signHex(t, testSecret, body))
		assert.True(t, VerifySignature(testSecret, body, sig))
	})

	t.Run("strips sha256= prefix", func(t *testing.T) {
		assert.True(t, VerifySignature(testSecret, body, "sha256="+signB64(t, testSecret, body)))
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		assert.False(t, VerifySignature("other-secret", body, signB64(t, testSecret, body)))
	})

	t.Run("rejects tampered body", func(t *testing.T) {
		tampered := append([]byte{}, body...)
		tampered[0] ^= 1
		assert.False(t, VerifySignature(testSecret, tampered, signB64(t, testSecret, body)))
	})

	t.Run("rejects missing signature", func(t *testing.T) {
		assert.False(t, VerifySignature(testSecret, body, ""))
	})

	t.Run("rejects missing secret", func(t *testing.T) {
		assert.False(t, VerifySignature("", body, signB64(t, testSecret, body)))
	})

	t.Run("rejects garbage signature without panicking", func(t *testing.T) {
		assert.False(t, VerifySignature(testSecret, body, "not-a-signature!!"))
	})
}

func TestSignatureFromHeader(t *testing.T) {
	t.Run("finds the primary header", func(t *testing.T) {
		h := http.Header{}
		h.Set("Content-Hmac", "abc")
		assert.Equal(t, "abc", SignatureFromHeader(h))
	})

	t.Run("falls back through the known header names", func(t *testing.T) {
		h := http.Header{}
		h.Set("Content-Signature", "legacy")
		assert.Equal(t, "legacy", SignatureFromHeader(h))
	})

	t.Run("prefers Content-Hmac when several are present", func(t *testing.T) {
		h := http.Header{}
		h.Set("Content-Signature", "legacy")
		h.Set("Content-Hmac", "modern")
		assert.Equal(t, "modern", SignatureFromHeader(h))
	})

	t.Run("empty when nothing is set", func(t *testing.T) {
		assert.Empty(t, SignatureFromHeader(http.Header{}))
	})
}
