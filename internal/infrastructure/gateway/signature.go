package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"
)

// signatureHeaders lists the header names the provider has used over the
// years, in lookup priority order.
var signatureHeaders = []string{
	"Content-Hmac",
	"X-Content-Hmac",
	"X-Content-Signature",
	"Content-Signature",
}

// SignatureFromHeader extracts the webhook signature, trying each known
// header name in priority order.
func SignatureFromHeader(h http.Header) string {
	for _, name := range signatureHeaders {
		if value := h.Get(name); value != "" {
			return value
		}
	}
	return ""
}

// VerifySignature checks the HMAC-SHA256 of the exact raw request body
// against the presented signature. Both base64 and hex encodings are
// accepted, with an optional "sha256=" prefix. It returns false, never an
// error, on any failure: missing secret, missing signature, or mismatch.
func VerifySignature(secret string, rawBody []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}

	signature = strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	sum := mac.Sum(nil)

	expectedB64 := base64.StdEncoding.EncodeToString(sum)
	if hmac.Equal([]byte(signature), []byte(expectedB64)) {
		return true
	}

	expectedHex := hex.EncodeToString(sum)
	return hmac.Equal([]byte(strings.ToLower(signature)), []byte(expectedHex))
}
