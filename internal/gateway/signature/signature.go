// Package signature implements the request and webhook signing scheme shared
// by the gateway adapters: an MD5 digest over tilde-joined fields for the card
// gateway, and an HMAC-SHA256 manifest for the wallet gateway. Both verify
// with constant-time comparison.
package signature

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
)

const delimiter = "~"

// Digest computes the hex MD5 of secret~field1~field2~... in the declared
// field order. The secret is always the first component.
func Digest(secret string, fields ...string) string {
	parts := make([]string, 0, len(fields)+1)
	parts = append(parts, secret)
	parts = append(parts, fields...)
	sum := md5.Sum([]byte(strings.Join(parts, delimiter)))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the digest for the given fields and compares it against
// the received value byte for byte in constant time.
func Verify(secret, received string, fields ...string) bool {
	received = strings.ToLower(strings.TrimSpace(received))
	if received == "" {
		return false
	}
	expected := Digest(secret, fields...)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1
}

// SignHMAC computes the hex HMAC-SHA256 of message under secret.
func SignHMAC(secret string, message []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC checks an HMAC-SHA256 hex digest in constant time.
func VerifyHMAC(secret string, message []byte, received string) bool {
	received = strings.ToLower(strings.TrimSpace(received))
	if received == "" {
		return false
	}
	return hmac.Equal([]byte(SignHMAC(secret, message)), []byte(received))
}

// FormatAmount renders a minor-unit amount for inclusion in a digest. This is
// the single canonical numeric-to-string rule: base-10 integer, no padding,
// no decimal point. Every signature computation, outbound and inbound, goes
// through this or CanonicalNumber so both sides always agree.
func FormatAmount(minor int64) string {
	return strconv.FormatInt(minor, 10)
}

// CanonicalNumber normalizes a provider-echoed numeric string to the same
// canonical form FormatAmount produces for whole values: trailing fractional
// zeros and a dangling decimal point are dropped, so "50000.0" and "50000.00"
// both become "50000" while "50000.5" stays "50000.5". Non-numeric input is
// returned trimmed, which then fails verification rather than panicking.
func CanonicalNumber(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return value
	}
	if !strings.Contains(value, ".") {
		return value
	}
	value = strings.TrimRight(value, "0")
	return strings.TrimSuffix(value, ".")
}
