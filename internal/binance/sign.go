package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// signPayload computes the hex-encoded HMAC-SHA256 signature over the
// canonically-encoded parameter payload. Identical payload and secret always
// produce an identical signature.
func signPayload(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
