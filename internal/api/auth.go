package api

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"time"
)

// Sign computes the apisign value for a private request: a lowercase hex
// HMAC-SHA512 digest over the UTF-8 bytes of the fully-assembled request URL,
// keyed by the API secret. The URL must be final before signing; appending
// anything to the query string afterwards invalidates the signature.
func Sign(secret, requestURL string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(requestURL))
	return hex.EncodeToString(mac.Sum(nil))
}

// Nonce returns the current wall-clock time in whole seconds. The exchange
// only requires nonces to be non-decreasing per key pair, so consecutive
// calls within the same second legitimately return the same value.
func Nonce() int64 {
	return time.Now().Unix()
}
