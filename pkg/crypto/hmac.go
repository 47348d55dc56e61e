package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// AddressHMAC computes the deterministic lookup digest for a normalized
// sender address. Stable across restarts for a stable secret.
func AddressHMAC(secret, normalizedAddress string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(normalizedAddress))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignPayload computes the webhook signature for a serialized payload.
func SignPayload(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook signature in constant time.
func VerifySignature(secret, payload, signature string) bool {
	expected := SignPayload(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// HashAPIKey returns the SHA-256 hex digest stored for tenant API keys.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// GenerateAPIKey generates a random 32-byte hex API key.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
