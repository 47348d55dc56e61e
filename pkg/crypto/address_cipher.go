package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	// envelope layout: iv_hex:tag_hex:ciphertext_hex
	ivSize  = 16
	tagSize = 16

	keyDerivationSalt = "payment-salt"
)

var ErrMalformedEnvelope = errors.New("malformed encrypted envelope")

// AddressCipher encrypts sender addresses at rest with AES-256-GCM.
// The key is derived once from the session secret via scrypt.
type AddressCipher struct {
	key []byte
}

// NewAddressCipher derives the AES key from the session secret.
func NewAddressCipher(sessionSecret string) (*AddressCipher, error) {
	if sessionSecret == "" {
		return nil, errors.New("session secret is required")
	}
	key, err := scrypt.Key([]byte(sessionSecret), []byte(keyDerivationSalt), 32768, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}
	return &AddressCipher{key: key}, nil
}

// Encrypt seals the plaintext address into the iv:tag:ciphertext envelope.
// A fresh 16-byte IV is drawn per call.
func (c *AddressCipher) Encrypt(address string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return "", err
	}

	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	sealed := gcm.Seal(nil, iv, []byte(address), nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt opens an envelope produced by Encrypt.
func (c *AddressCipher) Decrypt(envelope string) (string, error) {
	parts := strings.Split(envelope, ":")
	if len(parts) != 3 {
		return "", ErrMalformedEnvelope
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != ivSize {
		return "", ErrMalformedEnvelope
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != tagSize {
		return "", ErrMalformedEnvelope
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", ErrMalformedEnvelope
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt address: %w", err)
	}
	return string(plaintext), nil
}
