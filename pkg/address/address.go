package address

import (
	"crypto/sha256"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

var ErrInvalidAddress = errors.New("invalid address for network")

// IsEVM reports whether addr is a valid 0x-prefixed EVM address.
func IsEVM(addr string) bool {
	return common.IsHexAddress(addr)
}

// IsTron reports whether addr is a valid base58check Tron address
// (0x41 version byte, 21-byte payload, double-SHA256 checksum).
func IsTron(addr string) bool {
	if len(addr) != 34 || addr[0] != 'T' {
		return false
	}
	decoded, err := base58.Decode(addr)
	if err != nil || len(decoded) != 25 || decoded[0] != 0x41 {
		return false
	}
	payload, checksum := decoded[:21], decoded[21:]
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	for i := 0; i < 4; i++ {
		if checksum[i] != second[i] {
			return false
		}
	}
	return true
}

// NormalizeEVM lower-cases a validated EVM address. Tron addresses are
// case-sensitive base58 and pass through unchanged.
func NormalizeEVM(addr string) string {
	return strings.ToLower(addr)
}
