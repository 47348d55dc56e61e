package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"stablepay.backend/internal/domain/entities"
)

// ErrTransferNotFound is returned when no matching transfer is on chain yet.
var ErrTransferNotFound = errors.New("no matching transfer found")

// TransferQuery describes the transfer the monitor is looking for. Amounts
// are decimal strings in token units; addresses are normalized.
type TransferQuery struct {
	Sender         string
	Receiver       string
	Contract       string
	RequiredAmount string
	Decimals       int
	NotBefore      time.Time
}

// TransferResult is a matching on-chain transfer.
type TransferResult struct {
	TxHash        string
	Amount        *big.Int
	BlockNumber   uint64
	Timestamp     time.Time
	Confirmations int
}

// ChainAdapter reads token transfers from one network. Available reports
// whether the adapter has the credentials it needs; an unavailable adapter
// is skipped by the monitor instead of erroring.
type ChainAdapter interface {
	Network() entities.Network
	Available() bool
	FindTransfer(ctx context.Context, q TransferQuery) (*TransferResult, error)
	Confirmations(ctx context.Context, txHash string) (int, error)
}

// toBaseUnits converts a decimal token amount ("9.99") to base units.
func toBaseUnits(amount string, decimals int) (*big.Int, error) {
	parts := strings.SplitN(strings.TrimSpace(amount), ".", 2)
	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if len(frac) > decimals {
		frac = frac[:decimals]
	}
	for len(frac) < decimals {
		frac += "0"
	}
	n, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	return n, nil
}

// FromBaseUnits renders a base-unit amount as a decimal token string
// ("19990000" at 6 decimals is "19.99").
func FromBaseUnits(n *big.Int, decimals int) string {
	s := n.String()
	if decimals <= 0 {
		return s
	}
	for len(s) <= decimals {
		s = "0" + s
	}
	whole, frac := s[:len(s)-decimals], s[len(s)-decimals:]
	if frac = strings.TrimRight(frac, "0"); frac == "" {
		return whole
	}
	return whole + "." + frac
}

// meetsTolerance reports whether got covers at least 99% of required,
// absorbing sub-cent rounding on the payer side.
func meetsTolerance(got, required *big.Int) bool {
	lhs := new(big.Int).Mul(got, big.NewInt(100))
	rhs := new(big.Int).Mul(required, big.NewInt(99))
	return lhs.Cmp(rhs) >= 0
}
