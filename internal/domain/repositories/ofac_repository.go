package repositories

import (
	"context"

	"stablepay.backend/internal/domain/entities"
)

// OfacRepository defines sanctioned-address set operations. ReplaceAll has
// set semantics: the previous rows are dropped within the same transaction.
type OfacRepository interface {
	ReplaceAll(ctx context.Context, addresses []*entities.OfacSanctionedAddress, batchSize int) error
	CountAll(ctx context.Context) (int, error)
	FindByAddressLower(ctx context.Context, addressLower string) ([]*entities.OfacSanctionedAddress, error)
	CountByType(ctx context.Context) (map[string]int, error)
	AppendUpdateLog(ctx context.Context, log *entities.OfacUpdateLog) error
	LatestUpdateLog(ctx context.Context) (*entities.OfacUpdateLog, error)
}
