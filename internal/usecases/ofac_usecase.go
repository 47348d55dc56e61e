package usecases

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"stablepay.backend/internal/domain/entities"
	domainerrors "stablepay.backend/internal/domain/errors"
	"stablepay.backend/internal/domain/repositories"
	"stablepay.backend/internal/infrastructure/ofac"
	"stablepay.backend/pkg/logger"
	"stablepay.backend/pkg/metrics"
)

const ofacBatchSize = 100

// AddressScreener is the payment engine's view of sanctions screening.
type AddressScreener interface {
	CheckAddress(ctx context.Context, addr string) (*entities.OfacCheckResult, error)
}

// FeedFetcher downloads the raw SDN feed.
type FeedFetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// OfacUsecase ingests the SDN list and answers screening queries.
type OfacUsecase struct {
	repo    repositories.OfacRepository
	fetcher FeedFetcher

	mu         sync.Mutex
	isUpdating bool
}

// NewOfacUsecase creates a new OFAC usecase
func NewOfacUsecase(repo repositories.OfacRepository, fetcher FeedFetcher) *OfacUsecase {
	return &OfacUsecase{repo: repo, fetcher: fetcher}
}

// UpdateSanctionsList fetches the feed and replaces the stored set. The
// isUpdating flag is process-local: a concurrent call fails fast instead
// of stacking a second multi-hundred-MB ingestion.
func (u *OfacUsecase) UpdateSanctionsList(ctx context.Context) (*entities.OfacUpdateLog, error) {
	u.mu.Lock()
	if u.isUpdating {
		u.mu.Unlock()
		return nil, domainerrors.ErrUpdateInProgress
	}
	u.isUpdating = true
	u.mu.Unlock()
	defer func() {
		u.mu.Lock()
		u.isUpdating = false
		u.mu.Unlock()
	}()

	oldCount, err := u.repo.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	data, err := u.fetcher.Fetch(ctx)
	if err != nil {
		metrics.OfacRefreshRuns.WithLabelValues("failure").Inc()
		log := &entities.OfacUpdateLog{
			TotalAddresses: oldCount,
			Success:        false,
			Error:          null.StringFrom(err.Error()),
			CreatedAt:      time.Now().UTC(),
		}
		if logErr := u.repo.AppendUpdateLog(ctx, log); logErr != nil {
			logger.Error(ctx, "ofac: update log append failed", zap.Error(logErr))
		}
		return log, err
	}

	extracted := ofac.ExtractAddresses(data)
	now := time.Now().UTC()
	rows := make([]*entities.OfacSanctionedAddress, 0, len(extracted))
	for _, e := range extracted {
		rows = append(rows, &entities.OfacSanctionedAddress{
			Address:      e.Address,
			AddressLower: strings.ToLower(e.Address),
			AddressType:  e.AddressType,
			SDNName:      e.SDNName,
			SDNID:        e.SDNID,
			Source:       "OFAC_SDN",
			LastSeenAt:   now,
		})
	}

	if err := u.repo.ReplaceAll(ctx, rows, ofacBatchSize); err != nil {
		metrics.OfacRefreshRuns.WithLabelValues("failure").Inc()
		return nil, err
	}

	newCount := len(rows)
	log := &entities.OfacUpdateLog{
		TotalAddresses: newCount,
		NewAddresses:   max(0, newCount-oldCount),
		Removed:        max(0, oldCount-newCount),
		Success:        true,
		CreatedAt:      now,
	}
	if err := u.repo.AppendUpdateLog(ctx, log); err != nil {
		logger.Error(ctx, "ofac: update log append failed", zap.Error(err))
	}

	metrics.OfacRefreshRuns.WithLabelValues("success").Inc()
	logger.Info(ctx, "ofac sanctions list updated",
		zap.Int("total", newCount),
		zap.Int("new", log.NewAddresses),
		zap.Int("removed", log.Removed))
	return log, nil
}

// RefreshIfEmpty runs an ingestion at process start only when the set has
// never been loaded.
func (u *OfacUsecase) RefreshIfEmpty(ctx context.Context) error {
	count, err := u.repo.CountAll(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err = u.UpdateSanctionsList(ctx)
	return err
}

// CheckAddress screens one address. Lookup is exact on the lower-cased,
// trimmed form; cross-chain collisions return every match.
func (u *OfacUsecase) CheckAddress(ctx context.Context, addr string) (*entities.OfacCheckResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(addr))
	matches, err := u.repo.FindByAddressLower(ctx, normalized)
	if err != nil {
		return nil, err
	}
	result := &entities.OfacCheckResult{
		IsSanctioned:   len(matches) > 0,
		MatchedEntries: make([]entities.OfacSanctionedAddress, 0, len(matches)),
		CheckedAt:      time.Now().UTC(),
	}
	for _, m := range matches {
		result.MatchedEntries = append(result.MatchedEntries, *m)
	}
	return result, nil
}

// Status summarizes the stored set and the last ingestion run.
func (u *OfacUsecase) Status(ctx context.Context) (*entities.OfacStatus, error) {
	total, err := u.repo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	byType, err := u.repo.CountByType(ctx)
	if err != nil {
		return nil, err
	}
	status := &entities.OfacStatus{
		TotalAddresses: total,
		AddressTypes:   byType,
	}
	if latest, err := u.repo.LatestUpdateLog(ctx); err == nil && latest != nil {
		status.LastUpdate = &latest.CreatedAt
		status.LastUpdateSuccess = latest.Success
	}
	return status, nil
}
