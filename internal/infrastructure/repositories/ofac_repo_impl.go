package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"stablepay.backend/internal/domain/entities"
	"stablepay.backend/internal/infrastructure/models"
)

// OfacRepository implements sanctioned-address set operations
type OfacRepository struct {
	db *gorm.DB
}

// NewOfacRepository creates a new OFAC repository
func NewOfacRepository(db *gorm.DB) *OfacRepository {
	return &OfacRepository{db: db}
}

// ReplaceAll swaps the whole sanctioned set in one transaction. The delete
// and the batched inserts either all land or none do.
func (r *OfacRepository) ReplaceAll(ctx context.Context, addresses []*entities.OfacSanctionedAddress, batchSize int) error {
	db := GetDB(ctx, r.db)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.OfacSanctionedAddress{}).Error; err != nil {
			return err
		}
		for start := 0; start < len(addresses); start += batchSize {
			end := start + batchSize
			if end > len(addresses) {
				end = len(addresses)
			}
			batch := make([]models.OfacSanctionedAddress, 0, end-start)
			for _, e := range addresses[start:end] {
				batch = append(batch, *r.toModel(e))
			}
			if err := tx.Create(&batch).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountAll counts the sanctioned addresses currently stored.
func (r *OfacRepository) CountAll(ctx context.Context) (int, error) {
	var total int64
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.OfacSanctionedAddress{}).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}

// FindByAddressLower returns every entry matching the lowercased address.
func (r *OfacRepository) FindByAddressLower(ctx context.Context, addressLower string) ([]*entities.OfacSanctionedAddress, error) {
	var ms []models.OfacSanctionedAddress
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("address_lower = ?", addressLower).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	entries := make([]*entities.OfacSanctionedAddress, 0, len(ms))
	for i := range ms {
		entries = append(entries, r.toEntity(&ms[i]))
	}
	return entries, nil
}

// CountByType returns entry counts grouped by address type.
func (r *OfacRepository) CountByType(ctx context.Context) (map[string]int, error) {
	type row struct {
		AddressType string
		Total       int
	}
	var rows []row
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.OfacSanctionedAddress{}).
		Select("address_type, COUNT(*) AS total").
		Group("address_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, rw := range rows {
		counts[rw.AddressType] = rw.Total
	}
	return counts, nil
}

// AppendUpdateLog records one ingestion run.
func (r *OfacRepository) AppendUpdateLog(ctx context.Context, log *entities.OfacUpdateLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	m := &models.OfacUpdateLog{
		ID:             log.ID,
		TotalAddresses: log.TotalAddresses,
		NewAddresses:   log.NewAddresses,
		Removed:        log.Removed,
		Success:        log.Success,
		Error:          log.Error.Ptr(),
		CreatedAt:      log.CreatedAt,
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	log.CreatedAt = m.CreatedAt
	return nil
}

// LatestUpdateLog returns the most recent ingestion run, or nil when the
// list has never been ingested.
func (r *OfacRepository) LatestUpdateLog(ctx context.Context) (*entities.OfacUpdateLog, error) {
	var m models.OfacUpdateLog
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Order("created_at DESC").
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entities.OfacUpdateLog{
		ID:             m.ID,
		TotalAddresses: m.TotalAddresses,
		NewAddresses:   m.NewAddresses,
		Removed:        m.Removed,
		Success:        m.Success,
		Error:          null.StringFromPtr(m.Error),
		CreatedAt:      m.CreatedAt,
	}, nil
}

func (r *OfacRepository) toModel(e *entities.OfacSanctionedAddress) *models.OfacSanctionedAddress {
	id := e.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &models.OfacSanctionedAddress{
		ID:           id,
		Address:      e.Address,
		AddressLower: e.AddressLower,
		AddressType:  e.AddressType,
		SDNName:      e.SDNName,
		SDNID:        e.SDNID,
		Source:       e.Source,
		LastSeenAt:   e.LastSeenAt,
	}
}

func (r *OfacRepository) toEntity(m *models.OfacSanctionedAddress) *entities.OfacSanctionedAddress {
	return &entities.OfacSanctionedAddress{
		ID:           m.ID,
		Address:      m.Address,
		AddressLower: m.AddressLower,
		AddressType:  m.AddressType,
		SDNName:      m.SDNName,
		SDNID:        m.SDNID,
		Source:       m.Source,
		LastSeenAt:   m.LastSeenAt,
	}
}
