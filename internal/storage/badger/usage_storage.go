package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// UsageStorage implements the UsageStorage interface for Badger
type UsageStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewUsageStorage creates a new UsageStorage instance
func NewUsageStorage(db *BadgerDB, logger arbor.ILogger) interfaces.UsageStorage {
	return &UsageStorage{
		db:     db,
		logger: logger,
	}
}

// Append stores one immutable usage record.
func (s *UsageStorage) Append(record *models.UsageRecord) error {
	if record.ID == "" {
		return fmt.Errorf("usage record requires an ID")
	}
	if err := s.db.Store().Insert(record.ID, record); err != nil {
		return fmt.Errorf("failed to append usage record: %w", err)
	}
	return nil
}

// ByDay returns all records bucketed to the given day string.
func (s *UsageStorage) ByDay(day string) ([]models.UsageRecord, error) {
	var records []models.UsageRecord
	err := s.db.Store().Find(&records, badgerhold.Where("Day").Eq(day))
	if err != nil {
		return nil, fmt.Errorf("failed to query usage records for day %s: %w", day, err)
	}
	return records, nil
}

// ByMonth returns all records bucketed to the given month string.
func (s *UsageStorage) ByMonth(month string) ([]models.UsageRecord, error) {
	var records []models.UsageRecord
	err := s.db.Store().Find(&records, badgerhold.Where("Month").Eq(month))
	if err != nil {
		return nil, fmt.Errorf("failed to query usage records for month %s: %w", month, err)
	}
	return records, nil
}

// OlderThan returns records created before the cutoff.
func (s *UsageStorage) OlderThan(cutoff time.Time) ([]models.UsageRecord, error) {
	var records []models.UsageRecord
	err := s.db.Store().Find(&records, badgerhold.Where("CreatedAt").Lt(cutoff))
	if err != nil {
		return nil, fmt.Errorf("failed to query stale usage records: %w", err)
	}
	return records, nil
}

// Delete removes one record by ID.
func (s *UsageStorage) Delete(id string) error {
	if err := s.db.Store().Delete(id, &models.UsageRecord{}); err != nil {
		return fmt.Errorf("failed to delete usage record %s: %w", id, err)
	}
	return nil
}

// UpsertRollup inserts or merges a monthly rollup. Merging adds the incoming
// counts onto the stored rollup.
func (s *UsageStorage) UpsertRollup(rollup *models.UsageRollup) error {
	var existing models.UsageRollup
	err := s.db.Store().Get(rollup.ID, &existing)
	if err == nil {
		rollup.Requests += existing.Requests
		rollup.TokensIn += existing.TokensIn
		rollup.TokensOut += existing.TokensOut
		rollup.Cost += existing.Cost
	} else if err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to check existing rollup: %w", err)
	}

	rollup.UpdatedAt = time.Now()
	if err := s.db.Store().Upsert(rollup.ID, rollup); err != nil {
		return fmt.Errorf("failed to upsert usage rollup: %w", err)
	}
	return nil
}

// RollupsByMonth returns the rollups for one month bucket.
func (s *UsageStorage) RollupsByMonth(month string) ([]models.UsageRollup, error) {
	var rollups []models.UsageRollup
	err := s.db.Store().Find(&rollups, badgerhold.Where("Month").Eq(month))
	if err != nil {
		return nil, fmt.Errorf("failed to query rollups for month %s: %w", month, err)
	}
	return rollups, nil
}

// DeleteRollupsBefore removes rollups whose month sorts before the cutoff.
// Month strings ("2006-01") sort lexically in chronological order.
func (s *UsageStorage) DeleteRollupsBefore(month string) (int, error) {
	var stale []models.UsageRollup
	err := s.db.Store().Find(&stale, badgerhold.Where("Month").Lt(month))
	if err != nil {
		return 0, fmt.Errorf("failed to query stale rollups: %w", err)
	}

	deleted := 0
	for _, rollup := range stale {
		if err := s.db.Store().Delete(rollup.ID, &models.UsageRollup{}); err != nil {
			s.logger.Warn().Err(err).Str("rollup_id", rollup.ID).Msg("Failed to delete stale rollup")
			continue
		}
		deleted++
	}
	return deleted, nil
}

// Ensure UsageStorage implements the interface
var _ interfaces.UsageStorage = (*UsageStorage)(nil)
