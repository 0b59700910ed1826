package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/censeo/internal/models"
)

// LedgerService meters provider usage and estimated spend. Records are
// append-only; totals aggregate lazily on read. Write failures are logged and
// never propagate to the caller of the completion path.
type LedgerService interface {
	// Record appends one usage entry for an uncached provider call. Cost is
	// estimated from the provider's rate table entry. Crossing a daily spend
	// threshold publishes an edge-triggered alert on the events bus.
	Record(ctx context.Context, provider, identity string, tokensIn, tokensOut int, succeeded bool)

	// DailyTotal aggregates all records for the given day.
	DailyTotal(ctx context.Context, day time.Time) (*models.UsageSummary, error)

	// MonthlyTotal aggregates all records for the given month.
	MonthlyTotal(ctx context.Context, month time.Time) (*models.UsageSummary, error)

	// CheckThresholds returns the alerts currently breached for today.
	CheckThresholds(ctx context.Context) ([]models.ThresholdAlert, error)

	// Prune drops daily records older than the daily retention window and
	// records beyond the monthly retention window. Returns entries removed.
	Prune(ctx context.Context, now time.Time) (int, error)
}

// UsageStorage is the persistence contract behind the ledger.
type UsageStorage interface {
	// Append stores one immutable usage record.
	Append(record *models.UsageRecord) error

	// ByDay returns all records bucketed to the given day string.
	ByDay(day string) ([]models.UsageRecord, error)

	// ByMonth returns all records bucketed to the given month string.
	ByMonth(month string) ([]models.UsageRecord, error)

	// OlderThan returns records created before the cutoff.
	OlderThan(cutoff time.Time) ([]models.UsageRecord, error)

	// Delete removes one record by ID.
	Delete(id string) error

	// UpsertRollup inserts or merges a monthly rollup.
	UpsertRollup(rollup *models.UsageRollup) error

	// RollupsByMonth returns the rollups for one month bucket.
	RollupsByMonth(month string) ([]models.UsageRollup, error)

	// DeleteRollupsBefore removes rollups whose month sorts before the
	// cutoff month string. Returns the number removed.
	DeleteRollupsBefore(month string) (int, error)
}
