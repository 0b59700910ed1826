// Package ledger implements the append-only usage ledger: per-provider
// request/token/cost counters bucketed by day and month, with edge-triggered
// spend threshold alerts.
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/censeo/internal/common"
	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/models"
)

// Retention windows. Raw daily records are folded into monthly rollups after
// dailyRetention; rollups are dropped after monthlyRetention.
const (
	dailyRetention   = 90 * 24 * time.Hour
	monthlyRetention = 365 * 24 * time.Hour
)

// Service implements the LedgerService interface.
type Service struct {
	storage interfaces.UsageStorage
	events  interfaces.EventService
	config  *common.LedgerConfig
	logger  arbor.ILogger

	// now is swappable for tests.
	now func() time.Time

	// Fast-path daily total and edge-trigger state, guarded by mu. Crossing
	// detection must not re-fire on every subsequent record.
	mu            sync.Mutex
	currentDay    string
	dayCost       float64
	firedWarning  bool
	firedCritical bool
}

// NewService creates a new ledger service. The in-memory daily total is
// primed from storage so threshold state survives restarts without re-firing
// alerts already sent today.
func NewService(storage interfaces.UsageStorage, events interfaces.EventService, config *common.LedgerConfig, logger arbor.ILogger) *Service {
	s := &Service{
		storage: storage,
		events:  events,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
	s.primeDay()
	return s
}

// primeDay loads today's spend from storage and arms the threshold edges.
// Levels already breached at startup are treated as fired.
func (s *Service) primeDay() {
	day := s.now().Format(models.DayLayout)

	var total float64
	records, err := s.storage.ByDay(day)
	if err != nil {
		s.logger.Warn().Err(err).Str("day", day).Msg("Failed to prime daily spend, starting at zero")
	} else {
		for _, r := range records {
			total += r.Cost
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentDay = day
	s.dayCost = total
	s.firedWarning = s.config.WarningThreshold > 0 && total >= s.config.WarningThreshold
	s.firedCritical = s.config.CriticalThreshold > 0 && total >= s.config.CriticalThreshold
}

// Record appends one usage entry for an uncached provider call. Failures are
// logged and never block the primary response.
func (s *Service) Record(ctx context.Context, provider, identity string, tokensIn, tokensOut int, succeeded bool) {
	now := s.now()
	cost := EstimateCost(provider, tokensIn, tokensOut)

	record := &models.UsageRecord{
		ID:        uuid.NewString(),
		Provider:  provider,
		Identity:  identity,
		TokensIn:  tokensIn,
		TokensOut: tokensOut,
		Cost:      cost,
		Succeeded: succeeded,
		Day:       now.Format(models.DayLayout),
		Month:     now.Format(models.MonthLayout),
		CreatedAt: now,
	}

	if err := s.storage.Append(record); err != nil {
		s.logger.Error().
			Err(err).
			Str("provider", provider).
			Msg("Ledger write failed, usage entry dropped")
		// Still track the in-memory total so threshold alerting degrades
		// gracefully rather than under-counting.
	}

	s.logger.Debug().
		Str("provider", provider).
		Int("tokens_in", tokensIn).
		Int("tokens_out", tokensOut).
		Float64("cost", cost).
		Msg("Usage recorded")

	s.accumulate(ctx, record.Day, cost)
}

// accumulate updates the daily total and fires threshold alerts exactly once
// per crossing per day.
func (s *Service) accumulate(ctx context.Context, day string, cost float64) {
	var alerts []models.ThresholdAlert

	s.mu.Lock()
	if day != s.currentDay {
		// Day rolled over; re-arm both edges.
		s.currentDay = day
		s.dayCost = 0
		s.firedWarning = false
		s.firedCritical = false
	}
	s.dayCost += cost

	if !s.firedWarning && s.config.WarningThreshold > 0 && s.dayCost >= s.config.WarningThreshold {
		s.firedWarning = true
		alerts = append(alerts, s.alertLocked(models.ThresholdWarning, s.config.WarningThreshold))
	}
	if !s.firedCritical && s.config.CriticalThreshold > 0 && s.dayCost >= s.config.CriticalThreshold {
		s.firedCritical = true
		alerts = append(alerts, s.alertLocked(models.ThresholdCritical, s.config.CriticalThreshold))
	}
	s.mu.Unlock()

	for _, alert := range alerts {
		s.logger.Warn().
			Str("level", string(alert.Level)).
			Float64("limit", alert.Limit).
			Float64("spend", alert.Spend).
			Msg("Daily spend threshold breached")
		if err := s.events.Publish(ctx, interfaces.Event{
			Type:    interfaces.EventUsageThresholdBreached,
			Payload: alert,
		}); err != nil {
			s.logger.Error().Err(err).Msg("Failed to publish threshold alert")
		}
	}
}

// alertLocked builds an alert from state guarded by mu.
func (s *Service) alertLocked(level models.ThresholdLevel, limit float64) models.ThresholdAlert {
	return models.ThresholdAlert{
		Level:   level,
		Day:     s.currentDay,
		Limit:   limit,
		Spend:   s.dayCost,
		FiredAt: s.now(),
	}
}

// DailyTotal aggregates all records for the given day.
func (s *Service) DailyTotal(ctx context.Context, day time.Time) (*models.UsageSummary, error) {
	bucket := day.Format(models.DayLayout)
	records, err := s.storage.ByDay(bucket)
	if err != nil {
		return nil, err
	}
	return summarize(bucket, records, nil), nil
}

// MonthlyTotal aggregates all records for the given month, merging raw
// records with any rollups produced by retention pruning.
func (s *Service) MonthlyTotal(ctx context.Context, month time.Time) (*models.UsageSummary, error) {
	bucket := month.Format(models.MonthLayout)
	records, err := s.storage.ByMonth(bucket)
	if err != nil {
		return nil, err
	}
	rollups, err := s.storage.RollupsByMonth(bucket)
	if err != nil {
		return nil, err
	}
	return summarize(bucket, records, rollups), nil
}

// CheckThresholds returns the alerts currently breached for today. Unlike the
// edge-triggered event stream, this reflects standing state.
func (s *Service) CheckThresholds(ctx context.Context) ([]models.ThresholdAlert, error) {
	summary, err := s.DailyTotal(ctx, s.now())
	if err != nil {
		return nil, err
	}

	var alerts []models.ThresholdAlert
	spend := summary.Total.Cost
	if s.config.WarningThreshold > 0 && spend >= s.config.WarningThreshold {
		alerts = append(alerts, models.ThresholdAlert{
			Level:   models.ThresholdWarning,
			Day:     summary.Bucket,
			Limit:   s.config.WarningThreshold,
			Spend:   spend,
			FiredAt: s.now(),
		})
	}
	if s.config.CriticalThreshold > 0 && spend >= s.config.CriticalThreshold {
		alerts = append(alerts, models.ThresholdAlert{
			Level:   models.ThresholdCritical,
			Day:     summary.Bucket,
			Limit:   s.config.CriticalThreshold,
			Spend:   spend,
			FiredAt: s.now(),
		})
	}
	return alerts, nil
}

// Prune folds raw records older than the daily retention window into monthly
// rollups, then drops rollups beyond the monthly retention window.
func (s *Service) Prune(ctx context.Context, now time.Time) (int, error) {
	stale, err := s.storage.OlderThan(now.Add(-dailyRetention))
	if err != nil {
		return 0, err
	}

	// Fold into per-month, per-provider rollups before deleting.
	type bucketKey struct{ month, provider string }
	folded := make(map[bucketKey]*models.UsageRollup)
	for _, r := range stale {
		key := bucketKey{r.Month, r.Provider}
		roll, ok := folded[key]
		if !ok {
			roll = &models.UsageRollup{
				ID:       r.Month + ":" + r.Provider,
				Month:    r.Month,
				Provider: r.Provider,
			}
			folded[key] = roll
		}
		roll.Requests++
		roll.TokensIn += r.TokensIn
		roll.TokensOut += r.TokensOut
		roll.Cost += r.Cost
	}

	for _, roll := range folded {
		if err := s.storage.UpsertRollup(roll); err != nil {
			return 0, err
		}
	}

	removed := 0
	for _, r := range stale {
		if err := s.storage.Delete(r.ID); err != nil {
			s.logger.Warn().Err(err).Str("record_id", r.ID).Msg("Failed to delete pruned usage record")
			continue
		}
		removed++
	}

	cutoffMonth := now.Add(-monthlyRetention).Format(models.MonthLayout)
	dropped, err := s.storage.DeleteRollupsBefore(cutoffMonth)
	if err != nil {
		return removed, err
	}
	removed += dropped

	if removed > 0 {
		s.logger.Info().
			Int("removed", removed).
			Int("rolled_up", len(stale)).
			Msg("Usage ledger pruned")
	}
	return removed, nil
}

// summarize folds records and rollups into a per-provider summary.
func summarize(bucket string, records []models.UsageRecord, rollups []models.UsageRollup) *models.UsageSummary {
	summary := &models.UsageSummary{
		Bucket:      bucket,
		PerProvider: make(map[string]models.UsageTotal),
	}
	for _, r := range records {
		total := summary.PerProvider[r.Provider]
		total.Add(r)
		summary.PerProvider[r.Provider] = total
		summary.Total.Add(r)
	}
	for _, roll := range rollups {
		total := summary.PerProvider[roll.Provider]
		total.Requests += roll.Requests
		total.TokensIn += roll.TokensIn
		total.TokensOut += roll.TokensOut
		total.Cost += roll.Cost
		summary.PerProvider[roll.Provider] = total

		summary.Total.Requests += roll.Requests
		summary.Total.TokensIn += roll.TokensIn
		summary.Total.TokensOut += roll.TokensOut
		summary.Total.Cost += roll.Cost
	}
	return summary
}

// Ensure Service implements the LedgerService interface
var _ interfaces.LedgerService = (*Service)(nil)
