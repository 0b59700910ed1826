package models

import "time"

// Layouts for usage bucketing. Records are bucketed at creation time so
// aggregation on read is a plain equality match.
const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

// UsageRecord is one append-only entry per uncached provider call. Records are
// never mutated after creation; totals are aggregated lazily on read.
type UsageRecord struct {
	ID        string    `json:"id" badgerhold:"key"`
	Provider  string    `json:"provider" badgerhold:"index"`
	Identity  string    `json:"identity,omitempty"`
	TokensIn  int       `json:"tokens_in"`
	TokensOut int       `json:"tokens_out"`
	Cost      float64   `json:"cost"`
	Succeeded bool      `json:"succeeded"`
	Day       string    `json:"day" badgerhold:"index"`
	Month     string    `json:"month" badgerhold:"index"`
	CreatedAt time.Time `json:"created_at"`
}

// UsageRollup is a per-month, per-provider aggregate produced when raw daily
// records age out of their retention window. Rollups keep monthly totals
// accurate for the monthly retention period.
type UsageRollup struct {
	ID        string    `json:"id" badgerhold:"key"` // "<month>:<provider>"
	Month     string    `json:"month" badgerhold:"index"`
	Provider  string    `json:"provider"`
	Requests  int       `json:"requests"`
	TokensIn  int       `json:"tokens_in"`
	TokensOut int       `json:"tokens_out"`
	Cost      float64   `json:"cost"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UsageTotal is an aggregate over a set of usage records.
type UsageTotal struct {
	Requests  int     `json:"requests"`
	TokensIn  int     `json:"tokens_in"`
	TokensOut int     `json:"tokens_out"`
	Cost      float64 `json:"cost"`
}

// Add folds one record into the total.
func (t *UsageTotal) Add(r UsageRecord) {
	t.Requests++
	t.TokensIn += r.TokensIn
	t.TokensOut += r.TokensOut
	t.Cost += r.Cost
}

// UsageSummary is the per-provider breakdown for one day or month bucket.
type UsageSummary struct {
	Bucket      string                `json:"bucket"` // day or month string
	PerProvider map[string]UsageTotal `json:"per_provider"`
	Total       UsageTotal            `json:"total"`
}

// ThresholdLevel identifies which spend threshold was crossed.
type ThresholdLevel string

const (
	ThresholdWarning  ThresholdLevel = "warning"
	ThresholdCritical ThresholdLevel = "critical"
)

// ThresholdAlert is published on the events bus when a daily spend threshold
// is crossed. Alerts are edge-triggered: one per level per day.
type ThresholdAlert struct {
	Level   ThresholdLevel `json:"level"`
	Day     string         `json:"day"`
	Limit   float64        `json:"limit"`
	Spend   float64        `json:"spend"`
	FiredAt time.Time      `json:"fired_at"`
}
