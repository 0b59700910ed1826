package models

import "time"

// AuditComponent identifies one of the seven scoring dimensions.
type AuditComponent string

const (
	ComponentMetadata      AuditComponent = "metadata"
	ComponentContent       AuditComponent = "content"
	ComponentTechnical     AuditComponent = "technical"
	ComponentMobile        AuditComponent = "mobile"
	ComponentPerformance   AuditComponent = "performance"
	ComponentSecurity      AuditComponent = "security"
	ComponentAccessibility AuditComponent = "accessibility"
)

// ComponentOrder is the fixed declaration order of the scoring components.
// Recommendation sorting ties are broken by this order, so it must not change
// between runs.
var ComponentOrder = []AuditComponent{
	ComponentMetadata,
	ComponentContent,
	ComponentTechnical,
	ComponentMobile,
	ComponentPerformance,
	ComponentSecurity,
	ComponentAccessibility,
}

// ComponentRank returns the declaration-order index of a component.
// Unknown components sort last.
func ComponentRank(c AuditComponent) int {
	for i, comp := range ComponentOrder {
		if comp == c {
			return i
		}
	}
	return len(ComponentOrder)
}

// Severity classifies how important an issue is to fix. Severity is assigned
// per check and is independent of the points the check deducts.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// SeverityRank returns the sort rank of a severity (critical first).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	case SeverityInfo:
		return 4
	default:
		return 5
	}
}

// Issue is one failed check attached to a section score.
type Issue struct {
	Component AuditComponent `json:"component"`
	Severity  Severity       `json:"severity"`
	Message   string         `json:"message"`
}

// SectionScore is the immutable result of one section scorer.
type SectionScore struct {
	Component AuditComponent `json:"component"`
	Score     int            `json:"score"` // 0-100 inclusive
	Passed    []string       `json:"passed"`
	Issues    []Issue        `json:"issues"`
}

// AuditResult is the aggregate of one audit run.
type AuditResult struct {
	ID              string                          `json:"id"`
	Overall         int                             `json:"overall"` // round of weighted section scores
	Grade           string                          `json:"grade"`
	Sections        map[AuditComponent]SectionScore `json:"sections"`
	Recommendations []Issue                         `json:"recommendations"`
	GeneratedAt     time.Time                       `json:"generated_at"`
}
