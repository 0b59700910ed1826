package audit

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/models"
)

// sectionWeights is the fixed policy weight of each component in the overall
// score. The constructor rejects any table that does not sum to exactly 1.0.
var sectionWeights = map[models.AuditComponent]float64{
	models.ComponentMetadata:      0.20,
	models.ComponentContent:       0.20,
	models.ComponentTechnical:     0.15,
	models.ComponentMobile:        0.15,
	models.ComponentPerformance:   0.10,
	models.ComponentSecurity:      0.10,
	models.ComponentAccessibility: 0.10,
}

// gradeBuckets maps minimum overall score to letter grade, highest first.
var gradeBuckets = []struct {
	min   int
	grade string
}{
	{97, "A+"}, {93, "A"}, {90, "A-"},
	{87, "B+"}, {83, "B"}, {80, "B-"},
	{77, "C+"}, {73, "C"}, {70, "C-"},
	{67, "D+"}, {63, "D"}, {60, "D-"},
}

// Composer parses one document and fans it out to the section scorers.
type Composer struct {
	logger  arbor.ILogger
	events  interfaces.EventService
	scorers map[models.AuditComponent]sectionScorer
}

// NewComposer creates the audit composer and validates the weight table. A nil
// events service disables completion events.
func NewComposer(events interfaces.EventService, logger arbor.ILogger) (*Composer, error) {
	sum := 0.0
	for _, c := range models.ComponentOrder {
		weight, ok := sectionWeights[c]
		if !ok {
			return nil, fmt.Errorf("no weight defined for component %s", c)
		}
		sum += weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("section weights sum to %v, expected 1.0", sum)
	}

	return &Composer{
		logger: logger,
		events: events,
		scorers: map[models.AuditComponent]sectionScorer{
			models.ComponentMetadata:      ScoreMetadata,
			models.ComponentContent:       ScoreContent,
			models.ComponentTechnical:     ScoreTechnical,
			models.ComponentMobile:        ScoreMobile,
			models.ComponentPerformance:   ScorePerformance,
			models.ComponentSecurity:      ScoreSecurity,
			models.ComponentAccessibility: ScoreAccessibility,
		},
	}, nil
}

// Audit parses the markup once and runs every section scorer over the parsed
// document concurrently. Apart from the generated ID and timestamp the result
// is fully deterministic for identical input.
func (c *Composer) Audit(ctx context.Context, sourceURL, rawHTML string) (*models.AuditResult, error) {
	doc, err := ParseDocument(sourceURL, rawHTML)
	if err != nil {
		return nil, err
	}

	sections := make(map[models.AuditComponent]models.SectionScore, len(c.scorers))
	results := make([]models.SectionScore, len(models.ComponentOrder))

	group, _ := errgroup.WithContext(ctx)
	for i, component := range models.ComponentOrder {
		scorer := c.scorers[component]
		group.Go(func() error {
			results[i] = scorer(doc)
			return nil
		})
	}
	// Scorers are pure and cannot fail; Wait only joins the goroutines.
	_ = group.Wait()

	weighted := 0.0
	for _, section := range results {
		sections[section.Component] = section
		weighted += sectionWeights[section.Component] * float64(section.Score)
	}
	overall := int(math.Round(weighted))

	result := &models.AuditResult{
		ID:              uuid.NewString(),
		Overall:         overall,
		Grade:           gradeFor(overall),
		Sections:        sections,
		Recommendations: mergeRecommendations(results),
		GeneratedAt:     time.Now().UTC(),
	}

	c.logger.Info().
		Str("audit_id", result.ID).
		Int("overall", result.Overall).
		Str("grade", result.Grade).
		Int("recommendations", len(result.Recommendations)).
		Msg("Audit completed")

	if c.events != nil {
		if err := c.events.Publish(ctx, interfaces.Event{
			Type:    interfaces.EventAuditCompleted,
			Payload: result,
		}); err != nil {
			c.logger.Warn().Err(err).Str("audit_id", result.ID).Msg("Failed to publish audit completed event")
		}
	}

	return result, nil
}

// gradeFor maps an overall score to its letter grade.
func gradeFor(overall int) string {
	for _, bucket := range gradeBuckets {
		if overall >= bucket.min {
			return bucket.grade
		}
	}
	return "F"
}

// mergeRecommendations flattens every section's issues into one list, stably
// sorted by severity rank then component declaration order.
func mergeRecommendations(sections []models.SectionScore) []models.Issue {
	var merged []models.Issue
	for _, section := range sections {
		merged = append(merged, section.Issues...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		si, sj := models.SeverityRank(merged[i].Severity), models.SeverityRank(merged[j].Severity)
		if si != sj {
			return si < sj
		}
		return models.ComponentRank(merged[i].Component) < models.ComponentRank(merged[j].Component)
	})
	return merged
}
