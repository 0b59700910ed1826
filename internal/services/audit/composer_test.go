package audit

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/models"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>A Complete Guide to Garden Irrigation Systems</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="description" content="Everything you need to plan, install, and maintain a garden irrigation system, from drip lines to smart controllers.">
<link rel="canonical" href="https://example.com/irrigation">
<link rel="preconnect" href="https://cdn.example.com">
<link rel="stylesheet" href="https://cdn.example.com/site.min.css">
<script type="application/ld+json">{"@type":"Article"}</script>
</head>
<body>
<h1>Garden Irrigation</h1>
<h2>Planning</h2>
<p>Water early and deep. Drip lines beat sprinklers for most beds.</p>
<h2>Installation</h2>
<p>Lay the main line first, then branch to each zone.</p>
<a href="/maintenance">Maintenance guide</a>
<img src="https://example.com/drip.jpg" alt="Drip line" srcset="drip-480.jpg 480w, drip-800.jpg 800w">
</body>
</html>`

// Scenario: no title, no description, one h1 plus two h2.
const untitledPage = `<html><head></head><body>
<h1>Main Section</h1>
<h2>First</h2>
<h2>Second</h2>
<p>Short body text.</p>
</body></html>`

func newTestComposer(t *testing.T) *Composer {
	t.Helper()
	composer, err := NewComposer(nil, arbor.NewLogger())
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	return composer
}

// recordingEvents captures published events for assertions.
type recordingEvents struct {
	published []interfaces.Event
}

func (r *recordingEvents) Subscribe(interfaces.EventType, interfaces.EventHandler) error { return nil }
func (r *recordingEvents) Publish(_ context.Context, event interfaces.Event) error {
	r.published = append(r.published, event)
	return nil
}
func (r *recordingEvents) PublishSync(ctx context.Context, event interfaces.Event) error {
	return r.Publish(ctx, event)
}
func (r *recordingEvents) Close() error { return nil }

func TestAuditPublishesCompletedEvent(t *testing.T) {
	events := &recordingEvents{}
	composer, err := NewComposer(events, arbor.NewLogger())
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}

	result, err := composer.Audit(context.Background(), "https://example.com/irrigation", samplePage)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	if len(events.published) != 1 {
		t.Fatalf("published %d events, want 1", len(events.published))
	}
	event := events.published[0]
	if event.Type != interfaces.EventAuditCompleted {
		t.Errorf("event type = %q, want %q", event.Type, interfaces.EventAuditCompleted)
	}
	payload, ok := event.Payload.(*models.AuditResult)
	if !ok {
		t.Fatalf("event payload is %T, want *models.AuditResult", event.Payload)
	}
	if payload.ID != result.ID {
		t.Errorf("event payload ID = %q, want %q", payload.ID, result.ID)
	}
}

func TestAuditOverallIsWeightedRound(t *testing.T) {
	composer := newTestComposer(t)

	result, err := composer.Audit(context.Background(), "https://example.com/irrigation", samplePage)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	if result.Overall < 0 || result.Overall > 100 {
		t.Errorf("Overall = %d, want 0..100", result.Overall)
	}
	if len(result.Sections) != len(models.ComponentOrder) {
		t.Fatalf("Sections = %d, want %d", len(result.Sections), len(models.ComponentOrder))
	}

	weighted := 0.0
	for component, section := range result.Sections {
		weighted += sectionWeights[component] * float64(section.Score)
	}
	if want := int(math.Round(weighted)); result.Overall != want {
		t.Errorf("Overall = %d, want round of weighted sum %d", result.Overall, want)
	}
}

func TestAuditDeterministic(t *testing.T) {
	composer := newTestComposer(t)
	ctx := context.Background()

	first, err := composer.Audit(ctx, "https://example.com/irrigation", samplePage)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	second, err := composer.Audit(ctx, "https://example.com/irrigation", samplePage)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	// ID and timestamp are generated per run; everything else must match
	// byte for byte.
	first.ID, second.ID = "", ""
	first.GeneratedAt = second.GeneratedAt

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("repeat audit differs:\n%s\n%s", a, b)
	}
}

func TestAuditMissingTitleScenario(t *testing.T) {
	composer := newTestComposer(t)

	result, err := composer.Audit(context.Background(), "", untitledPage)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	metadata := result.Sections[models.ComponentMetadata]
	if metadata.Score >= 50 {
		t.Errorf("metadata score = %d, want below 50", metadata.Score)
	}

	content := result.Sections[models.ComponentContent]
	full := ScoreContent(&models.Document{
		Title:     "present",
		WordCount: 3,
		Headings:  []models.Heading{{Level: 1}, {Level: 2}, {Level: 2}},
	})
	if content.Score >= full.Score {
		t.Errorf("content score %d not penalized for missing title context (with title: %d)", content.Score, full.Score)
	}

	found := false
	for _, rec := range result.Recommendations {
		severe := rec.Severity == models.SeverityCritical || rec.Severity == models.SeverityHigh
		if severe && rec.Message == "missing title element" {
			found = true
		}
	}
	if !found {
		t.Errorf("no critical/high recommendation about the missing title: %v", result.Recommendations)
	}
}

func TestAuditRecommendationOrdering(t *testing.T) {
	composer := newTestComposer(t)

	result, err := composer.Audit(context.Background(), "http://insecure.example", untitledPage)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}

	for i := 1; i < len(result.Recommendations); i++ {
		prev, cur := result.Recommendations[i-1], result.Recommendations[i]
		prevRank, curRank := models.SeverityRank(prev.Severity), models.SeverityRank(cur.Severity)
		if prevRank > curRank {
			t.Fatalf("recommendation %d (%s) sorted after %s", i, cur.Severity, prev.Severity)
		}
		if prevRank == curRank && models.ComponentRank(prev.Component) > models.ComponentRank(cur.Component) {
			t.Fatalf("component tie-break violated at %d: %s after %s", i, cur.Component, prev.Component)
		}
	}
}

func TestAuditGradeBuckets(t *testing.T) {
	tests := []struct {
		overall int
		want    string
	}{
		{100, "A+"}, {97, "A+"}, {96, "A"}, {90, "A-"},
		{85, "B"}, {78, "C+"}, {70, "C-"}, {64, "D"},
		{60, "D-"}, {59, "F"}, {0, "F"},
	}
	for _, tt := range tests {
		if got := gradeFor(tt.overall); got != tt.want {
			t.Errorf("gradeFor(%d) = %s, want %s", tt.overall, got, tt.want)
		}
	}
}

func TestAuditEmptyDocumentFails(t *testing.T) {
	composer := newTestComposer(t)

	_, err := composer.Audit(context.Background(), "", "   ")
	if err == nil {
		t.Fatal("expected a parse error for empty markup")
	}
	var parseErr *interfaces.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("error type = %T, want *interfaces.ParseError", err)
	}
}
