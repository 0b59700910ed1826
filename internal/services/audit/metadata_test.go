package audit

import (
	"testing"

	"github.com/ternarybob/censeo/internal/models"
)

func TestScoreMetadata(t *testing.T) {
	tests := []struct {
		name         string
		doc          *models.Document
		wantScore    int
		wantSeverity models.Severity // severity of the first expected issue, empty when none
	}{
		{
			name: "complete metadata",
			doc: &models.Document{
				Title:    "A Complete Guide to Garden Irrigation Systems", // 45 chars
				MetaTags: map[string]string{"description": "Everything you need to plan, install, and maintain a garden irrigation system, from drip lines to smart controllers."},
				PropertyTags: map[string]string{
					"og:title":       "A Complete Guide to Garden Irrigation Systems",
					"og:description": "Plan, install, and maintain a garden irrigation system.",
				},
				CanonicalURL: "https://example.com/irrigation",
			},
			wantScore: 100,
		},
		{
			name:         "missing title is critical",
			doc:          &models.Document{MetaTags: map[string]string{}},
			wantScore:    0,
			wantSeverity: models.SeverityCritical,
		},
		{
			name: "short title loses length points only",
			doc: &models.Document{
				Title:    "Irrigation", // below the 30 char minimum
				MetaTags: map[string]string{},
			},
			wantScore:    25,
			wantSeverity: models.SeverityMedium,
		},
		{
			name: "twitter card counts as social preview",
			doc: &models.Document{
				Title:    "A Complete Guide to Garden Irrigation Systems",
				MetaTags: map[string]string{"twitter:card": "summary_large_image"},
			},
			wantScore: 25 + 15 + 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreMetadata(tt.doc)

			if got.Component != models.ComponentMetadata {
				t.Errorf("Component = %s, want %s", got.Component, models.ComponentMetadata)
			}
			if got.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", got.Score, tt.wantScore)
			}
			if tt.wantSeverity != "" {
				found := false
				for _, issue := range got.Issues {
					if issue.Severity == tt.wantSeverity {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("expected an issue with severity %s, got %v", tt.wantSeverity, got.Issues)
				}
			}
		})
	}
}

func TestScoreMetadataMissingTitleMentionsTitle(t *testing.T) {
	got := ScoreMetadata(&models.Document{MetaTags: map[string]string{}})

	for _, issue := range got.Issues {
		if issue.Severity == models.SeverityCritical {
			if issue.Message != "missing title element" {
				t.Errorf("critical issue message = %q", issue.Message)
			}
			return
		}
	}
	t.Fatal("no critical issue for missing title")
}
