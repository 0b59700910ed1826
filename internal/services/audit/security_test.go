package audit

import (
	"testing"

	"github.com/ternarybob/censeo/internal/models"
)

func TestScoreSecurity(t *testing.T) {
	tests := []struct {
		name      string
		doc       *models.Document
		wantScore int
	}{
		{
			name:      "https with clean subresources",
			doc:       &models.Document{SourceURL: "https://example.com/"},
			wantScore: 100,
		},
		{
			name: "https with mixed content",
			doc: &models.Document{
				SourceURL: "https://example.com/",
				Images:    []models.ImageRef{{Src: "http://cdn.example.com/a.jpg"}},
			},
			wantScore: 60,
		},
		{
			name:      "plain http",
			doc:       &models.Document{SourceURL: "http://example.com/"},
			wantScore: 0,
		},
		{
			name:      "unknown source skips both checks",
			doc:       &models.Document{},
			wantScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreSecurity(tt.doc)
			if got.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", got.Score, tt.wantScore)
			}
		})
	}
}

func TestScoreSecurityUnknownSourceHasNoIssues(t *testing.T) {
	got := ScoreSecurity(&models.Document{})
	if len(got.Issues) != 0 {
		t.Errorf("unknown source should skip, not fail: %v", got.Issues)
	}
}
