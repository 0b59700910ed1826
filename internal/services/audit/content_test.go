package audit

import (
	"strings"
	"testing"

	"github.com/ternarybob/censeo/internal/models"
)

func headings(levels ...int) []models.Heading {
	hs := make([]models.Heading, len(levels))
	for i, l := range levels {
		hs[i] = models.Heading{Level: l, Text: "heading"}
	}
	return hs
}

func TestScoreContent(t *testing.T) {
	tests := []struct {
		name      string
		doc       *models.Document
		wantScore int
	}{
		{
			name: "full marks",
			doc: &models.Document{
				Title:     "Garden Irrigation",
				WordCount: 450,
				Headings:  headings(1, 2, 2, 3),
				Links:     []models.LinkRef{{Href: "/about", Internal: true}},
			},
			wantScore: 100,
		},
		{
			name: "graded word count in the mid band",
			doc: &models.Document{
				Title:     "Garden Irrigation",
				WordCount: 200, // halfway through 100-300
				Headings:  headings(1),
				Links:     []models.LinkRef{{Href: "/about", Internal: true}},
			},
			// 35*(200-100)/200 = 17 words points
			wantScore: 17 + 25 + 15 + 15 + 10,
		},
		{
			name: "very thin content gets no word points",
			doc: &models.Document{
				Title:     "Garden Irrigation",
				WordCount: 50,
				Headings:  headings(1),
			},
			wantScore: 25 + 15 + 10,
		},
		{
			name: "multiple h1 penalized",
			doc: &models.Document{
				Title:     "Garden Irrigation",
				WordCount: 450,
				Headings:  headings(1, 1, 2),
			},
			wantScore: 35 + 15 + 10,
		},
		{
			name: "skipped heading level",
			doc: &models.Document{
				Title:     "Garden Irrigation",
				WordCount: 450,
				Headings:  headings(1, 3),
			},
			wantScore: 35 + 25 + 10,
		},
		{
			name: "external links only",
			doc: &models.Document{
				Title:     "Garden Irrigation",
				WordCount: 450,
				Headings:  headings(1, 2),
				Links:     []models.LinkRef{{Href: "https://other.example", Internal: false}},
			},
			wantScore: 35 + 25 + 15 + 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreContent(tt.doc)
			if got.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", got.Score, tt.wantScore)
			}
		})
	}
}

func TestScoreContentParagraphAdvisory(t *testing.T) {
	long := make([]string, paragraphWordLimit+1)
	for i := range long {
		long[i] = "word"
	}
	base := &models.Document{
		Title:     "Garden Irrigation",
		WordCount: 450,
		Headings:  headings(1, 2),
		Links:     []models.LinkRef{{Href: "/about", Internal: true}},
	}

	base.Paragraphs = []string{"Short paragraph.", strings.Join(long, " ")}
	flagged := ScoreContent(base)

	found := false
	for _, iss := range flagged.Issues {
		if iss.Severity == models.SeverityInfo && strings.Contains(iss.Message, "paragraph") {
			found = true
		}
	}
	if !found {
		t.Error("overlong paragraph should produce an info advisory")
	}
	if flagged.Score != 100 {
		t.Errorf("advisory must not cost points: Score = %d, want 100", flagged.Score)
	}

	base.Paragraphs = []string{"Short paragraph."}
	clean := ScoreContent(base)
	for _, iss := range clean.Issues {
		if strings.Contains(iss.Message, "paragraph") {
			t.Errorf("short paragraphs must not be flagged: %q", iss.Message)
		}
	}
}

func TestScoreContentMissingTitleContext(t *testing.T) {
	with := ScoreContent(&models.Document{Title: "Garden Irrigation", WordCount: 450, Headings: headings(1, 2, 2)})
	without := ScoreContent(&models.Document{WordCount: 450, Headings: headings(1, 2, 2)})

	if without.Score >= with.Score {
		t.Errorf("missing title context should lower the score: with=%d without=%d", with.Score, without.Score)
	}
}
