package audit

import (
	"fmt"
	"strings"

	"github.com/ternarybob/censeo/internal/models"
)

// Content check point values. Word count is graded rather than binary: full
// credit at the target, proportional credit through the mid band, none below
// the floor.
const (
	pointsWordCount    = 35
	pointsSingleH1     = 25
	pointsHierarchy    = 15
	pointsInternalLink = 15
	pointsTitleContext = 10

	wordCountFloor  = 100
	wordCountTarget = 300

	// Paragraphs above this word count get a readability advisory. The check
	// carries no points.
	paragraphWordLimit = 150
)

// ScoreContent evaluates the document's textual content.
//
// Checks:
// - Word count: full credit at 300+, graded credit between 100 and 300
// - Exactly one top-level heading
// - No skipped heading levels
// - At least one internal link
// - Paragraph length advisory (no points)
// - Title context available for the body copy
func ScoreContent(doc *models.Document) models.SectionScore {
	score := 0
	var passed []string
	var issues []models.Issue

	switch {
	case doc.WordCount >= wordCountTarget:
		score += pointsWordCount
		passed = append(passed, "word count meets target")
	case doc.WordCount >= wordCountFloor:
		// Linear credit across the band
		score += pointsWordCount * (doc.WordCount - wordCountFloor) / (wordCountTarget - wordCountFloor)
		issues = append(issues, issue(models.ComponentContent, models.SeverityMedium,
			fmt.Sprintf("thin content: %d words, target is %d+", doc.WordCount, wordCountTarget)))
	default:
		issues = append(issues, issue(models.ComponentContent, models.SeverityHigh,
			fmt.Sprintf("very thin content: %d words, target is %d+", doc.WordCount, wordCountTarget)))
	}

	h1Count := 0
	for _, h := range doc.Headings {
		if h.Level == 1 {
			h1Count++
		}
	}
	switch h1Count {
	case 1:
		score += pointsSingleH1
		passed = append(passed, "single top-level heading")
	case 0:
		issues = append(issues, issue(models.ComponentContent, models.SeverityHigh,
			"no top-level heading"))
	default:
		issues = append(issues, issue(models.ComponentContent, models.SeverityMedium,
			fmt.Sprintf("%d top-level headings, expected exactly one", h1Count)))
	}

	if len(doc.Headings) > 0 {
		if skipped := firstSkippedHeading(doc.Headings); skipped == 0 {
			score += pointsHierarchy
			passed = append(passed, "heading hierarchy is sequential")
		} else {
			issues = append(issues, issue(models.ComponentContent, models.SeverityLow,
				fmt.Sprintf("heading hierarchy skips to h%d", skipped)))
		}
	}

	if hasInternalLink(doc.Links) {
		score += pointsInternalLink
		passed = append(passed, "internal link present")
	} else {
		issues = append(issues, issue(models.ComponentContent, models.SeverityMedium,
			"no internal links"))
	}

	if longest := longestParagraphWords(doc.Paragraphs); longest > paragraphWordLimit {
		issues = append(issues, issue(models.ComponentContent, models.SeverityInfo,
			fmt.Sprintf("longest paragraph runs %d words, consider breaking up text over %d", longest, paragraphWordLimit)))
	}

	if doc.Title != "" {
		score += pointsTitleContext
		passed = append(passed, "title context available")
	} else {
		issues = append(issues, issue(models.ComponentContent, models.SeverityMedium,
			"body copy has no title context"))
	}

	return models.SectionScore{
		Component: models.ComponentContent,
		Score:     clampScore(score),
		Passed:    passed,
		Issues:    issues,
	}
}

// firstSkippedHeading returns the level of the first heading that jumps more
// than one level past its predecessor, or 0 when the sequence is sound.
func firstSkippedHeading(headings []models.Heading) int {
	previous := 0
	for _, h := range headings {
		if previous > 0 && h.Level > previous+1 {
			return h.Level
		}
		previous = h.Level
	}
	return 0
}

// longestParagraphWords returns the word count of the longest paragraph.
func longestParagraphWords(paragraphs []string) int {
	longest := 0
	for _, p := range paragraphs {
		if n := len(strings.Fields(p)); n > longest {
			longest = n
		}
	}
	return longest
}

func hasInternalLink(links []models.LinkRef) bool {
	for _, l := range links {
		if l.Internal {
			return true
		}
	}
	return false
}
