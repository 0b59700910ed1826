package audit

import (
	"fmt"
	"strings"

	"github.com/ternarybob/censeo/internal/models"
)

// Security check point values.
const (
	pointsHTTPSScheme    = 60
	pointsNoMixedContent = 40
)

// ScoreSecurity evaluates transport security signals.
//
// Checks:
// - Source URL served over https
// - No subresources referenced over plain http
//
// Both checks are skipped when the source URL is unknown; mixed content is
// only meaningful for a secure page.
func ScoreSecurity(doc *models.Document) models.SectionScore {
	score := 0
	var passed []string
	var issues []models.Issue

	if doc.SourceURL == "" {
		return models.SectionScore{
			Component: models.ComponentSecurity,
			Score:     0,
			Passed:    passed,
			Issues:    issues,
		}
	}

	if strings.HasPrefix(strings.ToLower(doc.SourceURL), "https://") {
		score += pointsHTTPSScheme
		passed = append(passed, "served over https")

		if refs := doc.MixedContentRefs(); len(refs) == 0 {
			score += pointsNoMixedContent
			passed = append(passed, "no mixed content")
		} else {
			issues = append(issues, issue(models.ComponentSecurity, models.SeverityHigh,
				fmt.Sprintf("%d subresources load over plain http", len(refs))))
		}
	} else {
		issues = append(issues, issue(models.ComponentSecurity, models.SeverityCritical,
			"page is not served over https"))
	}

	return models.SectionScore{
		Component: models.ComponentSecurity,
		Score:     clampScore(score),
		Passed:    passed,
		Issues:    issues,
	}
}
