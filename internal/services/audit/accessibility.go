package audit

import (
	"fmt"

	"github.com/ternarybob/censeo/internal/models"
)

// Accessibility check point values. Alt coverage is graded by ratio rather
// than all-or-nothing.
const (
	pointsAltCoverage      = 40
	pointsLabelAssociation = 30
	pointsAriaCoverage     = 30
)

// ScoreAccessibility evaluates accessibility signals.
//
// Checks:
// - Alt attribute coverage across images (graded by coverage ratio)
// - Label association on form controls
// - ARIA attributes or accessible text on interactive elements
//
// Each check is skipped when the document carries none of the elements it
// inspects.
func ScoreAccessibility(doc *models.Document) models.SectionScore {
	score := 0
	var passed []string
	var issues []models.Issue

	if total := len(doc.Images); total > 0 {
		withAlt := 0
		for _, img := range doc.Images {
			if img.HasAlt {
				withAlt++
			}
		}
		score += pointsAltCoverage * withAlt / total
		if withAlt == total {
			passed = append(passed, "all images carry alt attributes")
		} else {
			issues = append(issues, issue(models.ComponentAccessibility, models.SeverityHigh,
				fmt.Sprintf("%d of %d images missing alt attributes", total-withAlt, total)))
		}
	}

	if total := len(doc.FormControls); total > 0 {
		labeled := 0
		for _, c := range doc.FormControls {
			if c.HasLabel || c.AriaLabel != "" {
				labeled++
			}
		}
		if labeled == total {
			score += pointsLabelAssociation
			passed = append(passed, "all form controls labeled")
		} else {
			issues = append(issues, issue(models.ComponentAccessibility, models.SeverityHigh,
				fmt.Sprintf("%d of %d form controls lack label association", total-labeled, total)))
		}
	}

	if total := len(doc.Interactive); total > 0 {
		covered := 0
		for _, el := range doc.Interactive {
			if el.HasAria {
				covered++
			}
		}
		if covered == total {
			score += pointsAriaCoverage
			passed = append(passed, "interactive elements have accessible names")
		} else {
			issues = append(issues, issue(models.ComponentAccessibility, models.SeverityMedium,
				fmt.Sprintf("%d of %d interactive elements lack an accessible name", total-covered, total)))
		}
	}

	return models.SectionScore{
		Component: models.ComponentAccessibility,
		Score:     clampScore(score),
		Passed:    passed,
		Issues:    issues,
	}
}
