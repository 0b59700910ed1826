package audit

import (
	"strings"

	"github.com/ternarybob/censeo/internal/models"
)

// Technical check point values.
const (
	pointsStructuredData = 40
	pointsMinifiedAssets = 30
	pointsResourceHints  = 30
)

// ScoreTechnical evaluates structural markup quality.
//
// Checks:
// - Structured data (JSON-LD blocks or microdata scopes)
// - Minified external assets (".min." naming on scripts and stylesheets)
// - Resource hint tags (preconnect, preload, prefetch, dns-prefetch)
//
// The minified-assets check is skipped when the document loads no external
// assets at all.
func ScoreTechnical(doc *models.Document) models.SectionScore {
	score := 0
	var passed []string
	var issues []models.Issue

	if doc.StructuredData > 0 {
		score += pointsStructuredData
		passed = append(passed, "structured data present")
	} else {
		issues = append(issues, issue(models.ComponentTechnical, models.SeverityMedium,
			"no structured data markup"))
	}

	external, minified := countExternalAssets(doc)
	if external > 0 {
		if minified*2 >= external {
			score += pointsMinifiedAssets
			passed = append(passed, "external assets appear minified")
		} else {
			issues = append(issues, issue(models.ComponentTechnical, models.SeverityLow,
				"most external assets are not minified"))
		}
	}

	if len(doc.ResourceHints) > 0 {
		score += pointsResourceHints
		passed = append(passed, "resource hints present")
	} else {
		issues = append(issues, issue(models.ComponentTechnical, models.SeverityInfo,
			"no resource hint tags"))
	}

	return models.SectionScore{
		Component: models.ComponentTechnical,
		Score:     clampScore(score),
		Passed:    passed,
		Issues:    issues,
	}
}

// countExternalAssets returns the external script/stylesheet count and how
// many of them carry a ".min." hint.
func countExternalAssets(doc *models.Document) (external, minified int) {
	count := func(ref string) {
		external++
		if strings.Contains(ref, ".min.") {
			minified++
		}
	}
	for _, s := range doc.Scripts {
		if !s.Inline && s.Src != "" {
			count(s.Src)
		}
	}
	for _, href := range doc.Stylesheets {
		count(href)
	}
	return external, minified
}
