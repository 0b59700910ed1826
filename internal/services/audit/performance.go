package audit

import (
	"fmt"

	"github.com/ternarybob/censeo/internal/models"
)

// Performance check point values. These are static proxies only; no timing
// measurement happens here.
const (
	pointsLazyLoading  = 60
	pointsInlineBudget = 40

	// Images at or past this source-order index count as below the fold.
	belowFoldPosition = 3

	// Combined inline script budget in bytes.
	inlineScriptBudget = 4096
)

// ScorePerformance evaluates static performance proxies.
//
// Checks:
// - Lazy loading on below-the-fold images
// - Combined inline script size within budget
//
// The lazy-loading check is skipped when no image sits below the fold. The
// inline budget check is skipped when the document has no inline scripts.
func ScorePerformance(doc *models.Document) models.SectionScore {
	score := 0
	var passed []string
	var issues []models.Issue

	belowFold, lazy := 0, 0
	for _, img := range doc.Images {
		if img.Position >= belowFoldPosition {
			belowFold++
			if img.Loading == "lazy" {
				lazy++
			}
		}
	}
	if belowFold > 0 {
		if lazy == belowFold {
			score += pointsLazyLoading
			passed = append(passed, "below-the-fold images lazy load")
		} else {
			issues = append(issues, issue(models.ComponentPerformance, models.SeverityMedium,
				fmt.Sprintf("%d of %d below-the-fold images load eagerly", belowFold-lazy, belowFold)))
		}
	}

	inlineTotal, inlineCount := 0, 0
	for _, s := range doc.Scripts {
		if s.Inline {
			inlineCount++
			inlineTotal += s.InlineSize
		}
	}
	if inlineCount > 0 {
		if inlineTotal <= inlineScriptBudget {
			score += pointsInlineBudget
			passed = append(passed, "inline script size within budget")
		} else {
			issues = append(issues, issue(models.ComponentPerformance, models.SeverityLow,
				fmt.Sprintf("inline scripts total %d bytes, budget is %d", inlineTotal, inlineScriptBudget)))
		}
	}

	return models.SectionScore{
		Component: models.ComponentPerformance,
		Score:     clampScore(score),
		Passed:    passed,
		Issues:    issues,
	}
}
