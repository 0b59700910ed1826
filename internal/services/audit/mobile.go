package audit

import "github.com/ternarybob/censeo/internal/models"

// Mobile check point values.
const (
	pointsViewport         = 60
	pointsResponsiveImages = 40
)

// ScoreMobile evaluates mobile responsiveness signals.
//
// Checks:
// - Viewport meta tag
// - Responsive image attributes (srcset on at least one image)
//
// The responsive-images check is skipped on documents without images.
func ScoreMobile(doc *models.Document) models.SectionScore {
	score := 0
	var passed []string
	var issues []models.Issue

	if doc.HasViewport {
		score += pointsViewport
		passed = append(passed, "viewport meta tag present")
	} else {
		issues = append(issues, issue(models.ComponentMobile, models.SeverityCritical,
			"missing viewport meta tag"))
	}

	if len(doc.Images) > 0 {
		if countResponsiveImages(doc.Images) > 0 {
			score += pointsResponsiveImages
			passed = append(passed, "responsive image attributes in use")
		} else {
			issues = append(issues, issue(models.ComponentMobile, models.SeverityMedium,
				"no images use srcset"))
		}
	}

	return models.SectionScore{
		Component: models.ComponentMobile,
		Score:     clampScore(score),
		Passed:    passed,
		Issues:    issues,
	}
}

func countResponsiveImages(images []models.ImageRef) int {
	count := 0
	for _, img := range images {
		if img.Srcset != "" {
			count++
		}
	}
	return count
}
