package audit

import (
	"fmt"

	"github.com/ternarybob/censeo/internal/models"
)

// Metadata check point values. Values are policy, tuned to sum to 100.
const (
	pointsTitlePresent       = 25
	pointsTitleLength        = 15
	pointsDescriptionPresent = 20
	pointsDescriptionLength  = 10
	pointsSocialPreview      = 15
	pointsCanonicalLink      = 15

	titleMinChars       = 30
	titleMaxChars       = 60
	descriptionMinChars = 70
	descriptionMaxChars = 160
)

// ScoreMetadata evaluates the document's head metadata.
//
// Checks:
// - Title element present and within 30-60 characters
// - Meta description present and within 70-160 characters
// - Social preview tags (Open Graph or Twitter card)
// - Canonical link
func ScoreMetadata(doc *models.Document) models.SectionScore {
	score := 0
	var passed []string
	var issues []models.Issue

	if doc.Title != "" {
		score += pointsTitlePresent
		passed = append(passed, "title present")

		titleLen := len([]rune(doc.Title))
		if titleLen >= titleMinChars && titleLen <= titleMaxChars {
			score += pointsTitleLength
			passed = append(passed, "title length in range")
		} else {
			issues = append(issues, issue(models.ComponentMetadata, models.SeverityMedium,
				fmt.Sprintf("title is %d characters, recommended range is %d-%d", titleLen, titleMinChars, titleMaxChars)))
		}
	} else {
		issues = append(issues, issue(models.ComponentMetadata, models.SeverityCritical,
			"missing title element"))
	}

	description := doc.MetaTags["description"]
	if description != "" {
		score += pointsDescriptionPresent
		passed = append(passed, "meta description present")

		descLen := len([]rune(description))
		if descLen >= descriptionMinChars && descLen <= descriptionMaxChars {
			score += pointsDescriptionLength
			passed = append(passed, "meta description length in range")
		} else {
			issues = append(issues, issue(models.ComponentMetadata, models.SeverityMedium,
				fmt.Sprintf("meta description is %d characters, recommended range is %d-%d", descLen, descriptionMinChars, descriptionMaxChars)))
		}
	} else {
		issues = append(issues, issue(models.ComponentMetadata, models.SeverityHigh,
			"missing meta description"))
	}

	if hasSocialPreview(doc) {
		score += pointsSocialPreview
		passed = append(passed, "social preview tags present")
	} else {
		issues = append(issues, issue(models.ComponentMetadata, models.SeverityLow,
			"no social preview tags (og:title/og:description or twitter:card)"))
	}

	if doc.CanonicalURL != "" {
		score += pointsCanonicalLink
		passed = append(passed, "canonical link present")
	} else {
		issues = append(issues, issue(models.ComponentMetadata, models.SeverityLow,
			"missing canonical link"))
	}

	return models.SectionScore{
		Component: models.ComponentMetadata,
		Score:     clampScore(score),
		Passed:    passed,
		Issues:    issues,
	}
}

// hasSocialPreview reports whether the document carries enough tags for a
// link preview on at least one platform.
func hasSocialPreview(doc *models.Document) bool {
	if doc.PropertyTags["og:title"] != "" && doc.PropertyTags["og:description"] != "" {
		return true
	}
	return doc.MetaTags["twitter:card"] != ""
}
