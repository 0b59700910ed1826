package audit

import "github.com/ternarybob/censeo/internal/models"

// sectionScorer is one dimension evaluator. Scorers are pure functions over
// the parsed document: no I/O, no shared state, safe to run in parallel.
type sectionScorer func(doc *models.Document) models.SectionScore

// clampScore bounds a sub-score to the 0..100 contract.
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// issue builds one issue record for a component. Severity reflects the
// check's defined importance, not the size of the point deduction.
func issue(component models.AuditComponent, severity models.Severity, message string) models.Issue {
	return models.Issue{Component: component, Severity: severity, Message: message}
}
