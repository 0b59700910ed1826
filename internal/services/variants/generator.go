// Package variants turns orchestrated completions into ranked, length-valid
// title, description, and keyword candidates. Every deterministic step
// (validation, truncation, scoring, ordering) lives here; the only
// non-deterministic input is the candidate text itself.
package variants

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/censeo/internal/common"
	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/models"
)

// Candidate length bounds per task, in characters.
const (
	titleMinLength       = 30
	titleMaxLength       = 60
	descriptionMinLength = 70
	descriptionMaxLength = 160

	minVariantCount = 3
	maxVariantCount = 5
)

// actionPhrases earn descriptions a call-to-action bonus in scoring.
var actionPhrases = []string{
	"learn", "discover", "get", "find", "explore", "start", "try", "see how",
	"read", "download", "compare", "save",
}

// Service generates ranked variant sets via the completion orchestrator.
type Service struct {
	orchestrator interfaces.CompletionService
	config       *common.VariantsConfig
	logger       arbor.ILogger
}

// NewService creates the variant generator.
func NewService(orchestrator interfaces.CompletionService, config *common.VariantsConfig, logger arbor.ILogger) *Service {
	return &Service{
		orchestrator: orchestrator,
		config:       config,
		logger:       logger,
	}
}

// Generate produces a ranked variant set for a title, description, or keyword
// task. An orchestrator failure degrades to deterministic template candidates
// built from the payload, so the result is never empty; only a malformed
// request fails.
func (s *Service) Generate(ctx context.Context, request *models.CompletionRequest) (*models.VariantSet, error) {
	switch request.Task {
	case models.TaskTitleVariants, models.TaskDescriptionVariants, models.TaskKeywordSuggestions:
	default:
		return nil, &interfaces.ValidationError{Err: fmt.Errorf("task %q does not produce variants", request.Task)}
	}
	if err := request.Validate(); err != nil {
		return nil, &interfaces.ValidationError{Err: err}
	}

	normalized := *request
	normalized.VariantCount = s.variantCount(request.VariantCount)

	started := time.Now()
	result, err := s.orchestrator.Complete(ctx, &normalized)
	if err != nil {
		var validation *interfaces.ValidationError
		if errors.As(err, &validation) {
			return nil, validation
		}

		s.logger.Warn().
			Str("task", string(request.Task)).
			Err(err).
			Msg("Completion failed, falling back to template candidates")

		set := s.rank(&normalized, templateCandidates(&normalized))
		set.Fallback = true
		set.Duration = time.Since(started)
		return set, nil
	}

	set := s.rank(&normalized, result.Candidates)
	set.Provider = result.Provider
	set.ServedFromCache = result.ServedFromCache
	set.Duration = time.Since(started)
	return set, nil
}

// rank validates, truncates, scores, and orders raw candidates. Sorting is
// stable so equal scores keep provider order.
func (s *Service) rank(request *models.CompletionRequest, candidates []string) *models.VariantSet {
	minLen, maxLen := lengthBounds(request)

	variants := make([]models.Variant, 0, len(candidates))
	seen := make(map[string]bool)
	for _, raw := range candidates {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}

		truncated := false
		if maxLen > 0 && len([]rune(text)) > maxLen {
			text = truncateAtWordBoundary(text, maxLen)
			truncated = true
		}

		key := strings.ToLower(text)
		if seen[key] {
			continue
		}
		seen[key] = true

		variants = append(variants, models.Variant{
			Text:      text,
			Truncated: truncated,
			Score:     scoreCandidate(request, text, minLen, maxLen),
		})
	}

	sort.SliceStable(variants, func(i, j int) bool {
		return variants[i].Score > variants[j].Score
	})

	return &models.VariantSet{
		Task:     request.Task,
		Variants: variants,
	}
}

// variantCount applies the configured default and policy bounds.
func (s *Service) variantCount(requested int) int {
	count := requested
	if count == 0 {
		count = s.config.DefaultCount
	}
	if count < minVariantCount {
		count = minVariantCount
	}
	if count > maxVariantCount {
		count = maxVariantCount
	}
	return count
}

// lengthBounds returns the candidate length window for a task. A request
// MaxLength overrides the task maximum; keyword tasks carry no bounds.
func lengthBounds(request *models.CompletionRequest) (min, max int) {
	switch request.Task {
	case models.TaskTitleVariants:
		min, max = titleMinLength, titleMaxLength
	case models.TaskDescriptionVariants:
		min, max = descriptionMinLength, descriptionMaxLength
	default:
		return 0, 0
	}
	if request.MaxLength > 0 && request.MaxLength < max {
		max = request.MaxLength
	}
	return min, max
}

// truncateAtWordBoundary cuts text to at most maxLen runes, preferring the
// last complete word. Candidates are truncated, never dropped.
func truncateAtWordBoundary(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	cut := string(runes[:maxLen])
	if idx := strings.LastIndex(cut, " "); idx > maxLen/2 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,;:-")
}

// scoreCandidate computes the deterministic quality sub-score of one
// candidate: length fit, keyword presence and density, and an action-phrase
// bonus for descriptions.
func scoreCandidate(request *models.CompletionRequest, text string, minLen, maxLen int) float64 {
	score := 0.0

	// Length fit, up to 50 points. Inside the window scores by closeness to
	// the window midpoint; below the minimum scores proportionally.
	length := len([]rune(text))
	switch {
	case maxLen == 0:
		score += 50
	case length >= minLen && length <= maxLen:
		mid := float64(minLen+maxLen) / 2
		span := float64(maxLen-minLen) / 2
		distance := float64(length) - mid
		if distance < 0 {
			distance = -distance
		}
		score += 35 + 15*(1-distance/span)
	case length < minLen && minLen > 0:
		score += 35 * float64(length) / float64(minLen)
	default:
		score += 35
	}

	// Keyword presence, up to 40 points.
	if keywords := splitKeywords(request.Payload["keywords"]); len(keywords) > 0 {
		lower := strings.ToLower(text)
		matched := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched++
			}
		}
		score += 40 * float64(matched) / float64(len(keywords))
	} else {
		score += 20
	}

	// Action phrase bonus for descriptions, 10 points.
	if request.Task == models.TaskDescriptionVariants {
		lower := strings.ToLower(text)
		for _, phrase := range actionPhrases {
			if strings.Contains(lower, phrase) {
				score += 10
				break
			}
		}
	} else {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

// templateCandidates builds the deterministic fallback set from the request
// payload alone. Payloads that carry only content or description still yield
// candidates; the fallback is never empty.
func templateCandidates(request *models.CompletionRequest) []string {
	title := strings.TrimSpace(request.Payload["title"])
	keywords := splitKeywords(request.Payload["keywords"])
	primary := ""
	if len(keywords) > 0 {
		primary = keywords[0]
	}
	if title == "" {
		title = primary
	}
	if title == "" {
		title = leadingPhrase(request.Payload["description"])
	}
	if title == "" {
		title = leadingPhrase(request.Payload["content"])
	}
	if title == "" {
		title = "this page"
	}

	switch request.Task {
	case models.TaskTitleVariants:
		candidates := []string{
			title,
			fmt.Sprintf("%s | Complete Guide", title),
			fmt.Sprintf("The Essential Guide to %s", title),
		}
		if primary != "" && !strings.EqualFold(primary, title) {
			candidates = append(candidates, fmt.Sprintf("%s: %s Explained", title, primary))
		}
		return nonEmpty(candidates)

	case models.TaskDescriptionVariants:
		description := strings.TrimSpace(request.Payload["description"])
		candidates := []string{
			description,
			fmt.Sprintf("Learn everything about %s. Practical guidance, clear examples, and proven steps to get results.", title),
			fmt.Sprintf("Discover %s with this complete guide. Find out what matters and how to apply it today.", title),
		}
		return nonEmpty(candidates)

	default:
		if len(keywords) > 0 {
			return keywords
		}
		if terms := payloadTerms(request.Payload, maxVariantCount); len(terms) > 0 {
			return terms
		}
		return []string{strings.ToLower(title)}
	}
}

// leadingPhrase returns the first few words of a payload field.
func leadingPhrase(raw string) string {
	words := strings.Fields(strings.TrimSpace(raw))
	if len(words) > 6 {
		words = words[:6]
	}
	return strings.Join(words, " ")
}

// payloadTerms extracts up to limit distinct terms from the textual payload
// fields, in order of appearance. Short words and punctuation are stripped.
func payloadTerms(payload map[string]string, limit int) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, field := range []string{"description", "content", "title"} {
		for _, word := range strings.Fields(strings.ToLower(payload[field])) {
			word = strings.Trim(word, ".,;:!?\"'()")
			if len([]rune(word)) < 4 || seen[word] {
				continue
			}
			seen[word] = true
			terms = append(terms, word)
			if len(terms) == limit {
				return terms
			}
		}
	}
	return terms
}

// splitKeywords parses the comma-separated keywords payload field into
// trimmed lowercase terms.
func splitKeywords(raw string) []string {
	var keywords []string
	for _, part := range strings.Split(raw, ",") {
		if kw := strings.ToLower(strings.TrimSpace(part)); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

func nonEmpty(candidates []string) []string {
	out := candidates[:0]
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}
