package providers

import (
	"fmt"
	"strings"

	"github.com/ternarybob/censeo/internal/models"
)

// Default candidate counts and length caps applied when the request leaves
// them unset. Length caps mirror the variant generator's hard bounds.
const (
	defaultVariantCount  = 5
	defaultTitleLength   = 60
	defaultDescLength    = 160
	defaultKeywordCount  = 10
	promptContextMaxSize = 2000 // chars of page content included in prompts
)

// BuildPrompt translates a generic completion request into the system
// instruction and user prompt shared by every adapter. Variant tasks always
// request a bare JSON array so responses parse uniformly.
func BuildPrompt(request *models.CompletionRequest) (system string, user string) {
	count := request.VariantCount
	if count <= 0 {
		count = defaultVariantCount
	}

	switch request.Task {
	case models.TaskTitleVariants:
		maxLen := request.MaxLength
		if maxLen <= 0 {
			maxLen = defaultTitleLength
		}
		system = "You are an SEO copywriter. Respond only with a JSON array of strings, no prose and no code fences."
		user = fmt.Sprintf(
			"Write %d alternative page titles, each at most %d characters, for the page described below.%s",
			count, maxLen, promptContext(request.Payload))

	case models.TaskDescriptionVariants:
		maxLen := request.MaxLength
		if maxLen <= 0 {
			maxLen = defaultDescLength
		}
		system = "You are an SEO copywriter. Respond only with a JSON array of strings, no prose and no code fences."
		user = fmt.Sprintf(
			"Write %d alternative meta descriptions, each at most %d characters and ending with a call to action, for the page described below.%s",
			count, maxLen, promptContext(request.Payload))

	case models.TaskKeywordSuggestions:
		system = "You are an SEO analyst. Respond only with a JSON array of strings, no prose and no code fences."
		user = fmt.Sprintf(
			"Suggest up to %d search keyword phrases a user would type to find the page described below, ordered by relevance.%s",
			defaultKeywordCount, promptContext(request.Payload))

	default: // TaskFreeText
		system = request.Payload["system"]
		user = request.Payload["prompt"]
	}

	return system, user
}

// promptContext renders the payload fields as labelled context lines,
// trimming page content to a bounded size. Fields render in a fixed order so
// the prompt, and therefore the cache key's semantics, stay deterministic.
func promptContext(payload map[string]string) string {
	var b strings.Builder
	for _, field := range []string{"url", "title", "description", "keywords", "content"} {
		value, ok := payload[field]
		if !ok || value == "" {
			continue
		}
		if field == "content" && len(value) > promptContextMaxSize {
			value = value[:promptContextMaxSize]
		}
		fmt.Fprintf(&b, "\n%s: %s", strings.ToUpper(field[:1])+field[1:], value)
	}
	return b.String()
}
