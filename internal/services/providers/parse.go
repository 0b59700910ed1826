package providers

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ParseCandidates extracts the candidate strings from a provider response.
// Backends are asked for a bare JSON array but routinely wrap it in code
// fences or prose, so parsing is lenient: the first JSON array found wins,
// and a fenced block is unwrapped first.
func ParseCandidates(text string) []string {
	text = stripCodeFence(strings.TrimSpace(text))

	result := gjson.Parse(text)
	if !result.IsArray() {
		// Look for an embedded array.
		start := strings.Index(text, "[")
		end := strings.LastIndex(text, "]")
		if start >= 0 && end > start {
			result = gjson.Parse(text[start : end+1])
		}
	}

	if result.IsArray() {
		var candidates []string
		result.ForEach(func(_, value gjson.Result) bool {
			if s := strings.TrimSpace(value.String()); s != "" {
				candidates = append(candidates, s)
			}
			return true
		})
		if len(candidates) > 0 {
			return candidates
		}
	}

	// Last resort: treat non-empty lines as candidates, stripping list
	// markers the model may have added.
	var candidates []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789. ")
		line = strings.Trim(line, `"`)
		if line != "" {
			candidates = append(candidates, line)
		}
	}
	return candidates
}

// stripCodeFence unwraps a ```json ... ``` block if the response is fenced.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:] // drop the language tag line
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// EstimateTokenCount approximates token usage from character length. Four
// characters per token is the conventional estimate for English text; the
// ledger needs consistency, not accuracy.
func EstimateTokenCount(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}
