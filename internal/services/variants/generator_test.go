package variants

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/censeo/internal/common"
	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/models"
)

// fakeOrchestrator returns a scripted result or error.
type fakeOrchestrator struct {
	result *models.CompletionResult
	err    error
	last   *models.CompletionRequest
}

func (f *fakeOrchestrator) Complete(_ context.Context, request *models.CompletionRequest) (*models.CompletionResult, error) {
	f.last = request
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestService(orch interfaces.CompletionService) *Service {
	return NewService(orch, &common.VariantsConfig{DefaultCount: 5}, arbor.NewLogger())
}

func titleRequest() *models.CompletionRequest {
	return &models.CompletionRequest{
		Task: models.TaskTitleVariants,
		Payload: map[string]string{
			"title":    "Garden Irrigation",
			"keywords": "irrigation, drip",
		},
	}
}

func TestGenerateRanksCandidates(t *testing.T) {
	orch := &fakeOrchestrator{result: &models.CompletionResult{
		Candidates: []string{
			"Gardening Tips",                                 // short, no keywords
			"Drip Irrigation Systems for Every Garden Size",  // keywords, good length
			"A Guide to Drip Irrigation and Garden Watering", // keywords, good length
		},
		Provider: "gemini",
	}}
	s := newTestService(orch)

	set, err := s.Generate(context.Background(), titleRequest())
	require.NoError(t, err)

	require.Len(t, set.Variants, 3)
	assert.Equal(t, "gemini", set.Provider)
	assert.False(t, set.Fallback)

	for i := 1; i < len(set.Variants); i++ {
		assert.GreaterOrEqual(t, set.Variants[i-1].Score, set.Variants[i].Score,
			"variants must be sorted best score first")
	}
	assert.NotEqual(t, "Gardening Tips", set.Variants[0].Text,
		"keyword-free short candidate must not rank first")
}

func TestGenerateTruncatesOversizedTitle(t *testing.T) {
	long := strings.Repeat("Drip Irrigation Guide ", 6)[:120] // 120 chars
	orch := &fakeOrchestrator{result: &models.CompletionResult{
		Candidates: []string{long, "Drip Irrigation Systems for Every Garden"},
		Provider:   "gemini",
	}}
	s := newTestService(orch)

	set, err := s.Generate(context.Background(), titleRequest())
	require.NoError(t, err)

	// The oversized candidate is truncated, never dropped.
	require.Len(t, set.Variants, 2)
	var truncated *models.Variant
	for i := range set.Variants {
		if set.Variants[i].Truncated {
			truncated = &set.Variants[i]
		}
	}
	require.NotNil(t, truncated, "no variant marked truncated")
	assert.LessOrEqual(t, len([]rune(truncated.Text)), titleMaxLength)
	assert.False(t, strings.HasSuffix(truncated.Text, " "), "truncation must end on a word boundary")
}

func TestGenerateTemplateFallback(t *testing.T) {
	orch := &fakeOrchestrator{err: interfaces.NewAllProvidersError()}
	s := newTestService(orch)

	set, err := s.Generate(context.Background(), titleRequest())
	require.NoError(t, err, "orchestrator failure must degrade, not fail")

	assert.True(t, set.Fallback)
	assert.NotEmpty(t, set.Variants, "fallback must never return an empty result")
	for _, v := range set.Variants {
		assert.NotEmpty(t, v.Text)
	}
}

func TestGenerateKeywordFallbackFromContentOnly(t *testing.T) {
	orch := &fakeOrchestrator{err: interfaces.NewAllProvidersError()}
	s := newTestService(orch)

	set, err := s.Generate(context.Background(), &models.CompletionRequest{
		Task: models.TaskKeywordSuggestions,
		Payload: map[string]string{
			"content": "Drip irrigation delivers water slowly to garden beds, cutting waste and keeping roots healthy.",
		},
	})
	require.NoError(t, err)

	assert.True(t, set.Fallback)
	require.NotEmpty(t, set.Variants, "content-only payload must still yield fallback keywords")
	for _, v := range set.Variants {
		assert.NotEmpty(t, v.Text)
	}
	assert.Equal(t, "drip", set.Variants[0].Text)
}

func TestGenerateDescriptionActionPhraseBonus(t *testing.T) {
	request := &models.CompletionRequest{
		Task: models.TaskDescriptionVariants,
		Payload: map[string]string{
			"title":    "Garden Irrigation",
			"keywords": "irrigation",
		},
	}

	withAction := "Discover how drip irrigation keeps every garden bed healthy while cutting water use to a minimum."
	withoutAction := "Drip irrigation keeps every garden bed healthy while also cutting total water use to a minimum."

	orch := &fakeOrchestrator{result: &models.CompletionResult{
		Candidates: []string{withoutAction, withAction},
		Provider:   "gemini",
	}}
	s := newTestService(orch)

	set, err := s.Generate(context.Background(), request)
	require.NoError(t, err)
	require.Len(t, set.Variants, 2)

	assert.Equal(t, withAction, set.Variants[0].Text, "action phrase should outrank the plain description")
}

func TestGenerateAppliesVariantCountBounds(t *testing.T) {
	orch := &fakeOrchestrator{result: &models.CompletionResult{
		Candidates: []string{"Drip Irrigation Systems for Every Garden"},
		Provider:   "gemini",
	}}
	s := newTestService(orch)
	ctx := context.Background()

	request := titleRequest()
	request.VariantCount = 9
	_, err := s.Generate(ctx, request)
	require.NoError(t, err)
	assert.Equal(t, maxVariantCount, orch.last.VariantCount)

	request = titleRequest()
	_, err = s.Generate(ctx, request)
	require.NoError(t, err)
	assert.Equal(t, 5, orch.last.VariantCount, "zero count uses the configured default")
}

func TestGenerateRejectsNonVariantTask(t *testing.T) {
	s := newTestService(&fakeOrchestrator{})

	_, err := s.Generate(context.Background(), &models.CompletionRequest{
		Task:    models.TaskFreeText,
		Payload: map[string]string{"prompt": "hello"},
	})
	require.Error(t, err)

	var validation *interfaces.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestGeneratePropagatesValidationError(t *testing.T) {
	orch := &fakeOrchestrator{err: &interfaces.ValidationError{Err: context.Canceled}}
	s := newTestService(orch)

	_, err := s.Generate(context.Background(), titleRequest())
	require.Error(t, err, "validation errors must not trigger the template fallback")
}

func TestTruncateAtWordBoundary(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short title", 60, "short title"},
		{"one two three four five six seven", 20, "one two three four"},
		{"nospacesinthiscandidateatall", 10, "nospacesin"},
	}

	for _, tt := range tests {
		if got := truncateAtWordBoundary(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncateAtWordBoundary(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}
