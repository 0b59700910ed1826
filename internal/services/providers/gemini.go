// Package providers contains the completion provider adapters. Each adapter
// translates the generic completion request into one backend's call shape and
// normalizes the response and errors; adapters perform no caching and no cost
// accounting.
package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/censeo/internal/common"
	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/models"
	"google.golang.org/genai"
)

// ProviderGemini is the Gemini adapter identifier. Gemini is the free-quota
// tier and the default primary in the fallback order.
const ProviderGemini = "gemini"

// GeminiProvider adapts the Google Gemini API to the CompletionProvider
// interface.
type GeminiProvider struct {
	config  *common.GeminiConfig
	client  *genai.Client
	logger  arbor.ILogger
	timeout time.Duration
	avail   *availability
}

// NewGeminiProvider creates a Gemini adapter. The client is constructed
// eagerly so a bad key surfaces at startup rather than mid-request.
func NewGeminiProvider(ctx context.Context, config *common.GeminiConfig, logger arbor.ILogger) (*GeminiProvider, error) {
	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid gemini timeout %q: %w", config.Timeout, err)
	}

	probeInterval, err := time.ParseDuration(config.RateLimit)
	if err != nil {
		probeInterval = 4 * time.Second
	}

	var client *genai.Client
	if config.APIKey != "" {
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  config.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
	}

	logger.Debug().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Msg("Gemini provider initialized")

	return &GeminiProvider{
		config:  config,
		client:  client,
		logger:  logger,
		timeout: timeout,
		avail:   newAvailability(probeInterval),
	}, nil
}

// Name returns the stable provider identifier.
func (p *GeminiProvider) Name() string {
	return ProviderGemini
}

// IsAvailable reports whether the adapter can serve calls. The probe is local
// only: a configured key and constructed client. Backend health shows up as a
// transient completion error and a probe-cache invalidation.
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	return p.avail.check(ctx, func(context.Context) bool {
		return p.config.APIKey != "" && p.client != nil
	})
}

// Complete performs a single Gemini completion call. Variant tasks request
// structured JSON output so the response parses as a bare string array.
func (p *GeminiProvider) Complete(ctx context.Context, request *models.CompletionRequest) (*models.CompletionResult, error) {
	if p.client == nil {
		return nil, interfaces.NewPermanentError(ProviderGemini, fmt.Errorf("no API key configured"))
	}

	system, user := BuildPrompt(request)

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(p.config.Temperature),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if request.Task != models.TaskFreeText {
		// Structured output: Gemini enforces a JSON string array.
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		}
	}

	started := time.Now()
	contents := []*genai.Content{genai.NewContentFromText(user, genai.RoleUser)}
	resp, err := p.client.Models.GenerateContent(callCtx, p.config.Model, contents, config)
	if err != nil {
		p.avail.invalidate()
		if IsPermanentError(err) {
			return nil, interfaces.NewPermanentError(ProviderGemini, err)
		}
		return nil, interfaces.NewTransientError(ProviderGemini, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, interfaces.NewTransientError(ProviderGemini, fmt.Errorf("empty response"))
	}
	text := resp.Text()
	if text == "" {
		return nil, interfaces.NewTransientError(ProviderGemini, fmt.Errorf("empty text in response"))
	}

	candidates := candidatesForTask(request.Task, text)
	if len(candidates) == 0 {
		return nil, interfaces.NewTransientError(ProviderGemini, fmt.Errorf("no candidates parsed from response"))
	}

	p.logger.Debug().
		Str("model", p.config.Model).
		Int("candidates", len(candidates)).
		Dur("duration", time.Since(started)).
		Msg("Gemini completion succeeded")

	return &models.CompletionResult{
		Candidates: candidates,
		Provider:   ProviderGemini,
		Duration:   time.Since(started),
	}, nil
}

// EstimateTokens approximates the token counts of one call for the ledger.
func (p *GeminiProvider) EstimateTokens(request *models.CompletionRequest, result *models.CompletionResult) (int, int) {
	return estimateRequestTokens(request), estimateResultTokens(result)
}

// Close releases the backend client.
func (p *GeminiProvider) Close() error {
	p.client = nil
	return nil
}

// candidatesForTask normalizes a response body into the candidate list.
// Free-text responses stay whole; variant tasks parse as arrays.
func candidatesForTask(task models.TaskType, text string) []string {
	if task == models.TaskFreeText {
		return []string{text}
	}
	return ParseCandidates(text)
}

// estimateRequestTokens sums the prompt material the adapter would send.
func estimateRequestTokens(request *models.CompletionRequest) int {
	system, user := BuildPrompt(request)
	return EstimateTokenCount(system) + EstimateTokenCount(user)
}

// estimateResultTokens sums the returned candidates.
func estimateResultTokens(result *models.CompletionResult) int {
	if result == nil {
		return 0
	}
	total := 0
	for _, c := range result.Candidates {
		total += EstimateTokenCount(c)
	}
	return total
}

// Ensure GeminiProvider implements the interface
var _ interfaces.CompletionProvider = (*GeminiProvider)(nil)
