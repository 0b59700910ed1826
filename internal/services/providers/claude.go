package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/censeo/internal/common"
	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/models"
)

// ProviderClaude is the Claude adapter identifier.
const ProviderClaude = "claude"

const defaultClaudeMaxTokens = 1024

// ClaudeProvider adapts the Anthropic Messages API to the CompletionProvider
// interface.
type ClaudeProvider struct {
	config    *common.ClaudeConfig
	client    anthropic.Client
	logger    arbor.ILogger
	timeout   time.Duration
	maxTokens int
	avail     *availability
}

// NewClaudeProvider creates a Claude adapter.
func NewClaudeProvider(config *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeProvider, error) {
	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid claude timeout %q: %w", config.Timeout, err)
	}

	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}

	client := anthropic.NewClient(
		option.WithAPIKey(config.APIKey),
	)

	logger.Debug().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Int("max_tokens", maxTokens).
		Msg("Claude provider initialized")

	return &ClaudeProvider{
		config:    config,
		client:    client,
		logger:    logger,
		timeout:   timeout,
		maxTokens: maxTokens,
		avail:     newAvailability(4 * time.Second),
	}, nil
}

// Name returns the stable provider identifier.
func (p *ClaudeProvider) Name() string {
	return ProviderClaude
}

// IsAvailable reports whether the adapter holds a configured key.
func (p *ClaudeProvider) IsAvailable(ctx context.Context) bool {
	return p.avail.check(ctx, func(context.Context) bool {
		return p.config.APIKey != ""
	})
}

// Complete performs a single Claude Messages call.
func (p *ClaudeProvider) Complete(ctx context.Context, request *models.CompletionRequest) (*models.CompletionResult, error) {
	if p.config.APIKey == "" {
		return nil, interfaces.NewPermanentError(ProviderClaude, fmt.Errorf("no API key configured"))
	}

	system, user := BuildPrompt(request)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.config.Model),
		MaxTokens: int64(p.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if p.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(p.config.Temperature))
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: system},
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	started := time.Now()
	resp, err := p.client.Messages.New(callCtx, params)
	if err != nil {
		p.avail.invalidate()
		if IsPermanentError(err) {
			return nil, interfaces.NewPermanentError(ProviderClaude, err)
		}
		return nil, interfaces.NewTransientError(ProviderClaude, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, interfaces.NewTransientError(ProviderClaude, fmt.Errorf("empty response"))
	}

	candidates := candidatesForTask(request.Task, text.String())
	if len(candidates) == 0 {
		return nil, interfaces.NewTransientError(ProviderClaude, fmt.Errorf("no candidates parsed from response"))
	}

	p.logger.Debug().
		Str("model", p.config.Model).
		Int("candidates", len(candidates)).
		Dur("duration", time.Since(started)).
		Msg("Claude completion succeeded")

	return &models.CompletionResult{
		Candidates: candidates,
		Provider:   ProviderClaude,
		Duration:   time.Since(started),
	}, nil
}

// EstimateTokens approximates the token counts of one call for the ledger.
// Usage from the response is preferred when the API reported it; the adapter
// keeps the character heuristic as the sole source so estimates stay
// comparable across providers.
func (p *ClaudeProvider) EstimateTokens(request *models.CompletionRequest, result *models.CompletionResult) (int, int) {
	return estimateRequestTokens(request), estimateResultTokens(result)
}

// Close releases adapter state.
func (p *ClaudeProvider) Close() error {
	return nil
}

// Ensure ClaudeProvider implements the interface
var _ interfaces.CompletionProvider = (*ClaudeProvider)(nil)
