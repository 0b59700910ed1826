package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/censeo/internal/common"
	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/models"
)

// ProviderOpenAI is the OpenAI-compatible adapter identifier. It speaks the
// chat-completions wire format, so it also fronts self-hosted gateways that
// expose the same endpoint.
const ProviderOpenAI = "openai"

// OpenAIProvider adapts any chat-completions compatible endpoint to the
// CompletionProvider interface.
type OpenAIProvider struct {
	config  *common.OpenAIConfig
	client  *http.Client
	logger  arbor.ILogger
	timeout time.Duration
	avail   *availability
}

// NewOpenAIProvider creates an OpenAI-compatible adapter.
func NewOpenAIProvider(config *common.OpenAIConfig, logger arbor.ILogger) (*OpenAIProvider, error) {
	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid openai timeout %q: %w", config.Timeout, err)
	}

	// Retries are the orchestrator's job. The retryable client is kept for
	// its connection reuse and error wrapping, with retries disabled so a
	// failing call falls through to the next provider immediately.
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.HTTPClient.Timeout = timeout
	retryClient.Logger = nil

	logger.Debug().
		Str("base_url", config.BaseURL).
		Str("model", config.Model).
		Dur("timeout", timeout).
		Msg("OpenAI provider initialized")

	return &OpenAIProvider{
		config:  config,
		client:  retryClient.StandardClient(),
		logger:  logger,
		timeout: timeout,
		avail:   newAvailability(4 * time.Second),
	}, nil
}

// Name returns the stable provider identifier.
func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// IsAvailable probes the models endpoint. The probe result is cached and
// rate limited so repeated orchestrator calls do not hammer the gateway.
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	return p.avail.check(ctx, func(probeCtx context.Context) bool {
		if p.config.APIKey == "" || p.config.BaseURL == "" {
			return false
		}
		req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, p.endpoint("/models"), nil)
		if err != nil {
			return false
		}
		req.Header.Set("Authorization", "Bearer "+p.config.APIKey)
		resp, err := p.client.Do(req)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode == http.StatusOK
	})
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// Complete performs a single chat-completions call.
func (p *OpenAIProvider) Complete(ctx context.Context, request *models.CompletionRequest) (*models.CompletionResult, error) {
	if p.config.APIKey == "" {
		return nil, interfaces.NewPermanentError(ProviderOpenAI, fmt.Errorf("no API key configured"))
	}

	system, user := BuildPrompt(request)

	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	body, err := json.Marshal(chatRequest{
		Model:    p.config.Model,
		Messages: messages,
	})
	if err != nil {
		return nil, interfaces.NewPermanentError(ProviderOpenAI, fmt.Errorf("failed to encode request: %w", err))
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, p.endpoint("/chat/completions"), bytes.NewReader(body))
	if err != nil {
		return nil, interfaces.NewPermanentError(ProviderOpenAI, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	started := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		p.avail.invalidate()
		return nil, interfaces.NewTransientError(ProviderOpenAI, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, interfaces.NewTransientError(ProviderOpenAI, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		p.avail.invalidate()
		callErr := fmt.Errorf("status %d: %s", resp.StatusCode, apiErrorMessage(payload))
		if isPermanentStatus(resp.StatusCode) {
			return nil, interfaces.NewPermanentError(ProviderOpenAI, callErr)
		}
		return nil, interfaces.NewTransientError(ProviderOpenAI, callErr)
	}

	text := gjson.GetBytes(payload, "choices.0.message.content").String()
	if text == "" {
		return nil, interfaces.NewTransientError(ProviderOpenAI, fmt.Errorf("empty response"))
	}

	candidates := candidatesForTask(request.Task, text)
	if len(candidates) == 0 {
		return nil, interfaces.NewTransientError(ProviderOpenAI, fmt.Errorf("no candidates parsed from response"))
	}

	p.logger.Debug().
		Str("model", p.config.Model).
		Int("candidates", len(candidates)).
		Dur("duration", time.Since(started)).
		Msg("OpenAI completion succeeded")

	return &models.CompletionResult{
		Candidates: candidates,
		Provider:   ProviderOpenAI,
		Duration:   time.Since(started),
	}, nil
}

// EstimateTokens approximates the token counts of one call for the ledger.
func (p *OpenAIProvider) EstimateTokens(request *models.CompletionRequest, result *models.CompletionResult) (int, int) {
	return estimateRequestTokens(request), estimateResultTokens(result)
}

// Close releases adapter state.
func (p *OpenAIProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func (p *OpenAIProvider) endpoint(path string) string {
	return strings.TrimRight(p.config.BaseURL, "/") + path
}

// isPermanentStatus classifies HTTP status codes that no retry or fallback
// delay will fix for this request.
func isPermanentStatus(code int) bool {
	switch code {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

// apiErrorMessage pulls the error description out of an error body, falling
// back to the raw payload when the shape is unexpected.
func apiErrorMessage(payload []byte) string {
	if msg := gjson.GetBytes(payload, "error.message").String(); msg != "" {
		return msg
	}
	body := strings.TrimSpace(string(payload))
	if len(body) > 200 {
		body = body[:200]
	}
	return body
}

// Ensure OpenAIProvider implements the interface
var _ interfaces.CompletionProvider = (*OpenAIProvider)(nil)
