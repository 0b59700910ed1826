package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/censeo/internal/common"
	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/models"
)

// fakeProvider scripts one adapter's behavior and records its calls.
type fakeProvider struct {
	name        string
	unavailable bool
	err         error
	candidates  []string
	calls       int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) IsAvailable(context.Context) bool { return !f.unavailable }

func (f *fakeProvider) Complete(_ context.Context, _ *models.CompletionRequest) (*models.CompletionResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.CompletionResult{
		Candidates: f.candidates,
		Provider:   f.name,
		Duration:   time.Millisecond,
	}, nil
}

func (f *fakeProvider) EstimateTokens(*models.CompletionRequest, *models.CompletionResult) (int, int) {
	return 100, 50
}

func (f *fakeProvider) Close() error { return nil }

// fakeCache is an in-memory CacheService with no TTL enforcement.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, category, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.entries[category+":"+key]
	return value, ok
}

func (f *fakeCache) Set(_ context.Context, category, key string, value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[category+":"+key] = value
}

func (f *fakeCache) Invalidate(_ context.Context, category, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, category+":"+key)
}

func (f *fakeCache) InvalidateAll(context.Context, string) {}

// fakeLedger counts Record calls.
type fakeLedger struct {
	mu      sync.Mutex
	records []string // provider names, in call order
}

func (f *fakeLedger) Record(_ context.Context, provider, _ string, _, _ int, _ bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, provider)
}

func (f *fakeLedger) DailyTotal(context.Context, time.Time) (*models.UsageSummary, error) {
	return &models.UsageSummary{}, nil
}

func (f *fakeLedger) MonthlyTotal(context.Context, time.Time) (*models.UsageSummary, error) {
	return &models.UsageSummary{}, nil
}

func (f *fakeLedger) CheckThresholds(context.Context) ([]models.ThresholdAlert, error) {
	return nil, nil
}

func (f *fakeLedger) Prune(context.Context, time.Time) (int, error) { return 0, nil }

func (f *fakeLedger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func testRequest() *models.CompletionRequest {
	return &models.CompletionRequest{
		Task:    models.TaskTitleVariants,
		Payload: map[string]string{"title": "Garden Irrigation"},
	}
}

func newTestService(t *testing.T, providers []interfaces.CompletionProvider, cache interfaces.CacheService, ledger interfaces.LedgerService) *Service {
	t.Helper()
	s, err := NewService(providers, cache, ledger, &common.OrchestratorConfig{CallTimeout: "5s"}, arbor.NewLogger())
	require.NoError(t, err)
	return s
}

func TestCompleteUsesPrimaryProvider(t *testing.T) {
	primary := &fakeProvider{name: "gemini", candidates: []string{"A Title"}}
	secondary := &fakeProvider{name: "claude", candidates: []string{"B Title"}}
	ledger := &fakeLedger{}
	s := newTestService(t, []interfaces.CompletionProvider{primary, secondary}, newFakeCache(), ledger)

	result, err := s.Complete(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, "gemini", result.Provider)
	assert.False(t, result.ServedFromCache)
	assert.Equal(t, 0, secondary.calls, "fallback must not be called when primary succeeds")
	assert.Equal(t, []string{"gemini"}, ledger.records)
}

func TestCompleteSkipsUnavailableProvider(t *testing.T) {
	primary := &fakeProvider{name: "gemini", unavailable: true}
	secondary := &fakeProvider{name: "claude", candidates: []string{"B Title"}}
	s := newTestService(t, []interfaces.CompletionProvider{primary, secondary}, newFakeCache(), &fakeLedger{})

	result, err := s.Complete(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, "claude", result.Provider)
	assert.Equal(t, 0, primary.calls, "unavailable provider must never be called")
	assert.Equal(t, 1, secondary.calls)
}

func TestCompleteFallsBackOnTransientError(t *testing.T) {
	primary := &fakeProvider{name: "gemini", err: interfaces.NewTransientError("gemini", errors.New("rate limited"))}
	secondary := &fakeProvider{name: "claude", candidates: []string{"B Title"}}
	ledger := &fakeLedger{}
	s := newTestService(t, []interfaces.CompletionProvider{primary, secondary}, newFakeCache(), ledger)

	result, err := s.Complete(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, "claude", result.Provider)
	assert.Equal(t, 1, primary.calls)
	// Only the completed call is metered.
	assert.Equal(t, []string{"claude"}, ledger.records)
}

func TestCompleteAbortsOnPermanentError(t *testing.T) {
	primary := &fakeProvider{name: "gemini", err: interfaces.NewPermanentError("gemini", errors.New("invalid request"))}
	secondary := &fakeProvider{name: "claude", candidates: []string{"B Title"}}
	s := newTestService(t, []interfaces.CompletionProvider{primary, secondary}, newFakeCache(), &fakeLedger{})

	_, err := s.Complete(context.Background(), testRequest())
	require.Error(t, err)

	// The permanent failure aborts the chain but still surfaces in the
	// aggregate alongside any earlier attempts.
	var aggregate *interfaces.AllProvidersError
	require.ErrorAs(t, err, &aggregate)
	assert.Contains(t, aggregate.Reasons["gemini"], "invalid request")
	assert.Equal(t, 0, secondary.calls, "permanent error must abort the chain")
}

func TestCompletePermanentErrorKeepsEarlierReasons(t *testing.T) {
	primary := &fakeProvider{name: "gemini", err: interfaces.NewTransientError("gemini", errors.New("overloaded"))}
	secondary := &fakeProvider{name: "claude", err: interfaces.NewPermanentError("claude", errors.New("invalid api key"))}
	tertiary := &fakeProvider{name: "openai", candidates: []string{"C Title"}}
	s := newTestService(t, []interfaces.CompletionProvider{primary, secondary, tertiary}, newFakeCache(), &fakeLedger{})

	_, err := s.Complete(context.Background(), testRequest())
	require.Error(t, err)

	var aggregate *interfaces.AllProvidersError
	require.ErrorAs(t, err, &aggregate)
	assert.Contains(t, aggregate.Reasons["gemini"], "overloaded")
	assert.Contains(t, aggregate.Reasons["claude"], "invalid api key")
	assert.Equal(t, 0, tertiary.calls, "permanent error must not fall through to later providers")
}

func TestCompleteSecondCallServedFromCache(t *testing.T) {
	primary := &fakeProvider{name: "gemini", candidates: []string{"A Title"}}
	ledger := &fakeLedger{}
	s := newTestService(t, []interfaces.CompletionProvider{primary}, newFakeCache(), ledger)
	ctx := context.Background()

	first, err := s.Complete(ctx, testRequest())
	require.NoError(t, err)
	require.False(t, first.ServedFromCache)
	require.Equal(t, 1, ledger.count())

	second, err := s.Complete(ctx, testRequest())
	require.NoError(t, err)

	assert.True(t, second.ServedFromCache)
	assert.Equal(t, "gemini", second.Provider, "cache hit keeps the original provider")
	assert.Equal(t, first.Candidates, second.Candidates)
	assert.Equal(t, 1, primary.calls, "cache hit must not call any provider")
	assert.Equal(t, 1, ledger.count(), "cache hit must leave the ledger unchanged")
}

func TestCompleteExhaustionAggregatesReasons(t *testing.T) {
	primary := &fakeProvider{name: "gemini", unavailable: true}
	secondary := &fakeProvider{name: "claude", err: interfaces.NewTransientError("claude", errors.New("overloaded"))}
	s := newTestService(t, []interfaces.CompletionProvider{primary, secondary}, newFakeCache(), &fakeLedger{})

	_, err := s.Complete(context.Background(), testRequest())
	require.Error(t, err)

	var aggregate *interfaces.AllProvidersError
	require.ErrorAs(t, err, &aggregate)
	assert.Equal(t, "unavailable", aggregate.Reasons["gemini"])
	assert.Contains(t, aggregate.Reasons["claude"], "overloaded")
}

func TestCompleteRejectsInvalidRequest(t *testing.T) {
	s := newTestService(t, []interfaces.CompletionProvider{&fakeProvider{name: "gemini"}}, newFakeCache(), &fakeLedger{})

	_, err := s.Complete(context.Background(), &models.CompletionRequest{Task: "bogus-task"})
	require.Error(t, err)

	var validation *interfaces.ValidationError
	assert.ErrorAs(t, err, &validation)
}
