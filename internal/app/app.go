// Package app wires the core services together: storage, cache, ledger,
// events, provider adapters, orchestrator, audit composer, and variant
// generator.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/censeo/internal/common"
	"github.com/ternarybob/censeo/internal/interfaces"
	"github.com/ternarybob/censeo/internal/models"
	"github.com/ternarybob/censeo/internal/services/audit"
	"github.com/ternarybob/censeo/internal/services/cache"
	"github.com/ternarybob/censeo/internal/services/events"
	"github.com/ternarybob/censeo/internal/services/ledger"
	"github.com/ternarybob/censeo/internal/services/orchestrator"
	"github.com/ternarybob/censeo/internal/services/providers"
	"github.com/ternarybob/censeo/internal/services/variants"
	"github.com/ternarybob/censeo/internal/storage/badger"
)

// AuditInput is a pre-fetched document handed in by the surrounding
// application. Fetching is the caller's responsibility.
type AuditInput struct {
	SourceURL string
	RawHTML   string
}

// App holds all core components and dependencies.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	DB *badger.BadgerDB

	EventService interfaces.EventService
	CacheService interfaces.CacheService
	Ledger       interfaces.LedgerService
	Orchestrator interfaces.CompletionService

	Composer *audit.Composer
	Variants *variants.Service

	cron *cron.Cron
}

// New initializes the core with all dependencies.
func New(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	db, err := badger.NewBadgerDB(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.DB = db

	app.EventService = events.NewService(logger)
	app.CacheService = cache.NewService(badger.NewCacheStorage(db, logger), logger)
	app.Ledger = ledger.NewService(badger.NewUsageStorage(db, logger), app.EventService, &cfg.Ledger, logger)

	adapters, err := buildProviders(ctx, cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	orch, err := orchestrator.NewService(adapters, app.CacheService, app.Ledger, &cfg.Orchestrator, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	app.Orchestrator = orch

	composer, err := audit.NewComposer(app.EventService, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	app.Composer = composer
	app.Variants = variants.NewService(app.Orchestrator, &cfg.Variants, logger)

	if err := app.startRetentionSweep(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().
		Int("providers", len(adapters)).
		Str("environment", cfg.Environment).
		Msg("Core initialization complete")

	return app, nil
}

// buildProviders constructs the adapter chain in the configured priority
// order. Unknown names were already rejected by config validation.
func buildProviders(ctx context.Context, cfg *common.Config, logger arbor.ILogger) ([]interfaces.CompletionProvider, error) {
	var chain []interfaces.CompletionProvider
	for _, name := range cfg.Orchestrator.Priority {
		switch name {
		case providers.ProviderGemini:
			adapter, err := providers.NewGeminiProvider(ctx, &cfg.Gemini, logger)
			if err != nil {
				return nil, fmt.Errorf("failed to build gemini provider: %w", err)
			}
			chain = append(chain, adapter)
		case providers.ProviderClaude:
			adapter, err := providers.NewClaudeProvider(&cfg.Claude, logger)
			if err != nil {
				return nil, fmt.Errorf("failed to build claude provider: %w", err)
			}
			chain = append(chain, adapter)
		case providers.ProviderOpenAI:
			adapter, err := providers.NewOpenAIProvider(&cfg.OpenAI, logger)
			if err != nil {
				return nil, fmt.Errorf("failed to build openai provider: %w", err)
			}
			chain = append(chain, adapter)
		default:
			return nil, fmt.Errorf("unknown provider %q in priority list", name)
		}
	}
	return chain, nil
}

// startRetentionSweep schedules the ledger pruning job.
func (a *App) startRetentionSweep() error {
	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(a.Config.Ledger.RetentionSchedule, func() {
		removed, err := a.Ledger.Prune(context.Background(), time.Now().UTC())
		if err != nil {
			a.Logger.Error().Err(err).Msg("Ledger retention sweep failed")
			return
		}
		a.Logger.Info().Int("removed", removed).Msg("Ledger retention sweep completed")
	})
	if err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", a.Config.Ledger.RetentionSchedule, err)
	}
	c.Start()
	a.cron = c
	return nil
}

// RunAudit parses and scores one pre-fetched document.
func (a *App) RunAudit(ctx context.Context, input AuditInput) (*models.AuditResult, error) {
	return a.Composer.Audit(ctx, input.SourceURL, input.RawHTML)
}

// GenerateVariants produces a ranked variant set for a completion request.
// The caller identity on the request flows through to ledger attribution.
func (a *App) GenerateVariants(ctx context.Context, request *models.CompletionRequest) (*models.VariantSet, error) {
	return a.Variants.Generate(ctx, request)
}

// Complete exposes the raw orchestrator for free-text tasks.
func (a *App) Complete(ctx context.Context, request *models.CompletionRequest) (*models.CompletionResult, error) {
	return a.Orchestrator.Complete(ctx, request)
}

// OnThresholdBreached subscribes a handler to daily spend threshold events.
func (a *App) OnThresholdBreached(handler interfaces.EventHandler) error {
	return a.EventService.Subscribe(interfaces.EventUsageThresholdBreached, handler)
}

// Close shuts down the core in reverse dependency order.
func (a *App) Close() error {
	if a.cron != nil {
		a.cron.Stop()
	}

	if closer, ok := a.Orchestrator.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close orchestrator")
		}
	}

	if err := a.EventService.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close event service")
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	a.Logger.Info().Msg("Core shutdown complete")
	return nil
}
