package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/visionhq/backlog-backend/internal/api"
	backlogapi "github.com/visionhq/backlog-backend/internal/api/backlog"
	"github.com/visionhq/backlog-backend/internal/config"
	"github.com/visionhq/backlog-backend/internal/entity"
	"github.com/visionhq/backlog-backend/internal/generation"
	"github.com/visionhq/backlog-backend/internal/integration/azuredevops"
	"github.com/visionhq/backlog-backend/internal/integration/llm"
	"github.com/visionhq/backlog-backend/internal/integration/notify"
	"github.com/visionhq/backlog-backend/internal/metrics"
	"github.com/visionhq/backlog-backend/internal/pkg/formatter"
	"github.com/visionhq/backlog-backend/internal/pkg/validator"
	"github.com/visionhq/backlog-backend/internal/quality"
	"github.com/visionhq/backlog-backend/internal/repository"
	"github.com/visionhq/backlog-backend/internal/usecase/backlog"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize repositories
	jobRepo := repository.NewJobPostgres(db)
	itemRepo := repository.NewWorkItemPostgres(db)
	metricsStore := repository.NewMetricsPostgres(db)
	logger.Info("Repositories initialized")

	// Generation loop configuration shared by all providers
	loopCfg := generation.Config{
		MaxQualityRetries:     cfg.GenerationCfg.MaxQualityRetries,
		MaxGenerationAttempts: cfg.GenerationCfg.MaxGenerationAttempts,
		TimeBudget:            cfg.GenerationCfg.TimeBudget,
		CallTimeout:           cfg.GenerationCfg.CallTimeout,
		Quality:               quality.Config{MinimumScore: cfg.GenerationCfg.MinQualityScore},
		FallbackModels:        cfg.FallbackModels,
	}
	if len(loopCfg.FallbackModels) == 0 {
		loopCfg.FallbackModels = generation.DefaultFallbackModels()
	}

	// Initialize LLM callers per provider (with mock support)
	callers := make(map[entity.ProviderKind]generation.LLMCaller)
	callers[entity.ProviderMock] = llm.NewMockConnector(logger)
	if cfg.EnableMocks {
		logger.Info("Using mock connectors for all LLM providers")
		callers[entity.ProviderOpenAI] = llm.NewMockConnector(logger)
		callers[entity.ProviderGrok] = llm.NewMockConnector(logger)
		callers[entity.ProviderOllama] = llm.NewMockConnector(logger)
	} else {
		logger.Info("Using real LLM provider connectors")
		callers[entity.ProviderOpenAI] = llm.NewConnector(cfg.OpenAICfg, logger)
		callers[entity.ProviderGrok] = llm.NewConnector(cfg.GrokCfg, logger)
		callers[entity.ProviderOllama] = llm.NewOllamaConnector(cfg.OllamaCfg, logger)
	}

	// One generation loop per provider, each with its own metrics tracker
	generators := make(map[entity.ProviderKind]backlog.Generator, len(callers))
	for provider, caller := range callers {
		tracker := metrics.NewTracker(metricsStore, string(provider), logger)
		generators[provider] = generation.NewLoop(caller, tracker, loopCfg, logger)
	}

	directModels := map[entity.ProviderKind]string{
		entity.ProviderOpenAI: cfg.OpenAICfg.Model,
		entity.ProviderGrok:   cfg.GrokCfg.Model,
		entity.ProviderMock:   "mock-model",
	}

	// Azure DevOps sync is optional: without a PAT the endpoint is disabled
	var devops backlog.DevOpsConnector
	if cfg.AzureDevOpsCfg.PersonalAccessToken != "" {
		devops = azuredevops.NewConnector(cfg.AzureDevOpsCfg, logger)
		logger.Info("Azure DevOps connector initialized")
	}

	// Completion notifications are optional as well
	var notifier backlog.Notifier = notify.NoopNotifier{}
	if cfg.TelegramCfg.Enabled {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramCfg, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("initialize telegram notifier: %w", err)
		}
		notifier = tg
	}

	// Initialize validators
	jobValidator := validator.NewJobValidator()
	logger.Info("Validators initialized")

	defaultProvider := entity.ProviderOpenAI
	if cfg.EnableMocks {
		defaultProvider = entity.ProviderMock
	}

	// Initialize use cases
	backlogUC := backlog.NewUsecase(
		jobRepo,
		itemRepo,
		generators,
		directModels,
		jobValidator,
		formatter.NewFactory(),
		devops,
		notifier,
		cfg.GenerationCfg,
		defaultProvider,
		logger,
	)
	logger.Info("Use cases initialized")

	// Setup API handlers
	backlogHandler := backlogapi.NewHandler(backlogUC)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(backlogHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}
