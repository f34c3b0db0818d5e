package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/visionhq/backlog-backend/internal/entity"
	pkgRetry "github.com/visionhq/backlog-backend/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// LLM provider configurations
	OpenAICfg LLMProviderConfig `envPrefix:"OPENAI_"`
	GrokCfg   LLMProviderConfig `envPrefix:"GROK_"`
	OllamaCfg OllamaConfig      `envPrefix:"OLLAMA_"`

	// Generation pipeline configuration
	GenerationCfg GenerationConfig `envPrefix:"GENERATION_"`

	// Azure DevOps sync configuration
	AzureDevOpsCfg AzureDevOpsConfig `envPrefix:"AZURE_DEVOPS_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Ollama fallback model chain (loaded from JSON file)
	FallbackModels []entity.ModelConfig

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS,notEmpty"`

	// Telegram notification configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// LLMProviderConfig covers providers speaking the OpenAI chat-completions
// wire format (OpenAI itself and Grok).
type LLMProviderConfig struct {
	HTTPClientConfig
	CompletionsEndpoint string               `env:"COMPLETIONS_ENDPOINT" envDefault:"/v1/chat/completions"`
	Model               string               `env:"MODEL,notEmpty"`
	Temperature         float64              `env:"TEMPERATURE" envDefault:"0.7"`
	Retry               pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type OllamaConfig struct {
	HTTPClientConfig
	ChatEndpoint string `env:"CHAT_ENDPOINT" envDefault:"/api/chat"`
}

// GenerationConfig bounds the quality-gated generation loop.
type GenerationConfig struct {
	MinQualityScore       int           `env:"MIN_QUALITY_SCORE" envDefault:"75"`
	MaxQualityRetries     int           `env:"MAX_QUALITY_RETRIES" envDefault:"3"`
	MaxGenerationAttempts int           `env:"MAX_ATTEMPTS" envDefault:"10"`
	TimeBudget            time.Duration `env:"TIME_BUDGET" envDefault:"600s"`
	CallTimeout           time.Duration `env:"CALL_TIMEOUT" envDefault:"120s"`
	EpicCount             int           `env:"EPIC_COUNT" envDefault:"3"`
	FeaturesPerEpic       int           `env:"FEATURES_PER_EPIC" envDefault:"3"`
	StoriesPerFeature     int           `env:"STORIES_PER_FEATURE" envDefault:"3"`
	TasksPerStory         int           `env:"TASKS_PER_STORY" envDefault:"3"`
	MaxConcurrentJobs     int           `env:"MAX_CONCURRENT_JOBS" envDefault:"4"`
}

type AzureDevOpsConfig struct {
	HTTPClientConfig
	APIVersion          string `env:"API_VERSION" envDefault:"7.0"`
	PersonalAccessToken string `env:"PAT"`
}

// TelegramConfig holds completion notification settings
type TelegramConfig struct {
	Enabled  bool   `env:"ENABLED" envDefault:"false"`
	BotToken string `env:"BOT_TOKEN"`
	ChatID   int64  `env:"CHAT_ID"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT,notEmpty"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT,notEmpty"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE,notEmpty"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT,notEmpty"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT,notEmpty"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
}

// fallbackModels represents the structure of fallback_models.json
type fallbackModels struct {
	Models []struct {
		Name           string   `json:"name"`
		DisplayName    string   `json:"display_name"`
		TimeoutSeconds int      `json:"timeout_seconds"`
		MaxAttempts    int      `json:"max_attempts"`
		Strengths      []string `json:"strengths"`
	} `json:"models"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Load the Ollama fallback chain from JSON file
	if err := loadFallbackModels(cfg); err != nil {
		return nil, fmt.Errorf("load fallback models: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	gen := cfg.GenerationCfg
	if gen.MinQualityScore < 0 || gen.MinQualityScore > 100 {
		errors = append(errors, fmt.Sprintf("GENERATION_MIN_QUALITY_SCORE must be between 0 and 100, got %d", gen.MinQualityScore))
	}

	if gen.MaxQualityRetries < 1 || gen.MaxQualityRetries > 10 {
		errors = append(errors, fmt.Sprintf("GENERATION_MAX_QUALITY_RETRIES must be between 1 and 10, got %d", gen.MaxQualityRetries))
	}

	if gen.MaxGenerationAttempts < 1 || gen.MaxGenerationAttempts > 50 {
		errors = append(errors, fmt.Sprintf("GENERATION_MAX_ATTEMPTS must be between 1 and 50, got %d", gen.MaxGenerationAttempts))
	}

	if gen.EpicCount < 1 || gen.EpicCount > 10 {
		errors = append(errors, fmt.Sprintf("GENERATION_EPIC_COUNT must be between 1 and 10, got %d", gen.EpicCount))
	}

	if gen.MaxConcurrentJobs < 1 || gen.MaxConcurrentJobs > 32 {
		errors = append(errors, fmt.Sprintf("GENERATION_MAX_CONCURRENT_JOBS must be between 1 and 32, got %d", gen.MaxConcurrentJobs))
	}

	if cfg.TelegramCfg.Enabled && cfg.TelegramCfg.BotToken == "" {
		errors = append(errors, "TELEGRAM_BOT_TOKEN is required when TELEGRAM_ENABLED is true")
	}

	// Validate Database configuration
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func loadFallbackModels(cfg *Config) error {
	configPath := filepath.Join("internal", "config", "fallback_models.json")

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("Warning: fallback models file not found at %s, using built-in chain\n", configPath)
		return nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("read fallback models file: %w", err)
	}

	var modelsData fallbackModels
	if err := json.Unmarshal(data, &modelsData); err != nil {
		return fmt.Errorf("parse fallback models JSON: %w", err)
	}

	if len(modelsData.Models) == 0 {
		return fmt.Errorf("fallback models file contains no models: %s", configPath)
	}

	for _, m := range modelsData.Models {
		cfg.FallbackModels = append(cfg.FallbackModels, entity.ModelConfig{
			Name:        m.Name,
			DisplayName: m.DisplayName,
			Timeout:     time.Duration(m.TimeoutSeconds) * time.Second,
			MaxAttempts: m.MaxAttempts,
			Strengths:   m.Strengths,
		})
	}

	fmt.Printf("Loaded %d fallback models from %s\n", len(cfg.FallbackModels), configPath)
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
