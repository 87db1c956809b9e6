package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/datasleuth/analyst-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// OpenAI configuration
	OpenAICfg OpenAIConfig `envPrefix:"OPENAI_"`

	// Agent configuration
	AgentCfg AgentConfig `envPrefix:"AGENT_"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"UPLOAD_"`

	// Chart artifact configuration
	ArtifactCfg ArtifactConfig `envPrefix:"ARTIFACT_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// OpenAIConfig holds the chat model client configuration. APIKey is
// deliberately not marked notEmpty: its absence is a per-request error
// surfaced to the user, not a boot failure.
type OpenAIConfig struct {
	APIKey         string               `env:"API_KEY"`
	BaseURL        string               `env:"BASE_URL"`
	Model          string               `env:"MODEL" envDefault:"gpt-4o-mini"`
	RequestTimeout time.Duration        `env:"REQUEST_TIMEOUT" envDefault:"2m"`
	Retry          pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// AgentConfig bounds the tool-calling loop
type AgentConfig struct {
	MaxTurns    int `env:"MAX_TURNS" envDefault:"12"`
	PreviewRows int `env:"PREVIEW_ROWS" envDefault:"10"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"10485760"`  // 10 MiB
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"16777216"` // 16 MiB
}

// ArtifactConfig holds chart artifact storage settings
type ArtifactConfig struct {
	Dir             string        `env:"DIR" envDefault:"artifacts"`
	TTL             time.Duration `env:"TTL" envDefault:"1h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
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

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.AgentCfg.MaxTurns < 1 || cfg.AgentCfg.MaxTurns > 64 {
		return fmt.Errorf("AGENT_MAX_TURNS must be between 1 and 64, got %d", cfg.AgentCfg.MaxTurns)
	}

	if cfg.AgentCfg.PreviewRows < 1 || cfg.AgentCfg.PreviewRows > 100 {
		return fmt.Errorf("AGENT_PREVIEW_ROWS must be between 1 and 100, got %d", cfg.AgentCfg.PreviewRows)
	}

	if cfg.FileUploadCfg.MaxFileSize < 1 {
		return fmt.Errorf("UPLOAD_MAX_FILE_SIZE must be positive, got %d", cfg.FileUploadCfg.MaxFileSize)
	}

	if cfg.FileUploadCfg.MaxUploadSize < cfg.FileUploadCfg.MaxFileSize {
		return fmt.Errorf("UPLOAD_MAX_UPLOAD_SIZE (%d) must not be smaller than UPLOAD_MAX_FILE_SIZE (%d)",
			cfg.FileUploadCfg.MaxUploadSize, cfg.FileUploadCfg.MaxFileSize)
	}

	if cfg.ArtifactCfg.TTL < time.Minute {
		return fmt.Errorf("ARTIFACT_TTL must be at least 1m, got %s", cfg.ArtifactCfg.TTL)
	}

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
