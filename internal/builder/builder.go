package builder

import (
	"fmt"
	"net/http"
	"time"

	"github.com/datasleuth/analyst-backend/internal/api"
	analysisapi "github.com/datasleuth/analyst-backend/internal/api/analysis"
	"github.com/datasleuth/analyst-backend/internal/artifact"
	"github.com/datasleuth/analyst-backend/internal/config"
	"github.com/datasleuth/analyst-backend/internal/integration/llm"
	"github.com/datasleuth/analyst-backend/internal/pkg/validator"
	"github.com/datasleuth/analyst-backend/internal/usecase/analysis"
	"go.uber.org/zap"
)

func Build() (*App, error) {
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
		zap.String("model", cfg.OpenAICfg.Model),
	)

	// Setup artifact storage
	artifacts, err := artifact.NewStore(cfg.ArtifactCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup artifact store: %w", err)
	}
	logger.Info("Artifact store initialized", zap.String("dir", cfg.ArtifactCfg.Dir))

	// Initialize LLM connector (with mock support)
	var llmConnector analysis.LLMConnector
	if cfg.EnableMocks {
		logger.Info("Using mock LLM connector")
		llmConnector = llm.NewMockConnector(logger)
	} else {
		logger.Info("Using real LLM connector")
		llmConnector = llm.NewConnector(cfg.OpenAICfg, logger)
	}

	// Initialize validators
	fileValidator := validator.NewFileValidator(cfg.FileUploadCfg)
	logger.Info("Validators initialized")

	// Initialize use cases
	analysisUC := analysis.NewUsecase(
		llmConnector,
		artifacts,
		cfg.OpenAICfg,
		cfg.AgentCfg,
		logger,
	)
	logger.Info("Use cases initialized")

	// Setup API handlers
	analysisHandler := analysisapi.NewHandler(analysisUC, artifacts, fileValidator, cfg.FileUploadCfg)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(analysisHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server. Write timeout must cover a full agent run.
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 6 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:    server,
		artifacts: artifacts,
		logger:    logger,
	}, nil
}
