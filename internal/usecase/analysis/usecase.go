package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/datasleuth/analyst-backend/internal/agent"
	"github.com/datasleuth/analyst-backend/internal/config"
	"github.com/datasleuth/analyst-backend/internal/dataset"
	"github.com/datasleuth/analyst-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const fallbackAnswer = "I couldn't generate a text response. Please check the logs."

// Usecase orchestrates one analysis request: validate, load the table, run
// the agent, inspect the chart artifact. No state survives the request.
type Usecase struct {
	llmConnector LLMConnector
	artifacts    ArtifactStore
	openAICfg    config.OpenAIConfig
	agentCfg     config.AgentConfig
	logger       *zap.Logger
}

// NewUsecase creates a new analysis use case
func NewUsecase(
	llmConnector LLMConnector,
	artifacts ArtifactStore,
	openAICfg config.OpenAIConfig,
	agentCfg config.AgentConfig,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		llmConnector: llmConnector,
		artifacts:    artifacts,
		openAICfg:    openAICfg,
		agentCfg:     agentCfg,
		logger:       logger,
	}
}

// Analyze runs one request end to end. Validation failures come back as the
// closed sentinel set in entity; everything past validation is wrapped as a
// generic execution error.
func (uc *Usecase) Analyze(ctx context.Context, req *entity.AnalysisRequest) (*entity.AnalysisResult, error) {
	if req.DatasetPath == "" {
		return nil, entity.ErrDatasetRequired
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, entity.ErrPromptRequired
	}
	if uc.openAICfg.APIKey == "" {
		return nil, entity.ErrAPIKeyMissing
	}

	// Fresh artifact path per request: a stale chart from an earlier request
	// can never be picked up, and concurrent requests cannot clobber each
	// other's files.
	chartID, chartPath := uc.artifacts.NewChartPath()

	ctxzap.Info(ctx, "starting analysis",
		zap.String("dataset", req.DatasetName),
		zap.String("chart_id", chartID),
		zap.Int("prompt_length", len(req.Prompt)),
	)

	ds, err := dataset.Load(req.DatasetPath, req.DatasetName)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	toolbox := agent.NewToolbox(ds, chartPath, uc.agentCfg.PreviewRows)
	executor := agent.NewExecutor(uc.llmConnector, toolbox, uc.openAICfg.Model, uc.agentCfg.MaxTurns)

	result, err := executor.Run(ctx, buildInstruction(req.Prompt, ds))
	if err != nil {
		uc.artifacts.Discard(chartPath)
		return nil, fmt.Errorf("run agent: %w", err)
	}

	answer := result.Output
	if strings.TrimSpace(answer) == "" {
		answer = fallbackAnswer
	}

	out := &entity.AnalysisResult{Answer: answer}
	if uc.artifacts.Commit(chartID, chartPath) {
		out.ChartID = chartID
		out.ChartPath = chartPath
	}

	ctxzap.Info(ctx, "analysis finished",
		zap.Int("turns", result.Turns),
		zap.Int("tool_calls", result.ToolCalls),
		zap.Bool("chart", out.HasChart()),
	)

	return out, nil
}
