package llm

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// MockConnector is an offline stand-in for the chat completion API, selected
// with ENABLE_MOCKS=true. It never issues tool calls and answers every
// instruction with a fixed Markdown summary.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	ctxzap.Info(ctx, "[MOCK] chat completion",
		zap.String("model", req.Model),
		zap.Int("messages", len(req.Messages)),
	)

	answer := `## Mock analysis

This is a canned answer produced by the mock LLM connector.

- The real connector is disabled (` + "`ENABLE_MOCKS=true`" + `).
- No tools were called and no chart was generated.`

	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: answer,
				},
				FinishReason: openai.FinishReasonStop,
			},
		},
	}, nil
}
