package analysis

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// LLMConnector is the chat completion dependency. Satisfied by the real
// OpenAI connector and the mock.
type LLMConnector interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ArtifactStore hands out per-request chart paths and registers produced
// charts for serving.
type ArtifactStore interface {
	NewChartPath() (id, path string)
	Commit(id, path string) bool
	Discard(path string)
}
