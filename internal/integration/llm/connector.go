package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/datasleuth/analyst-backend/internal/config"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Connector talks to an OpenAI-compatible chat completion API.
type Connector struct {
	config config.OpenAIConfig
	client *openai.Client
	logger *zap.Logger
}

func NewConnector(cfg config.OpenAIConfig, logger *zap.Logger) *Connector {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}

	return &Connector{
		config: cfg,
		client: openai.NewClientWithConfig(clientCfg),
		logger: logger,
	}
}

// CreateChatCompletion performs one chat completion round. Transport
// failures and retryable API statuses (429, 5xx) are retried; every other
// failure is returned as-is and terminal for the request.
func (c *Connector) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	ctxzap.Debug(ctx, "calling chat completion API",
		zap.String("model", req.Model),
		zap.Int("messages", len(req.Messages)),
		zap.Int("tools", len(req.Tools)),
	)

	var resp openai.ChatCompletionResponse
	err := retry.Do(
		func() error {
			var callErr error
			resp, callErr = c.client.CreateChatCompletion(ctx, req)
			return callErr
		},
		append(c.config.Retry.ToRetryOptions(),
			retry.Context(ctx),
			retry.LastErrorOnly(true),
			retry.RetryIf(isRetryable),
		)...,
	)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	ctxzap.Debug(ctx, "chat completion returned",
		zap.String("finish_reason", finishReason(resp)),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return resp, nil
}

func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	// Anything that is not an API error is a transport-level failure.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func finishReason(resp openai.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	return string(resp.Choices[0].FinishReason)
}
