// Package agent runs the tool-calling analysis loop: it hands the model a
// closed set of tools over one loaded dataset and iterates completion rounds
// until the model answers in plain text.
package agent

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ChatCompleter is the slice of the chat API the executor needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ErrMaxTurns is returned when the model keeps calling tools past the
// configured turn budget.
var ErrMaxTurns = errors.New("agent exceeded maximum turns without a final answer")

const systemPrompt = `You are a data analysis agent. You answer questions about one tabular dataset using only the provided tools; never invent values that the tools did not return. When a visualization is requested or clearly helpful, create it with the render_chart tool. Respond to the user in Markdown.`

// Result is the outcome of one agent run.
type Result struct {
	Output    string
	Turns     int
	ToolCalls int
}

// Executor drives the completion/tool rounds for a single request.
type Executor struct {
	chat     ChatCompleter
	toolbox  *Toolbox
	model    string
	maxTurns int
}

func NewExecutor(chat ChatCompleter, toolbox *Toolbox, model string, maxTurns int) *Executor {
	return &Executor{
		chat:     chat,
		toolbox:  toolbox,
		model:    model,
		maxTurns: maxTurns,
	}
}

// Run executes the loop until the model produces a plain-text answer or the
// turn budget runs out. Tool failures are reported back to the model instead
// of aborting, so it can correct course.
func (e *Executor) Run(ctx context.Context, instruction string) (*Result, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: instruction},
	}

	result := &Result{}

	for turn := 0; turn < e.maxTurns; turn++ {
		result.Turns = turn + 1

		resp, err := e.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    e.model,
			Messages: messages,
			Tools:    e.toolbox.Definitions(),
			// Zero is dropped by the SDK's omitempty; the smallest nonzero
			// float is the closest we can get to temperature 0.
			Temperature: math.SmallestNonzeroFloat32,
		})
		if err != nil {
			return nil, fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("chat completion returned no choices")
		}

		msg := resp.Choices[0].Message
		messages = append(messages, msg)

		if len(msg.ToolCalls) == 0 {
			result.Output = msg.Content
			return result, nil
		}

		for _, call := range msg.ToolCalls {
			result.ToolCalls++

			output, err := e.toolbox.Invoke(ctx, call.Function.Name, call.Function.Arguments)
			if err != nil {
				ctxzap.Warn(ctx, "tool call failed",
					zap.String("tool", call.Function.Name),
					zap.Error(err),
				)
				output = fmt.Sprintf("tool error: %v", err)
			}

			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    output,
				ToolCallID: call.ID,
			})
		}
	}

	return nil, ErrMaxTurns
}
