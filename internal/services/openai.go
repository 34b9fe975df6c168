package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/liveui/live-ui/internal/models"
	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAI provides an implementation of the LLM interface for OpenAI-compatible chat
// completion APIs. The API exposes no top_k parameter, so that setting is ignored.
type OpenAI struct {
	model             string
	systemInstruction string

	params Parameters

	client *goopenai.Client

	logger *slog.Logger
}

// NewOpenAI creates a new OpenAI instance with the specified API key, model name, and
// system instruction.
func NewOpenAI(apiKey, model, systemInstruction string, params Parameters, logger *slog.Logger) OpenAI {
	return OpenAI{
		model:             model,
		systemInstruction: systemInstruction,
		params:            params,
		client:            goopenai.NewClient(apiKey),
		logger:            logger.With(slog.String("module", "openai")),
	}
}

// Model returns the configured model identifier.
func (o OpenAI) Model() string {
	return o.model
}

// Generate sends the ordered conversation turns to the chat completion API and returns
// the full response text.
func (o OpenAI) Generate(ctx context.Context, messages []models.Message) (string, error) {
	msgs := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		msgs[i] = goopenai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}
	msgs = slices.Insert(msgs, 0, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleSystem,
		Content: o.systemInstruction,
	})

	req := goopenai.ChatCompletionRequest{
		Model:    o.model,
		Messages: msgs,
	}
	if o.params.Temperature != nil {
		req.Temperature = *o.params.Temperature
	}
	if o.params.TopP != nil {
		req.TopP = *o.params.TopP
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices found")
	}

	return resp.Choices[0].Message.Content, nil
}
