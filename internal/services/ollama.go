package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/liveui/live-ui/internal/models"
	"github.com/ollama/ollama/api"
)

// Ollama provides an implementation of the LLM interface for a local Ollama server.
type Ollama struct {
	host              string
	model             string
	systemInstruction string

	params Parameters

	client *api.Client
}

// NewOllama creates a new Ollama instance with the specified host URL and model name.
// The host parameter should be a valid URL pointing to an Ollama server. If the
// provided host URL is invalid, the function will panic.
func NewOllama(host, model, systemInstruction string, params Parameters) Ollama {
	u, err := url.Parse(host)
	if err != nil {
		panic(err)
	}

	return Ollama{
		host:              host,
		model:             model,
		systemInstruction: systemInstruction,
		params:            params,
		client:            api.NewClient(u, &http.Client{}),
	}
}

// Model returns the configured model identifier.
func (o Ollama) Model() string {
	return o.model
}

// Generate sends the ordered conversation turns to the Ollama chat API without
// streaming and returns the full response text.
func (o Ollama) Generate(ctx context.Context, messages []models.Message) (string, error) {
	msgs := make([]api.Message, len(messages))
	for i, msg := range messages {
		msgs[i] = api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}
	msgs = slices.Insert(msgs, 0, api.Message{
		Role:    "system",
		Content: o.systemInstruction,
	})

	opts := map[string]any{}
	if o.params.Temperature != nil {
		opts["temperature"] = *o.params.Temperature
	}
	if o.params.TopP != nil {
		opts["top_p"] = *o.params.TopP
	}
	if o.params.TopK != nil {
		opts["top_k"] = *o.params.TopK
	}

	f := false
	req := api.ChatRequest{
		Model:    o.model,
		Messages: msgs,
		Stream:   &f,
		Options:  opts,
	}

	var sb strings.Builder
	if err := o.client.Chat(ctx, &req, func(res api.ChatResponse) error {
		sb.WriteString(res.Message.Content)
		return nil
	}); err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}

	return sb.String(), nil
}
