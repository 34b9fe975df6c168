package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/liveui/live-ui/internal/models"
)

// Gemini provides an implementation of the LLM interface for Google's generative
// language API. A single non-incremental generateContent call is made per request; the
// response text is re-chunked downstream, so upstream streaming is not used.
type Gemini struct {
	apiKey            string
	model             string
	systemInstruction string
	grounding         bool

	params Parameters

	baseURL string
	client  *http.Client

	logger *slog.Logger
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature *float32 `json:"temperature,omitempty"`
	TopP        *float32 `json:"topP,omitempty"`
	TopK        *int     `json:"topK,omitempty"`
}

type geminiGoogleSearch struct{}

type geminiTool struct {
	GoogleSearch *geminiGoogleSearch `json:"google_search,omitempty"`
}

type geminiGenerateRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
	Tools             []geminiTool            `json:"tools,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiGenerateResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

const geminiAPIEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// NewGemini creates a new Gemini instance with the specified API key, model name, and
// system instruction. When grounding is enabled, the google_search tool is attached to
// every request so the model can fold live search results into its output.
func NewGemini(apiKey, model, systemInstruction string, grounding bool, params Parameters, logger *slog.Logger) Gemini {
	return Gemini{
		apiKey:            apiKey,
		model:             model,
		systemInstruction: systemInstruction,
		grounding:         grounding,
		params:            params,
		baseURL:           geminiAPIEndpoint,
		client:            &http.Client{},
		logger:            logger.With(slog.String("module", "gemini")),
	}
}

// Model returns the configured model identifier.
func (g Gemini) Model() string {
	return g.model
}

func geminiContents(messages []models.Message) []geminiContent {
	contents := make([]geminiContent, 0, len(messages))
	for _, msg := range messages {
		role := "user"
		if msg.Role == models.RoleAssistant {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}
	return contents
}

// Generate sends the ordered conversation turns to the generateContent endpoint and
// returns the full response text. The context can be used to cancel or bound the call.
func (g Gemini) Generate(ctx context.Context, messages []models.Message) (string, error) {
	reqBody := geminiGenerateRequest{
		Contents: geminiContents(messages),
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: g.systemInstruction}},
		},
		GenerationConfig: &geminiGenerationConfig{
			Temperature: g.params.Temperature,
			TopP:        g.params.TopP,
			TopK:        g.params.TopK,
		},
	}
	if g.grounding {
		reqBody.Tools = []geminiTool{{GoogleSearch: &geminiGoogleSearch{}}}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var e geminiError
		if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
			return "", fmt.Errorf("gemini error %s: %s", e.Error.Status, e.Error.Message)
		}
		return "", fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var res geminiGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("error decoding response: %w", err)
	}

	if len(res.Candidates) == 0 {
		return "", errors.New("no candidates found")
	}

	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	g.logger.Debug("Generated response", slog.Int("length", sb.Len()))

	return sb.String(), nil
}
