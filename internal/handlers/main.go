package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	liveui "github.com/liveui/live-ui"
	"github.com/liveui/live-ui/internal/models"
	"github.com/liveui/live-ui/internal/services"
	"github.com/liveui/live-ui/internal/ui"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
)

// LLM represents the upstream generative model. Generate makes exactly one
// non-incremental call with the full ordered conversation and returns the complete
// response text; all re-chunking for transport happens downstream.
type LLM interface {
	Generate(ctx context.Context, messages []models.Message) (string, error)
	Model() string
}

// Store defines the interface for conversation and generated-document persistence.
// History returns services.ErrNotFound for conversations that were never saved;
// deletions are idempotent.
type Store interface {
	History(ctx context.Context, conversationID string) ([]models.Message, error)
	SaveHistory(ctx context.Context, conversationID string, history []models.Message) error
	DeleteHistory(ctx context.Context, conversationID string) error

	PutHTML(ctx context.Context, messageID, html string) error
	HTML(ctx context.Context, messageID string) (string, error)
	DeleteHTML(ctx context.Context, messageID string) error
}

// Options carries the tuning knobs of the stream assembler. Zero values fall back to
// the defaults the service shipped with.
type Options struct {
	// Grounding is reported on the health endpoint; the flag itself lives with the
	// provider configuration.
	Grounding bool

	// ChunkSize is the number of characters per text_chunk event.
	ChunkSize int
	// StreamDelay paces delivery between chunk emissions. It is an artificial
	// rate-limit, not backpressure.
	StreamDelay time.Duration
	// GenerateTimeout bounds the upstream model call so a hung upstream cannot hang
	// the request forever.
	GenerateTimeout time.Duration

	// AllowedOrigins lists the origins accepted by the CORS middleware.
	AllowedOrigins []string
}

// Main handles the core functionality of the service: it orchestrates the upstream
// model call, the response re-chunking, and conversation persistence, and serves the
// HTTP API around them.
type Main struct {
	llm   LLM
	store Store

	templates *template.Template
	markdown  goldmark.Markdown

	grounding       bool
	chunkSize       int
	streamDelay     time.Duration
	generateTimeout time.Duration
	allowedOrigins  []string

	logger *slog.Logger
}

const errLoggerKey = "err"

// summaryText is the fixed assistant-message content persisted for every successful
// exchange; the generated HTML itself is never stored in the conversation history.
const summaryText = "I've generated a dynamic UI for you!"

const (
	defaultStreamDelay     = 10 * time.Millisecond
	defaultGenerateTimeout = 2 * time.Minute
)

// NewMain creates a new Main instance with the provided LLM and Store implementations.
// It parses the embedded HTML templates and configures the markdown renderer used by
// the message-render endpoint.
func NewMain(llm LLM, store Store, logger *slog.Logger, opts Options) (Main, error) {
	tmpl, err := template.ParseFS(liveui.TemplateFS, "templates/message.html")
	if err != nil {
		return Main{}, err
	}

	if opts.ChunkSize <= 0 {
		opts.ChunkSize = ui.DefaultChunkSize
	}
	if opts.StreamDelay <= 0 {
		opts.StreamDelay = defaultStreamDelay
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = defaultGenerateTimeout
	}

	return Main{
		llm:       llm,
		store:     store,
		templates: tmpl,
		markdown: goldmark.New(
			goldmark.WithExtensions(
				highlighting.NewHighlighting(highlighting.WithStyle("monokai")),
			),
		),
		grounding:       opts.Grounding,
		chunkSize:       opts.ChunkSize,
		streamDelay:     opts.StreamDelay,
		generateTimeout: opts.GenerateTimeout,
		allowedOrigins:  opts.AllowedOrigins,
		logger:          logger.With(slog.String("module", "handlers")),
	}, nil
}

// resolveConversation resolves the conversation ID for a request, minting a new one
// when the caller did not supply any, and loads the prior history. A history supplied
// in the request overrides the stored copy for this request.
func (m Main) resolveConversation(ctx context.Context, req models.ChatRequest) (string, []models.Message, error) {
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.New().String()
	}

	if len(req.History) > 0 {
		return conversationID, slices.Clone(req.History), nil
	}

	history, err := m.store.History(ctx, conversationID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return conversationID, nil, nil
		}
		return "", nil, fmt.Errorf("failed to load history: %w", err)
	}
	return conversationID, history, nil
}

// generate makes the single upstream call for a request, bounded by the configured
// timeout.
func (m Main) generate(ctx context.Context, prompt []models.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.generateTimeout)
	defer cancel()

	return m.llm.Generate(ctx, prompt)
}

// commitExchange appends the user message and a synthetic assistant message to the
// history, persists it, and stores the generated HTML under the assistant message ID.
// It is only called on successful exchanges; failed upstream calls leave the store
// untouched on every endpoint.
func (m Main) commitExchange(
	ctx context.Context,
	conversationID string,
	history []models.Message,
	userMsg models.Message,
	html string,
) ([]models.Message, error) {
	assistantMsg := models.Message{
		ID:            uuid.New().String(),
		Role:          models.RoleAssistant,
		Content:       summaryText,
		Timestamp:     time.Now(),
		IsGeneratedUI: true,
	}

	newHistory := append(slices.Clone(history), userMsg, assistantMsg)
	if err := m.store.SaveHistory(ctx, conversationID, newHistory); err != nil {
		return nil, fmt.Errorf("failed to save history: %w", err)
	}
	if err := m.store.PutHTML(ctx, assistantMsg.ID, html); err != nil {
		return nil, fmt.Errorf("failed to store html: %w", err)
	}

	return newHistory, nil
}

// resolveHTML extracts the sentinel-delimited document from the full response text, or
// synthesizes the fallback wrapper when the model did not follow the format.
func resolveHTML(text string) (string, error) {
	if html, ok := ui.ExtractHTML(text); ok {
		return html, nil
	}
	return ui.FallbackPage(text, time.Now())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
