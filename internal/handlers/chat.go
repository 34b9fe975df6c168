package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/liveui/live-ui/internal/models"
)

// HandleChat processes a single synchronous exchange: it loads the conversation
// history, makes one upstream call, extracts or synthesizes the HTML document, commits
// the new message pair, and returns everything in one response body.
func (m Main) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		m.logger.Error("Failed to decode chat request", slog.String(errLoggerKey, err.Error()))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	conversationID, history, err := m.resolveConversation(r.Context(), req)
	if err != nil {
		m.logger.Error("Failed to resolve conversation", slog.String(errLoggerKey, err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	userMsg := models.Message{
		ID:        uuid.New().String(),
		Role:      models.RoleUser,
		Content:   req.Message,
		Timestamp: time.Now(),
	}

	prompt := append(slices.Clone(history), userMsg)
	text, err := m.generate(r.Context(), prompt)
	if err != nil {
		m.logger.Error("Upstream call failed",
			slog.String("conversationID", conversationID),
			slog.String(errLoggerKey, err.Error()))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to process message: %s", err))
		return
	}

	html, err := resolveHTML(text)
	if err != nil {
		m.logger.Error("Failed to synthesize fallback page", slog.String(errLoggerKey, err.Error()))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to process message: %s", err))
		return
	}

	newHistory, err := m.commitExchange(r.Context(), conversationID, history, userMsg, html)
	if err != nil {
		m.logger.Error("Failed to commit exchange",
			slog.String("conversationID", conversationID),
			slog.String(errLoggerKey, err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Response:       summaryText,
		ConversationID: conversationID,
		IsUI:           true,
		HTMLContent:    &html,
		History:        newHistory,
	})
}
