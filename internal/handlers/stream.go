package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/liveui/live-ui/internal/models"
	"github.com/liveui/live-ui/internal/ui"
	"github.com/tmaxmax/go-sse"
)

// HandleChatStream processes an exchange as a stream of JSON event records over SSE.
// The upstream call is still a single non-incremental one; its full response text is
// re-chunked for transport with a pacing delay between emissions. Every stream that
// reaches this handler terminates with exactly one is_complete record, whether the
// upstream call succeeds or fails; history is committed only on success.
func (m Main) HandleChatStream(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		m.logger.Error("Failed to decode stream request", slog.String(errLoggerKey, err.Error()))
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

	sess, err := sse.Upgrade(w, r)
	if err != nil {
		m.logger.Error("Failed to upgrade connection", slog.String(errLoggerKey, err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	send := func(event any) error {
		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		msg := &sse.Message{}
		msg.AppendData(string(data))
		if err := sess.Send(msg); err != nil {
			return err
		}
		return sess.Flush()
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
		m.sendError(send, conversationID, err)
		return
	}

	for chunk, accumulated := range ui.Chunks(text, m.chunkSize) {
		// The html update check runs before the text chunk goes out, so a caller
		// rendering progressively sees the document no later than the text that
		// produced it.
		if htmlSoFar, ok := ui.HTMLUpdate(accumulated); ok {
			if err := send(models.HTMLChunkEvent{
				Type:           models.EventHTMLChunk,
				HTMLContent:    htmlSoFar,
				ConversationID: conversationID,
				IsComplete:     false,
			}); err != nil {
				m.logger.Error("Failed to send html chunk", slog.String(errLoggerKey, err.Error()))
				return
			}
		}

		if err := send(models.TextChunkEvent{
			Type:            models.EventTextChunk,
			Content:         chunk,
			AccumulatedText: accumulated,
			ConversationID:  conversationID,
			IsComplete:      false,
		}); err != nil {
			m.logger.Error("Failed to send text chunk", slog.String(errLoggerKey, err.Error()))
			return
		}

		select {
		case <-r.Context().Done():
			// Client gone; a stream closed without a terminal record is the
			// partial-delivery signal callers are expected to detect.
			return
		case <-time.After(m.streamDelay):
		}
	}

	html, err := resolveHTML(text)
	if err != nil {
		m.logger.Error("Failed to synthesize fallback page", slog.String(errLoggerKey, err.Error()))
		m.sendError(send, conversationID, err)
		return
	}

	if err := send(models.CompleteEvent{
		Type:           models.EventComplete,
		FinalText:      summaryText,
		HTMLContent:    &html,
		IsUI:           true,
		ConversationID: conversationID,
		IsComplete:     true,
	}); err != nil {
		m.logger.Error("Failed to send completion", slog.String(errLoggerKey, err.Error()))
		return
	}

	// The terminal record is already out; commit with a fresh context so a client
	// disconnecting right after it cannot void the persistence.
	if _, err := m.commitExchange(context.Background(), conversationID, history, userMsg, html); err != nil {
		m.logger.Error("Failed to commit exchange",
			slog.String("conversationID", conversationID),
			slog.String(errLoggerKey, err.Error()))
	}
}

// sendError emits the terminal error-shaped complete record. Upstream failures inside a
// stream never abort the connection; callers always get a well-formed terminal event.
func (m Main) sendError(send func(any) error, conversationID string, cause error) {
	err := send(models.CompleteEvent{
		Type:           models.EventComplete,
		FinalText:      "Sorry, I encountered an error: " + cause.Error() + ". Please try again.",
		HTMLContent:    nil,
		IsUI:           false,
		ConversationID: conversationID,
		IsComplete:     true,
	})
	if err != nil {
		m.logger.Error("Failed to send error completion", slog.String(errLoggerKey, err.Error()))
	}
}
