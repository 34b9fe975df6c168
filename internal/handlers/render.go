package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/liveui/live-ui/internal/services"
)

// HandleRenderHTML renders caller-supplied HTML directly. Used by frontends to put a
// generated document into an iframe without re-fetching it from a conversation.
func (m Main) HandleRenderHTML(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HTMLContent string `json:"html_content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.HTMLContent == "" {
		writeError(w, http.StatusBadRequest, "No HTML content provided")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(req.HTMLContent))
}

type messagePageData struct {
	Role      string
	Body      template.HTML
	Timestamp string
}

// HandleRenderMessage serves the HTML belonging to a single stored message. For
// assistant messages that produced a generated document, the stored document itself is
// served; for plain messages, the content is rendered markdown-to-HTML on a simple page.
func (m Main) HandleRenderMessage(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("conversation_id")
	messageID := r.PathValue("message_id")

	history, err := m.store.History(r.Context(), conversationID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Conversation not found")
			return
		}
		m.logger.Error("Failed to load history",
			slog.String("conversationID", conversationID),
			slog.String(errLoggerKey, err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	msg, ok := findMessage(history, messageID)
	if !ok {
		writeError(w, http.StatusNotFound, "Message not found")
		return
	}

	if msg.IsGeneratedUI {
		html, err := m.store.HTML(r.Context(), msg.ID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				writeError(w, http.StatusNotFound, "HTML content not found")
				return
			}
			m.logger.Error("Failed to load html",
				slog.String("messageID", msg.ID),
				slog.String(errLoggerKey, err.Error()))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write([]byte(html))
		return
	}

	var body bytes.Buffer
	if err := m.markdown.Convert([]byte(msg.Content), &body); err != nil {
		m.logger.Error("Failed to render markdown",
			slog.String("messageID", msg.ID),
			slog.String(errLoggerKey, err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = m.templates.ExecuteTemplate(w, "message.html", messagePageData{
		Role:      string(msg.Role),
		Body:      template.HTML(body.String()),
		Timestamp: msg.Timestamp.Format("2006-01-02 15:04:05"),
	})
	if err != nil {
		m.logger.Error("Failed to execute message template", slog.String(errLoggerKey, err.Error()))
	}
}
