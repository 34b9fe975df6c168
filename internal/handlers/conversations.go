package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/liveui/live-ui/internal/models"
	"github.com/liveui/live-ui/internal/services"
)

// HandleGetConversation returns the full stored history for a conversation ID.
func (m Main) HandleGetConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("conversation_id")

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

	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": conversationID,
		"history":         history,
	})
}

// HandleDeleteConversation removes a conversation and the HTML documents its messages
// produced. Deleting an unknown conversation succeeds.
func (m Main) HandleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("conversation_id")

	history, err := m.store.History(r.Context(), conversationID)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		m.logger.Error("Failed to load history",
			slog.String("conversationID", conversationID),
			slog.String(errLoggerKey, err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	for _, msg := range history {
		if !msg.IsGeneratedUI {
			continue
		}
		if err := m.store.DeleteHTML(r.Context(), msg.ID); err != nil {
			m.logger.Error("Failed to delete html",
				slog.String("messageID", msg.ID),
				slog.String(errLoggerKey, err.Error()))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	if err := m.store.DeleteHistory(r.Context(), conversationID); err != nil {
		m.logger.Error("Failed to delete history",
			slog.String("conversationID", conversationID),
			slog.String(errLoggerKey, err.Error()))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Conversation deleted"})
}

func findMessage(history []models.Message, messageID string) (models.Message, bool) {
	for _, msg := range history {
		if msg.ID == messageID {
			return msg, true
		}
	}
	return models.Message{}, false
}
