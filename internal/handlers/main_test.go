package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/liveui/live-ui/internal/handlers"
	"github.com/liveui/live-ui/internal/models"
	"github.com/liveui/live-ui/internal/services"
)

type mockLLM struct {
	response string
	err      error

	lastPrompt []models.Message
}

func (m *mockLLM) Generate(_ context.Context, messages []models.Message) (string, error) {
	m.lastPrompt = slices.Clone(messages)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) Model() string {
	return "test-model"
}

type mockStore struct {
	conversations map[string][]models.Message
	html          map[string]string
	err           error
}

func newMockStore() *mockStore {
	return &mockStore{
		conversations: map[string][]models.Message{},
		html:          map[string]string{},
	}
}

func (m *mockStore) History(_ context.Context, conversationID string) ([]models.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	history, ok := m.conversations[conversationID]
	if !ok {
		return nil, services.ErrNotFound
	}
	return slices.Clone(history), nil
}

func (m *mockStore) SaveHistory(_ context.Context, conversationID string, history []models.Message) error {
	if m.err != nil {
		return m.err
	}
	m.conversations[conversationID] = slices.Clone(history)
	return nil
}

func (m *mockStore) DeleteHistory(_ context.Context, conversationID string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.conversations, conversationID)
	return nil
}

func (m *mockStore) PutHTML(_ context.Context, messageID, html string) error {
	if m.err != nil {
		return m.err
	}
	m.html[messageID] = html
	return nil
}

func (m *mockStore) HTML(_ context.Context, messageID string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	html, ok := m.html[messageID]
	if !ok {
		return "", services.ErrNotFound
	}
	return html, nil
}

func (m *mockStore) DeleteHTML(_ context.Context, messageID string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.html, messageID)
	return nil
}

func newTestMain(t *testing.T, llm handlers.LLM, store handlers.Store) handlers.Main {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	m, err := handlers.NewMain(llm, store, logger, handlers.Options{
		StreamDelay: 1,
	})
	if err != nil {
		t.Fatalf("NewMain() error = %v", err)
	}
	return m
}

func postChat(t *testing.T, m handlers.Main, body models.ChatRequest) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(data))
	w := httptest.NewRecorder()
	m.HandleChat(w, req)
	return w
}

func TestHandleChatRequiresMessage(t *testing.T) {
	m := newTestMain(t, &mockLLM{}, newMockStore())

	w := postChat(t, m, models.ChatRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleChatFallbackPage(t *testing.T) {
	// The model ignores the format instruction entirely; the response must still carry
	// a complete HTML document wrapping the raw text.
	raw := "The weather in Tokyo is sunny and 22 degrees."
	llm := &mockLLM{response: raw}
	store := newMockStore()
	m := newTestMain(t, llm, store)

	w := postChat(t, m, models.ChatRequest{Message: "What's the weather in Tokyo?"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp models.ChatResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}

	if !resp.IsUI {
		t.Error("is_ui should be true")
	}
	if resp.Response != "I've generated a dynamic UI for you!" {
		t.Errorf("response = %q", resp.Response)
	}
	if resp.HTMLContent == nil {
		t.Fatal("html_content should not be null")
	}
	if !strings.Contains(*resp.HTMLContent, raw) {
		t.Error("fallback page should embed the raw model text")
	}
	if !strings.HasPrefix(*resp.HTMLContent, "<!DOCTYPE html>") {
		t.Error("fallback page should be a complete document")
	}

	if len(resp.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(resp.History))
	}
	if resp.History[0].Role != models.RoleUser || resp.History[1].Role != models.RoleAssistant {
		t.Error("history should be user message then assistant message")
	}
	if resp.History[1].Content != resp.Response {
		t.Error("assistant message content should be the fixed summary, not the model text")
	}
	if !resp.History[1].IsGeneratedUI {
		t.Error("assistant message should be flagged as generated UI")
	}
}

func TestHandleChatExtractsHTML(t *testing.T) {
	llm := &mockLLM{response: "HTML_PAGE:<html><body>dashboard</body></html>"}
	store := newMockStore()
	m := newTestMain(t, llm, store)

	w := postChat(t, m, models.ChatRequest{Message: "Build a dashboard"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp models.ChatResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}

	if resp.HTMLContent == nil || *resp.HTMLContent != "<html><body>dashboard</body></html>" {
		t.Errorf("html_content = %v, want exact extracted document", resp.HTMLContent)
	}

	// The generated document is persisted under the assistant message ID.
	stored, ok := store.html[resp.History[1].ID]
	if !ok {
		t.Fatal("generated html should be stored")
	}
	if stored != *resp.HTMLContent {
		t.Error("stored html should match the returned document")
	}
}

func TestHandleChatSequentialHistory(t *testing.T) {
	llm := &mockLLM{response: "HTML_PAGE:<html></html>"}
	store := newMockStore()
	m := newTestMain(t, llm, store)

	w := postChat(t, m, models.ChatRequest{Message: "first"})
	var first models.ChatResponse
	if err := json.NewDecoder(w.Body).Decode(&first); err != nil {
		t.Fatal(err)
	}

	w = postChat(t, m, models.ChatRequest{Message: "second", ConversationID: first.ConversationID})
	var second models.ChatResponse
	if err := json.NewDecoder(w.Body).Decode(&second); err != nil {
		t.Fatal(err)
	}

	if second.ConversationID != first.ConversationID {
		t.Fatal("second call should reuse the conversation id")
	}
	if len(second.History) != len(first.History)+2 {
		t.Fatalf("history length = %d, want %d", len(second.History), len(first.History)+2)
	}
	for i, msg := range first.History {
		if second.History[i].ID != msg.ID {
			t.Fatalf("history[%d] = %q, want prefix message %q", i, second.History[i].ID, msg.ID)
		}
	}

	// The second call's prompt carries the stored history plus the new user message.
	if len(llm.lastPrompt) != 3 {
		t.Errorf("prompt length = %d, want 3", len(llm.lastPrompt))
	}
}

func TestHandleChatHistoryOverride(t *testing.T) {
	llm := &mockLLM{response: "HTML_PAGE:<html></html>"}
	store := newMockStore()
	store.conversations["c1"] = []models.Message{
		{ID: "old", Role: models.RoleUser, Content: "stored"},
	}
	m := newTestMain(t, llm, store)

	override := []models.Message{
		{ID: "o1", Role: models.RoleUser, Content: "supplied"},
		{ID: "o2", Role: models.RoleAssistant, Content: "supplied answer"},
	}
	w := postChat(t, m, models.ChatRequest{Message: "next", ConversationID: "c1", History: override})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	if len(llm.lastPrompt) != 3 {
		t.Fatalf("prompt length = %d, want 3", len(llm.lastPrompt))
	}
	if llm.lastPrompt[0].ID != "o1" {
		t.Error("supplied history should override the stored copy")
	}
}

func TestHandleChatUpstreamFailure(t *testing.T) {
	llm := &mockLLM{err: context.DeadlineExceeded}
	store := newMockStore()
	m := newTestMain(t, llm, store)

	w := postChat(t, m, models.ChatRequest{Message: "hello", ConversationID: "c1"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	if len(store.conversations) != 0 {
		t.Error("no history should be committed on upstream failure")
	}
}

func TestHandleGetConversation(t *testing.T) {
	store := newMockStore()
	store.conversations["c1"] = []models.Message{
		{ID: "m1", Role: models.RoleUser, Content: "hello"},
	}
	m := newTestMain(t, &mockLLM{}, store)

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{name: "known conversation", id: "c1", wantStatus: http.StatusOK},
		{name: "unknown conversation", id: "nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/conversations/"+tt.id, nil)
			req.SetPathValue("conversation_id", tt.id)
			w := httptest.NewRecorder()

			m.HandleGetConversation(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp struct {
				ConversationID string           `json:"conversation_id"`
				History        []models.Message `json:"history"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.ConversationID != tt.id || len(resp.History) != 1 {
				t.Errorf("resp = %+v", resp)
			}
		})
	}
}

func TestHandleDeleteConversation(t *testing.T) {
	store := newMockStore()
	store.conversations["c1"] = []models.Message{
		{ID: "m1", Role: models.RoleAssistant, Content: "done", IsGeneratedUI: true},
	}
	store.html["m1"] = "<html></html>"
	m := newTestMain(t, &mockLLM{}, store)

	for _, id := range []string{"c1", "c1"} { // second delete exercises idempotency
		req := httptest.NewRequest(http.MethodDelete, "/conversations/"+id, nil)
		req.SetPathValue("conversation_id", id)
		w := httptest.NewRecorder()

		m.HandleDeleteConversation(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
	}

	if len(store.conversations) != 0 {
		t.Error("conversation should be removed")
	}
	if len(store.html) != 0 {
		t.Error("generated html should be removed with its conversation")
	}
}

func TestHandleHealth(t *testing.T) {
	m := newTestMain(t, &mockLLM{}, newMockStore())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	m.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "healthy" || resp["model"] != "test-model" {
		t.Errorf("resp = %v", resp)
	}
}

func TestHandleRenderHTML(t *testing.T) {
	m := newTestMain(t, &mockLLM{}, newMockStore())

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "direct render",
			body:       `{"html_content":"<html><body>x</body></html>"}`,
			wantStatus: http.StatusOK,
			wantBody:   "<html><body>x</body></html>",
		},
		{
			name:       "empty payload",
			body:       `{"html_content":""}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid body",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/render-html", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			m.HandleRenderHTML(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandleRenderMessage(t *testing.T) {
	store := newMockStore()
	store.conversations["c1"] = []models.Message{
		{ID: "plain", Role: models.RoleUser, Content: "# Hello"},
		{ID: "gen", Role: models.RoleAssistant, Content: "summary", IsGeneratedUI: true},
	}
	store.html["gen"] = "<html><body>generated</body></html>"
	m := newTestMain(t, &mockLLM{}, store)

	tests := []struct {
		name           string
		conversationID string
		messageID      string
		wantStatus     int
		wantBody       string
	}{
		{
			name:           "generated ui message serves stored document",
			conversationID: "c1",
			messageID:      "gen",
			wantStatus:     http.StatusOK,
			wantBody:       "<html><body>generated</body></html>",
		},
		{
			name:           "plain message rendered as markdown",
			conversationID: "c1",
			messageID:      "plain",
			wantStatus:     http.StatusOK,
			wantBody:       "<h1>Hello</h1>",
		},
		{
			name:           "unknown conversation",
			conversationID: "nope",
			messageID:      "gen",
			wantStatus:     http.StatusNotFound,
		},
		{
			name:           "unknown message",
			conversationID: "c1",
			messageID:      "nope",
			wantStatus:     http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet,
				"/render/"+tt.conversationID+"/"+tt.messageID, nil)
			req.SetPathValue("conversation_id", tt.conversationID)
			req.SetPathValue("message_id", tt.messageID)
			w := httptest.NewRecorder()

			m.HandleRenderMessage(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want to contain %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}
