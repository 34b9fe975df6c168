package services

import (
	"context"
	"slices"
	"sync"

	"github.com/liveui/live-ui/internal/models"
)

// Memory implements the Store interface with mutex-guarded in-process maps. It is the
// default backend: a convenience cache rather than a system of record, with process
// lifetime and no eviction.
type Memory struct {
	mu            sync.RWMutex
	conversations map[string][]models.Message
	html          map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		conversations: make(map[string][]models.Message),
		html:          make(map[string]string),
	}
}

// History retrieves the ordered message history for the given conversation ID. It
// returns ErrNotFound if the conversation has never been saved.
func (m *Memory) History(_ context.Context, conversationID string) ([]models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history, ok := m.conversations[conversationID]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(history), nil
}

// SaveHistory stores the full message history for the given conversation ID, replacing
// any previous value.
func (m *Memory) SaveHistory(_ context.Context, conversationID string, history []models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.conversations[conversationID] = slices.Clone(history)
	return nil
}

// DeleteHistory removes the history for the given conversation ID. Deleting an unknown
// conversation is not an error.
func (m *Memory) DeleteHistory(_ context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.conversations, conversationID)
	return nil
}

// PutHTML stores a generated HTML document keyed by message ID.
func (m *Memory) PutHTML(_ context.Context, messageID, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.html[messageID] = html
	return nil
}

// HTML retrieves the generated HTML document for the given message ID. It returns
// ErrNotFound if no document was stored for that message.
func (m *Memory) HTML(_ context.Context, messageID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	html, ok := m.html[messageID]
	if !ok {
		return "", ErrNotFound
	}
	return html, nil
}

// DeleteHTML removes the stored HTML document for the given message ID, if any.
func (m *Memory) DeleteHTML(_ context.Context, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.html, messageID)
	return nil
}
