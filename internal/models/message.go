package models

import "time"

// Message represents a single conversation turn. Messages are append-only: once created
// they are never mutated, and a conversation's stored history is strictly ordered by
// insertion.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// IsGeneratedUI marks assistant messages whose exchange produced a generated HTML
	// document. The document itself is persisted separately, keyed by this message's ID.
	IsGeneratedUI bool `json:"is_generated_ui"`
}

// Role represents the role of a message participant.
type Role string

const (
	// RoleUser represents a message sent by the caller.
	RoleUser Role = "user"
	// RoleAssistant represents a message produced by the upstream model.
	RoleAssistant Role = "assistant"
)
