package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/liveui/live-ui/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// SQLite implements the Store interface on a SQLite database. Unlike the BoltDB
// backend, histories are stored one row per message so the data stays inspectable with
// ordinary SQL tooling.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) a SQLite database at the given path, ensuring that the
// parent directory exists, and creates the schema if needed.
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open db at %s: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db at %s: %w", path, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			conversation_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			is_generated_ui INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (conversation_id, position)
		);

		CREATE TABLE IF NOT EXISTS html_documents (
			message_id TEXT PRIMARY KEY,
			content TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close releases the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// History retrieves the ordered message history for the given conversation ID. It
// returns ErrNotFound if the conversation has never been saved.
func (s *SQLite) History(ctx context.Context, conversationID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, timestamp, is_generated_ui
		 FROM messages WHERE conversation_id = ? ORDER BY position`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var history []models.Message
	for rows.Next() {
		var msg models.Message
		var ts string
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &ts, &msg.IsGeneratedUI); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		history = append(history, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if history == nil {
		return nil, ErrNotFound
	}
	return history, nil
}

// SaveHistory stores the full message history for the given conversation ID, replacing
// any previous value.
func (s *SQLite) SaveHistory(ctx context.Context, conversationID string, history []models.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM messages WHERE conversation_id = ?`, conversationID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	for i, msg := range history {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO messages (conversation_id, position, id, role, content, timestamp, is_generated_ui)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			conversationID, i, msg.ID, msg.Role, msg.Content,
			msg.Timestamp.Format(time.RFC3339Nano), msg.IsGeneratedUI)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteHistory removes the history for the given conversation ID. Deleting an unknown
// conversation is not an error.
func (s *SQLite) DeleteHistory(ctx context.Context, conversationID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM messages WHERE conversation_id = ?`, conversationID)
	return err
}

// PutHTML stores a generated HTML document keyed by message ID.
func (s *SQLite) PutHTML(ctx context.Context, messageID, html string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO html_documents (message_id, content) VALUES (?, ?)
		 ON CONFLICT (message_id) DO UPDATE SET content = excluded.content`, messageID, html)
	return err
}

// HTML retrieves the generated HTML document for the given message ID. It returns
// ErrNotFound if no document was stored for that message.
func (s *SQLite) HTML(ctx context.Context, messageID string) (string, error) {
	var html string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM html_documents WHERE message_id = ?`, messageID).Scan(&html)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query html: %w", err)
	}
	return html, nil
}

// DeleteHTML removes the stored HTML document for the given message ID, if any.
func (s *SQLite) DeleteHTML(ctx context.Context, messageID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM html_documents WHERE message_id = ?`, messageID)
	return err
}
