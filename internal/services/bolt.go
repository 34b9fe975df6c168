package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/liveui/live-ui/internal/models"
	bolt "go.etcd.io/bbolt"
)

// BoltDB implements the Store interface using a BoltDB backend for persistent storage
// of conversation histories and generated HTML documents. Histories are stored as JSON
// values keyed by conversation ID; HTML documents are stored raw, keyed by the
// assistant message ID that produced them.
type BoltDB struct {
	db *bolt.DB
}

var (
	conversationsBucket = []byte("conversations")
	htmlBucket          = []byte("html")
)

// NewBoltDB creates a new BoltDB instance with the specified file path. It initializes
// the database with required buckets and returns an error if the database cannot be
// opened or initialized. The database file is created with 0600 permissions if it
// doesn't exist.
func NewBoltDB(path string) (BoltDB, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return BoltDB{}, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(conversationsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(htmlBucket)
		return err
	})

	return BoltDB{db: db}, err
}

// Close releases the underlying database file.
func (b BoltDB) Close() error {
	return b.db.Close()
}

// History retrieves the ordered message history for the given conversation ID. It
// returns ErrNotFound if the conversation has never been saved.
func (b BoltDB) History(_ context.Context, conversationID string) ([]models.Message, error) {
	var history []models.Message
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(conversationsBucket).Get([]byte(conversationID))
		if v == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(v, &history); err != nil {
			return fmt.Errorf("failed to unmarshal history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

// SaveHistory stores the full message history for the given conversation ID, replacing
// any previous value.
func (b BoltDB) SaveHistory(_ context.Context, conversationID string, history []models.Message) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		v, err := json.Marshal(history)
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		return tx.Bucket(conversationsBucket).Put([]byte(conversationID), v)
	})
}

// DeleteHistory removes the history for the given conversation ID. Deleting an unknown
// conversation is not an error.
func (b BoltDB) DeleteHistory(_ context.Context, conversationID string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(conversationsBucket).Delete([]byte(conversationID))
	})
}

// PutHTML stores a generated HTML document keyed by message ID.
func (b BoltDB) PutHTML(_ context.Context, messageID, html string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(htmlBucket).Put([]byte(messageID), []byte(html))
	})
}

// HTML retrieves the generated HTML document for the given message ID. It returns
// ErrNotFound if no document was stored for that message.
func (b BoltDB) HTML(_ context.Context, messageID string) (string, error) {
	var html string
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(htmlBucket).Get([]byte(messageID))
		if v == nil {
			return ErrNotFound
		}
		html = string(v)
		return nil
	})
	return html, err
}

// DeleteHTML removes the stored HTML document for the given message ID, if any.
func (b BoltDB) DeleteHTML(_ context.Context, messageID string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(htmlBucket).Delete([]byte(messageID))
	})
}
