package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"wordvault-backend/internal/models"
)

// Fixed keys of the flat key/value namespace.
const (
	keyAPIKey       = "bin_api_key"
	keyBinID        = "bin_id"
	keyPasswordHash = "admin_password_hash"
	keyStreak       = "streak"
	keySnapshot     = "word_snapshot"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS learned_words (
    word_id TEXT PRIMARY KEY,
    marked_at TIMESTAMP NOT NULL
);
`

// Store is the Local Cache Store: durable per-device key/value persistence.
// Writes are best-effort; a failed write is logged and never propagated,
// since the remote document (when configured) remains the source of truth.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) get(key string) string {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("cache: read %s failed: %v", key, err)
		}
		return ""
	}
	return value
}

func (s *Store) set(key, value string) {
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		log.Printf("cache: write %s failed: %v", key, err)
	}
}

func (s *Store) Credentials() models.Credentials {
	return models.Credentials{
		APIKey: s.get(keyAPIKey),
		BinID:  s.get(keyBinID),
	}
}

func (s *Store) SetCredentials(apiKey, binID string) {
	s.set(keyAPIKey, apiKey)
	s.set(keyBinID, binID)
}

// Snapshot returns the offline mirror of the word collection.
// A missing or unreadable snapshot is an empty collection.
func (s *Store) Snapshot() []models.Word {
	raw := s.get(keySnapshot)
	if raw == "" {
		return []models.Word{}
	}

	var words []models.Word
	if err := json.Unmarshal([]byte(raw), &words); err != nil {
		log.Printf("cache: snapshot unreadable, treating as empty: %v", err)
		return []models.Word{}
	}
	if words == nil {
		words = []models.Word{}
	}
	return words
}

func (s *Store) SetSnapshot(words []models.Word) {
	if words == nil {
		words = []models.Word{}
	}
	data, err := json.Marshal(words)
	if err != nil {
		log.Printf("cache: snapshot serialization failed: %v", err)
		return
	}
	s.set(keySnapshot, string(data))
}

func (s *Store) PasswordHash() string {
	return s.get(keyPasswordHash)
}

func (s *Store) SetPasswordHash(hash string) {
	s.set(keyPasswordHash, hash)
}

func (s *Store) Streak() models.Streak {
	raw := s.get(keyStreak)
	if raw == "" {
		return models.Streak{}
	}

	var streak models.Streak
	if err := json.Unmarshal([]byte(raw), &streak); err != nil {
		log.Printf("cache: streak unreadable, resetting: %v", err)
		return models.Streak{}
	}
	return streak
}

func (s *Store) SetStreak(streak models.Streak) {
	data, err := json.Marshal(streak)
	if err != nil {
		log.Printf("cache: streak serialization failed: %v", err)
		return
	}
	s.set(keyStreak, string(data))
}

// Learned set: word ids this device has flagged learned. Never synced remotely.

func (s *Store) MarkLearned(wordID string) {
	_, err := s.db.Exec(`
		INSERT INTO learned_words (word_id, marked_at) VALUES (?, ?)
		ON CONFLICT(word_id) DO NOTHING`,
		wordID, time.Now().UTC(),
	)
	if err != nil {
		log.Printf("cache: mark learned %s failed: %v", wordID, err)
	}
}

func (s *Store) UnmarkLearned(wordID string) {
	if _, err := s.db.Exec("DELETE FROM learned_words WHERE word_id = ?", wordID); err != nil {
		log.Printf("cache: unmark learned %s failed: %v", wordID, err)
	}
}

func (s *Store) IsLearned(wordID string) bool {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM learned_words WHERE word_id = ?)", wordID).Scan(&exists)
	if err != nil {
		log.Printf("cache: learned lookup %s failed: %v", wordID, err)
		return false
	}
	return exists
}

func (s *Store) LearnedSet() map[string]bool {
	set := make(map[string]bool)

	rows, err := s.db.Query("SELECT word_id FROM learned_words")
	if err != nil {
		log.Printf("cache: learned set read failed: %v", err)
		return set
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			log.Printf("cache: learned set scan failed: %v", err)
			return set
		}
		set[id] = true
	}
	return set
}

func (s *Store) Close() error {
	return s.db.Close()
}
