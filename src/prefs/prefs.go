// Package prefs persists user choices (language pair, preferred provider)
// between runs in a small SQLite database.
package prefs

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Well-known keys.
const (
	KeySourceLang        = "source_lang"
	KeyTargetLang        = "target_lang"
	KeyPreferredProvider = "preferred_provider"
	// KeyChinesePriority holds "true" when Chinese scripts should win on
	// mixed-script captures.
	KeyChinesePriority = "chinese_priority"
)

type Store struct {
	db *sql.DB
}

// DefaultPath places the database under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "snaptranslate", "prefs.db"), nil
}

// Open creates the database (and parent directory) when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating prefs directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening prefs database: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS prefs (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating prefs table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Get returns the stored value and whether the key exists.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// GetDefault returns the stored value or def when the key is missing.
func (s *Store) GetDefault(key, def string) string {
	value, ok, err := s.Get(key)
	if err != nil || !ok {
		return def
	}
	return value
}

func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO prefs (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM prefs WHERE key = ?`, key)
	return err
}

// LanguagePair reads the persisted pair, falling back to the given defaults.
func (s *Store) LanguagePair(defFrom, defTo string) (string, string) {
	return s.GetDefault(KeySourceLang, defFrom), s.GetDefault(KeyTargetLang, defTo)
}

// SetLanguagePair persists both languages; the first error wins.
func (s *Store) SetLanguagePair(from, to string) error {
	if err := s.Set(KeySourceLang, from); err != nil {
		return err
	}
	return s.Set(KeyTargetLang, to)
}
