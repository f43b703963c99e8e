package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// Storage keys. Each key holds one JSON blob and is rewritten whole after
// every mutation of its collection; no write spans more than its own key.
const (
	keyBooks       = "books"
	keyActivities  = "activities"
	keyActiveBook  = "active_book_id"
	keyRecords     = "records"
	keyTimers      = "timer_states"
	keyShowSeconds = "highlight_show_seconds"
)

// Store owns the tracker state. All state is held in memory and mirrored to a
// single key-value table; reads are served from memory, every mutation writes
// its collection back. One mutex guards the state because bubbletea runs
// commands on their own goroutines.
type Store struct {
	db *sql.DB

	mu          sync.Mutex
	books       []Book
	activities  []Activity
	activeBook  string
	records     []Record
	timers      map[string]map[string]TimerState // bookID -> activityID -> state
	showSeconds bool
}

// New opens (or creates) the SQLite database at dbPath and loads the state,
// migrating legacy blobs and seeding defaults as needed. Unparseable blobs
// are discarded in favor of defaults; New never fails because of bad data.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}

	s := &Store{db: db, timers: map[string]map[string]TimerState{}}
	s.load()
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DefaultDBPath returns ~/.config/baby-tracker/tracker.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "baby-tracker", "tracker.db"), nil
}

// load reads every storage key independently. A missing or corrupt blob
// leaves its collection zero-valued; migrate fills in defaults afterwards.
func (s *Store) load() {
	s.loadKey(keyBooks, &s.books)
	s.loadKey(keyActivities, &s.activities)
	s.loadKey(keyActiveBook, &s.activeBook)
	s.loadKey(keyRecords, &s.records)
	s.loadKey(keyTimers, &s.timers)
	s.loadKey(keyShowSeconds, &s.showSeconds)
	if s.timers == nil {
		s.timers = map[string]map[string]TimerState{}
	}
}

func (s *Store) loadKey(key string, dst any) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM state WHERE key = ?`, key).Scan(&raw)
	if err != nil {
		return
	}
	// Corrupt blobs are silently dropped; startup must never block on bad data.
	_ = json.Unmarshal([]byte(raw), dst)
}

// putKey marshals v and rewrites its key. Callers hold s.mu.
func (s *Store) putKey(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(raw),
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) saveBooks() error      { return s.putKey(keyBooks, s.books) }
func (s *Store) saveActivities() error { return s.putKey(keyActivities, s.activities) }
func (s *Store) saveActiveBook() error { return s.putKey(keyActiveBook, s.activeBook) }
func (s *Store) saveRecords() error    { return s.putKey(keyRecords, s.records) }
func (s *Store) saveTimers() error     { return s.putKey(keyTimers, s.timers) }
