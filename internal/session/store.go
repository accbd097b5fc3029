package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pixenhq/pixen/internal/log"
)

// Store is the durable per-session record store: one JSON file per session
// keyed by id, plus a one-time bulk import from the legacy flat file. All
// operations are independently fallible; callers treat the in-memory
// collection as authoritative and swallow storage errors.
type Store struct {
	mu         sync.RWMutex
	baseDir    string
	legacyPath string
}

var (
	defaultStore *Store
	defaultErr   error
	defaultOnce  sync.Once
)

// Open returns the process-wide store rooted at ~/.pixen/sessions,
// constructed once. The underlying directory handle is never exposed.
func Open() (*Store, error) {
	defaultOnce.Do(func() {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			defaultErr = fmt.Errorf("failed to get home directory: %w", err)
			return
		}
		defaultStore, defaultErr = NewStore(filepath.Join(homeDir, ".pixen", "sessions"))
	})
	return defaultStore, defaultErr
}

// NewStore creates a store rooted at baseDir. The legacy flat file lives
// next to the directory as sessions.json.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &Store{
		baseDir:    baseDir,
		legacyPath: filepath.Join(filepath.Dir(baseDir), "sessions.json"),
	}, nil
}

// GetAll returns every durably stored session in no guaranteed order;
// callers sort. Unparsable files are skipped, not fatal.
func (s *Store) GetAll() ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	sessions := make([]*Session, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		sess, err := s.readFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			log.Logger().Warn("skipping unreadable session file",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// Put upserts a session record, overwriting wholesale by id.
func (s *Store) Put(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(sess)
}

func (s *Store) putLocked(sess *Session) error {
	if sess.ID == "" {
		return fmt.Errorf("session has no id")
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	path := filepath.Join(s.baseDir, sess.ID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Delete removes a session record by id. Deleting a nonexistent id is a
// no-op, not an error.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.baseDir, id+".json")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// MigrateLegacy performs the one-time bulk import from the legacy flat
// file: if it parses to a non-empty session list, every entry is upserted
// into the primary store, the legacy file is cleared, and the list is
// returned. Anything going wrong is treated as "nothing to migrate".
// Callers run this only when the primary store is empty.
func (s *Store) MigrateLegacy() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.legacyPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Logger().Warn("legacy store unreadable", zap.Error(err))
		}
		return nil
	}

	var sessions []*Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		log.Logger().Warn("legacy store unparsable", zap.Error(err))
		return nil
	}
	if len(sessions) == 0 {
		return nil
	}

	for _, sess := range sessions {
		if err := s.putLocked(sess); err != nil {
			log.Logger().Warn("failed to migrate legacy session",
				zap.String("id", sess.ID), zap.Error(err))
		}
	}

	if err := os.Remove(s.legacyPath); err != nil {
		log.Logger().Warn("failed to clear legacy store", zap.Error(err))
	}

	log.Logger().Info("migrated legacy sessions", zap.Int("count", len(sessions)))
	return sessions
}

func (s *Store) readFile(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}
