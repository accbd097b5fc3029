package session

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/pixenhq/pixen/internal/log"
	"github.com/pixenhq/pixen/internal/message"
)

// Manager owns the authoritative in-memory session collection and the
// selected-session pointer. Every mutation is optimistic: applied to
// memory first, then mirrored to the Store through the fire-and-forget
// persister without blocking or rolling back on storage failure.
//
// Invariant: once Initialize returns there is always at least one session;
// deleting the last remaining session immediately creates a replacement.
type Manager struct {
	mu         sync.Mutex
	store      *Store
	persist    *persister
	sessions   []*Session
	selectedID string
}

// NewManager creates a manager backed by the given store and starts its
// persist worker.
func NewManager(store *Store) *Manager {
	return &Manager{
		store:   store,
		persist: newPersister(store),
	}
}

// Initialize loads the durable sessions, falling back to legacy migration
// and finally to a fresh default session. Loaded sessions are hydrated,
// sorted newest-first, and the newest becomes selected. Any failure along
// the way still leaves the app in a usable single-session state.
func (m *Manager) Initialize() {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions, err := m.store.GetAll()
	if err != nil {
		log.Logger().Warn("failed to load sessions", zap.Error(err))
		sessions = nil
	}

	if len(sessions) == 0 {
		sessions = m.store.MigrateLegacy()
	}

	if len(sessions) == 0 {
		s := New()
		sessions = []*Session{s}
		m.persist.put(s.Clone())
	}

	for _, s := range sessions {
		s.Settings = s.Settings.Hydrated()
		if s.Messages == nil {
			s.Messages = []message.Message{}
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastModified.After(sessions[j].LastModified)
	})

	m.sessions = sessions
	m.selectedID = sessions[0].ID
}

// Sessions returns a snapshot of the list in its current order.
func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, len(m.sessions))
	copy(out, m.sessions)
	return out
}

// Get returns the session with the given id, or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(id)
}

func (m *Manager) getLocked(id string) *Session {
	for _, s := range m.sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Selected returns the currently selected session.
func (m *Manager) Selected() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(m.selectedID)
}

// SelectedID returns the id of the currently selected session.
func (m *Manager) SelectedID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectedID
}

// Create builds a new empty session, prepends it, selects it, and persists.
func (m *Manager) Create() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := New()
	m.sessions = append([]*Session{s}, m.sessions...)
	m.selectedID = s.ID
	m.persist.put(s.Clone())
	return s
}

// Save replaces the in-memory entry matching the session's id (callers
// usually mutate the pointer returned by Get, in which case this is just
// the persistence mirror) and enqueues the durable write.
func (m *Manager) Save(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.sessions {
		if existing.ID == s.ID {
			m.sessions[i] = s
			break
		}
	}
	m.persist.put(s.Clone())
}

// Delete removes the session by id. If nothing remains a fresh default
// session is synthesized and selected; otherwise, if the removed session
// was selected, the first remaining session in list order becomes selected
// (list order, not recency).
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.sessions[:0]
	for _, s := range m.sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	m.sessions = kept
	m.persist.delete(id)

	if len(m.sessions) == 0 {
		s := New()
		m.sessions = []*Session{s}
		m.selectedID = s.ID
		m.persist.put(s.Clone())
		return
	}

	if m.selectedID == id {
		m.selectedID = m.sessions[0].ID
	}
}

// Select changes the selected-session pointer only; transient UI state,
// nothing is persisted.
func (m *Manager) Select(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getLocked(id) == nil {
		return false
	}
	m.selectedID = id
	return true
}

// Close drains pending durable writes.
func (m *Manager) Close() {
	m.persist.close()
}
