// Package session keeps one catalog.Reader per browsing client, keyed by a
// cookie, and expires idle sessions.
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"book-catalog/internal/catalog"
	"book-catalog/internal/logging"
	"book-catalog/internal/metrics"
)

// CookieName is the name of the session cookie.
const CookieName = "book_catalog_session"

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

// Session is one client's catalog state. Calls through Do are serialized.
type Session struct {
	ID string

	mu       sync.Mutex
	reader   *catalog.Reader
	lastUsed time.Time // guarded by Manager.mu
}

// Do runs fn with exclusive access to the session's reader.
func (s *Session) Do(fn func(r *catalog.Reader) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.reader)
}

// Manager creates, looks up and expires sessions.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	ttl       time.Duration
	newReader func() *catalog.Reader
	now       func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewManager returns a manager that builds readers with newReader and drops
// sessions idle for longer than ttl (DefaultTTL if zero).
func NewManager(newReader func() *catalog.Reader, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		ttl:       ttl,
		newReader: newReader,
		now:       time.Now,
		stopChan:  make(chan struct{}),
	}
}

// Create starts a new session.
func (m *Manager) Create() *Session {
	s := &Session{ID: uuid.NewString(), reader: m.newReader()}

	m.mu.Lock()
	s.lastUsed = m.now()
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(count))
	logging.Debug("Catalog session %s created (%d active)", s.ID, count)
	return s
}

// Get returns a live session and extends its lifetime.
func (m *Manager) Get(id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	now := m.now()
	if now.Sub(s.lastUsed) > m.ttl {
		delete(m.sessions, id)
		metrics.ActiveSessions.Set(float64(len(m.sessions)))
		return nil, false
	}
	s.lastUsed = now
	return s, true
}

// FromRequest returns the session named by the request cookie, starting a
// new one and setting the cookie when there is none.
func (m *Manager) FromRequest(w http.ResponseWriter, r *http.Request) *Session {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if s, ok := m.Get(cookie.Value); ok {
			return s
		}
	}

	s := m.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return s
}

// Delete ends a session.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	count := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(count))
}

// Len returns the number of sessions held.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops idle sessions and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	now := m.now()
	removed := 0
	for id, s := range m.sessions {
		if now.Sub(s.lastUsed) > m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	count := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(count))
	if removed > 0 {
		logging.Debug("Expired %d idle catalog sessions (%d active)", removed, count)
	}
	return removed
}

// Start sweeps idle sessions every interval until Stop.
func (m *Manager) Start(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-m.stopChan:
				return
			}
		}
	}()
}

// Stop ends the sweep loop. It is safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}
