package session

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3/log"
	"github.com/google/uuid"

	"github.com/regalagram/sspe-sub013/internal/common/config"
	"github.com/regalagram/sspe-sub013/internal/prefs/service"
)

var ErrSessionNotFound = errors.New("session not found")

// ============================================================
// Session Manager
// ============================================================

type entry struct {
	editor   *Editor
	lastSeen time.Time
}

type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry // session id -> editor

	cfg   config.Config
	prefs *service.Prefs
	ttl   time.Duration
	now   func() time.Time
	opts  []Option
}

type ManagerOption func(*Manager)

func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// WithEditorOptions applies opts to every editor the manager creates.
func WithEditorOptions(opts ...Option) ManagerOption {
	return func(m *Manager) { m.opts = append(m.opts, opts...) }
}

func NewManager(cfg config.Config, prefs *service.Prefs, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[string]*entry),
		cfg:      cfg,
		prefs:    prefs,
		ttl:      time.Duration(cfg.SessionTTLMinutes) * time.Minute,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create opens a new editing session and returns its id.
func (m *Manager) Create() (string, *Editor) {
	ed := New(m.cfg, m.prefs, m.opts...)

	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.sessions[id] = &entry{editor: ed, lastSeen: m.now()}
	log.Infof("[EDITOR] session %s opened", id)
	return id, ed
}

// Get resolves a session and marks it as used.
func (m *Manager) Get(id string) (*Editor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = m.now()
	return e.editor, nil
}

func (m *Manager) Close(id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	e.editor.Close()
	log.Infof("[EDITOR] session %s closed", id)
	return nil
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Reap closes sessions idle for longer than the TTL and returns how many
// it closed. A non-positive TTL keeps sessions forever.
func (m *Manager) Reap() int {
	if m.ttl <= 0 {
		return 0
	}

	m.mu.Lock()
	cutoff := m.now().Add(-m.ttl)
	var stale []*Editor
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, e.editor)
			delete(m.sessions, id)
			log.Infof("[EDITOR] session %s expired", id)
		}
	}
	m.mu.Unlock()

	for _, ed := range stale {
		ed.Close()
	}
	return len(stale)
}

// CloseAll ends every session, for shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*entry)
	m.mu.Unlock()

	for _, e := range all {
		e.editor.Close()
	}
}
