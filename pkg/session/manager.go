package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/uhyunpark/hyperlicked/pkg/httpapi/metrics"
	"github.com/uhyunpark/hyperlicked/pkg/util"
)

// Manager owns every live Session, keyed by ID, mirroring the teacher's
// websocket Hub's clients map but one level up: one Session per simulated
// cluster instead of one Client per socket.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cancels  map[string]context.CancelFunc

	log   *zap.SugaredLogger
	clock util.Clock
	store Persister
	out   Broadcaster
	seed  int64
}

// NewManager returns an empty session registry.
func NewManager(log *zap.SugaredLogger, clock util.Clock, store Persister, out Broadcaster) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		cancels:  make(map[string]context.CancelFunc),
		log:      log,
		clock:    clock,
		store:    store,
		out:      out,
	}
}

// Create allocates and starts the actor goroutine for a new session.
func (m *Manager) Create(id string, cfg Config) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seed++
	s := New(id, cfg, m.log, m.clock, m.store, m.out, m.seed)
	ctx, cancel := context.WithCancel(context.Background())
	m.sessions[id] = s
	m.cancels[id] = cancel
	go s.Run(ctx)

	metrics.ActiveSessions.Inc()
	return s
}

// SetBroadcaster installs the transport that newly created and restored
// sessions deliver messages through. Call once during startup wiring,
// before Create/Restore, since httpapi's Hub is constructed after the
// Manager but the Manager must still hand it to each Session.
func (m *Manager) SetBroadcaster(out Broadcaster) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.out = out
}

// Get returns the session by id, or false if it does not exist.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete stops and removes a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session %q not found", id)
	}
	s.Stop()
	if cancel, ok := m.cancels[id]; ok {
		cancel()
	}
	delete(m.sessions, id)
	delete(m.cancels, id)
	metrics.ActiveSessions.Dec()
	return nil
}

// List returns every session's sanitized snapshot.
func (m *Manager) List() []Snapshot {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	out := make([]Snapshot, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Snapshot())
	}
	return out
}

// Restore rehydrates a session from a persisted snapshot on process
// startup, mirroring the teacher's pebble_store recovery path in
// cmd/node/main.go.
func (m *Manager) Restore(snap Snapshot) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seed++
	s := New(snap.ID, snap.Config, m.log, m.clock, m.store, m.out, m.seed)
	s.Status = snap.Status
	s.messages = snap.Messages
	s.history = snap.History
	s.result = snap.Result
	s.currentView = consensusView(snap.CurrentView)
	s.currentRound = snap.CurrentRound
	for _, id := range snap.ConnectedNodes {
		s.connectedNodes[id] = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.sessions[snap.ID] = s
	m.cancels[snap.ID] = cancel
	go s.Run(ctx)
	metrics.ActiveSessions.Inc()
	return s
}
