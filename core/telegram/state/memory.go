package state

import (
	"log/slog"
	"sync"
	"time"

	"relaybot/core/logger"
	tghelpers "relaybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// State identifies a finite-state-machine step used in conversations.
type State string

// StateIdle indicates there is no active conversation with the user.
const StateIdle State = "idle"

// Handler processes an update for a user sitting in a particular state.
// The session is exclusively held for the duration of the call.
type Handler[T any] func(c tele.Context, s *Session[T]) error

// Session stores conversation state and typed flow data for a user.
type Session[T any] struct {
	State    State
	Data     T
	LastSeen time.Time

	mu sync.Mutex
}

// Options tunes session housekeeping.
type Options struct {
	// IdleTTL evicts sessions untouched for this long; 0 disables eviction.
	IdleTTL time.Duration
}

// Manager orchestrates user sessions and state transitions for one bot.
type Manager[T any] struct {
	mu       sync.RWMutex
	sessions map[int64]*Session[T]
	handlers map[State]Handler[T]

	idleTTL time.Duration
	stop    chan struct{}
	once    sync.Once
}

// NewManager constructs an in-memory session manager.
func NewManager[T any](opts Options) *Manager[T] {
	m := &Manager[T]{
		sessions: make(map[int64]*Session[T]),
		handlers: make(map[State]Handler[T]),
		idleTTL:  opts.IdleTTL,
		stop:     make(chan struct{}),
	}
	if m.idleTTL > 0 {
		go m.sweeper()
	}
	return m
}

// Handle associates a state with its handler. Registration happens during
// wiring, before the bot starts, so no locking is required.
func (m *Manager[T]) Handle(st State, h Handler[T]) {
	if h == nil {
		return
	}
	m.handlers[st] = h
}

// Begin starts a fresh conversation for the user, discarding any previous
// session, and returns the new session.
func (m *Manager[T]) Begin(userID int64, st State) *Session[T] {
	s := &Session[T]{State: st, LastSeen: time.Now()}
	m.mu.Lock()
	m.sessions[userID] = s
	m.mu.Unlock()
	return s
}

// Get returns the user's session if a conversation is active.
func (m *Manager[T]) Get(userID int64) (*Session[T], bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// Transition moves an existing session to the given state.
// It reports false if the user has no active conversation.
func (m *Manager[T]) Transition(userID int64, st State) bool {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	s.mu.Lock()
	s.State = st
	s.LastSeen = time.Now()
	s.mu.Unlock()
	return true
}

// End removes the user's session, discarding collected flow data.
func (m *Manager[T]) End(userID int64) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}

// InProgress reports whether the user currently has an active conversation.
func (m *Manager[T]) InProgress(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return ok && s.State != StateIdle
}

// Dispatch executes the handler registered for the user's current state.
// Updates for the same user are serialized on the session mutex.
func (m *Manager[T]) Dispatch(c tele.Context) error {
	userID := c.Sender().ID
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastSeen = time.Now()

	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "fsm.dispatch",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("state", string(s.State)),
	)

	handler, ok := m.handlers[s.State]
	if !ok {
		return nil
	}
	return handler(c, s)
}

// Close stops the idle sweeper. Safe to call multiple times.
func (m *Manager[T]) Close() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Manager[T]) sweeper() {
	interval := m.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

func (m *Manager[T]) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.mu.Lock()
		stale := now.Sub(s.LastSeen) > m.idleTTL
		s.mu.Unlock()
		if stale {
			delete(m.sessions, id)
			logger.Debug(logger.Background(), "tg", "fsm.session.evicted",
				slog.Int64("user_id", id),
			)
		}
	}
}
