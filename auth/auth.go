// Package auth gates protected commands behind a shared password.
// Sessions live in memory; a restart logs everyone out.
package auth

import (
	"log/slog"
	"sync"

	"relaybot/core/logger"
	tghelpers "relaybot/core/telegram/helpers"
	"relaybot/store"

	tele "gopkg.in/telebot.v4"
)

// DeniedMessage is sent when an unauthenticated user invokes a protected command.
const DeniedMessage = "Access denied. Please login using /login <password>."

// Manager tracks which users have presented the shared password.
type Manager struct {
	mu     sync.RWMutex
	users  map[int64]struct{}
	source store.Store
}

// NewManager builds an auth manager backed by the given store.
func NewManager(s store.Store) *Manager {
	return &Manager{
		users:  make(map[int64]struct{}),
		source: s,
	}
}

// Login verifies the supplied password and on success marks the user as
// authenticated. It reports whether the password matched.
func (m *Manager) Login(userID int64, password string) (bool, error) {
	current, err := m.source.Password()
	if err != nil {
		return false, err
	}
	if password != current {
		logger.Store.Warn("login rejected",
			slog.String("event", "auth.login.rejected"),
			slog.Int64("user_id", userID),
		)
		return false, nil
	}

	m.mu.Lock()
	m.users[userID] = struct{}{}
	m.mu.Unlock()

	logger.Store.Info("login accepted",
		slog.String("event", "auth.login.accepted"),
		slog.Int64("user_id", userID),
	)
	return true, nil
}

// LoggedIn reports whether the user has an active authenticated session.
func (m *Manager) LoggedIn(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[userID]
	return ok
}

// Require checks the sender's session and sends the denial message when it
// is missing. Handlers call this at the top and bail out on false.
func (m *Manager) Require(c tele.Context) bool {
	sender := c.Sender()
	if sender != nil && m.LoggedIn(sender.ID) {
		return true
	}
	_ = tghelpers.SendText(c, DeniedMessage)
	return false
}

// ChangePassword persists a new shared password. Existing sessions,
// including other logged-in users, stay valid.
func (m *Manager) ChangePassword(password string) error {
	return m.source.SetPassword(password)
}
