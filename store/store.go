// Package store persists the relay destination registry and the shared
// access password. Two backends exist: flat JSON files and Postgres.
package store

// Store is the persistence interface owned by the bot application and
// passed explicitly to the handlers that need it.
type Store interface {
	// Groups returns the registered destinations as chat id -> title.
	Groups() (map[int64]string, error)
	// AddGroup registers or overwrites a destination title for a chat.
	AddGroup(chatID int64, title string) error
	// Password returns the current access password.
	Password() (string, error)
	// SetPassword replaces the access password.
	SetPassword(password string) error

	Close() error
}
