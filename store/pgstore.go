package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"relaybot/core/logger"
)

// pgStore persists destinations and the password in Postgres.
// Schema is managed by the migrations applied during bootstrap.
type pgStore struct {
	db *sqlx.DB
}

// NewPostgres wraps an already connected and migrated database handle.
func NewPostgres(db *sqlx.DB) Store {
	logger.Store.Info("postgres store ready",
		slog.String("event", "store.open"),
		slog.String("backend", "postgres"),
	)
	return &pgStore{db: db}
}

type destinationRow struct {
	ChatID int64  `db:"chat_id"`
	Title  string `db:"title"`
}

func (s *pgStore) Groups() (map[int64]string, error) {
	var rows []destinationRow
	if err := s.db.Select(&rows, `SELECT chat_id, title FROM destinations ORDER BY chat_id`); err != nil {
		return nil, fmt.Errorf("select destinations: %w", err)
	}
	out := make(map[int64]string, len(rows))
	for _, r := range rows {
		out[r.ChatID] = r.Title
	}
	return out, nil
}

func (s *pgStore) AddGroup(chatID int64, title string) error {
	_, err := s.db.Exec(`
		INSERT INTO destinations (chat_id, title)
		VALUES ($1, $2)
		ON CONFLICT (chat_id) DO UPDATE SET title = EXCLUDED.title`,
		chatID, title,
	)
	if err != nil {
		return fmt.Errorf("upsert destination: %w", err)
	}
	logger.Store.Info("group registered",
		slog.String("event", "store.groups.add"),
		slog.String("label", title),
		slog.Int64("chat_id", chatID),
	)
	return nil
}

func (s *pgStore) Password() (string, error) {
	var password string
	err := s.db.Get(&password, `SELECT password FROM credentials WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultPassword, nil
	}
	if err != nil {
		return "", fmt.Errorf("select password: %w", err)
	}
	return password, nil
}

func (s *pgStore) SetPassword(password string) error {
	_, err := s.db.Exec(`
		INSERT INTO credentials (id, password)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET password = EXCLUDED.password`,
		password,
	)
	if err != nil {
		return fmt.Errorf("upsert password: %w", err)
	}
	logger.Store.Info("password changed",
		slog.String("event", "store.password.set"),
	)
	return nil
}

func (s *pgStore) Close() error {
	return s.db.Close()
}
