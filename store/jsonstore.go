package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"relaybot/core/logger"
)

// DefaultPassword is used when no password file exists yet.
const DefaultPassword = "admin"

type passwordFile struct {
	Password string `json:"password"`
}

// jsonStore keeps destinations and the password in two flat JSON files.
// State is held in memory and flushed to disk on every mutation.
// groups.json maps chat id (as a string key) to the destination title.
type jsonStore struct {
	mu sync.RWMutex

	groupsPath   string
	passwordPath string

	groups   map[int64]string
	password string
}

// OpenJSON loads the file-backed store. Missing or unreadable files fall
// back to an empty registry and the default password instead of failing,
// so a fresh deployment starts without manual setup.
func OpenJSON(groupsPath, passwordPath string) (Store, error) {
	s := &jsonStore{
		groupsPath:   groupsPath,
		passwordPath: passwordPath,
		groups:       make(map[int64]string),
		password:     DefaultPassword,
	}

	if err := s.loadGroups(); err != nil {
		logger.Store.Warn("groups load failed, starting empty",
			slog.String("event", "store.groups.load"),
			slog.String("path", groupsPath),
			slog.String("err", err.Error()),
		)
	}
	if err := s.loadPassword(); err != nil {
		logger.Store.Warn("password load failed, using default",
			slog.String("event", "store.password.load"),
			slog.String("path", passwordPath),
			slog.String("err", err.Error()),
		)
	}

	logger.Store.Info("file store ready",
		slog.String("event", "store.open"),
		slog.String("backend", "file"),
		slog.Int("groups", len(s.groups)),
	)
	return s, nil
}

func (s *jsonStore) loadGroups() error {
	data, err := os.ReadFile(s.groupsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	var groups map[int64]string
	if err := json.Unmarshal(data, &groups); err != nil {
		return fmt.Errorf("parse %s: %w", s.groupsPath, err)
	}
	if groups != nil {
		s.groups = groups
	}
	return nil
}

func (s *jsonStore) loadPassword() error {
	data, err := os.ReadFile(s.passwordPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	var pf passwordFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("parse %s: %w", s.passwordPath, err)
	}
	if pf.Password != "" {
		s.password = pf.Password
	}
	return nil
}

// Groups returns a copy of the destination registry.
func (s *jsonStore) Groups() (map[int64]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]string, len(s.groups))
	for id, title := range s.groups {
		out[id] = title
	}
	return out, nil
}

// AddGroup registers a destination and flushes the registry to disk.
func (s *jsonStore) AddGroup(chatID int64, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[chatID] = title
	if err := writeJSONFile(s.groupsPath, s.groups); err != nil {
		return fmt.Errorf("flush groups: %w", err)
	}
	logger.Store.Info("group registered",
		slog.String("event", "store.groups.add"),
		slog.String("label", title),
		slog.Int64("chat_id", chatID),
	)
	return nil
}

// Password returns the current access password.
func (s *jsonStore) Password() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.password, nil
}

// SetPassword replaces the password and flushes it to disk.
func (s *jsonStore) SetPassword(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.password
	s.password = password
	if err := writeJSONFile(s.passwordPath, passwordFile{Password: password}); err != nil {
		s.password = prev
		return fmt.Errorf("flush password: %w", err)
	}
	logger.Store.Info("password changed",
		slog.String("event", "store.password.set"),
	)
	return nil
}

func (s *jsonStore) Close() error {
	return nil
}

// writeJSONFile writes via a temp file and rename so readers never observe
// a partially written file.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
