// Package bootstrap initializes shared infrastructure before a bot starts:
// the structured logger and the persistence backend.
package bootstrap

import (
	"fmt"

	coreconfig "relaybot/core/config"
	coredatabase "relaybot/core/database"
	"relaybot/core/logger"
	"relaybot/store"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	OpenStore  func(*coreconfig.Config) (store.Store, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	Store store.Store
}

// Run initializes the logger and opens the configured persistence backend.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	open := opts.OpenStore
	if open == nil {
		open = OpenStore
	}
	st, err := open(opts.Config)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: store initialization failed: %w", err)
	}

	return &Result{Store: st}, nil
}

// OpenStore builds the store selected by cfg.Store.Backend.
// The postgres backend connects and applies migrations before use.
func OpenStore(cfg *coreconfig.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case coreconfig.StoreBackendPostgres:
		db, err := coredatabase.Connect(cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := coredatabase.RunMigrations(cfg.Database); err != nil {
			_ = db.Close()
			return nil, err
		}
		return store.NewPostgres(db), nil
	default:
		return store.OpenJSON(cfg.Store.GroupsFile, cfg.Store.PasswordFile)
	}
}
