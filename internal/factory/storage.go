package factory

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/BugaPunk/WorkflowS-sub001/internal/config"
	"github.com/BugaPunk/WorkflowS-sub001/internal/kv"
	"github.com/BugaPunk/WorkflowS-sub001/internal/kv/memory"
	"github.com/BugaPunk/WorkflowS-sub001/internal/kv/postgres"
	"github.com/BugaPunk/WorkflowS-sub001/internal/kv/sqlite"
	"github.com/BugaPunk/WorkflowS-sub001/internal/store"
)

// NewEngine opens the KV engine selected by cfg.Driver. The caller owns the
// engine and must Close it.
func NewEngine(cfg *config.Config, log zerolog.Logger) (kv.Engine, error) {
	switch cfg.Driver {
	case "memory":
		if cfg.IsProduction() {
			return nil, fmt.Errorf("memory engine is not allowed when ENVIRONMENT=production")
		}
		if !cfg.IsTesting() {
			log.Warn().Msg("memory engine selected; data will not survive restarts")
		}
		return memory.New(), nil
	case "sqlite":
		eng, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite engine: %w", err)
		}
		log.Debug().Str("path", cfg.SQLitePath).Msg("sqlite engine opened")
		return eng, nil
	case "postgres":
		eng, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres engine: %w", err)
		}
		log.Debug().Msg("postgres engine opened")
		return eng, nil
	default:
		return nil, fmt.Errorf("unknown DRIVER: %s", cfg.Driver)
	}
}

// NewStore opens the configured engine and wires the document store over it.
func NewStore(cfg *config.Config, log zerolog.Logger) (store.Store, kv.Engine, error) {
	eng, err := NewEngine(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	s, err := store.New(eng, log)
	if err != nil {
		_ = eng.Close()
		return nil, nil, err
	}
	return s, eng, nil
}
