package store

import (
	"fmt"
)

// New creates a FindingsStore for the configured backend.
func New(cfg Config) (FindingsStore, error) {
	switch cfg.Type {
	case StoreTypeMemory, "":
		return NewMemoryStore(), nil
	case StoreTypeRedis:
		return NewRedisStore(cfg.Redis)
	case StoreTypeSQLite:
		return NewSQLiteStore(cfg.SQLite)
	default:
		return nil, fmt.Errorf("unsupported findings store type: %s", cfg.Type)
	}
}

// MustNew creates a FindingsStore or panics on error.
//
// Use only during application initialization (main/init), never in
// request handlers or pipeline logic.
func MustNew(cfg Config) FindingsStore {
	s, err := New(cfg)
	if err != nil {
		panic(fmt.Sprintf("failed to create findings store: %v", err))
	}
	return s
}
