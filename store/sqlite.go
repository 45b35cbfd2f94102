package store

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteStore is a GORM/SQLite-backed FindingsStore.
// Uses the pure-Go glebarez driver, so no cgo is required.
type SQLiteStore struct {
	db     *gorm.DB
	closed bool
}

// NewSQLiteStore opens (or creates) the database at cfg.Path and
// migrates the findings table.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	path := cfg.Path
	if path == "" {
		path = "researchflow.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.AutoMigrate(&Finding{}); err != nil {
		return nil, fmt.Errorf("migrate findings table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append persists a finding record.
func (s *SQLiteStore) Append(ctx context.Context, f *Finding) error {
	if f == nil {
		return ErrInvalidInput
	}
	if s.closed {
		return ErrStoreClosed
	}

	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}

	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("append finding to sqlite: %w", err)
	}
	return nil
}

// Records returns all findings stored for a run in insertion order.
func (s *SQLiteStore) Records(ctx context.Context, runID string) ([]*Finding, error) {
	var out []*Finding
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("created_at, agent_id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("read findings from sqlite: %w", err)
	}
	return out, nil
}

// Ping checks if the store is healthy.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if s.closed {
		return ErrStoreClosed
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the store.
func (s *SQLiteStore) Close() error {
	s.closed = true
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
