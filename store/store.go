// Package store 为研究流水线提供只追加的 Findings 持久层。
//
// 流水线只写不读：Append 是唯一被核心路径使用的操作，
// 各实现额外暴露的读取方法仅服务于检查与测试。
// Append 是尽力而为的副作用，失败由调用方记录日志而不中断研究。
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("findings store is closed")

	// ErrInvalidInput is returned for nil or malformed records.
	ErrInvalidInput = errors.New("invalid input")
)

// Finding is one persisted agent output record.
type Finding struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	RunID       string    `json:"run_id" gorm:"index;size:36"`
	AgentID     int       `json:"agent_id"`
	Topic       string    `json:"topic"`
	Findings    string    `json:"findings"`
	Sources     []string  `json:"sources" gorm:"serializer:json"`
	SearchQuery string    `json:"search_query"`
	CreatedAt   time.Time `json:"created_at"`
}

// FindingsStore is the append-only persistence interface.
type FindingsStore interface {
	// Append persists one finding record (append-only, no dedup).
	Append(ctx context.Context, f *Finding) error

	// Ping checks if the store is healthy.
	Ping(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}

// StoreType selects a FindingsStore backend.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
	StoreTypeSQLite StoreType = "sqlite"
)

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	PoolSize  int    `yaml:"pool_size"`
	KeyPrefix string `yaml:"key_prefix"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Config selects and configures a FindingsStore backend.
type Config struct {
	Type   StoreType    `yaml:"type"`
	Redis  RedisConfig  `yaml:"redis"`
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// DefaultConfig returns the in-memory store configuration.
func DefaultConfig() Config {
	return Config{
		Type:   StoreTypeMemory,
		SQLite: SQLiteConfig{Path: "researchflow.db"},
		Redis: RedisConfig{
			Host:      "localhost",
			Port:      6379,
			PoolSize:  10,
			KeyPrefix: "researchflow:",
		},
	}
}
