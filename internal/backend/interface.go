package backend

import (
	"context"

	"wealthflow/internal/storage"
)

// Store is what every persistence backend provides.
type Store interface {
	storage.KV
	storage.Pinger
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Store Store
	// Publisher is nil when ledger-change events are disabled.
	Publisher Publisher
	Cleanup   CleanupFunc
}

// Publisher announces persisted mutations.
type Publisher interface {
	PublishLedgerChange(ctx context.Context, kind string, keys []string, revision int64) error
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	DataDirectory string // file
	SQLiteDBPath  string // sqlite
	DatabaseURL   string // postgres

	// AMQP is optional for every backend.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	FileBackend     BackendType = "file"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}

// Shared reports whether two processes see the same data through this backend.
func (bt BackendType) Shared() bool {
	return bt != MemoryBackend
}
