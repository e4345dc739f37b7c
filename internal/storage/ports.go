package storage

import "context"

// Keys under which the application state is persisted.
const (
	KeyTransactions = "transactions"
	KeyGoals        = "savingsGoals"
	KeySettings     = "settings"
)

// AllKeys lists every persisted key.
var AllKeys = []string{KeyTransactions, KeyGoals, KeySettings}

// Ports for key-value backends.
type (
	// KV stores opaque values under string keys. Writes are last-write-wins.
	KV interface {
		// Get returns found=false when the key has never been written.
		Get(ctx context.Context, key string) (value []byte, found bool, err error)
		Set(ctx context.Context, key string, value []byte) error
	}

	// Pinger is implemented by backends that can report their health.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
