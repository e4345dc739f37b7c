package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"wealthflow/internal/core"
)

// StateStore persists the application state as JSON blobs in a KV backend.
type StateStore struct {
	kv KV
}

func NewStateStore(kv KV) *StateStore {
	return &StateStore{kv: kv}
}

// Load reads all keys. Absent keys yield empty collections and default
// settings; a blob that does not decode is reported as an error.
func (s *StateStore) Load(ctx context.Context) (core.State, error) {
	state := core.NewState()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.read(gctx, KeyTransactions, &state.Transactions)
		return err
	})
	g.Go(func() error {
		_, err := s.read(gctx, KeyGoals, &state.Goals)
		return err
	})
	g.Go(func() error {
		found, err := s.read(gctx, KeySettings, &state.Settings)
		if err == nil && found {
			state.Settings = state.Settings.Normalize()
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return core.NewState(), err
	}

	if state.Transactions == nil {
		state.Transactions = []core.Transaction{}
	}
	if state.Goals == nil {
		state.Goals = []core.SavingsGoal{}
	}

	slog.InfoContext(ctx, "State loaded",
		"transactions", len(state.Transactions),
		"goals", len(state.Goals),
		"currency", state.Settings.Currency)

	return state, nil
}

// Save writes the given keys of state one after the other. There is no
// atomicity across keys.
func (s *StateStore) Save(ctx context.Context, state core.State, keys ...string) error {
	for _, key := range keys {
		var v any
		switch key {
		case KeyTransactions:
			v = state.Transactions
		case KeyGoals:
			v = state.Goals
		case KeySettings:
			v = state.Settings
		default:
			return fmt.Errorf("unknown state key %q", key)
		}

		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		if err := s.kv.Set(ctx, key, data); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
	}
	return nil
}

func (s *StateStore) read(ctx context.Context, key string, into any) (bool, error) {
	data, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !found || len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, into); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}
