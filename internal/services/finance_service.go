package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"wealthflow/internal/core"
)

var errUnknownAction = errors.New("unknown action")

// StateStore loads and persists the application state.
type StateStore interface {
	Load(ctx context.Context) (core.State, error)
	Save(ctx context.Context, state core.State, keys ...string) error
}

// ChangePublisher announces persisted mutations to other processes.
type ChangePublisher interface {
	PublishLedgerChange(ctx context.Context, kind string, keys []string, revision int64) error
}

// StaleNotifier is told whenever the state changed under the current insight.
type StaleNotifier interface {
	MarkStale()
}

// FinanceService owns the in-memory state. Mutations are serialised, and a
// new state becomes visible only after it has been written to the store.
type FinanceService struct {
	mu       sync.RWMutex
	state    core.State
	revision int64

	store     StateStore
	publisher ChangePublisher
	stale     StaleNotifier

	now   func() time.Time
	newID func() string
}

type Option func(*FinanceService)

func WithClock(now func() time.Time) Option {
	return func(s *FinanceService) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *FinanceService) { s.newID = newID }
}

// NewFinanceService creates a service with empty state. Call Load before
// serving requests. publisher may be nil.
func NewFinanceService(store StateStore, publisher ChangePublisher, opts ...Option) *FinanceService {
	s := &FinanceService{
		state:     core.NewState(),
		store:     store,
		publisher: publisher,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetStaleNotifier registers the insight refresher.
func (s *FinanceService) SetStaleNotifier(n StaleNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale = n
}

// Load replaces the in-memory state with the persisted one.
func (s *FinanceService) Load(ctx context.Context) error {
	state, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	s.mu.Lock()
	s.state = state
	n := s.stale
	s.mu.Unlock()

	if n != nil {
		n.MarkStale()
	}
	return nil
}

// Snapshot returns the current state. Collections are never modified in
// place, so the snapshot stays valid after later mutations.
func (s *FinanceService) Snapshot() core.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *FinanceService) Revision() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *FinanceService) Summary() core.Summary {
	return core.Summarize(s.Snapshot(), s.now())
}

// Now is the service clock, shared with the presentation layer.
func (s *FinanceService) Now() time.Time {
	return s.now()
}

// Dispatch reduces action against the current state and persists the keys it
// touched. A rejected action returns its reason and leaves state untouched.
func (s *FinanceService) Dispatch(ctx context.Context, action Action) (Change, error) {
	if action == nil {
		return rejected("unknown", errUnknownAction), errUnknownAction
	}
	action = s.stamp(action)

	s.mu.Lock()
	next, change := Reduce(s.state, action)
	if change.Err != nil {
		s.mu.Unlock()
		slog.DebugContext(ctx, "Action rejected", "kind", change.Kind, "error", change.Err)
		return change, change.Err
	}

	if err := s.store.Save(ctx, next, change.Keys...); err != nil {
		s.mu.Unlock()
		slog.ErrorContext(ctx, "Failed to persist state", "kind", change.Kind, "keys", change.Keys, "error", err)
		return change, fmt.Errorf("persist %s: %w", change.Kind, err)
	}

	s.state = next
	s.revision++
	change.Revision = s.revision
	notifier := s.stale
	s.mu.Unlock()

	slog.InfoContext(ctx, "State updated", "kind", change.Kind, "ref", change.Ref, "revision", change.Revision)

	if change.Stale && notifier != nil {
		notifier.MarkStale()
	}
	s.publish(ctx, change)

	return change, nil
}

// stamp fills in generated ids and timestamps.
func (s *FinanceService) stamp(action Action) Action {
	switch a := action.(type) {
	case AddTransaction:
		if a.ID == "" {
			a.ID = s.newID()
		}
		if a.At.IsZero() {
			a.At = s.now()
		}
		return a
	case AddGoal:
		if a.ID == "" {
			a.ID = s.newID()
		}
		return a
	}
	return action
}

func (s *FinanceService) publish(ctx context.Context, change Change) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No change publisher configured, skipping ledger event")
		return
	}
	// The mutation is already persisted; a lost event only delays the export.
	if err := s.publisher.PublishLedgerChange(ctx, change.Kind, change.Keys, change.Revision); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger change",
			"kind", change.Kind, "revision", change.Revision, "error", err)
	}
}
