package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"wealthflow/internal/advisor"
	"wealthflow/internal/cache"
	"wealthflow/internal/core"
)

// InsightAdvisor produces an insight from the ledger.
type InsightAdvisor interface {
	AnalyzeFinances(ctx context.Context, txs []core.Transaction, dailyLimit decimal.Decimal, currency string) core.Insight
}

// StateSource exposes the current application state.
type StateSource interface {
	Snapshot() core.State
}

// InsightStatus is what the insight card renders.
type InsightStatus struct {
	Insight    *core.Insight `json:"insight"`
	Loading    bool          `json:"loading"`
	Generation uint64        `json:"generation"`
	UpdatedAt  time.Time     `json:"updatedAt,omitzero"`
}

// InsightService keeps the advisory insight in step with the state. Stale
// signals coalesce; Run is the single consumer. Every request carries a
// generation number and only the answer to the newest request is kept.
type InsightService struct {
	advisor InsightAdvisor
	source  StateSource
	cache   *cache.LRUCache[core.Insight]
	now     func() time.Time

	stale chan struct{}
	// force makes the next queued refresh skip the cache.
	force atomic.Bool

	mu         sync.Mutex
	generation uint64
	current    *core.Insight
	loading    bool
	updatedAt  time.Time
}

func NewInsightService(a InsightAdvisor, source StateSource, c *cache.LRUCache[core.Insight]) *InsightService {
	return &InsightService{
		advisor: a,
		source:  source,
		cache:   c,
		now:     time.Now,
		stale:   make(chan struct{}, 1),
	}
}

// MarkStale requests a refresh. It never blocks; signals sent while one is
// pending collapse into it.
func (s *InsightService) MarkStale() {
	select {
	case s.stale <- struct{}{}:
	default:
	}
}

// RequestRefresh queues a refresh that asks the advisor again even when the
// ledger is unchanged.
func (s *InsightService) RequestRefresh() {
	s.force.Store(true)
	s.MarkStale()
}

// Run refreshes the insight for every stale signal until ctx is done.
func (s *InsightService) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Insight refresher started")
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Insight refresher stopped")
			return ctx.Err()
		case <-s.stale:
			s.refresh(ctx, s.force.Swap(false))
		}
	}
}

// Refresh asks the advisor now, bypassing the cache, and returns the
// resulting status.
func (s *InsightService) Refresh(ctx context.Context) InsightStatus {
	s.refresh(ctx, true)
	return s.Current()
}

func (s *InsightService) Current() InsightStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := InsightStatus{Loading: s.loading, Generation: s.generation, UpdatedAt: s.updatedAt}
	if s.current != nil {
		in := *s.current
		st.Insight = &in
	}
	return st
}

func (s *InsightService) refresh(ctx context.Context, force bool) {
	state := s.source.Snapshot()
	if len(state.Transactions) == 0 {
		gen := s.begin(false)
		s.apply(ctx, gen, nil)
		return
	}

	gen := s.begin(true)
	key := fingerprint(state)
	if s.cache != nil && !force {
		if in, ok := s.cache.Get(key); ok {
			slog.DebugContext(ctx, "Insight served from cache", "generation", gen)
			s.apply(ctx, gen, &in)
			return
		}
	}

	in := s.advisor.AnalyzeFinances(ctx, state.Transactions, state.Settings.DailyLimit, state.Settings.Currency)
	if s.cache != nil && in != advisor.UnavailableInsight {
		s.cache.Set(key, in)
	}
	s.apply(ctx, gen, &in)
}

// begin issues a new generation.
func (s *InsightService) begin(loading bool) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.loading = loading
	return s.generation
}

// apply stores in unless a newer request was issued after gen.
func (s *InsightService) apply(ctx context.Context, gen uint64, in *core.Insight) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		slog.DebugContext(ctx, "Discarding stale insight", "generation", gen, "latest", s.generation)
		return false
	}
	s.current = in
	s.loading = false
	s.updatedAt = s.now()
	return true
}

// fingerprint identifies the advisor input for a state.
func fingerprint(state core.State) string {
	payload := struct {
		Transactions []core.Transaction `json:"transactions"`
		Limit        string             `json:"limit"`
		Currency     string             `json:"currency"`
	}{
		Transactions: core.RecentTransactions(state.Transactions, advisor.RecentLimit),
		Limit:        state.Settings.DailyLimit.String(),
		Currency:     state.Settings.Currency,
	}
	b, _ := json.Marshal(payload)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
