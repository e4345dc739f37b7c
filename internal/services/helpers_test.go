package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"wealthflow/internal/core"
	"wealthflow/internal/storage"
	"wealthflow/internal/storage/memory"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestService(opts ...Option) (*FinanceService, *memory.Store, *recordingPublisher) {
	kv := memory.New()
	pub := &recordingPublisher{}
	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()),
	}, opts...)
	return NewFinanceService(storage.NewStateStore(kv), pub, opts...), kv, pub
}

type publishedChange struct {
	kind     string
	keys     []string
	revision int64
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []publishedChange
	err     error
}

func (p *recordingPublisher) PublishLedgerChange(_ context.Context, kind string, keys []string, revision int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, publishedChange{kind, keys, revision})
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.changes)
}

type staleCounter struct {
	mu sync.Mutex
	n  int
}

func (s *staleCounter) MarkStale() {
	s.mu.Lock()
	s.n++
	s.mu.Unlock()
}

func (s *staleCounter) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

// failingStore fails every save.
type failingStore struct{}

func (failingStore) Load(context.Context) (core.State, error) { return core.NewState(), nil }
func (failingStore) Save(context.Context, core.State, ...string) error {
	return errors.New("disk full")
}

// fakeAdvisor answers from fixed values and can block until released.
type fakeAdvisor struct {
	mu       sync.Mutex
	calls    int
	insight  core.Insight
	category string
	enabled  bool
	gate     chan struct{}
	started  chan struct{}
}

func newFakeAdvisor() *fakeAdvisor {
	return &fakeAdvisor{
		insight:  core.Insight{Title: "Nice", Message: "Keep going.", Tone: core.TonePositive},
		category: "Transportation",
		enabled:  true,
	}
}

func (f *fakeAdvisor) wait() {
	f.mu.Lock()
	gate, started := f.gate, f.started
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
}

func (f *fakeAdvisor) AnalyzeFinances(_ context.Context, txs []core.Transaction, _ decimal.Decimal, _ string) core.Insight {
	f.mu.Lock()
	f.calls++
	in := f.insight
	in.Message = fmt.Sprintf("%s (%d)", in.Message, len(txs))
	f.mu.Unlock()
	f.wait()
	return in
}

func (f *fakeAdvisor) SuggestCategory(context.Context, string) string {
	f.mu.Lock()
	f.calls++
	c := f.category
	f.mu.Unlock()
	f.wait()
	return c
}

func (f *fakeAdvisor) Enabled() bool { return f.enabled }

func (f *fakeAdvisor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
