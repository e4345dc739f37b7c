package services

import (
	"context"
	"testing"
	"time"

	"wealthflow/internal/cache"
	"wealthflow/internal/core"
)

type staticSource struct{ state core.State }

func (s *staticSource) Snapshot() core.State { return s.state }

func stateWithTxs(n int) core.State {
	st := core.NewState()
	for i := 0; i < n; i++ {
		st.Transactions, _, _ = core.AddTransaction(st.Transactions,
			core.TransactionDraft{Type: core.Expense, Amount: "10"}, string(rune('a'+i)), fixedNow)
	}
	return st
}

func TestRefreshWithoutTransactionsSkipsAdvisor(t *testing.T) {
	adv := newFakeAdvisor()
	svc := NewInsightService(adv, &staticSource{state: core.NewState()}, nil)

	st := svc.Refresh(context.Background())
	if adv.callCount() != 0 {
		t.Fatalf("advisor must not be called without transactions")
	}
	if st.Insight != nil || st.Loading {
		t.Fatalf("expected empty status, got %+v", st)
	}
}

func TestRefreshAppliesInsight(t *testing.T) {
	adv := newFakeAdvisor()
	svc := NewInsightService(adv, &staticSource{state: stateWithTxs(2)}, nil)

	st := svc.Refresh(context.Background())
	if st.Insight == nil || st.Insight.Title != "Nice" || st.Insight.Message != "Keep going. (2)" {
		t.Fatalf("unexpected insight %+v", st.Insight)
	}
	if st.Loading || st.Generation != 1 || st.UpdatedAt.IsZero() {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestStaleRefreshUsesCacheForSameInput(t *testing.T) {
	adv := newFakeAdvisor()
	c := cache.NewLRUCache[core.Insight](10, time.Minute)
	src := &staticSource{state: stateWithTxs(1)}
	svc := NewInsightService(adv, src, c)
	ctx := context.Background()

	svc.refresh(ctx, false)
	svc.refresh(ctx, false)
	if adv.callCount() != 1 {
		t.Fatalf("expected one advisor call, got %d", adv.callCount())
	}

	src.state = stateWithTxs(2)
	svc.refresh(ctx, false)
	if adv.callCount() != 2 {
		t.Fatalf("changed input must miss the cache, got %d calls", adv.callCount())
	}
}

func TestExplicitRefreshSkipsCache(t *testing.T) {
	adv := newFakeAdvisor()
	c := cache.NewLRUCache[core.Insight](10, time.Minute)
	svc := NewInsightService(adv, &staticSource{state: stateWithTxs(1)}, c)
	ctx := context.Background()

	svc.Refresh(ctx)
	svc.Refresh(ctx)
	if adv.callCount() != 2 {
		t.Fatalf("each explicit refresh must ask the advisor, got %d calls", adv.callCount())
	}

	// The forced answer still fills the cache for ordinary refreshes.
	svc.refresh(ctx, false)
	if adv.callCount() != 2 {
		t.Fatalf("expected a cache hit, got %d calls", adv.callCount())
	}
}

func TestRequestRefreshForcesQueuedRun(t *testing.T) {
	adv := newFakeAdvisor()
	c := cache.NewLRUCache[core.Insight](10, time.Minute)
	svc := NewInsightService(adv, &staticSource{state: stateWithTxs(1)}, c)
	svc.refresh(context.Background(), false)

	svc.RequestRefresh()
	if !svc.force.Load() || len(svc.stale) != 1 {
		t.Fatalf("expected a forced pending refresh")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = svc.Run(ctx)
		close(done)
	}()
	deadline := time.After(2 * time.Second)
	for adv.callCount() < 2 {
		select {
		case <-deadline:
			t.Fatalf("forced refresh never reached the advisor")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
	if svc.force.Load() {
		t.Fatalf("force flag should be consumed")
	}
}

func TestOlderResultIsDiscarded(t *testing.T) {
	adv := newFakeAdvisor()
	adv.gate = make(chan struct{})
	adv.started = make(chan struct{}, 2)
	src := &staticSource{state: stateWithTxs(1)}
	svc := NewInsightService(adv, src, nil)

	firstDone := make(chan struct{})
	go func() {
		svc.Refresh(context.Background())
		close(firstDone)
	}()
	<-adv.started

	if !svc.Current().Loading {
		t.Fatalf("status should be loading while a request is in flight")
	}

	src.state = stateWithTxs(3)
	secondDone := make(chan struct{})
	go func() {
		svc.Refresh(context.Background())
		close(secondDone)
	}()
	<-adv.started

	// Release both; only the newer answer may be applied.
	adv.gate <- struct{}{}
	adv.gate <- struct{}{}
	<-firstDone
	<-secondDone

	st := svc.Current()
	if st.Insight == nil || st.Insight.Message != "Keep going. (3)" {
		t.Fatalf("newest request must win, got %+v", st.Insight)
	}
	if st.Generation != 2 || st.Loading {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestMarkStaleCoalesces(t *testing.T) {
	svc := NewInsightService(newFakeAdvisor(), &staticSource{state: core.NewState()}, nil)
	for i := 0; i < 5; i++ {
		svc.MarkStale()
	}
	if len(svc.stale) != 1 {
		t.Fatalf("expected a single pending signal, got %d", len(svc.stale))
	}
}

func TestRunConsumesStaleSignals(t *testing.T) {
	adv := newFakeAdvisor()
	svc := NewInsightService(adv, &staticSource{state: stateWithTxs(1)}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	svc.MarkStale()
	deadline := time.Now().Add(2 * time.Second)
	for svc.Current().Insight == nil {
		if time.Now().After(deadline) {
			t.Fatalf("insight was never refreshed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFinanceServiceMarksInsightStale(t *testing.T) {
	fin, _, _ := newTestService()
	svc := NewInsightService(newFakeAdvisor(), fin, nil)
	fin.SetStaleNotifier(svc)

	if _, err := fin.Dispatch(context.Background(), AddTransaction{
		Draft: core.TransactionDraft{Type: core.Income, Amount: "3000", Category: "Salary"},
	}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(svc.stale) != 1 {
		t.Fatalf("expected a pending stale signal")
	}
}
