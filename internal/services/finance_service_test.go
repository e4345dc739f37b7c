package services

import (
	"context"
	"errors"
	"testing"

	"wealthflow/internal/core"
	"wealthflow/internal/storage"
)

func TestReduceLeavesInputUntouched(t *testing.T) {
	state := core.NewState()
	next, change := Reduce(state, AddTransaction{
		Draft: core.TransactionDraft{Type: core.Expense, Amount: "12.50", Description: "Lunch"},
		ID:    "t1", At: fixedNow,
	})
	if !change.Accepted() || change.Ref != "t1" || !change.Stale {
		t.Fatalf("unexpected change %+v", change)
	}
	if len(state.Transactions) != 0 || len(next.Transactions) != 1 {
		t.Fatalf("reduce must not mutate its input")
	}
	if len(change.Keys) != 1 || change.Keys[0] != storage.KeyTransactions {
		t.Fatalf("expected transactions key, got %v", change.Keys)
	}
}

func TestReduceRejections(t *testing.T) {
	cases := []struct {
		name   string
		action Action
		err    error
	}{
		{"empty amount", AddTransaction{Draft: core.TransactionDraft{Type: core.Expense}}, core.ErrInvalidAmount},
		{"negative amount", AddTransaction{Draft: core.TransactionDraft{Type: core.Expense, Amount: "-5"}}, core.ErrNegativeAmount},
		{"missing transaction", DeleteTransaction{ID: "nope"}, core.ErrTxNotFound},
		{"empty goal name", AddGoal{Draft: core.GoalDraft{Target: "100"}}, core.ErrEmptyName},
		{"zero target", AddGoal{Draft: core.GoalDraft{Name: "Car", Target: "0"}}, core.ErrInvalidTarget},
		{"missing goal deposit", UpdateGoalAmount{ID: "nope", Delta: dec("10")}, core.ErrGoalNotFound},
		{"missing goal delete", DeleteGoal{ID: "nope"}, core.ErrGoalNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := core.NewState()
			next, change := Reduce(state, tc.action)
			if !errors.Is(change.Err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, change.Err)
			}
			if change.Accepted() || len(change.Keys) != 0 || change.Stale {
				t.Fatalf("rejected change must be empty: %+v", change)
			}
			if len(next.Transactions) != 0 || len(next.Goals) != 0 {
				t.Fatalf("state should be unchanged")
			}
		})
	}
}

func TestReduceSettings(t *testing.T) {
	next, change := Reduce(core.NewState(), UpdateSettings{Currency: "$", DailyLimit: "abc"})
	if !change.Accepted() || change.Keys[0] != storage.KeySettings {
		t.Fatalf("unexpected change %+v", change)
	}
	if next.Settings.Currency != "$" || !next.Settings.DailyLimit.Equal(dec("100")) {
		t.Fatalf("unparseable limit should fall back to 100: %+v", next.Settings)
	}

	next, _ = Reduce(next, UpdateSettings{Currency: "", DailyLimit: "250"})
	if next.Settings.Currency != "¥" || !next.Settings.DailyLimit.Equal(dec("250")) {
		t.Fatalf("unexpected settings %+v", next.Settings)
	}
}

func TestDispatchPersistsAndPublishes(t *testing.T) {
	ctx := context.Background()
	svc, kv, pub := newTestService()
	stale := &staleCounter{}
	svc.SetStaleNotifier(stale)

	change, err := svc.Dispatch(ctx, AddTransaction{
		Draft: core.TransactionDraft{Type: core.Expense, Amount: "30", Category: "Transportation", Description: "Taxi"},
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if change.Ref != "id-1" || change.Revision != 1 {
		t.Fatalf("unexpected change %+v", change)
	}

	snap := svc.Snapshot()
	if len(snap.Transactions) != 1 || !snap.Transactions[0].Date.Equal(fixedNow) {
		t.Fatalf("expected stamped transaction, got %+v", snap.Transactions)
	}
	if _, found, _ := kv.Get(ctx, storage.KeyTransactions); !found {
		t.Fatalf("transactions should be persisted")
	}
	if _, found, _ := kv.Get(ctx, storage.KeyGoals); found {
		t.Fatalf("goals were not touched and should not be written")
	}
	if stale.count() != 1 {
		t.Fatalf("expected one stale signal, got %d", stale.count())
	}
	if pub.count() != 1 || pub.changes[0].kind != KindTransactionAdded || pub.changes[0].revision != 1 {
		t.Fatalf("unexpected published changes %+v", pub.changes)
	}

	reloaded := NewFinanceService(storage.NewStateStore(kv), nil)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := reloaded.Snapshot().Transactions; len(got) != 1 || got[0].Description != "Taxi" {
		t.Fatalf("state should survive a restart, got %+v", got)
	}
}

func TestDispatchRejectedActionHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	svc, kv, pub := newTestService()
	stale := &staleCounter{}
	svc.SetStaleNotifier(stale)

	_, err := svc.Dispatch(ctx, DeleteGoal{ID: "missing"})
	if !errors.Is(err, core.ErrGoalNotFound) {
		t.Fatalf("expected ErrGoalNotFound, got %v", err)
	}
	if kv.Len() != 0 || pub.count() != 0 || stale.count() != 0 || svc.Revision() != 0 {
		t.Fatalf("rejected action must not persist, publish or mark stale")
	}
}

func TestDispatchKeepsStateWhenSaveFails(t *testing.T) {
	svc := NewFinanceService(failingStore{}, nil)
	_, err := svc.Dispatch(context.Background(), AddGoal{Draft: core.GoalDraft{Name: "Car", Target: "100"}})
	if err == nil {
		t.Fatalf("expected persistence error")
	}
	if len(svc.Snapshot().Goals) != 0 {
		t.Fatalf("state must not change when the write fails")
	}
}

func TestDispatchIgnoresPublishFailure(t *testing.T) {
	svc, _, pub := newTestService()
	pub.err = errors.New("broker down")
	if _, err := svc.Dispatch(context.Background(), UpdateSettings{Currency: "€", DailyLimit: "50"}); err != nil {
		t.Fatalf("publish failure must not fail the mutation: %v", err)
	}
	if svc.Snapshot().Settings.Currency != "€" {
		t.Fatalf("settings should be applied")
	}
}

func TestGoalLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	change, err := svc.Dispatch(ctx, AddGoal{Draft: core.GoalDraft{Name: "Vacation", Target: "1000", Current: "100"}})
	if err != nil {
		t.Fatalf("add goal: %v", err)
	}
	id := change.Ref

	if _, err := svc.Dispatch(ctx, UpdateGoalAmount{ID: id, Delta: dec("100")}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	g := svc.Snapshot().Goals[0]
	if !g.CurrentAmount.Equal(dec("200")) || !core.Progress(g).Equal(dec("20")) {
		t.Fatalf("expected 200 saved and 20%%, got %s and %s", g.CurrentAmount, core.Progress(g))
	}

	if _, err := svc.Dispatch(ctx, UpdateGoalAmount{ID: id, Delta: dec("-500")}); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got := svc.Snapshot().Goals[0].CurrentAmount; !got.IsZero() {
		t.Fatalf("amount must clamp at zero, got %s", got)
	}

	if _, err := svc.Dispatch(ctx, DeleteGoal{ID: id}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(svc.Snapshot().Goals) != 0 || svc.Revision() != 4 {
		t.Fatalf("unexpected final state, revision %d", svc.Revision())
	}
}

func TestSummaryUsesServiceClock(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	for _, amount := range []string{"80", "30"} {
		if _, err := svc.Dispatch(ctx, AddTransaction{Draft: core.TransactionDraft{Type: core.Expense, Amount: amount}}); err != nil {
			t.Fatalf("dispatch: %v", err)
		}
	}
	sum := svc.Summary()
	if !sum.TodayExpenses.Equal(dec("110")) || !sum.OverLimit {
		t.Fatalf("expected 110 spent today and over limit, got %+v", sum)
	}
	if got := LimitAlertText(sum.TodayExpenses, svc.Snapshot().Settings); got != "You have spent ¥110.00 today. Your limit is ¥100.00." {
		t.Fatalf("unexpected alert text %q", got)
	}
}
