package core

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestAddTransaction(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	cases := []struct {
		name    string
		draft   TransactionDraft
		wantErr error
		wantCat string
	}{
		{"valid expense", TransactionDraft{Type: Expense, Amount: "12.30", Category: "Shopping"}, nil, "Shopping"},
		{"comma decimal", TransactionDraft{Type: Income, Amount: "12,30"}, nil, "Other"},
		{"zero amount", TransactionDraft{Type: Expense, Amount: "0"}, nil, "Other"},
		{"empty amount", TransactionDraft{Type: Expense, Amount: ""}, ErrInvalidAmount, ""},
		{"garbage amount", TransactionDraft{Type: Expense, Amount: "abc"}, ErrInvalidAmount, ""},
		{"negative amount", TransactionDraft{Type: Expense, Amount: "-4"}, ErrNegativeAmount, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prior := []Transaction{{ID: "old", Type: Expense, Amount: d("1")}}
			out, created, err := AddTransaction(prior, tc.draft, "new", now)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if !reflect.DeepEqual(out, prior) {
					t.Fatalf("rejected add must leave collection unchanged")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(out) != 2 || out[0].ID != "new" || out[1].ID != "old" {
				t.Fatalf("new transaction must be prepended: %+v", out)
			}
			if created.Category != tc.wantCat || !created.Date.Equal(now) {
				t.Fatalf("unexpected transaction %+v", created)
			}
			if len(prior) != 1 {
				t.Fatalf("input slice was modified")
			}
		})
	}
}

func TestAddThenDeleteRestoresCollection(t *testing.T) {
	prior := sample()
	out, created, err := AddTransaction(prior, TransactionDraft{Type: Expense, Amount: "9.99"}, "fresh", time.Now())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	restored, ok := DeleteTransaction(out, created.ID)
	if !ok {
		t.Fatalf("delete did not find %s", created.ID)
	}
	if !reflect.DeepEqual(restored, prior) {
		t.Fatalf("collection not restored")
	}
}

func TestDeleteTransactionMissing(t *testing.T) {
	prior := sample()
	out, ok := DeleteTransaction(prior, "nope")
	if ok || len(out) != len(prior) {
		t.Fatalf("missing id must be a no-op")
	}
}

func TestAddGoal(t *testing.T) {
	cases := []struct {
		name    string
		draft   GoalDraft
		wantErr error
	}{
		{"valid", GoalDraft{Name: "Vacation", Target: "1000", Current: "200"}, nil},
		{"default current", GoalDraft{Name: "Car", Target: "5000"}, nil},
		{"empty name", GoalDraft{Name: " ", Target: "10"}, ErrEmptyName},
		{"empty target", GoalDraft{Name: "x", Target: ""}, ErrInvalidTarget},
		{"zero target", GoalDraft{Name: "x", Target: "0"}, ErrInvalidTarget},
		{"bad current", GoalDraft{Name: "x", Target: "10", Current: "z"}, ErrInvalidAmount},
		{"negative current", GoalDraft{Name: "x", Target: "10", Current: "-5"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			goals, g, err := AddGoal(nil, tc.draft, "g1")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if len(goals) != 0 {
					t.Fatalf("rejected goal was added")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if g.Color != Palette[0] || len(goals) != 1 {
				t.Fatalf("unexpected goal %+v", g)
			}
		})
	}
}

func TestAddGoalClampsNegativeCurrent(t *testing.T) {
	_, g, err := AddGoal(nil, GoalDraft{Name: "Bike", Target: "300", Current: "-40"}, "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !g.CurrentAmount.IsZero() {
		t.Fatalf("expected current clamped to 0, got %s", g.CurrentAmount)
	}
}

func TestGoalColorsRoundRobin(t *testing.T) {
	var goals []SavingsGoal
	var err error
	for i := 0; i < len(Palette)+2; i++ {
		goals, _, err = AddGoal(goals, GoalDraft{Name: "g", Target: "10"}, string(rune('a'+i)))
		if err != nil {
			t.Fatalf("add goal %d: %v", i, err)
		}
	}
	for i, g := range goals {
		if g.Color != Palette[i%len(Palette)] {
			t.Fatalf("goal %d: expected %s, got %s", i, Palette[i%len(Palette)], g.Color)
		}
	}
}

func TestVacationGoalScenario(t *testing.T) {
	goals, g, err := AddGoal(nil, GoalDraft{Name: "Vacation", Target: "1000", Current: "200"}, "v")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if p := Progress(g); !p.Equal(d("20")) {
		t.Fatalf("expected 20%%, got %s", p)
	}
	goals, ok := UpdateGoalAmount(goals, "v", d("-500"))
	if !ok {
		t.Fatalf("goal not found")
	}
	if !goals[0].CurrentAmount.IsZero() {
		t.Fatalf("expected clamp to 0, got %s", goals[0].CurrentAmount)
	}
}

func TestUpdateGoalAmountNeverNegative(t *testing.T) {
	deltas := []string{"-0.01", "-1", "-1000000", "5", "-5", "0"}
	goals := []SavingsGoal{{ID: "g", Name: "g", TargetAmount: d("10"), CurrentAmount: d("3")}}
	for _, delta := range deltas {
		goals, _ = UpdateGoalAmount(goals, "g", d(delta))
		if goals[0].CurrentAmount.IsNegative() {
			t.Fatalf("delta %s drove amount negative", delta)
		}
	}
	out, ok := UpdateGoalAmount(goals, "missing", d("1"))
	if ok || !reflect.DeepEqual(out, goals) {
		t.Fatalf("missing id must be a no-op")
	}
}

func TestDeleteGoal(t *testing.T) {
	goals := []SavingsGoal{{ID: "a"}, {ID: "b"}}
	out, ok := DeleteGoal(goals, "a")
	if !ok || len(out) != 1 || out[0].ID != "b" {
		t.Fatalf("unexpected result %+v", out)
	}
	if _, ok := DeleteGoal(goals, "zzz"); ok {
		t.Fatalf("missing id must report false")
	}
}

func TestProgress(t *testing.T) {
	cases := []struct {
		current, target, want string
	}{
		{"0", "100", "0"},
		{"50", "200", "25"},
		{"300", "100", "100"},
		{"10", "0", "100"},
	}
	for _, tc := range cases {
		g := SavingsGoal{CurrentAmount: d(tc.current), TargetAmount: d(tc.target)}
		if got := Progress(g); !got.Equal(d(tc.want)) {
			t.Fatalf("progress(%s/%s): expected %s, got %s", tc.current, tc.target, tc.want, got)
		}
	}
}
