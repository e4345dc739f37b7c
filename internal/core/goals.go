package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Palette holds the colours assigned to goals round-robin.
var Palette = []string{
	"#10b981",
	"#3b82f6",
	"#f59e0b",
	"#ef4444",
	"#8b5cf6",
	"#ec4899",
	"#6366f1",
	"#14b8a6",
}

var hundred = decimal.NewFromInt(100)

// GoalDraft is the raw input of a new savings goal.
type GoalDraft struct {
	Name    string
	Target  string
	Current string
}

// AddGoal appends a goal built from d. It rejects an empty name and a target
// that is empty, malformed or not positive. An empty current amount means 0
// and a negative one is clamped to 0.
func AddGoal(goals []SavingsGoal, d GoalDraft, id string) ([]SavingsGoal, SavingsGoal, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return goals, SavingsGoal{}, ErrEmptyName
	}
	target, err := ParseAmount(d.Target)
	if err != nil || !target.IsPositive() {
		return goals, SavingsGoal{}, ErrInvalidTarget
	}
	current := decimal.Zero
	if strings.TrimSpace(d.Current) != "" {
		if current, err = ParseDelta(d.Current); err != nil {
			return goals, SavingsGoal{}, err
		}
		current = decimal.Max(current, decimal.Zero)
	}

	g := SavingsGoal{
		ID:            id,
		Name:          name,
		TargetAmount:  target,
		CurrentAmount: current,
		Color:         Palette[len(goals)%len(Palette)],
	}
	out := make([]SavingsGoal, 0, len(goals)+1)
	out = append(out, goals...)
	out = append(out, g)
	return out, g, nil
}

// UpdateGoalAmount adds delta to the goal's current amount, never going below zero.
func UpdateGoalAmount(goals []SavingsGoal, id string, delta decimal.Decimal) ([]SavingsGoal, bool) {
	out := make([]SavingsGoal, len(goals))
	copy(out, goals)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		next := out[i].CurrentAmount.Add(delta)
		if next.IsNegative() {
			next = decimal.Zero
		}
		out[i].CurrentAmount = next
		return out, true
	}
	return goals, false
}

func DeleteGoal(goals []SavingsGoal, id string) ([]SavingsGoal, bool) {
	out := make([]SavingsGoal, 0, len(goals))
	found := false
	for _, g := range goals {
		if g.ID == id {
			found = true
			continue
		}
		out = append(out, g)
	}
	if !found {
		return goals, false
	}
	return out, true
}

// Progress is the completion percentage capped at 100. A goal without a
// positive target counts as complete.
func Progress(g SavingsGoal) decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return hundred
	}
	p := g.CurrentAmount.Div(g.TargetAmount).Mul(hundred)
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}
