package sheets

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"wealthflow/internal/core"
)

func TestTransactionRows(t *testing.T) {
	rows := TransactionRows([]core.Transaction{{
		ID: "t1", Type: core.Expense, Amount: decimal.RequireFromString("12.5"),
		Category: "Food & Dining", Description: "Lunch",
		Date: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
	}})
	if len(rows) != 2 {
		t.Fatalf("expected header and one row, got %d", len(rows))
	}
	want := []any{"2024-05-01T12:30:00Z", "expense", "Food & Dining", "Lunch", "12.50"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Fatalf("column %d: expected %v, got %v", i, v, rows[1][i])
		}
	}
}

func TestGoalRows(t *testing.T) {
	rows := GoalRows([]core.SavingsGoal{
		{Name: "Vacation", TargetAmount: decimal.NewFromInt(1000), CurrentAmount: decimal.NewFromInt(250)},
		{Name: "Bike", TargetAmount: decimal.NewFromInt(300), CurrentAmount: decimal.NewFromInt(100)},
	})
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1][3] != "25" || rows[2][3] != "33" {
		t.Fatalf("unexpected progress columns %v %v", rows[1][3], rows[2][3])
	}
	if rows[1][1] != "1000.00" || rows[1][2] != "250.00" {
		t.Fatalf("unexpected amounts %v", rows[1])
	}
}
