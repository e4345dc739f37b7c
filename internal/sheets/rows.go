package sheets

import (
	"time"

	"wealthflow/internal/core"
)

var (
	TransactionHeader = []any{"Date", "Type", "Category", "Description", "Amount"}
	GoalHeader        = []any{"Name", "Target", "Current", "Progress %"}
)

// TransactionRows renders txs below the header, newest first.
func TransactionRows(txs []core.Transaction) [][]any {
	rows := make([][]any, 0, len(txs)+1)
	rows = append(rows, TransactionHeader)
	for _, t := range txs {
		rows = append(rows, []any{
			t.Date.UTC().Format(time.RFC3339),
			t.Type.String(),
			t.Category,
			t.Description,
			t.Amount.StringFixed(2),
		})
	}
	return rows
}

// GoalRows renders goals below the header with progress rounded to a whole percent.
func GoalRows(goals []core.SavingsGoal) [][]any {
	rows := make([][]any, 0, len(goals)+1)
	rows = append(rows, GoalHeader)
	for _, g := range goals {
		rows = append(rows, []any{
			g.Name,
			g.TargetAmount.StringFixed(2),
			g.CurrentAmount.StringFixed(2),
			core.Progress(g).Round(0).String(),
		})
	}
	return rows
}
