package sheets

import (
	"context"

	"wealthflow/internal/core"
)

// Ports for spreadsheet export adapters.
type (
	// TransactionWriter replaces the exported ledger with txs.
	TransactionWriter interface {
		ReplaceTransactions(ctx context.Context, txs []core.Transaction) error
	}

	// GoalWriter replaces the exported savings goals with goals.
	GoalWriter interface {
		ReplaceGoals(ctx context.Context, goals []core.SavingsGoal) error
	}

	LedgerWriter interface {
		TransactionWriter
		GoalWriter
	}
)
