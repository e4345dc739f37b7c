// Package memory keeps exported rows in process memory. It stands in for
// Google Sheets when no spreadsheet is configured.
package memory

import (
	"context"
	"sync"

	"wealthflow/internal/core"
	"wealthflow/internal/sheets"
)

type Store struct {
	mu           sync.RWMutex
	transactions [][]any
	goals        [][]any
	writes       int
}

var _ sheets.LedgerWriter = (*Store)(nil)

func NewStore() *Store {
	return &Store{}
}

func (s *Store) ReplaceTransactions(_ context.Context, txs []core.Transaction) error {
	rows := sheets.TransactionRows(txs)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = rows
	s.writes++
	return nil
}

func (s *Store) ReplaceGoals(_ context.Context, goals []core.SavingsGoal) error {
	rows := sheets.GoalRows(goals)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = rows
	s.writes++
	return nil
}

// TransactionRows returns the last exported transaction rows, header included.
func (s *Store) TransactionRows() [][]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactions
}

func (s *Store) GoalRows() [][]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.goals
}

// Writes counts replace calls.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
