package core

import (
	"strings"
	"time"
)

// TransactionDraft is the raw input of a new transaction.
type TransactionDraft struct {
	Type        TransactionType
	Amount      string
	Description string
	Category    string
}

// AddTransaction prepends a transaction built from d. When the amount is empty
// or cannot be parsed the collection is returned unchanged with the parse error.
func AddTransaction(txs []Transaction, d TransactionDraft, id string, at time.Time) ([]Transaction, Transaction, error) {
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return txs, Transaction{}, err
	}
	typ := d.Type
	if !typ.Valid() {
		typ = Expense
	}
	category := strings.TrimSpace(d.Category)
	if category == "" {
		category = string(CategoryOther)
	}
	tx := Transaction{
		ID:          id,
		Type:        typ,
		Amount:      amount,
		Category:    category,
		Description: strings.TrimSpace(d.Description),
		Date:        at.UTC(),
	}

	out := make([]Transaction, 0, len(txs)+1)
	out = append(out, tx)
	out = append(out, txs...)
	return out, tx, nil
}

// DeleteTransaction returns txs without the transaction with the given id.
func DeleteTransaction(txs []Transaction, id string) (out []Transaction, ok bool) {
	out = make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if t.ID == id {
			ok = true
			continue
		}
		out = append(out, t)
	}
	if !ok {
		return txs, false
	}
	return out, true
}

// RecentTransactions returns at most n transactions from the head of the
// newest-first collection.
func RecentTransactions(txs []Transaction, n int) []Transaction {
	if len(txs) <= n {
		return txs
	}
	return txs[:n]
}
