package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tx(id string, typ TransactionType, amount, category, date string) Transaction {
	at, err := time.Parse(time.RFC3339, date)
	if err != nil {
		panic(err)
	}
	return Transaction{ID: id, Type: typ, Amount: d(amount), Category: category, Date: at}
}

func sample() []Transaction {
	return []Transaction{
		tx("5", Expense, "12.5", "Shopping", "2024-01-02T09:00:00Z"),
		tx("4", Expense, "30", "Food & Dining", "2024-01-02T08:00:00Z"),
		tx("3", Income, "1000", "Salary", "2024-01-01T10:00:00Z"),
		tx("2", Expense, "20", "Food & Dining", "2024-01-01T23:59:00Z"),
		tx("1", Expense, "70", "Bills & Utilities", "2024-01-01T12:00:00Z"),
	}
}

func TestBalanceAndTotals(t *testing.T) {
	cases := []struct {
		name    string
		txs     []Transaction
		income  string
		expense string
		balance string
	}{
		{"empty", nil, "0", "0", "0"},
		{"mixed", sample(), "1000", "132.5", "867.5"},
		{"only expenses", sample()[:2], "0", "42.5", "-42.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inc := TotalByType(tc.txs, Income)
			exp := TotalByType(tc.txs, Expense)
			bal := Balance(tc.txs)
			if !inc.Equal(d(tc.income)) || !exp.Equal(d(tc.expense)) || !bal.Equal(d(tc.balance)) {
				t.Fatalf("income=%s expense=%s balance=%s", inc, exp, bal)
			}
			if !bal.Equal(inc.Sub(exp)) {
				t.Fatalf("balance %s != income-expense %s", bal, inc.Sub(exp))
			}
			if inc.IsNegative() || exp.IsNegative() {
				t.Fatalf("totals must be non-negative")
			}
		})
	}
}

func TestTodayExpensesUsesCalendarDay(t *testing.T) {
	txs := []Transaction{
		tx("a", Expense, "10", "Other", "2024-01-01T23:59:00Z"),
		tx("b", Expense, "5", "Other", "2024-01-02T00:01:00Z"),
		tx("c", Income, "100", "Salary", "2024-01-02T00:02:00Z"),
	}
	now := time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC)
	if got := TodayExpenses(txs, now); !got.Equal(d("5")) {
		t.Fatalf("expected 5, got %s", got)
	}
	prev := time.Date(2024, 1, 1, 23, 59, 30, 0, time.UTC)
	if got := TodayExpenses(txs, prev); !got.Equal(d("10")) {
		t.Fatalf("expected 10, got %s", got)
	}
}

func TestCategoryBreakdownOrderAndTotal(t *testing.T) {
	rows := CategoryBreakdown(sample())
	want := []CategoryAmount{
		{Name: "Shopping", Value: d("12.5")},
		{Name: "Food & Dining", Value: d("50")},
		{Name: "Bills & Utilities", Value: d("70")},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	sum := decimal.Zero
	for i, r := range rows {
		if r.Name != want[i].Name || !r.Value.Equal(want[i].Value) {
			t.Fatalf("row %d: expected %v, got %v", i, want[i], r)
		}
		sum = sum.Add(r.Value)
	}
	if !sum.Equal(TotalByType(sample(), Expense)) {
		t.Fatalf("breakdown sum %s != expense total", sum)
	}
	if len(CategoryBreakdown(nil)) != 0 {
		t.Fatalf("empty input should give empty breakdown")
	}
}

func TestTopCategories(t *testing.T) {
	rows := []CategoryAmount{
		{Name: "A", Value: d("1")},
		{Name: "B", Value: d("9")},
		{Name: "C", Value: d("5")},
		{Name: "D", Value: d("5")},
	}
	top := TopCategories(rows, 3)
	names := []string{"B", "C", "D"}
	for i, n := range names {
		if top[i].Name != n {
			t.Fatalf("position %d: expected %s, got %s", i, n, top[i].Name)
		}
	}
	if rows[0].Name != "A" {
		t.Fatalf("input must not be reordered")
	}
}

func TestSummarizeFirstExpense(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	s := NewState()
	txs, _, err := AddTransaction(s.Transactions, TransactionDraft{
		Type: Expense, Amount: "50", Description: "Lunch", Category: "Food & Dining",
	}, "t1", now)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	s.Transactions = txs

	sum := Summarize(s, now)
	if !sum.Balance.Equal(d("-50")) {
		t.Fatalf("balance: %s", sum.Balance)
	}
	if !sum.TodayExpenses.Equal(d("50")) {
		t.Fatalf("today: %s", sum.TodayExpenses)
	}
	if len(sum.Breakdown) != 1 || sum.Breakdown[0].Name != "Food & Dining" || !sum.Breakdown[0].Value.Equal(d("50")) {
		t.Fatalf("breakdown: %+v", sum.Breakdown)
	}
	if sum.OverLimit {
		t.Fatalf("50 is within the default limit")
	}
}

func TestIsOverLimit(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	settings := AppSettings{Currency: "¥", DailyLimit: d("100")}
	txs, _, _ := AddTransaction(nil, TransactionDraft{Type: Expense, Amount: "150"}, "t1", now)
	if !IsOverLimit(txs, settings, now) {
		t.Fatalf("150 > 100 should be over limit")
	}
	txs, _, _ = AddTransaction(nil, TransactionDraft{Type: Expense, Amount: "100"}, "t1", now)
	if IsOverLimit(txs, settings, now) {
		t.Fatalf("limit itself is not over")
	}
}
