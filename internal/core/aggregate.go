package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAmount is one row of the spending breakdown.
type CategoryAmount struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// Summary bundles the figures shown on the dashboard.
type Summary struct {
	Balance       decimal.Decimal  `json:"balance"`
	Income        decimal.Decimal  `json:"income"`
	Expenses      decimal.Decimal  `json:"expenses"`
	TodayExpenses decimal.Decimal  `json:"todayExpenses"`
	DailyLimit    decimal.Decimal  `json:"dailyLimit"`
	OverLimit     bool             `json:"overLimit"`
	Breakdown     []CategoryAmount `json:"breakdown"`
	TopCategories []CategoryAmount `json:"topCategories"`
}

// Balance is total income minus total expenses.
func Balance(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Type == Income {
			total = total.Add(t.Amount)
		} else {
			total = total.Sub(t.Amount)
		}
	}
	return total
}

func TotalByType(txs []Transaction, typ TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Type == typ {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// TodayExpenses sums expenses whose ISO date matches the ISO date of now.
// The comparison is on the calendar date string, not a rolling 24h window.
func TodayExpenses(txs []Transaction, now time.Time) decimal.Decimal {
	today := isoDay(now)
	total := decimal.Zero
	for _, t := range txs {
		if t.Type == Expense && isoDay(t.Date) == today {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// CategoryBreakdown groups expenses by category. Rows keep the order in
// which each category first appears.
func CategoryBreakdown(txs []Transaction) []CategoryAmount {
	rows := []CategoryAmount{}
	index := make(map[string]int)
	for _, t := range txs {
		if t.Type != Expense {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			index[t.Category] = len(rows)
			rows = append(rows, CategoryAmount{Name: t.Category, Value: t.Amount})
			continue
		}
		rows[i].Value = rows[i].Value.Add(t.Amount)
	}
	return rows
}

// TopCategories returns up to n rows sorted by value, largest first.
func TopCategories(rows []CategoryAmount, n int) []CategoryAmount {
	sorted := make([]CategoryAmount, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value.GreaterThan(sorted[j].Value)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func IsOverLimit(txs []Transaction, settings AppSettings, now time.Time) bool {
	return TodayExpenses(txs, now).GreaterThan(settings.DailyLimit)
}

func Summarize(s State, now time.Time) Summary {
	breakdown := CategoryBreakdown(s.Transactions)
	today := TodayExpenses(s.Transactions, now)
	return Summary{
		Balance:       Balance(s.Transactions),
		Income:        TotalByType(s.Transactions, Income),
		Expenses:      TotalByType(s.Transactions, Expense),
		TodayExpenses: today,
		DailyLimit:    s.Settings.DailyLimit,
		OverLimit:     today.GreaterThan(s.Settings.DailyLimit),
		Breakdown:     breakdown,
		TopCategories: TopCategories(breakdown, 3),
	}
}

func isoDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
