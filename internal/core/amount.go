package core

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

func init() {
	// Persisted blobs carry amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// MaxAmount bounds a single entered amount.
var MaxAmount = decimal.New(1, 12)

// ParseAmount parses a user supplied decimal such as "12.50" or "12,50".
// Empty, malformed, exponent, negative and oversized input is rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "eE") {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	if d.GreaterThan(MaxAmount) {
		return decimal.Zero, ErrAmountTooLarge
	}
	return d, nil
}

// ParseDelta parses a signed adjustment, used for goal deposits and withdrawals.
func ParseDelta(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if neg {
		return d.Neg(), nil
	}
	return d, nil
}

// FormatAmount renders an amount with the currency symbol and two decimals,
// e.g. "¥12.50". Negative amounts get a leading minus.
func FormatAmount(d decimal.Decimal, currency string) string {
	d = d.Round(2)
	cents := d.Shift(2).BigInt()
	if cents.IsInt64() {
		f := money.NewFormatter(2, ".", "", currency, "$1")
		return f.Format(cents.Int64())
	}
	// Totals past int64 cents.
	if d.IsNegative() {
		return "-" + currency + d.Abs().StringFixed(2)
	}
	return currency + d.StringFixed(2)
}

// SignedAmount renders a transaction amount the way lists show it: "+¥10.00" for
// income and "-¥10.00" for expenses.
func SignedAmount(t Transaction, currency string) string {
	sign := "-"
	if t.Type == Income {
		sign = "+"
	}
	return sign + FormatAmount(t.Amount.Abs(), currency)
}
