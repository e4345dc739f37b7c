package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "¥"

var DefaultDailyLimit = decimal.NewFromInt(100)

func DefaultSettings() AppSettings {
	return AppSettings{Currency: DefaultCurrency, DailyLimit: DefaultDailyLimit}
}

// ParseDailyLimit falls back to the default limit when s is not a valid amount.
func ParseDailyLimit(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		return DefaultDailyLimit
	}
	return d
}

// Normalize fills in defaults so settings always carry a currency and a
// non-negative limit.
func (s AppSettings) Normalize() AppSettings {
	s.Currency = strings.TrimSpace(s.Currency)
	if s.Currency == "" {
		s.Currency = DefaultCurrency
	}
	if s.DailyLimit.IsNegative() {
		s.DailyLimit = DefaultDailyLimit
	}
	return s
}
