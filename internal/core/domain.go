package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	CategoryFood          Category = "Food & Dining"
	CategoryShopping      Category = "Shopping"
	CategoryTransport     Category = "Transportation"
	CategoryBills         Category = "Bills & Utilities"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealth        Category = "Health & Wellness"
	CategorySalary        Category = "Salary"
	CategoryInvestment    Category = "Investment"
	CategoryOther         Category = "Other"
)

const (
	TonePositive Tone = "positive"
	ToneWarning  Tone = "warning"
	ToneNeutral  Tone = "neutral"
)

type (
	TransactionType string

	// Category is one of the conventional labels. Transactions store the
	// label as a plain string so unknown values survive a round trip.
	Category string

	Tone string

	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        time.Time       `json:"date"`
	}

	SavingsGoal struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		Color         string          `json:"color"`
	}

	AppSettings struct {
		Currency   string          `json:"currency"`
		DailyLimit decimal.Decimal `json:"dailyLimit"`
	}

	// Insight is a short advisory message. It is never persisted.
	Insight struct {
		Title   string `json:"title"`
		Message string `json:"message"`
		Tone    Tone   `json:"tone"`
	}

	// State is the whole persisted application state.
	State struct {
		Transactions []Transaction
		Goals        []SavingsGoal
		Settings     AppSettings
	}
)

// Categories lists the labels offered to users and to the advisor, in display order.
var Categories = []Category{
	CategoryFood,
	CategoryShopping,
	CategoryTransport,
	CategoryBills,
	CategoryEntertainment,
	CategoryHealth,
	CategorySalary,
	CategoryInvestment,
	CategoryOther,
}

var (
	ErrInvalidType    = errors.New("invalid transaction type")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrAmountTooLarge = errors.New("amount too large")
	ErrEmptyName      = errors.New("empty goal name")
	ErrInvalidTarget  = errors.New("invalid target amount")
	ErrEmptyCurrency  = errors.New("empty currency")
	ErrTxNotFound     = errors.New("transaction not found")
	ErrGoalNotFound   = errors.New("goal not found")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (t TransactionType) String() string { return string(t) }

// ParseTransactionType accepts the type case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	default:
		return "", ErrInvalidType
	}
}

func (c Category) String() string { return string(c) }

func (t Tone) Valid() bool {
	return t == TonePositive || t == ToneWarning || t == ToneNeutral
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if !g.TargetAmount.IsPositive() {
		return ErrInvalidTarget
	}
	if g.CurrentAmount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

func (s AppSettings) Validate() error {
	if strings.TrimSpace(s.Currency) == "" {
		return ErrEmptyCurrency
	}
	if s.DailyLimit.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// Label is the text shown for a transaction in lists.
func (t Transaction) Label() string {
	if t.Description != "" {
		return t.Description
	}
	return t.Category
}

// NewState returns an empty state with default settings.
func NewState() State {
	return State{
		Transactions: []Transaction{},
		Goals:        []SavingsGoal{},
		Settings:     DefaultSettings(),
	}
}
