package services

import (
	"time"

	"github.com/shopspring/decimal"

	"wealthflow/internal/core"
	"wealthflow/internal/storage"
)

// Action kinds, also used as the ledger-change event kind.
const (
	KindTransactionAdded   = "transaction.added"
	KindTransactionDeleted = "transaction.deleted"
	KindGoalAdded          = "goal.added"
	KindGoalUpdated        = "goal.updated"
	KindGoalDeleted        = "goal.deleted"
	KindSettingsUpdated    = "settings.updated"
)

// Action is a requested state mutation.
type Action interface {
	Kind() string
}

type (
	AddTransaction struct {
		Draft core.TransactionDraft
		ID    string
		At    time.Time
	}

	DeleteTransaction struct {
		ID string
	}

	AddGoal struct {
		Draft core.GoalDraft
		ID    string
	}

	// UpdateGoalAmount deposits (positive Delta) or withdraws (negative Delta).
	UpdateGoalAmount struct {
		ID    string
		Delta decimal.Decimal
	}

	DeleteGoal struct {
		ID string
	}

	// UpdateSettings carries raw form values. An unparseable limit becomes
	// the default limit and an empty currency the default currency.
	UpdateSettings struct {
		Currency   string
		DailyLimit string
	}
)

func (AddTransaction) Kind() string    { return KindTransactionAdded }
func (DeleteTransaction) Kind() string { return KindTransactionDeleted }
func (AddGoal) Kind() string           { return KindGoalAdded }
func (UpdateGoalAmount) Kind() string  { return KindGoalUpdated }
func (DeleteGoal) Kind() string        { return KindGoalDeleted }
func (UpdateSettings) Kind() string    { return KindSettingsUpdated }

// Change describes the outcome of reducing one action.
type Change struct {
	Kind string
	// Keys lists the persisted keys the action touched. Empty when rejected.
	Keys []string
	// Stale is set when the current insight no longer reflects the state.
	Stale bool
	// Ref is the id of the affected transaction or goal.
	Ref string
	// Revision is assigned by the controller once the change is persisted.
	Revision int64
	Err      error
}

func (c Change) Accepted() bool {
	return c.Err == nil && len(c.Keys) > 0
}

func rejected(kind string, err error) Change {
	return Change{Kind: kind, Err: err}
}

func accepted(kind, key, ref string) Change {
	return Change{Kind: kind, Keys: []string{key}, Stale: true, Ref: ref}
}

// Reduce applies action to state without side effects. A rejected action
// returns the state unchanged and a change carrying the reason.
func Reduce(state core.State, action Action) (core.State, Change) {
	switch a := action.(type) {
	case AddTransaction:
		txs, tx, err := core.AddTransaction(state.Transactions, a.Draft, a.ID, a.At)
		if err != nil {
			return state, rejected(a.Kind(), err)
		}
		state.Transactions = txs
		return state, accepted(a.Kind(), storage.KeyTransactions, tx.ID)

	case DeleteTransaction:
		txs, ok := core.DeleteTransaction(state.Transactions, a.ID)
		if !ok {
			return state, rejected(a.Kind(), core.ErrTxNotFound)
		}
		state.Transactions = txs
		return state, accepted(a.Kind(), storage.KeyTransactions, a.ID)

	case AddGoal:
		goals, g, err := core.AddGoal(state.Goals, a.Draft, a.ID)
		if err != nil {
			return state, rejected(a.Kind(), err)
		}
		state.Goals = goals
		return state, accepted(a.Kind(), storage.KeyGoals, g.ID)

	case UpdateGoalAmount:
		goals, ok := core.UpdateGoalAmount(state.Goals, a.ID, a.Delta)
		if !ok {
			return state, rejected(a.Kind(), core.ErrGoalNotFound)
		}
		state.Goals = goals
		return state, accepted(a.Kind(), storage.KeyGoals, a.ID)

	case DeleteGoal:
		goals, ok := core.DeleteGoal(state.Goals, a.ID)
		if !ok {
			return state, rejected(a.Kind(), core.ErrGoalNotFound)
		}
		state.Goals = goals
		return state, accepted(a.Kind(), storage.KeyGoals, a.ID)

	case UpdateSettings:
		state.Settings = core.AppSettings{
			Currency:   a.Currency,
			DailyLimit: core.ParseDailyLimit(a.DailyLimit),
		}.Normalize()
		return state, accepted(a.Kind(), storage.KeySettings, "")
	}

	return state, rejected("unknown", errUnknownAction)
}
