package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wealthflow/internal/core"
	"wealthflow/internal/services"
)

// Quick deposit buttons on each goal card.
var quickDeposits = []string{"10", "100"}

type (
	txRow struct {
		ID       string
		Label    string
		Category string
		Icon     string
		Amount   string
		Date     string
		Income   bool
	}

	goalRow struct {
		ID       string
		Name     string
		Color    string
		Current  string
		Target   string
		Progress string
		Deposits []string
	}

	categoryRow struct {
		Name    string
		Icon    string
		Amount  string
		Percent string
	}

	summaryView struct {
		Balance   string
		Income    string
		Expenses  string
		Today     string
		Limit     string
		OverLimit bool
		Alert     string
		Top       []categoryRow
	}

	// chartSlice is one arc of the SVG donut. Dash and Offset are in
	// percent of the circumference.
	chartSlice struct {
		Name    string
		Color   string
		Amount  string
		Percent string
		Dash    string
		Gap     string
		Offset  string
	}

	insightView struct {
		Status  services.InsightStatus
		Enabled bool
	}

	settingsView struct {
		Currency   string
		DailyLimit string
	}

	pageView struct {
		FormID       string
		Summary      summaryView
		Transactions []txRow
		Goals        []goalRow
		Chart        []chartSlice
		Insight      insightView
		Settings     settingsView
		Categories   []string
		Selected     string
	}
)

func buildTransactions(s core.State) []txRow {
	rows := make([]txRow, 0, len(s.Transactions))
	for _, t := range s.Transactions {
		rows = append(rows, txRow{
			ID:       t.ID,
			Label:    t.Label(),
			Category: t.Category,
			Icon:     core.CategoryIcon(t.Category),
			Amount:   core.SignedAmount(t, s.Settings.Currency),
			Date:     t.Date.Format("Jan 2, 15:04"),
			Income:   t.Type == core.Income,
		})
	}
	return rows
}

func buildGoals(s core.State) []goalRow {
	rows := make([]goalRow, 0, len(s.Goals))
	for _, g := range s.Goals {
		rows = append(rows, goalRow{
			ID:       g.ID,
			Name:     g.Name,
			Color:    g.Color,
			Current:  core.FormatAmount(g.CurrentAmount, s.Settings.Currency),
			Target:   core.FormatAmount(g.TargetAmount, s.Settings.Currency),
			Progress: core.Progress(g).Round(0).String(),
			Deposits: quickDeposits,
		})
	}
	return rows
}

func buildSummary(s core.State, now time.Time) summaryView {
	sum := core.Summarize(s, now)
	cur := s.Settings.Currency

	v := summaryView{
		Balance:   core.FormatAmount(sum.Balance, cur),
		Income:    core.FormatAmount(sum.Income, cur),
		Expenses:  core.FormatAmount(sum.Expenses, cur),
		Today:     core.FormatAmount(sum.TodayExpenses, cur),
		Limit:     core.FormatAmount(sum.DailyLimit, cur),
		OverLimit: sum.OverLimit,
	}
	if sum.OverLimit {
		v.Alert = services.LimitAlertText(sum.TodayExpenses, s.Settings)
	}
	for _, c := range sum.TopCategories {
		v.Top = append(v.Top, categoryRow{
			Name:    c.Name,
			Icon:    core.CategoryIcon(c.Name),
			Amount:  core.FormatAmount(c.Value, cur),
			Percent: percentOf(c.Value, sum.Expenses).StringFixed(0),
		})
	}
	return v
}

func buildChart(s core.State) []chartSlice {
	breakdown := core.CategoryBreakdown(s.Transactions)
	total := decimal.Zero
	for _, c := range breakdown {
		total = total.Add(c.Value)
	}
	if !total.IsPositive() {
		return nil
	}

	slices := make([]chartSlice, 0, len(breakdown))
	offset := decimal.Zero
	for i, c := range breakdown {
		pct := percentOf(c.Value, total)
		slices = append(slices, chartSlice{
			Name:    c.Name,
			Color:   core.Palette[i%len(core.Palette)],
			Amount:  core.FormatAmount(c.Value, s.Settings.Currency),
			Percent: pct.StringFixed(0),
			Dash:    pct.StringFixed(2),
			Gap:     decimal.NewFromInt(100).Sub(pct).StringFixed(2),
			// The first arc starts at 12 o'clock.
			Offset: decimal.NewFromInt(25).Sub(offset).StringFixed(2),
		})
		offset = offset.Add(pct)
	}
	return slices
}

func buildSettings(s core.AppSettings) settingsView {
	return settingsView{Currency: s.Currency, DailyLimit: s.DailyLimit.String()}
}

func percentOf(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Div(total).Mul(decimal.NewFromInt(100))
}

func categoryNames() []string {
	out := make([]string, len(core.Categories))
	for i, c := range core.Categories {
		out[i] = c.String()
	}
	return out
}

func (s *Server) buildPage(formID string) pageView {
	state := s.finance.Snapshot()
	return pageView{
		FormID:       formID,
		Summary:      buildSummary(state, s.finance.Now()),
		Transactions: buildTransactions(state),
		Goals:        buildGoals(state),
		Chart:        buildChart(state),
		Insight:      s.insightView(),
		Settings:     buildSettings(state.Settings),
		Categories:   categoryNames(),
		Selected:     core.CategoryOther.String(),
	}
}

func (s *Server) insightView() insightView {
	return insightView{Status: s.insights.Current(), Enabled: s.aiEnabled}
}

// newFormID identifies one rendered transaction form for the suggestion
// busy flag.
func newFormID() string {
	return "form_" + uuid.NewString()
}
