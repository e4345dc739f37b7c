package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"wealthflow/internal/core"
)

// LimitAlertText is the over-limit message shown on the dashboard and sent as an alert.
func LimitAlertText(spent decimal.Decimal, settings core.AppSettings) string {
	return fmt.Sprintf("You have spent %s today. Your limit is %s.",
		core.FormatAmount(spent, settings.Currency),
		core.FormatAmount(settings.DailyLimit, settings.Currency))
}
