package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultAlertThreshold is the share of the budget, in percent, at which an
// alert goes out.
const DefaultAlertThreshold = 80

var hundred = decimal.NewFromInt(100)

// PercentageUsed returns spent/amount*100. The caller must ensure amount is
// positive.
func PercentageUsed(spent, amount decimal.Decimal) decimal.Decimal {
	return spent.Mul(hundred).Div(amount)
}

// ThresholdReached compares spent*100 against amount*threshold so that the
// gate never depends on a rounded quotient.
func ThresholdReached(spent, amount decimal.Decimal, thresholdPercent int) bool {
	return spent.Mul(hundred).GreaterThanOrEqual(amount.Mul(decimal.NewFromInt(int64(thresholdPercent))))
}

// AlertedThisMonth reports whether lastAlertSent falls in the same calendar
// month as now.
func AlertedThisMonth(lastAlertSent *time.Time, now time.Time, loc *time.Location) bool {
	if lastAlertSent == nil || lastAlertSent.IsZero() {
		return false
	}
	return SameMonth(*lastAlertSent, now, loc)
}

// ShouldAlert is the month-equality gate: fire when the threshold is reached
// and no alert has been sent in the current month.
func ShouldAlert(spent, amount decimal.Decimal, thresholdPercent int, lastAlertSent *time.Time, now time.Time, loc *time.Location) bool {
	if !amount.IsPositive() {
		return false
	}
	return ThresholdReached(spent, amount, thresholdPercent) && !AlertedThisMonth(lastAlertSent, now, loc)
}
