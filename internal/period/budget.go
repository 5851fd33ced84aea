package period

import (
	"time"

	"tally/internal/core"
)

// WindowStrategy resolves the period window that contains now.
// Each budget period has its own implementation.
type WindowStrategy interface {
	Current(now time.Time) core.Window
}

// WeeklyWindow spans Monday 00:00 through Sunday 23:59:59.999 of now's week.
type WeeklyWindow struct{}

// Current returns the Monday-based week containing now. Sunday belongs to
// the week that started six days earlier.
func (WeeklyWindow) Current(now time.Time) core.Window {
	offset := (int(now.Weekday()) + 6) % 7
	monday := StartOfDay(now.AddDate(0, 0, -offset))
	return core.Window{Start: monday, End: EndOfDay(monday.AddDate(0, 0, 6))}
}

// MonthlyWindow spans the first through the last day of now's month.
type MonthlyWindow struct{}

func (MonthlyWindow) Current(now time.Time) core.Window {
	return MonthOf(now.Year(), now.Month(), now.Location())
}

// YearlyWindow spans January 1st through December 31st of now's year.
type YearlyWindow struct{}

func (YearlyWindow) Current(now time.Time) core.Window {
	return YearOf(now.Year(), now.Location())
}

// StrategyFor returns the window strategy for p. Unknown periods fall back
// to monthly.
func StrategyFor(p core.BudgetPeriod) WindowStrategy {
	switch p {
	case core.Weekly:
		return WeeklyWindow{}
	case core.Yearly:
		return YearlyWindow{}
	default:
		return MonthlyWindow{}
	}
}

// ForBudget resolves the current window of a budget period relative to now.
// The budget's start date does not take part.
func ForBudget(p core.BudgetPeriod, now time.Time) core.Window {
	return StrategyFor(p).Current(reference(now))
}
