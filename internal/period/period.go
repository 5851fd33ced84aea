// Package period resolves named periods into inclusive time windows.
//
// Every function takes the reference instant explicitly; a zero reference
// means "now". Windows are expressed in the reference instant's location and
// end at millisecond precision (23:59:59.999) when they close a day.
package period

import (
	"time"

	"tally/internal/core"
)

// Range is a named period token.
type Range string

const (
	Today  Range = "today"
	Week   Range = "week"
	Month  Range = "month"
	Year   Range = "year"
	Custom Range = "custom"
)

// ParseRange maps a token to a Range, defaulting to Month for anything unknown.
func ParseRange(s string) Range {
	switch r := Range(s); r {
	case Today, Week, Month, Year, Custom:
		return r
	default:
		return Month
	}
}

const lastMillisecond = int(999 * time.Millisecond)

func reference(ref time.Time) time.Time {
	if ref.IsZero() {
		return time.Now()
	}
	return ref
}

// StartOfDay returns t at 00:00:00.000 in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns t at 23:59:59.999 in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, lastMillisecond, t.Location())
}

// Day is the full-day window containing t.
func Day(t time.Time) core.Window {
	return core.Window{Start: StartOfDay(t), End: EndOfDay(t)}
}

// MonthOf is the full calendar month window for year y, month m.
func MonthOf(y int, m time.Month, loc *time.Location) core.Window {
	start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	last := time.Date(y, m+1, 0, 23, 59, 59, lastMillisecond, loc)
	return core.Window{Start: start, End: last}
}

// YearOf is the full calendar year window for year y.
func YearOf(y int, loc *time.Location) core.Window {
	return core.Window{
		Start: time.Date(y, time.January, 1, 0, 0, 0, 0, loc),
		End:   time.Date(y, time.December, 31, 23, 59, 59, lastMillisecond, loc),
	}
}

// Resolve returns the to-date window for r: from the period's start up to ref.
//
//	today: 00:00 of ref's day
//	week:  00:00 seven days before ref
//	month: the 1st of ref's month
//	year:  January 1st of ref's year
//
// Custom and unknown tokens resolve like Month; use Between for custom bounds.
func Resolve(r Range, ref time.Time) core.Window {
	now := reference(ref)
	loc := now.Location()
	var start time.Time
	switch r {
	case Today:
		start = StartOfDay(now)
	case Week:
		start = StartOfDay(now.AddDate(0, 0, -7))
	case Year:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
	default:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	}
	return core.Window{Start: start, End: now}
}

// Full returns the complete window for r: the same start as Resolve, but
// closing at the end of the period instead of at ref.
func Full(r Range, ref time.Time) core.Window {
	now := reference(ref)
	switch r {
	case Today:
		return Day(now)
	case Week:
		return core.Window{Start: StartOfDay(now.AddDate(0, 0, -7)), End: EndOfDay(now)}
	case Year:
		return YearOf(now.Year(), now.Location())
	default:
		return MonthOf(now.Year(), now.Month(), now.Location())
	}
}

// Between builds a custom window. Reversed bounds are swapped so the result
// is never empty.
func Between(start, end time.Time) core.Window {
	if end.Before(start) {
		start, end = end, start
	}
	return core.Window{Start: start, End: end}
}

// Previous returns the window immediately preceding r's current window.
//
//	today: all of yesterday
//	week:  the seven days before the current seven
//	month: the previous calendar month
//	year:  the previous calendar year
//
// Month and year use calendar arithmetic, so January rolls back to December
// of the prior year and month lengths are respected.
func Previous(r Range, ref time.Time) core.Window {
	now := reference(ref)
	loc := now.Location()
	switch r {
	case Today:
		return Day(now.AddDate(0, 0, -1))
	case Week:
		return core.Window{
			Start: StartOfDay(now.AddDate(0, 0, -14)),
			End:   EndOfDay(now.AddDate(0, 0, -8)),
		}
	case Year:
		return YearOf(now.Year()-1, loc)
	default:
		prev := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, loc)
		return MonthOf(prev.Year(), prev.Month(), loc)
	}
}

// PreviousOf returns the window of equal span ending one millisecond before w.
func PreviousOf(w core.Window) core.Window {
	span := w.End.Sub(w.Start)
	end := w.Start.Add(-time.Millisecond)
	return core.Window{Start: end.Add(-span), End: end}
}
