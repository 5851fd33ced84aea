// Package trend builds bucketed time series and per-category chart data.
package trend

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tally/internal/aggregate"
	"tally/internal/core"
	"tally/internal/period"
)

// Granularity selects how a trend is bucketed.
type Granularity string

const (
	// Week is the last 7 days, one bucket per day.
	Week Granularity = "week"
	// Month is the current month so far, one bucket per day.
	Month Granularity = "month"
	// Year is the current year so far, one bucket per month.
	Year Granularity = "year"
)

// ParseGranularity maps a query token to a granularity; anything unknown
// is Month.
func ParseGranularity(s string) Granularity {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Week, Year:
		return g
	default:
		return Month
	}
}

// Range is the overall window a granularity covers, ending at ref.
func (g Granularity) Range(ref time.Time) core.Window {
	switch g {
	case Week:
		return period.Resolve(period.Week, ref)
	case Year:
		return period.Resolve(period.Year, ref)
	default:
		return period.Resolve(period.Month, ref)
	}
}

type bucket struct {
	key    string
	label  string
	window core.Window
}

// Buckets lists the chronological buckets of g ending at ref. Buckets that
// start after ref are never produced, and the last bucket is clipped at ref.
func Buckets(g Granularity, ref time.Time) []core.Window {
	bs := buckets(g, ref)
	out := make([]core.Window, len(bs))
	for i, b := range bs {
		out[i] = b.window
	}
	return out
}

func buckets(g Granularity, ref time.Time) []bucket {
	if ref.IsZero() {
		ref = time.Now()
	}
	var out []bucket
	add := func(w core.Window, key, label string) {
		if w.Start.After(ref) {
			return
		}
		if w.End.After(ref) {
			w.End = ref
		}
		out = append(out, bucket{key: key, label: label, window: w})
	}

	switch g {
	case Week:
		for i := 6; i >= 0; i-- {
			d := ref.AddDate(0, 0, -i)
			add(period.Day(d), d.Format(time.DateOnly), fmt.Sprintf("%d/%d", int(d.Month()), d.Day()))
		}
	case Year:
		for m := time.January; m <= ref.Month(); m++ {
			w := period.MonthOf(ref.Year(), m, ref.Location())
			add(w, w.Start.Format("2006-01"), m.String()[:3])
		}
	default:
		first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
		for d := first; d.Month() == ref.Month() && !d.After(ref); d = d.AddDate(0, 0, 1) {
			add(period.Day(d), d.Format(time.DateOnly), strconv.Itoa(d.Day()))
		}
	}
	return out
}

// Build returns income and expense totals per bucket, oldest first.
func Build(g Granularity, txs []core.Transaction, ref time.Time) []core.TrendPoint {
	bs := buckets(g, ref)
	out := make([]core.TrendPoint, 0, len(bs))
	for _, b := range bs {
		t := aggregate.Summarize(aggregate.FilterByWindow(txs, b.window))
		out = append(out, core.TrendPoint{Key: b.key, Label: b.label, Income: t.Income, Expense: t.Expense})
	}
	return out
}

// BuildBalance returns the running balance per bucket. The running sum
// starts at 0 with the first bucket and carries across all of them.
func BuildBalance(g Granularity, txs []core.Transaction, ref time.Time) []core.BalancePoint {
	points := Build(g, txs, ref)
	out := make([]core.BalancePoint, 0, len(points))
	var running float64
	for _, p := range points {
		running += p.Income - p.Expense
		out = append(out, core.BalancePoint{Key: p.Key, Label: p.Label, Balance: running})
	}
	return out
}

// Radar returns one point per expense category with spending in w. Every
// point shares the same FullMark: twice the largest single transaction in
// the window.
func Radar(txs []core.Transaction, categories []core.Category, w core.Window) []core.RadarPoint {
	in := aggregate.FilterByWindow(txs, w)
	var largest float64
	for _, tx := range in {
		if a := core.SafeAmount(tx.Amount); a > largest {
			largest = a
		}
	}
	amounts := aggregate.CategoryAmounts(in, categories, core.Expense)
	out := make([]core.RadarPoint, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, core.RadarPoint{
			CategoryID: a.CategoryID,
			Name:       a.Name,
			Value:      a.Amount,
			FullMark:   largest * 2,
		})
	}
	return out
}

// Shares returns the per-category totals of type t inside w, for pie charts.
func Shares(txs []core.Transaction, categories []core.Category, t core.TxType, w core.Window) []core.CategoryAmount {
	return aggregate.CategoryAmounts(aggregate.FilterByWindow(txs, w), categories, t)
}
