package services

import (
	"strconv"
	"time"

	"tally/internal/aggregate"
	"tally/internal/budget"
	"tally/internal/cache"
	"tally/internal/core"
	"tally/internal/period"
	"tally/internal/trend"
)

// Span selects the window a view covers. Start and End are used only with
// period.Custom; a custom span missing either bound resolves like Month.
type Span struct {
	Range period.Range
	Start time.Time
	End   time.Time
}

func (sp Span) custom() bool {
	return sp.Range == period.Custom && !sp.Start.IsZero() && !sp.End.IsZero()
}

// windows returns the span's current window and the one it is compared to.
func (sp Span) windows(ref time.Time) (cur, prev core.Window) {
	if sp.custom() {
		cur = period.Between(sp.Start, sp.End)
		return cur, period.PreviousOf(cur)
	}
	return period.Resolve(sp.Range, ref), period.Previous(sp.Range, ref)
}

// Window is the span's current window at ref.
func (sp Span) Window(ref time.Time) core.Window {
	cur, _ := sp.windows(ref)
	return cur
}

func (sp Span) key() string {
	if sp.custom() {
		return string(sp.Range) + ":" + strconv.FormatInt(sp.Start.UnixMilli(), 10) + "-" + strconv.FormatInt(sp.End.UnixMilli(), 10)
	}
	return string(sp.Range)
}

// Stats is the statistics card data for one span.
type Stats struct {
	Range    period.Range                       `json:"range"`
	Window   core.Window                        `json:"window"`
	Previous core.Window                        `json:"previous"`
	Totals   core.Totals                        `json:"totals"`
	Changes  map[core.Metric]*core.PeriodChange `json:"changes"`
}

// cached serves a view from the cache, computing it once per key when
// several callers miss at the same time. Cached values are shared and must
// not be modified by callers.
func cached[T any](s *LedgerService, key string, compute func() T) T {
	if v, ok := s.views.Get(key); ok {
		if t, ok := v.(T); ok {
			return t
		}
	}
	v, _, _ := s.group.Do(key, func() (any, error) {
		out := compute()
		s.views.Set(key, out)
		return out, nil
	})
	return v.(T)
}

// viewKey keys a view by store version and by its exact reference instant
// at millisecond precision, the resolution windows are computed at.
func (s *LedgerService) viewKey(view string, ref time.Time, params ...string) string {
	at := strconv.FormatInt(ref.UnixMilli(), 10)
	return cache.ViewKey(s.store.Version(), view, append([]string{at, ref.Location().String()}, params...)...)
}

// Stats totals the span and compares each metric with the previous span.
func (s *LedgerService) Stats(sp Span, at time.Time) Stats {
	ref := s.ref(at)
	return cached(s, s.viewKey("stats", ref, sp.key()), func() Stats {
		cur, prev := sp.windows(ref)
		txs := s.store.Transactions()
		inCur := aggregate.FilterByWindow(txs, cur)
		inPrev := aggregate.FilterByWindow(txs, prev)

		changes := make(map[core.Metric]*core.PeriodChange, 3)
		for _, m := range []core.Metric{core.MetricBalance, core.MetricIncome, core.MetricExpense} {
			changes[m] = aggregate.Change(inCur, inPrev, m)
		}
		return Stats{
			Range:    sp.Range,
			Window:   cur,
			Previous: prev,
			Totals:   aggregate.Summarize(inCur),
			Changes:  changes,
		}
	})
}

// Trend is the per-bucket income and expense series for g.
func (s *LedgerService) Trend(g trend.Granularity, at time.Time) []core.TrendPoint {
	ref := s.ref(at)
	return cached(s, s.viewKey("trend", ref, string(g)), func() []core.TrendPoint {
		return trend.Build(g, s.store.Transactions(), ref)
	})
}

// BalanceTrend is the cumulative balance series for g.
func (s *LedgerService) BalanceTrend(g trend.Granularity, at time.Time) []core.BalancePoint {
	ref := s.ref(at)
	return cached(s, s.viewKey("balance", ref, string(g)), func() []core.BalancePoint {
		return trend.BuildBalance(g, s.store.Transactions(), ref)
	})
}

// Breakdown is the per-category total of type t over the span.
func (s *LedgerService) Breakdown(t core.TxType, sp Span, at time.Time) []core.CategoryAmount {
	ref := s.ref(at)
	return cached(s, s.viewKey("breakdown", ref, string(t), sp.key()), func() []core.CategoryAmount {
		cur, _ := sp.windows(ref)
		return trend.Shares(s.store.Transactions(), s.store.Categories(), t, cur)
	})
}

// Radar is the expense radar over the span.
func (s *LedgerService) Radar(sp Span, at time.Time) []core.RadarPoint {
	ref := s.ref(at)
	return cached(s, s.viewKey("radar", ref, sp.key()), func() []core.RadarPoint {
		cur, _ := sp.windows(ref)
		return trend.Radar(s.store.Transactions(), s.store.Categories(), cur)
	})
}

// BudgetStatuses evaluates every budget against its current period.
func (s *LedgerService) BudgetStatuses(at time.Time) []core.BudgetStatus {
	ref := s.ref(at)
	return cached(s, s.viewKey("budgets", ref), func() []core.BudgetStatus {
		return s.evaluator.Statuses(ref)
	})
}

// BudgetStatus evaluates one budget.
func (s *LedgerService) BudgetStatus(id string, at time.Time) (core.BudgetStatus, bool) {
	b, ok := s.store.Budget(id)
	if !ok {
		return core.BudgetStatus{}, false
	}
	return budget.Status(b, s.store.Transactions(), s.ref(at)), true
}

// BudgetOverview sums every budget's amount and spending.
func (s *LedgerService) BudgetOverview(at time.Time) core.BudgetOverview {
	return budget.OverviewOf(s.BudgetStatuses(at))
}

// Transactions lists transactions matching q.
func (s *LedgerService) Transactions(q aggregate.Query) []core.Transaction {
	return aggregate.Select(s.store.Transactions(), q, s.store.Category)
}

func (s *LedgerService) Transaction(id string) (core.Transaction, bool) {
	return s.store.Transaction(id)
}

func (s *LedgerService) Categories() []core.Category {
	return s.store.Categories()
}

// CategoriesOf lists the categories of type t.
func (s *LedgerService) CategoriesOf(t core.TxType) []core.Category {
	var out []core.Category
	for _, c := range s.store.Categories() {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

func (s *LedgerService) Budgets() []core.Budget {
	return s.store.Budgets()
}

// CacheStats reports view cache effectiveness.
func (s *LedgerService) CacheStats() cache.Stats {
	return s.views.Stats()
}
