package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tally/internal/aggregate"
	"tally/internal/core"
	"tally/internal/period"
	"tally/internal/services"
	"tally/internal/trend"
)

// maxBodyBytes bounds ordinary JSON request bodies.
const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// decodeJSON reads one JSON object from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("empty request body")
		}
		return badRequest("invalid JSON: %v", err)
	}
	return nil
}

// parseAmount accepts a JSON number or a string such as "12,50" or "€ 8".
func parseAmount(raw json.RawMessage) (float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, core.ErrInvalidAmount
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, core.ErrInvalidAmount
		}
		return core.ParseAmount(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, core.ErrInvalidAmount
	}
	if err := core.ValidAmount(v); err != nil {
		return 0, err
	}
	return v, nil
}

// parseDate accepts YYYY-MM-DD, read in loc, or an RFC 3339 timestamp.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, badRequest("invalid date %q", s)
	}
	return t, nil
}

// ParseListQuery builds a transaction query from URL parameters: type,
// category, tag, q, sort (date|amount), order (asc|desc) and a span.
func ParseListQuery(query url.Values, loc *time.Location, now time.Time) (aggregate.Query, error) {
	q := aggregate.Query{
		CategoryID: strings.TrimSpace(query.Get("category")),
		Tag:        strings.TrimSpace(query.Get("tag")),
		Search:     sanitizeInput(query.Get("q")),
	}

	if v := strings.TrimSpace(query.Get("type")); v != "" && v != "all" {
		t := core.TxType(v)
		if !t.Valid() {
			return aggregate.Query{}, badRequest("invalid type %q", v)
		}
		q.Type = t
	}

	switch v := strings.TrimSpace(query.Get("sort")); v {
	case "", string(aggregate.SortByDate):
		q.SortBy = aggregate.SortByDate
	case string(aggregate.SortByAmount):
		q.SortBy = aggregate.SortByAmount
	default:
		return aggregate.Query{}, badRequest("invalid sort %q", v)
	}

	switch v := strings.ToLower(strings.TrimSpace(query.Get("order"))); v {
	case "", "desc":
	case "asc":
		q.Ascending = true
	default:
		return aggregate.Query{}, badRequest("invalid order %q", v)
	}

	if query.Get("period") != "" {
		sp, err := ParseSpan(query, loc)
		if err != nil {
			return aggregate.Query{}, err
		}
		w := sp.Window(now.In(loc))
		q.Window = &w
	}
	return q, nil
}

// ParseSpan reads period (today|week|month|year|custom) and, for custom,
// the start and end dates. Unknown periods fall back to month.
func ParseSpan(query url.Values, loc *time.Location) (services.Span, error) {
	sp := services.Span{Range: period.ParseRange(strings.ToLower(strings.TrimSpace(query.Get("period"))))}
	if sp.Range != period.Custom {
		return sp, nil
	}

	start, end := query.Get("start"), query.Get("end")
	if start == "" || end == "" {
		return services.Span{}, badRequest("custom period needs start and end")
	}
	var err error
	if sp.Start, err = parseDate(start, loc); err != nil {
		return services.Span{}, err
	}
	if sp.End, err = parseDate(end, loc); err != nil {
		return services.Span{}, err
	}
	// A bare end date covers that whole day.
	if len(strings.TrimSpace(end)) == len(time.DateOnly) {
		sp.End = period.EndOfDay(sp.End)
	}
	if sp.End.Before(sp.Start) {
		return services.Span{}, badRequest("end is before start")
	}
	return sp, nil
}

// parseMetric defaults to balance.
func parseMetric(s string) (core.Metric, error) {
	if s == "" {
		return core.MetricBalance, nil
	}
	m := core.Metric(strings.ToLower(s))
	if !m.Valid() {
		return "", badRequest("invalid metric %q", s)
	}
	return m, nil
}

// parseTxType defaults to expense.
func parseTxType(s string) (core.TxType, error) {
	if s == "" {
		return core.Expense, nil
	}
	t := core.TxType(strings.ToLower(s))
	if !t.Valid() {
		return "", badRequest("invalid type %q", s)
	}
	return t, nil
}

func parseGranularity(query url.Values) trend.Granularity {
	return trend.ParseGranularity(query.Get("granularity"))
}

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
