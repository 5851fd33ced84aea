package http

import (
	"net/http"
	"strings"
	"time"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/services"
)

// statsResponse is the statistics card for one span, with the change of the
// requested metric pulled out.
type statsResponse struct {
	services.Stats
	Metric core.Metric        `json:"metric"`
	Change *core.PeriodChange `json:"change"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sp, err := ParseSpan(query, s.loc)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	metric, err := parseMetric(strings.TrimSpace(query.Get("metric")))
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}

	stats := s.ledger.Stats(sp, time.Time{})
	OK(w, statsResponse{Stats: stats, Metric: metric, Change: stats.Changes[metric]})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	OK(w, s.ledger.Trend(parseGranularity(r.URL.Query()), time.Time{}))
}

func (s *Server) handleBalanceTrend(w http.ResponseWriter, r *http.Request) {
	OK(w, s.ledger.BalanceTrend(parseGranularity(r.URL.Query()), time.Time{}))
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	t, err := parseTxType(strings.TrimSpace(query.Get("type")))
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	sp, err := ParseSpan(query, s.loc)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}

	out := s.ledger.Breakdown(t, sp, time.Time{})
	if out == nil {
		out = []core.CategoryAmount{}
	}
	OK(w, out)
}

func (s *Server) handleRadar(w http.ResponseWriter, r *http.Request) {
	sp, err := ParseSpan(r.URL.Query(), s.loc)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}

	out := s.ledger.Radar(sp, time.Time{})
	if out == nil {
		out = []core.RadarPoint{}
	}
	OK(w, out)
}
