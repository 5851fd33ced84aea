package http

import (
	"fmt"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	OK(w, map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.appMetrics.startedAt).Round(time.Second).String(),
	})
}

// handleReady reports whether the ledger is loaded, with cache and rate
// limiter state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	checks := map[string]any{}

	if s.ledger == nil {
		checks["ledger"] = "not_loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["ledger"] = map[string]any{
			"status":  "ok",
			"version": s.ledger.Reader().Version(),
		}
		checks["cache"] = s.ledger.CacheStats()
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics provides request, cache and security counters in plain
// text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()
	cacheStats := s.ledger.CacheStats()
	reader := s.ledger.Reader()

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_response_time_avg_microseconds Average response time\n")
	fmt.Fprintf(w, "# TYPE http_response_time_avg_microseconds gauge\n")
	fmt.Fprintf(w, "http_response_time_avg_microseconds %d\n\n", traceMetrics.AverageResponseTime)

	fmt.Fprintf(w, "# HELP ledger_entries Current ledger entries\n")
	fmt.Fprintf(w, "# TYPE ledger_entries gauge\n")
	fmt.Fprintf(w, "ledger_entries{type=\"transactions\"} %d\n", len(reader.Transactions()))
	fmt.Fprintf(w, "ledger_entries{type=\"categories\"} %d\n", len(reader.Categories()))
	fmt.Fprintf(w, "ledger_entries{type=\"budgets\"} %d\n\n", len(reader.Budgets()))

	fmt.Fprintf(w, "# HELP view_cache_hits_total Total view cache hits\n")
	fmt.Fprintf(w, "# TYPE view_cache_hits_total counter\n")
	fmt.Fprintf(w, "view_cache_hits_total %d\n\n", cacheStats.Hits)

	fmt.Fprintf(w, "# HELP view_cache_misses_total Total view cache misses\n")
	fmt.Fprintf(w, "# TYPE view_cache_misses_total counter\n")
	fmt.Fprintf(w, "view_cache_misses_total %d\n\n", cacheStats.Misses)

	fmt.Fprintf(w, "# HELP view_cache_entries Current view cache entries\n")
	fmt.Fprintf(w, "# TYPE view_cache_entries gauge\n")
	fmt.Fprintf(w, "view_cache_entries %d\n\n", cacheStats.Size)

	fmt.Fprintf(w, "# HELP rate_limit_rejected_total Total requests rejected by the rate limiter\n")
	fmt.Fprintf(w, "# TYPE rate_limit_rejected_total counter\n")
	fmt.Fprintf(w, "rate_limit_rejected_total %d\n\n", rateLimitMetrics.Rejected)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", rateLimitMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", s.now().Sub(s.appMetrics.startedAt).Seconds())
}
