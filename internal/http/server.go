// Package http serves the ledger and its derived views as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"tally/internal/log"
	"tally/internal/middleware/ratelimit"
	"tally/internal/middleware/security"
	"tally/internal/middleware/trace"
	"tally/internal/services"
)

// maxBackupBytes bounds the body of a backup import.
const maxBackupBytes = 16 << 20

// Options configures a Server.
type Options struct {
	RateLimitRPM int
	// Location resolves date-only request values; defaults to time.Local.
	Location *time.Location
	Now      func() time.Time
	Logger   *log.Logger
}

type appMetrics struct {
	startedAt time.Time
}

// Server is an http.Server routing the ledger API.
type Server struct {
	http.Server
	ledger *services.LedgerService

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       appMetrics

	loc    *time.Location
	now    func() time.Time
	logger *log.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger *services.LedgerService, opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		ledger: ledger,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitRPM,
		}),
		securityDetector: security.NewDetector(opts.Logger),
		appMetrics:       appMetrics{startedAt: opts.Now()},
		loc:              opts.Location,
		now:              opts.Now,
		logger:           opts.Logger.WithComponent(log.ComponentHTTP),
	}
	s.traceMiddleware = trace.NewMiddleware(opts.Logger, s.securityDetector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.traceMiddleware.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.securityDetector.Middleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api", func(r chi.Router) {
		r.Use(log.ComponentMiddleware(log.ComponentHTTP))
		r.Use(s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.handleRateLimited))

		// Transactions
		r.Get("/transactions", s.handleListTransactions)
		r.Post("/transactions", s.handleCreateTransaction)
		r.Get("/transactions/{id}", s.handleGetTransaction)
		r.Patch("/transactions/{id}", s.handleUpdateTransaction)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)

		// Categories
		r.Get("/categories", s.handleListCategories)
		r.Post("/categories", s.handleCreateCategory)
		r.Post("/categories/reset", s.handleResetCategories)
		r.Patch("/categories/{id}", s.handleUpdateCategory)
		r.Delete("/categories/{id}", s.handleDeleteCategory)

		// Budgets
		r.Get("/budgets", s.handleListBudgets)
		r.Post("/budgets", s.handleCreateBudget)
		r.Get("/budgets/overview", s.handleBudgetOverview)
		r.Get("/budgets/{id}", s.handleGetBudget)
		r.Patch("/budgets/{id}", s.handleUpdateBudget)
		r.Delete("/budgets/{id}", s.handleDeleteBudget)

		// Dashboard views
		r.Get("/stats", s.handleStats)
		r.Get("/trend", s.handleTrend)
		r.Get("/trend/balance", s.handleBalanceTrend)
		r.Get("/breakdown", s.handleBreakdown)
		r.Get("/radar", s.handleRadar)

		// Data management
		r.Get("/backup", s.handleExportBackup)
		r.Post("/backup", s.handleImportBackup)
		r.Get("/export.csv", s.handleExportCSV)
		r.Post("/demo", s.handleSeedDemo)
		r.Delete("/data", s.handleClearData)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("route not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})
	return r
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
}

// Shutdown stops background routines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
