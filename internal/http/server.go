package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"expensetracker/internal/cache"
	"expensetracker/internal/charts"
	applog "expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/services"
)

const (
	chartCacheSize = 32
	chartCacheTTL  = 10 * time.Minute
	readTimeout    = 15 * time.Second
	writeTimeout   = 30 * time.Second
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the base logger; requests log through a child carrying the request id.
func WithLogger(l *applog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRateLimit limits mutating requests per client IP. Zero disables limiting.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) { s.rateLimitPerMinute = perMinute }
}

// Server exposes the expense API over HTTP.
type Server struct {
	http.Server
	svc    *services.ExpenseService
	logger *applog.Logger
	charts *charts.Generator

	// Rendered PNGs keyed by year and summary content.
	chartCache   *cache.LRUCache[[]byte]
	cacheManager *cache.Manager

	rateLimitPerMinute int
	rateLimiter        *ratelimit.Limiter
	securityDetector   *security.Detector
	traceMiddleware    *trace.Middleware

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *services.ExpenseService, opts ...Option) *Server {
	s := &Server{
		svc:        svc,
		charts:     charts.NewGenerator(),
		chartCache: cache.NewLRUCache[[]byte](chartCacheSize, chartCacheTTL),
		startedAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = applog.New(applog.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(applog.ComponentHTTP)

	s.cacheManager = cache.NewManager(s.logger)
	s.cacheManager.Register(s.chartCache)
	s.cacheManager.StartCleanup(chartCacheTTL)

	s.securityDetector = security.NewDetector()
	s.traceMiddleware = trace.NewMiddleware(s.logger, s.securityDetector.ExtractClientIP)
	if s.rateLimitPerMinute > 0 {
		cfg := ratelimit.DefaultConfig()
		cfg.RequestsPerMinute = s.rateLimitPerMinute
		s.rateLimiter = ratelimit.NewLimiter(cfg)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /expenses", s.handleListExpenses)
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /expenses/summary/by-category", s.handleSummaryByCategory)
	mux.HandleFunc("GET /expenses/summary/monthly", s.handleMonthlySummary)
	mux.HandleFunc("GET /expenses/summary/monthly.png", s.handleMonthlyChart)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      s.middleware(mux),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

// middleware wraps h so that tracing runs first and rate limiting last.
func (s *Server) middleware(h http.Handler) http.Handler {
	if s.rateLimiter != nil {
		h = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimited)(h)
	}
	h = s.securityDetector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	return s.traceMiddleware.Middleware(h)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
