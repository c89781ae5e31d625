package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"vslim/internal/core"
	"vslim/internal/ledger"
	applog "vslim/internal/log"
	"vslim/internal/metrics"
	"vslim/internal/middleware/ratelimit"
	"vslim/internal/middleware/security"
	"vslim/internal/middleware/trace"
	"vslim/internal/resolve"
	"vslim/internal/services"
)

// ChatHandler runs one conversation turn.
type ChatHandler interface {
	HandleTurn(ctx context.Context, conversationID, utterance string) (services.TurnResult, error)
}

// Pinger is a dependency that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the server routes to.
type Deps struct {
	Chat    ChatHandler
	Store   ledger.Store
	Metrics *metrics.Metrics
	Logger  *applog.Logger

	// Readiness lists named dependencies checked by /readyz.
	Readiness map[string]Pinger

	RateLimitPerMinute int
}

type Server struct {
	http.Server
	chat      ChatHandler
	store     ledger.Store
	metrics   *metrics.Metrics
	logger    *applog.Logger
	readiness map[string]Pinger
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	today     func() core.Date
	started   time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		chat:      deps.Chat,
		store:     deps.Store,
		metrics:   deps.Metrics,
		logger:    logger.WithComponent(applog.ComponentHTTP),
		readiness: deps.Readiness,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		detector:  security.NewDetector(),
		today:     resolve.Today,
		started:   time.Now(),
	}

	api := http.NewServeMux()
	s.handle(api, "POST /v1/chat", s.handleChat)
	s.handle(api, "GET /v1/expense/one/{id}", s.handleGetExpense)
	s.handle(api, "GET /v1/expense/many", s.handleFindExpenses)
	s.handle(api, "POST /v1/expense", s.handleCreateExpenses)
	s.handle(api, "PUT /v1/expense", s.handleUpdateExpenses)
	s.handle(api, "DELETE /v1/expense", s.handleDeleteExpenses)
	s.handle(api, "GET /v1/statistics", s.handleStatistics)
	s.handle(api, "POST /v1/test/date", s.handleTestDate)
	s.handle(api, "POST /v1/test/price", s.handleTestPrice)

	mux := http.NewServeMux()
	mux.Handle("/v1/", s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(api))
	s.handle(mux, "GET /healthz", s.handleHealth)
	s.handle(mux, "GET /readyz", s.handleReady)
	if s.metrics != nil {
		s.handle(mux, "GET /metrics", s.metrics.Handler().ServeHTTP)
	}

	var h http.Handler = mux
	h = s.detector.Middleware(logger)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = applog.Middleware(logger, trace.RequestIDFromRequest)(h)
	h = trace.NewMiddleware(s.detector.ExtractClientIP, s.metrics, logger).Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// handle registers h and labels requests it serves with pattern.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		trace.SetRoute(r.Context(), pattern)
		h(w, r)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	s.respond(w, r, ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded"))
}

// respond writes b and logs write failures.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, b *JSONResponseBuilder) {
	if err := b.Write(w); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to write response",
			applog.FieldError, err, applog.FieldPath, r.URL.Path)
	}
}

// fail logs server-side errors and writes the mapped error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	b := ErrorFrom(err)
	if b.statusCode >= http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldOperation, op, applog.FieldError, err)
	}
	s.respond(w, r, b)
}

// ListenAndServe serves until Shutdown. http.ErrServerClosed is not an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", "addr", s.Addr)
	if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server and the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
