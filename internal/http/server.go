package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"wealthflow/internal/cache"
	applog "wealthflow/internal/log"
	"wealthflow/internal/middleware/ratelimit"
	"wealthflow/internal/middleware/security"
	"wealthflow/internal/middleware/trace"
	"wealthflow/internal/services"
	"wealthflow/internal/storage"
	appweb "wealthflow/web"
)

// Deps are the collaborators the server renders and mutates.
type Deps struct {
	Finance    *services.FinanceService
	Insights   *services.InsightService
	Categories *services.CategoryService

	// Optional.
	Caches *cache.Manager
	Store  storage.Pinger
	Logger *applog.Logger

	AIEnabled          bool
	RateLimitPerMinute int
}

// Server wraps http.Server with the application's handlers and middleware.
type Server struct {
	http.Server

	templates  *template.Template
	logger     *applog.Logger
	structured *applog.StructuredLogger

	finance    *services.FinanceService
	insights   *services.InsightService
	categories *services.CategoryService
	caches     *cache.Manager
	store      storage.Pinger
	aiEnabled  bool

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware

	metrics      appMetrics
	shutdownOnce sync.Once
}

type appMetrics struct {
	started     time.Time
	mutations   int64
	rejected    int64
	suggestions int64
}

// NewServer parses the embedded templates and wires routes and middleware.
func NewServer(addr string, deps Deps) (*Server, error) {
	if deps.Finance == nil || deps.Insights == nil || deps.Categories == nil {
		return nil, errors.New("http server requires finance, insight and category services")
	}
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		templates:  templates,
		logger:     logger,
		structured: applog.NewStructuredLogger(logger),
		finance:    deps.Finance,
		insights:   deps.Insights,
		categories: deps.Categories,
		caches:     deps.Caches,
		store:      deps.Store,
		aiEnabled:  deps.AIEnabled,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RateLimitPerMinute,
		}),
		detector: security.NewDetector(),
		metrics:  appMetrics{started: time.Now()},
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, s.logCompleted)

	router, err := s.routes()
	if err != nil {
		s.rateLimiter.Stop()
		return nil, err
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Insight refreshes wait for the advisor.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

func parseTemplates() (*template.Template, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"toneClass": toneClass,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

func (s *Server) routes() (*mux.Router, error) {
	r := mux.NewRouter()

	r.Use(
		s.tracer.Middleware,
		applog.Middleware(s.logger),
		applog.RequestIDMiddleware(trace.RequestID),
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
		s.detector.Middleware(s.logger.Logger),
		s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit,
			http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete),
	)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	r.PathPrefix("/static/").Handler(
		security.StaticAssetMiddleware(3600)(http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	// Dashboard and HTMX partials.
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	ui := r.PathPrefix("/ui").Subrouter()
	ui.HandleFunc("/summary", s.handlePartial("summary", s.summaryData)).Methods(http.MethodGet)
	ui.HandleFunc("/transactions", s.handlePartial("transactions", s.transactionsData)).Methods(http.MethodGet)
	ui.HandleFunc("/goals", s.handlePartial("goals", s.goalsData)).Methods(http.MethodGet)
	ui.HandleFunc("/chart", s.handlePartial("chart", s.chartData)).Methods(http.MethodGet)
	ui.HandleFunc("/insight", s.handlePartial("insight", s.insightData)).Methods(http.MethodGet)

	r.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	r.HandleFunc("/transactions/suggest-category", s.handleSuggestCategory).Methods(http.MethodPost)
	r.HandleFunc("/transactions/{id}", s.handleDeleteTransaction).Methods(http.MethodDelete)
	r.HandleFunc("/goals", s.handleCreateGoal).Methods(http.MethodPost)
	r.HandleFunc("/goals/{id}/deposit", s.handleDepositGoal).Methods(http.MethodPost)
	r.HandleFunc("/goals/{id}", s.handleDeleteGoal).Methods(http.MethodDelete)
	r.HandleFunc("/settings", s.handleUpdateSettings).Methods(http.MethodPost)
	r.HandleFunc("/insight/refresh", s.handleRefreshInsight).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.apiGetState).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.apiListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.apiCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", s.apiDeleteTransaction).Methods(http.MethodDelete)
	api.HandleFunc("/goals", s.apiListGoals).Methods(http.MethodGet)
	api.HandleFunc("/goals", s.apiCreateGoal).Methods(http.MethodPost)
	api.HandleFunc("/goals/{id}", s.apiUpdateGoal).Methods(http.MethodPatch)
	api.HandleFunc("/goals/{id}", s.apiDeleteGoal).Methods(http.MethodDelete)
	api.HandleFunc("/settings", s.apiGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.apiUpdateSettings).Methods(http.MethodPut)
	api.HandleFunc("/insight", s.apiGetInsight).Methods(http.MethodGet)
	api.HandleFunc("/insight/refresh", s.apiRefreshInsight).Methods(http.MethodPost)
	api.HandleFunc("/categories/suggest", s.apiSuggestCategory).Methods(http.MethodPost)

	return r, nil
}

func (s *Server) logCompleted(c trace.Completed) {
	s.structured.LogHTTPEnd(c.Request.Context(), c.Request, c.StatusCode,
		c.Duration.Milliseconds(), c.ClientIP, trace.RequestID(c.Request))
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)

	if isAPI(r) {
		writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again shortly.").Write(w)
}

// Shutdown stops background helpers and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
