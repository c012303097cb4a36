package http

import (
	"context"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"expensetracker/internal/controller"
	"expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/notify"
	"expensetracker/internal/view"
)

// Controller is what the handlers need from *controller.Controller.
type Controller interface {
	Model() view.Model
	Initialize(ctx context.Context) error
	Refresh(ctx context.Context) error
	CreateExpense(ctx context.Context, form view.FormState) error
	UpdateExpense(ctx context.Context, id int64, form view.FormState) error
	DeleteExpense(ctx context.Context, id int64, confirmer controller.Confirmer) (bool, error)
}

// Notifier lets the server post its own messages (rate limiting) next to
// the controller's.
type Notifier interface {
	Show(sev notify.Severity, message string) string
}

const MsgRateLimited = "Too many requests. Please wait a moment."

type Config struct {
	Addr string
	// Static is served under /static/. Nil disables static files.
	Static fs.FS
	// Ready reports whether the backend API is reachable. Nil means always ready.
	Ready              func(ctx context.Context) error
	RateLimitPerMinute int
	NotifyDuration     time.Duration
	Logger             *log.Logger
}

type Server struct {
	http.Server

	ctrl     Controller
	notifier Notifier
	renderer *view.Renderer
	limiter  *ratelimit.Limiter
	detector *security.Detector
	ready    func(ctx context.Context) error
	logger   *log.Logger

	notifyDuration time.Duration
	shutdownOnce   sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(cfg Config, ctrl Controller, notifier Notifier, renderer *view.Renderer) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	if cfg.NotifyDuration <= 0 {
		cfg.NotifyDuration = notify.DefaultDuration
	}

	s := &Server{
		ctrl:     ctrl,
		notifier: notifier,
		renderer: renderer,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
			Logger:            logger,
		}),
		detector:       security.NewDetector(),
		ready:          cfg.Ready,
		logger:         logger,
		notifyDuration: cfg.NotifyDuration,
	}

	mux := http.NewServeMux()

	if cfg.Static != nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(cfg.Static)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("PUT /expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("POST /expenses/{id}/delete", s.handleDeleteExpense)

	// UI partials
	mux.HandleFunc("GET /ui/expenses", s.handleListPartial)
	mux.HandleFunc("GET /ui/summary", s.handleSummaryPartial)
	mux.HandleFunc("GET /ui/form", s.handleFormPartial)
	mux.HandleFunc("GET /ui/notifications", s.handleNotificationsPartial)
	mux.HandleFunc("POST /ui/refresh", s.handleRefresh)

	tracer := trace.NewMiddleware(logger, s.detector.ExtractClientIP,
		trace.WithQuietPaths("/ui/notifications", "/healthz", "/readyz"))
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(handler)
	handler = headers.Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter's cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
