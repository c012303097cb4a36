// Package apiserver is the JSON backend the web client talks to: expense
// CRUD plus a computed summary under /api.
package apiserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

// ExpenseService is what the handlers need from services.ExpenseService.
type ExpenseService interface {
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	UpdateExpense(ctx context.Context, id int64, e core.Expense) (core.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	Summary(ctx context.Context) (core.Summary, error)
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	CORSOrigins []string
	Logger      *log.Logger
}

func NewRouter(svc ExpenseService, cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentAPI)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(log.Middleware(logger))
	r.Use(log.RequestIDMiddleware(func(r *http.Request) string {
		return chimw.GetReqID(r.Context())
	}))
	r.Use(requestLogging)
	r.Use(CORSMiddleware(cfg.CORSOrigins))

	h := &handlers{svc: svc}

	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/expenses", h.listExpenses)
		r.Post("/expenses", h.createExpense)
		r.Put("/expenses/{id}", h.updateExpense)
		r.Delete("/expenses/{id}", h.deleteExpense)
		r.Get("/summary", h.summary)
	})

	return r
}

func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log.LogHTTPEnd(r.Context(), r, status, time.Since(start).Milliseconds(), r.RemoteAddr)
	})
}
