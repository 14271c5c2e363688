package http

import (
	"context"
	"net/http"

	"github.com/go-autoresign/internal/transport/http/handler"
	appmiddleware "github.com/go-autoresign/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds the operator-facing status router.
// The per-IP limiter's cleanup goroutine stops when ctx is cancelled.
func NewRouter(ctx context.Context, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	rl := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)
	r.Use(rl.Limit)

	healthH := handler.NewHealthHandler()
	statusH := handler.NewStatusHandler(deps.Ticks, deps.Interval, deps.Languages)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Get("/status", statusH.Get)
		r.Get("/status/last-tick", statusH.LastTick)
	})
	return r
}
