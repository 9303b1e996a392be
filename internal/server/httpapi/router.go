// Package httpapi serves the admin, health and metrics endpoints over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/BijjaSagar/vashihat-nama/internal/logging"
	"github.com/BijjaSagar/vashihat-nama/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const (
	adminRateLimit = 5
	adminRateBurst = 20
)

type sweeper interface {
	EvaluateOnce(ctx context.Context) (*models.SweepReport, error)
}

type granter interface {
	Grant(ctx context.Context, nomineeID int64) error
}

type adminSvc interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	OTPLogs(ctx context.Context) ([]*models.OTPLog, error)
	Stats(ctx context.Context) (*models.AdminStats, error)
}

type Router struct {
	sweeper     sweeper
	gate        granter
	admin       adminSvc
	adminSecret string
	limiter     *rate.Limiter
	logger      logging.Logger
}

func NewRouter(s sweeper, g granter, a adminSvc, adminSecret string, l logging.Logger) http.Handler {
	r := &Router{
		sweeper:     s,
		gate:        g,
		admin:       a,
		adminSecret: adminSecret,
		limiter:     rate.NewLimiter(rate.Limit(adminRateLimit), adminRateBurst),
		logger:      l.With("module", "http_api"),
	}
	mux := chi.NewRouter()

	mux.Get("/health", r.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	mux.Route("/api/admin", func(ar chi.Router) {
		ar.Use(r.rateLimitMiddleware)
		ar.Use(r.adminMiddleware)
		ar.Post("/trigger_heartbeat_check", r.handleTriggerSweep)
		ar.Post("/nominees/{id}/grant", r.handleGrant)
		ar.Get("/users", r.handleListUsers)
		ar.Get("/otp_logs", r.handleOTPLogs)
		ar.Get("/stats", r.handleStats)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
