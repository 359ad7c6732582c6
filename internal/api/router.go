package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/predmarket/platform/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Deposit limits
	GetDepositLimits http.HandlerFunc
	SetDepositLimits http.HandlerFunc
	RecordBet        http.HandlerFunc

	// Self-assessment
	AssessmentQuestions http.HandlerFunc
	SubmitAssessment    http.HandlerFunc
	AssessmentHistory   http.HandlerFunc

	// Time-outs
	StartTimeOut     http.HandlerFunc
	GetActiveTimeOut http.HandlerFunc
	CancelTimeOut    http.HandlerFunc

	ListAuditLogs http.HandlerFunc

	AuthMiddleware func(http.Handler) http.Handler
}

// HealthCheck is one dependency probed by the readiness endpoint. A nil
// Check reports the dependency as not configured.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	APIRateLimiter     func(http.Handler) http.Handler
	WagerRateLimiter   func(http.Handler) http.Handler
	HealthChecks       []HealthCheck
}

const readinessTimeout = 2 * time.Second

func NewRouter(cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe: always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		health := map[string]string{"status": "healthy"}
		status := http.StatusOK

		for _, hc := range cfg.HealthChecks {
			switch {
			case hc.Check == nil:
				health[hc.Name] = "not configured"
			case hc.Check(ctx) != nil:
				health[hc.Name] = "unhealthy"
				health["status"] = "degraded"
				status = http.StatusServiceUnavailable
			default:
				health[hc.Name] = "healthy"
			}
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.APIRateLimiter != nil {
			r.Use(cfg.APIRateLimiter)
		}

		r.Route("/responsible-gambling", func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Get("/deposit-limits", h.GetDepositLimits)
			r.Post("/deposit-limits", h.SetDepositLimits)

			r.Group(func(r chi.Router) {
				if cfg.WagerRateLimiter != nil {
					r.Use(cfg.WagerRateLimiter)
				}
				r.Post("/record-bet", h.RecordBet)
			})

			r.Route("/self-assessment", func(r chi.Router) {
				r.Get("/questions", h.AssessmentQuestions)
				r.Post("/", h.SubmitAssessment)
				r.Get("/history", h.AssessmentHistory)
			})

			r.Route("/time-outs", func(r chi.Router) {
				r.Post("/", h.StartTimeOut)
				r.Get("/active", h.GetActiveTimeOut)
				r.Delete("/active", h.CancelTimeOut)
			})

			r.Get("/audit", h.ListAuditLogs)
		})
	})

	return r
}
