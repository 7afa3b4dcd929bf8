package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	mw "github.com/kiranshivaraju/voicedesk/internal/api/middleware"
	"github.com/kiranshivaraju/voicedesk/internal/api/response"
	"github.com/kiranshivaraju/voicedesk/internal/observability/metrics"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit          *mw.RateLimit
	HTTPMetrics        *metrics.HTTPMetrics
	CORSAllowedOrigins []string

	MetricsHandler   http.Handler
	HealthHandler    http.HandlerFunc
	StartHandler     http.HandlerFunc
	STTHandler       http.HandlerFunc
	AnalyzeHandler   http.HandlerFunc
	ConfirmHandler   http.HandlerFunc
	FinalizeHandler  http.HandlerFunc
	ComplaintHandler http.HandlerFunc
	ListLogsHandler  http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(mw.CORS(deps.CORSAllowedOrigins))
	r.Use(mw.Metrics(deps.HTTPMetrics))

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Get("/api/v1/logs", orNotImplemented(deps.ListLogsHandler))

	// Conversation routes are rate limited per client address.
	r.Route("/api/v1/conversations", func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.Post("/start", orNotImplemented(deps.StartHandler))
		r.Post("/{sessionID}/stt", orNotImplemented(deps.STTHandler))
		r.Post("/{sessionID}/analyze", orNotImplemented(deps.AnalyzeHandler))
		r.Post("/{sessionID}/confirm", orNotImplemented(deps.ConfirmHandler))
		r.Post("/{sessionID}/finalize", orNotImplemented(deps.FinalizeHandler))
		r.Get("/{sessionID}/complaint", orNotImplemented(deps.ComplaintHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented")
	}
}
