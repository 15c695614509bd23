package http

import (
	"net/http"
	"strings"

	"github.com/IgorGrieder/linkhub/internal/analytics"
	"github.com/IgorGrieder/linkhub/internal/config"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/telemetry"
	"github.com/IgorGrieder/linkhub/internal/links"
	"github.com/IgorGrieder/linkhub/internal/page"
	"github.com/IgorGrieder/linkhub/internal/profile"
	"github.com/IgorGrieder/linkhub/internal/transport/http/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var spanNames = map[string]string{
	"GET /health":               "health",
	"GET /metrics":              "metrics",
	"GET /api/pages/{username}": "pages.public",
	"GET /api/dashboard":        "pages.dashboard",
	"GET /api/profiles":         "profiles.get",
	"PUT /api/profiles":         "profiles.save",
	"PATCH /api/profiles":       "profiles.update",
	"GET /api/links":            "links.list",
	"POST /api/links":           "links.create",
	"PATCH /api/links/{id}":     "links.update",
	"DELETE /api/links/{id}":    "links.delete",
	"PUT /api/links/order":      "links.reorder",
	"POST /api/links/batch":     "links.batch",
	"POST /api/events/visit":    "events.visit",
	"POST /api/events/click":    "events.click",
	"GET /api/stats":            "stats.get",
}

// Services are the dependencies the gateway routes to.
type Services struct {
	Composer *page.Composer
	Profiles *profile.Service
	Links    *links.Service
	Tracker  *analytics.Tracker
	// EventLimiter guards the beacon endpoints. Nil disables limiting.
	EventLimiter middleware.Limiter
	// HealthChecks are probed by GET /health.
	HealthChecks map[string]Pinger
}

type RouterOptions struct {
	EnableCORS    bool
	EnableLogging bool
	EnableMetrics bool
}

func DefaultRouterOptions() RouterOptions {
	return RouterOptions{
		EnableCORS:    true,
		EnableLogging: true,
		EnableMetrics: true,
	}
}

func NewRouter(cfg *config.Config, svc Services) http.Handler {
	return NewRouterWithOptions(cfg, svc, DefaultRouterOptions())
}

func NewRouterWithOptions(cfg *config.Config, svc Services, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	healthHandler := NewHealthHandler(svc.HealthChecks)
	pagesHandler := NewPagesHandler(svc.Composer, svc.Tracker)
	profilesHandler := NewProfilesHandler(svc.Profiles)
	linksHandler := NewLinksHandler(svc.Links)
	eventsHandler := NewEventsHandler(svc.Tracker)

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", healthHandler.Metrics())

	mux.HandleFunc("GET /api/pages/{username}", pagesHandler.Public)

	owner := []func(http.Handler) http.Handler{
		middleware.APIKeyMiddleware(cfg.Security.APIKeys),
	}
	guarded := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, owner...)
	}

	mux.Handle("GET /api/dashboard", guarded(pagesHandler.Dashboard))
	mux.Handle("GET /api/stats", guarded(eventsHandler.Stats))

	mux.Handle("GET /api/profiles", guarded(profilesHandler.Get))
	mux.Handle("PUT /api/profiles", guarded(profilesHandler.Save))
	mux.Handle("PATCH /api/profiles", guarded(profilesHandler.Update))

	mux.Handle("GET /api/links", guarded(linksHandler.List))
	mux.Handle("POST /api/links", guarded(linksHandler.Create))
	mux.Handle("PUT /api/links/order", guarded(linksHandler.Reorder))
	mux.Handle("POST /api/links/batch", guarded(linksHandler.Batch))
	mux.Handle("PATCH /api/links/{id}", guarded(linksHandler.Update))
	mux.Handle("DELETE /api/links/{id}", guarded(linksHandler.Delete))

	var beacon []func(http.Handler) http.Handler
	if svc.EventLimiter != nil {
		beacon = append(beacon, middleware.RateLimitMiddleware(svc.EventLimiter))
	}
	mux.Handle("POST /api/events/visit", middleware.Chain(http.HandlerFunc(eventsHandler.Visit), beacon...))
	mux.Handle("POST /api/events/click", middleware.Chain(http.HandlerFunc(eventsHandler.Click), beacon...))

	var innerHandler http.Handler = middleware.ClientIPMiddleware(mux)
	if opts.EnableCORS {
		innerHandler = middleware.CORSMiddleware(cfg.Security.AllowedOrigins)(innerHandler)
	}
	if opts.EnableLogging {
		innerHandler = middleware.LoggingMiddleware(innerHandler)
	}
	if opts.EnableMetrics {
		innerHandler = middleware.MetricsMiddleware(innerHandler)
	}

	otelOptions := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			key := r.Method + " " + r.Pattern
			if name, ok := spanNames[key]; ok {
				return name
			}
			if r.Pattern != "" {
				return r.Pattern
			}
			path := strings.TrimSpace(r.URL.Path)
			if path == "" {
				path = "/"
			}
			return path
		}),
	}

	if telemetry.TracerProvider != nil {
		otelOptions = append(otelOptions, otelhttp.WithTracerProvider(telemetry.TracerProvider))
	}

	return otelhttp.NewHandler(innerHandler, cfg.App.Name, otelOptions...)
}
