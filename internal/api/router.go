package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GodofWar9000/tele-triage/internal/api/handler"
	apimw "github.com/GodofWar9000/tele-triage/internal/api/middleware"
	"github.com/GodofWar9000/tele-triage/internal/queue"
	"github.com/GodofWar9000/tele-triage/internal/service"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
// db may be nil when the service runs without Postgres.
func NewRouter(
	svc *service.TriageService,
	q *queue.Coordinator,
	workers handler.WorkerStats,
	db handler.Pinger,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)            // recover panics, return 500
	r.Use(chimw.RealIP)               // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1 << 20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)        // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	sh := handler.NewSMSHandler(svc, logger)
	th := handler.NewTriageHandler(svc, logger)
	oh := handler.NewOutcomeHandler(svc)
	mh := handler.NewMetricsHandler(q, svc, workers)
	hh := handler.NewHealthHandler(db)

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Inbound SMS webhook, called by the provider.
	r.Post("/sms", sh.Inbound)

	r.Route("/api/v1", func(r chi.Router) {
		// Reviewer workflow. Static segments are registered before
		// /{identity} so chi does not treat "next" as an identity.
		r.Get("/triage/next", th.Next)
		r.Get("/triage/dispositions", th.Dispositions)
		r.Post("/triage/{identity}/verdict", th.Verdict)
		r.Post("/triage/{identity}/requeue", th.Requeue)

		// Journal of finished cases
		r.Get("/cases/outcomes", oh.List)

		// JSON metrics snapshot
		r.Get("/metrics", mh.GetMetrics)
	})

	return r
}
