package handler

import (
	"net/http"

	"github.com/GodofWar9000/tele-triage/internal/queue"
	"github.com/GodofWar9000/tele-triage/internal/service"
)

// WorkerStats reports pool occupancy. *worker.Pool satisfies it.
type WorkerStats interface {
	Size() int
	Busy() int
}

// MetricsHandler serves a human-readable JSON queue snapshot.
// Raw Prometheus metrics (counters, histograms) are available at /metrics
// via promhttp.Handler and are separate from this endpoint.
type MetricsHandler struct {
	q       *queue.Coordinator
	svc     *service.TriageService
	workers WorkerStats
}

func NewMetricsHandler(q *queue.Coordinator, svc *service.TriageService, workers WorkerStats) *MetricsHandler {
	return &MetricsHandler{q: q, svc: svc, workers: workers}
}

// GetMetrics handles GET /api/v1/metrics
//
// @Summary  Real-time queue depth snapshot
// @Tags     metrics
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/metrics [get]
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	intake, dispatch := h.q.Depths()
	respondJSON(w, http.StatusOK, map[string]any{
		"queue_depth": map[string]int{
			"intake":   intake,
			"dispatch": dispatch,
		},
		"cases_held": h.svc.Held(),
		"workers": map[string]int{
			"size": h.workers.Size(),
			"busy": h.workers.Busy(),
		},
	})
}
