package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/GodofWar9000/tele-triage/internal/api/middleware"
	"github.com/GodofWar9000/tele-triage/internal/domain"
	"github.com/GodofWar9000/tele-triage/internal/service"
)

// ReviewerHeader identifies the clinician making a request.
const ReviewerHeader = "X-Reviewer-ID"

// VerdictRequest is the body of POST /api/v1/triage/{identity}/verdict.
type VerdictRequest struct {
	Code string `json:"code"`
}

// TriageHandler serves the reviewer-facing endpoints.
type TriageHandler struct {
	svc    *service.TriageService
	logger *zap.Logger
}

func NewTriageHandler(svc *service.TriageService, logger *zap.Logger) *TriageHandler {
	return &TriageHandler{svc: svc, logger: logger}
}

// Next handles GET /api/v1/triage/next
//
// @Summary  Take (or re-read) the case held by this reviewer
// @Tags     triage
// @Produce  json
// @Param    X-Reviewer-ID  header    string  true  "Reviewer ID"
// @Success  200            {object}  domain.Record
// @Success  204            "No cases waiting"
// @Failure  400            {object}  map[string]string
// @Router   /api/v1/triage/next [get]
func (h *TriageHandler) Next(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.NextCase(r.Context(), r.Header.Get(ReviewerHeader))
	if errors.Is(err, domain.ErrNoCases) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// Verdict handles POST /api/v1/triage/{identity}/verdict
//
// @Summary  Issue a disposition for the held case
// @Tags     triage
// @Accept   json
// @Produce  json
// @Param    X-Reviewer-ID  header    string          true  "Reviewer ID"
// @Param    identity       path      string          true  "Case identity (sender phone number)"
// @Param    body           body      VerdictRequest  true  "Disposition code"
// @Success  202            {object}  map[string]string  "Dispatched for follow-up"
// @Success  200            {object}  map[string]string  "Unknown code: case requeued"
// @Failure  409            {object}  map[string]string
// @Router   /api/v1/triage/{identity}/verdict [post]
func (h *TriageHandler) Verdict(w http.ResponseWriter, r *http.Request) {
	var req VerdictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	identity := chi.URLParam(r, "identity")
	dispatched, err := h.svc.Verdict(r.Context(), r.Header.Get(ReviewerHeader), identity, req.Code)
	if err != nil {
		h.logger.Warn("verdict failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	if dispatched {
		respondJSON(w, http.StatusAccepted, map[string]string{"status": "dispatched"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "requeued"})
}

// Requeue handles POST /api/v1/triage/{identity}/requeue
//
// @Summary  Return the held case to the front of the review queue
// @Tags     triage
// @Param    X-Reviewer-ID  header  string  true  "Reviewer ID"
// @Param    identity       path    string  true  "Case identity"
// @Success  200            {object}  map[string]string
// @Failure  409            {object}  map[string]string
// @Router   /api/v1/triage/{identity}/requeue [post]
func (h *TriageHandler) Requeue(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Requeue(r.Context(), r.Header.Get(ReviewerHeader), chi.URLParam(r, "identity"))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "requeued"})
}

// Dispositions handles GET /api/v1/triage/dispositions
func (h *TriageHandler) Dispositions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, domain.Dispositions())
}
