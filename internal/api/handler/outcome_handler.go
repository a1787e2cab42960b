package handler

import (
	"net/http"
	"strconv"

	"github.com/GodofWar9000/tele-triage/internal/service"
)

// OutcomeHandler exposes the journal of finished cases.
type OutcomeHandler struct {
	svc *service.TriageService
}

func NewOutcomeHandler(svc *service.TriageService) *OutcomeHandler {
	return &OutcomeHandler{svc: svc}
}

// List handles GET /api/v1/cases/outcomes
//
// @Summary  Recently finished cases, newest first
// @Tags     cases
// @Produce  json
// @Param    limit  query     int  false  "Max results (default 50, max 500)"
// @Success  200    {array}   domain.CaseOutcome
// @Router   /api/v1/cases/outcomes [get]
func (h *OutcomeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	outcomes, err := h.svc.Outcomes(r.Context(), limit)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, outcomes)
}
