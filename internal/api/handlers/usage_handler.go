package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"frontdesk/internal/api/middleware"
	"frontdesk/internal/engine/usage"
	"frontdesk/internal/pkg/errors"
)

type UsageHandler struct {
	svc *usage.Service
}

func NewUsageHandler(svc *usage.Service) *UsageHandler {
	return &UsageHandler{svc: svc}
}

// Summary handles GET /api/v1/usage. Defaults to the last 30 days.
func (h *UsageHandler) Summary(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)
	since := queryInt64(r, "since", time.Now().Unix()-30*86400)

	summary, err := h.svc.Summary(org.ID, since)
	if err != nil {
		log.Error().Err(err).Str("organization_id", org.ID).Msg("failed to summarize usage")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"summary":       summary,
		"balance_cents": org.BalanceCents,
	})
}

func (h *UsageHandler) Events(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)
	since := queryInt64(r, "since", time.Now().Unix()-30*86400)

	events, err := h.svc.Events(org.ID, since, queryInt(r, "limit", 100))
	if err != nil {
		log.Error().Err(err).Str("organization_id", org.ID).Msg("failed to list usage events")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error")
		return
	}
	if events == nil {
		events = []*usage.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}
