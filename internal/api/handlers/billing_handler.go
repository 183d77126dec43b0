package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"frontdesk/internal/api/middleware"
	"frontdesk/internal/engine/billing"
	"frontdesk/internal/pkg/errors"
)

type BillingHandler struct {
	svc *billing.Service
}

func NewBillingHandler(svc *billing.Service) *BillingHandler {
	return &BillingHandler{svc: svc}
}

// Reload handles POST /api/v1/billing/reload. It opens a payment for a
// balance top-up; the client confirms it and the webhook credits the balance
// once the charge settles.
func (h *BillingHandler) Reload(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	var in struct {
		AmountCents int64 `json:"amount_cents"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}

	intent, err := h.svc.StartReload(org, in.AmountCents)
	if err != nil {
		if stderrors.Is(err, billing.ErrAmountTooSmall) {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Reload amount must be at least 100 cents")
			return
		}
		log.Error().Err(err).Str("organization_id", org.ID).Msg("failed to start balance reload")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"payment_intent_id": intent.ID,
		"client_secret":     intent.ClientSecret,
		"amount_cents":      intent.Amount,
	})
}
