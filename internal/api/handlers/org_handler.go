package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"frontdesk/internal/api/middleware"
	"frontdesk/internal/pkg/errors"
	"frontdesk/internal/pkg/validator"
	"frontdesk/internal/platform/repositories"
)

type OrgHandler struct {
	orgs *repositories.OrganizationRepository
}

func NewOrgHandler(orgs *repositories.OrganizationRepository) *OrgHandler {
	return &OrgHandler{orgs: orgs}
}

func (h *OrgHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.OrgFrom(r))
}

// Update handles PATCH /api/v1/org. Only the fields present in the body
// change.
func (h *OrgHandler) Update(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	var in struct {
		Name                     *string `json:"name"`
		PhoneNumber              *string `json:"phone_number"`
		AutoReloadEnabled        *bool   `json:"auto_reload_enabled"`
		AutoReloadThresholdCents *int64  `json:"auto_reload_threshold_cents"`
		AutoReloadAmountCents    *int64  `json:"auto_reload_amount_cents"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}

	if in.Name != nil {
		if *in.Name == "" {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Name cannot be empty")
			return
		}
		org.Name = *in.Name
	}
	if in.PhoneNumber != nil {
		phone, err := validator.NormalizePhone(*in.PhoneNumber)
		if err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid phone number")
			return
		}
		org.PhoneNumber = &phone
	}
	if in.AutoReloadThresholdCents != nil {
		if *in.AutoReloadThresholdCents < 0 {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Auto-reload threshold cannot be negative")
			return
		}
		org.AutoReloadThresholdCents = *in.AutoReloadThresholdCents
	}
	if in.AutoReloadAmountCents != nil {
		org.AutoReloadAmountCents = *in.AutoReloadAmountCents
	}
	if in.AutoReloadEnabled != nil {
		org.AutoReloadEnabled = *in.AutoReloadEnabled
	}

	if org.AutoReloadEnabled && org.AutoReloadAmountCents < 100 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Auto-reload amount must be at least 100 cents")
		return
	}

	if err := h.orgs.UpdateSettings(org); err != nil {
		log.Error().Err(err).Str("organization_id", org.ID).Msg("failed to update organization")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, org)
}
