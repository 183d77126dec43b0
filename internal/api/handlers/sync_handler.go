package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/rs/zerolog/log"

	apiContext "frontdesk/internal/api/context"
	"frontdesk/internal/engine/provision"
	"frontdesk/internal/pkg/errors"
	"frontdesk/internal/platform/identity"
)

// SyncHandler bridges the external identity provider into local state. The
// frontend calls it right after sign-in; it must be safe to call any number
// of times.
type SyncHandler struct {
	provisioner *provision.Service
	profiles    identity.ProfileAPI
}

func NewSyncHandler(provisioner *provision.Service, profiles identity.ProfileAPI) *SyncHandler {
	return &SyncHandler{provisioner: provisioner, profiles: profiles}
}

// Sync handles POST /api/user/sync.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ident, ok := r.Context().Value(apiContext.Identity).(*identity.Identity)
	if !ok || ident == nil {
		errors.WriteError(w, http.StatusUnauthorized, "", "Unauthorized")
		return
	}

	profile, err := h.profiles.Profile(r.Context(), ident.ExternalID)
	if err != nil {
		if stderrors.Is(err, identity.ErrProfileNotFound) {
			errors.WriteError(w, http.StatusNotFound, "", "User not found")
			return
		}
		log.Error().Err(err).Str("external_id", ident.ExternalID).Msg("profile lookup failed")
		errors.WriteError(w, http.StatusInternalServerError, "", "Internal server error")
		return
	}

	result, err := h.provisioner.Sync(r.Context(), *ident, *profile)
	if err != nil {
		log.Error().Err(err).Str("external_id", ident.ExternalID).Msg("user sync failed")
		switch {
		case stderrors.Is(err, provision.ErrCreateOrganization):
			errors.WriteError(w, http.StatusInternalServerError, "", "Failed to create organization")
		case stderrors.Is(err, provision.ErrCreateUser):
			errors.WriteError(w, http.StatusInternalServerError, "", "Failed to create user")
		default:
			errors.WriteError(w, http.StatusInternalServerError, "", "Internal server error")
		}
		return
	}

	if result.IsNew {
		log.Info().
			Str("user_id", result.User.ID).
			Str("organization_id", result.Organization.ID).
			Msg("provisioned new account")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}
