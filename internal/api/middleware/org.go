package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	apiContext "frontdesk/internal/api/context"
	"frontdesk/internal/pkg/errors"
	"frontdesk/internal/platform/identity"
	"frontdesk/internal/platform/models"
	"frontdesk/internal/platform/repositories"
)

// OrgLoader resolves the caller's organization from their identity and puts
// both the user and the organization into the request context. Every
// org-scoped handler runs behind it.
type OrgLoader struct {
	users *repositories.UserRepository
	orgs  *repositories.OrganizationRepository
}

func NewOrgLoader(users *repositories.UserRepository, orgs *repositories.OrganizationRepository) *OrgLoader {
	return &OrgLoader{users: users, orgs: orgs}
}

func (l *OrgLoader) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := r.Context().Value(apiContext.Identity).(*identity.Identity)
		if !ok || ident == nil {
			errors.WriteError(w, http.StatusUnauthorized, "", "Unauthorized")
			return
		}

		user, err := l.users.GetByExternalID(ident.ExternalID)
		if err != nil {
			log.Error().Err(err).Str("external_id", ident.ExternalID).Msg("failed to load user")
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error")
			return
		}
		if user == nil || user.OrganizationID == nil {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Account not provisioned")
			return
		}

		org, err := l.orgs.GetByID(*user.OrganizationID)
		if err != nil {
			log.Error().Err(err).Str("organization_id", *user.OrganizationID).Msg("failed to load organization")
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error")
			return
		}
		if org == nil {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Account not provisioned")
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.User, user)
		ctx = context.WithValue(ctx, apiContext.Org, org)
		next(w, r.WithContext(ctx))
	}
}

// OrgFrom returns the organization loaded for the request. Handlers behind
// OrgLoader can assume it is present.
func OrgFrom(r *http.Request) *models.Organization {
	org, _ := r.Context().Value(apiContext.Org).(*models.Organization)
	return org
}

// UserFrom returns the user loaded for the request.
func UserFrom(r *http.Request) *models.User {
	user, _ := r.Context().Value(apiContext.User).(*models.User)
	return user
}
