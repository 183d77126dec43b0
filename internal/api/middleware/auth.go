package middleware

import (
	"net/http"

	apiContext "frontdesk/internal/api/context"
	"frontdesk/internal/pkg/errors"
	"frontdesk/internal/platform/identity"
)

// RequireIdentity rejects requests that reached a protected handler without a
// resolved identity in context.
func RequireIdentity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := r.Context().Value(apiContext.Identity).(*identity.Identity)
		if !ok || ident == nil {
			errors.WriteError(w, http.StatusUnauthorized, "", "Unauthorized")
			return
		}
		next(w, r)
	}
}

// IdentityFrom returns the resolved identity for the request, if any.
func IdentityFrom(r *http.Request) *identity.Identity {
	ident, _ := r.Context().Value(apiContext.Identity).(*identity.Identity)
	return ident
}
