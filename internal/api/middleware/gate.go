package middleware

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strings"

	apiContext "frontdesk/internal/api/context"
	"frontdesk/internal/pkg/errors"
	"frontdesk/internal/platform/config"
	"frontdesk/internal/platform/identity"
)

// Gate classifies every request as public or protected before handler
// dispatch. Public paths always pass. Protected API paths without an identity
// get a 401; protected browser paths are redirected to sign-in with the
// original URL preserved for post-login return.
type Gate struct {
	public    []string
	signInURL string
	verifier  *identity.Verifier
}

func NewGate(cfg config.RoutesConfig, verifier *identity.Verifier) *Gate {
	return &Gate{
		public:    cfg.PublicPaths,
		signInURL: cfg.SignInURL,
		verifier:  verifier,
	}
}

func (g *Gate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ident := g.resolve(r); ident != nil {
			ctx := context.WithValue(r.Context(), apiContext.Identity, ident)
			r = r.WithContext(ctx)
			next.ServeHTTP(w, r)
			return
		}

		if g.isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if strings.HasPrefix(r.URL.Path, "/api/") {
			errors.WriteError(w, http.StatusUnauthorized, "", "Unauthorized")
			return
		}

		query := url.Values{}
		query.Set("return_to", r.URL.RequestURI())
		http.Redirect(w, r, g.signInURL+"?"+query.Encode(), http.StatusFound)
	})
}

// resolve extracts and verifies the provider session token, from the
// Authorization header or the session cookie. An invalid token is treated the
// same as no token.
func (g *Gate) resolve(r *http.Request) *identity.Identity {
	token := ""
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
	} else if cookie, err := r.Cookie("session"); err == nil {
		token = cookie.Value
	}
	if token == "" {
		return nil
	}

	ident, err := g.verifier.Verify(token)
	if err != nil {
		return nil
	}
	return ident
}

func (g *Gate) isPublic(p string) bool {
	p = path.Clean("/" + p)
	for _, pattern := range g.public {
		if strings.HasSuffix(pattern, "*") {
			if strings.HasPrefix(p, strings.TrimSuffix(pattern, "*")) {
				return true
			}
			continue
		}
		if p == pattern {
			return true
		}
	}
	return false
}
