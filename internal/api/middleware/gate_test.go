package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiContext "frontdesk/internal/api/context"
	"frontdesk/internal/platform/config"
	"frontdesk/internal/platform/identity"
)

const gateSecret = "gate-test-secret"

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	return NewGate(config.RoutesConfig{
		SignInURL: "/sign-in",
		PublicPaths: []string{
			"/", "/pricing", "/terms", "/privacy",
			"/sign-in*", "/sign-up*", "/api/webhooks/*",
		},
	}, identity.NewVerifier(config.IdentityConfig{JWTSecret: gateSecret}))
}

func signSession(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(gateSecret))
	require.NoError(t, err)
	return signed
}

func TestGatePublicPathsPass(t *testing.T) {
	gate := newTestGate(t)
	handler := gate.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, p := range []string{"/", "/pricing", "/sign-in", "/sign-in/sso-callback", "/api/webhooks/stripe"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusOK, rec.Code, "path %s should be public", p)
	}
}

func TestGateProtectedAPIWithoutToken(t *testing.T) {
	gate := newTestGate(t)
	handler := gate.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/user/sync", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"error": "Unauthorized"}, body)
}

func TestGateProtectedPageRedirectsToSignIn(t *testing.T) {
	gate := newTestGate(t)
	handler := gate.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/contacts?page=2", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/sign-in?return_to=%2Fdashboard%2Fcontacts%3Fpage%3D2", rec.Header().Get("Location"))
}

func TestGateValidTokenReachesHandler(t *testing.T) {
	gate := newTestGate(t)

	var gotExternalID string
	handler := gate.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident := r.Context().Value(apiContext.Identity).(*identity.Identity)
		gotExternalID = ident.ExternalID
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/user/sync", nil)
	req.Header.Set("Authorization", "Bearer "+signSession(t, "ext_abc123"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ext_abc123", gotExternalID)
}

func TestGateSessionCookie(t *testing.T) {
	gate := newTestGate(t)
	handler := gate.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: signSession(t, "ext_abc123")})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateExpiredTokenTreatedAsAnonymous(t *testing.T) {
	gate := newTestGate(t)
	handler := gate.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ext_abc123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	signed, err := token.SignedString([]byte(gateSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
