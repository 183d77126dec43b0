package api

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk/internal/engine/billing"
	"frontdesk/internal/engine/contacts"
	"frontdesk/internal/engine/conversations"
	"frontdesk/internal/engine/knowledge"
	"frontdesk/internal/engine/provision"
	"frontdesk/internal/engine/scripts"
	"frontdesk/internal/engine/usage"
	"frontdesk/internal/platform/config"
	"frontdesk/internal/platform/identity"
	"frontdesk/internal/platform/repositories"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	orgRepo := repositories.NewOrganizationRepository(db)
	userRepo := repositories.NewUserRepository(db)
	usageSvc := usage.NewService(usage.NewRepository(db), orgRepo)

	return New(Deps{
		Config:        cfg,
		DB:            db,
		OrgRepo:       orgRepo,
		UserRepo:      userRepo,
		Provisioner:   provision.NewService(orgRepo, userRepo, cfg.Billing),
		Profiles:      identity.NewClient(cfg.Identity),
		Contacts:      contacts.NewService(contacts.NewRepository(db)),
		Conversations: conversations.NewService(conversations.NewRepository(db)),
		Scripts:       scripts.NewRepository(db),
		Knowledge:     knowledge.NewRepository(db),
		Usage:         usageSvc,
		Billing:       billing.NewService(cfg.Stripe, orgRepo, userRepo),
	})
}

// Every dashboard route must be registered. An unauthenticated request proves
// registration: routed paths answer 401 from the identity check, unrouted
// ones fall through to the JSON 404.
func TestDashboardRoutesRegistered(t *testing.T) {
	router := newTestRouter(t)

	routes := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/user/sync"},
		{http.MethodGet, "/api/v1/contacts"},
		{http.MethodPost, "/api/v1/contacts"},
		{http.MethodPost, "/api/v1/import/contacts"},
		{http.MethodGet, "/api/v1/conversations"},
		{http.MethodPost, "/api/v1/conversations"},
		{http.MethodPost, "/api/v1/conversations/cnv_1/messages"},
		{http.MethodPost, "/api/v1/conversations/cnv_1/close"},
		{http.MethodPost, "/api/v1/conversations/cnv_1/archive"},
		{http.MethodGet, "/api/v1/scripts"},
		{http.MethodPut, "/api/v1/scripts/greeting"},
		{http.MethodGet, "/api/v1/knowledge"},
		{http.MethodGet, "/api/v1/usage"},
		{http.MethodGet, "/api/v1/usage/events"},
		{http.MethodGet, "/api/v1/organizations/current"},
		{http.MethodPatch, "/api/v1/organizations/current"},
		{http.MethodPost, "/api/v1/billing/reload"},
	}

	for _, route := range routes {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s should be routed and identity-gated", route.method, route.path)
	}
}

func TestHealthRoute(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
