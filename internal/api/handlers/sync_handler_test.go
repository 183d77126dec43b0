package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiContext "frontdesk/internal/api/context"
	"frontdesk/internal/engine/provision"
	"frontdesk/internal/platform/config"
	"frontdesk/internal/platform/identity"
	"frontdesk/internal/platform/repositories"
)

type stubProfiles struct {
	profiles map[string]*identity.Profile
	err      error
}

func (s *stubProfiles) Profile(_ context.Context, externalID string) (*identity.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.profiles[externalID]
	if !ok {
		return nil, identity.ErrProfileNotFound
	}
	return p, nil
}

func setupSyncTest(t *testing.T, profiles *stubProfiles) (*SyncHandler, *sql.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE organizations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		owner_external_id TEXT NOT NULL,
		phone_number TEXT,
		plan TEXT NOT NULL DEFAULT 'trial',
		plan_status TEXT NOT NULL DEFAULT 'trialing',
		trial_ends_at INTEGER,
		stripe_customer_id TEXT,
		stripe_subscription_id TEXT,
		balance_cents INTEGER NOT NULL DEFAULT 0,
		auto_reload_enabled INTEGER NOT NULL DEFAULT 0,
		auto_reload_threshold_cents INTEGER NOT NULL DEFAULT 500,
		auto_reload_amount_cents INTEGER NOT NULL DEFAULT 1000,
		free_edits_remaining INTEGER NOT NULL DEFAULT 3,
		free_regens_remaining INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE users (
		id TEXT PRIMARY KEY,
		external_id TEXT NOT NULL UNIQUE,
		organization_id TEXT REFERENCES organizations(id) ON DELETE CASCADE,
		email TEXT NOT NULL DEFAULT '',
		first_name TEXT,
		last_name TEXT,
		role TEXT NOT NULL DEFAULT 'member',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err = db.Exec(schema)
	require.NoError(t, err)

	svc := provision.NewService(
		repositories.NewOrganizationRepository(db),
		repositories.NewUserRepository(db),
		config.BillingConfig{TrialDays: 14, FreeEdits: 3, FreeRegens: 1, AutoReloadThresholdCents: 500, AutoReloadAmountCents: 1000},
	)
	return NewSyncHandler(svc, profiles), db
}

func syncRequest(externalID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/user/sync", nil)
	if externalID == "" {
		return req
	}
	ctx := context.WithValue(req.Context(), apiContext.Identity, &identity.Identity{ExternalID: externalID})
	return req.WithContext(ctx)
}

func TestSyncHandlerProvisionsAndReturnsResult(t *testing.T) {
	first := "Dana"
	handler, db := setupSyncTest(t, &stubProfiles{profiles: map[string]*identity.Profile{
		"ext_abc": {ExternalID: "ext_abc", FirstName: &first, Email: "dana@example.com"},
	}})

	rec := httptest.NewRecorder()
	handler.Sync(rec, syncRequest("ext_abc"))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		User         struct{ ID, Email string }
		Organization struct{ ID, Name string }
		IsNew        bool `json:"isNew"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.IsNew)
	assert.Equal(t, "Dana's Business", body.Organization.Name)
	assert.Equal(t, "dana@example.com", body.User.Email)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Equal(t, 1, count)

	// Second call returns the same rows without provisioning again.
	rec = httptest.NewRecorder()
	handler.Sync(rec, syncRequest("ext_abc"))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.IsNew)
}

func TestSyncHandlerWithoutIdentity(t *testing.T) {
	handler, _ := setupSyncTest(t, &stubProfiles{})

	rec := httptest.NewRecorder()
	handler.Sync(rec, syncRequest(""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error": "Unauthorized"}`, rec.Body.String())
}

func TestSyncHandlerProfileNotFound(t *testing.T) {
	handler, _ := setupSyncTest(t, &stubProfiles{profiles: map[string]*identity.Profile{}})

	rec := httptest.NewRecorder()
	handler.Sync(rec, syncRequest("ext_missing"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "User not found"}`, rec.Body.String())
}

func TestSyncHandlerProviderDown(t *testing.T) {
	handler, _ := setupSyncTest(t, &stubProfiles{err: identity.ErrProfileUnavailable})

	rec := httptest.NewRecorder()
	handler.Sync(rec, syncRequest("ext_abc"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "Internal server error"}`, rec.Body.String())
}

func TestSyncHandlerCreateUserFailure(t *testing.T) {
	first := "Dana"
	handler, db := setupSyncTest(t, &stubProfiles{profiles: map[string]*identity.Profile{
		"ext_abc": {ExternalID: "ext_abc", FirstName: &first, Email: "dana@example.com"},
	}})

	// Force the user insert to fail while the organization insert succeeds.
	_, err := db.Exec(`
		CREATE TRIGGER block_user_inserts BEFORE INSERT ON users
		BEGIN SELECT RAISE(ABORT, 'insert blocked'); END
	`)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.Sync(rec, syncRequest("ext_abc"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "Failed to create user"}`, rec.Body.String())
}
