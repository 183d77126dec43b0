package usage

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk/internal/platform/repositories"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
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
		balance_cents INTEGER NOT NULL DEFAULT 0 CHECK (balance_cents >= 0),
		auto_reload_enabled INTEGER NOT NULL DEFAULT 0,
		auto_reload_threshold_cents INTEGER NOT NULL DEFAULT 500,
		auto_reload_amount_cents INTEGER NOT NULL DEFAULT 1000,
		free_edits_remaining INTEGER NOT NULL DEFAULT 3 CHECK (free_edits_remaining >= 0),
		free_regens_remaining INTEGER NOT NULL DEFAULT 1 CHECK (free_regens_remaining >= 0),
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE usage_events (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		usage_type TEXT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1,
		cost_cents INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);`)
	require.NoError(t, err)
	return db
}

func seedOrg(t *testing.T, db *sql.DB, id string, balance int64, freeEdits, freeRegens int) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO organizations (id, name, owner_external_id, balance_cents, free_edits_remaining, free_regens_remaining, created_at, updated_at)
		VALUES (?, 'Test Org', 'ext_1', ?, ?, ?, 0, 0)
	`, id, balance, freeEdits, freeRegens)
	require.NoError(t, err)
}

func balanceOf(t *testing.T, db *sql.DB, id string) int64 {
	t.Helper()
	var balance int64
	require.NoError(t, db.QueryRow(`SELECT balance_cents FROM organizations WHERE id = ?`, id).Scan(&balance))
	return balance
}

func newTestService(db *sql.DB) *Service {
	return NewService(NewRepository(db), repositories.NewOrganizationRepository(db))
}

func TestRecordDebitsBalance(t *testing.T) {
	db := setupTestDB(t)
	seedOrg(t, db, "org_1", 1000, 0, 0)
	svc := newTestService(db)

	event, err := svc.Record("org_1", TypeCallMinute, 4)
	require.NoError(t, err)

	assert.Equal(t, int64(60), event.CostCents)
	assert.Equal(t, int64(940), balanceOf(t, db, "org_1"))
}

func TestRecordFreeEditsConsumedFirst(t *testing.T) {
	db := setupTestDB(t)
	seedOrg(t, db, "org_1", 1000, 1, 0)
	svc := newTestService(db)

	first, err := svc.Record("org_1", TypeAIEdit, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.CostCents)
	assert.Equal(t, int64(1000), balanceOf(t, db, "org_1"))

	second, err := svc.Record("org_1", TypeAIEdit, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), second.CostCents)
	assert.Equal(t, int64(900), balanceOf(t, db, "org_1"))
}

func TestRecordDebitFloorsAtZero(t *testing.T) {
	db := setupTestDB(t)
	seedOrg(t, db, "org_1", 10, 0, 0)
	svc := newTestService(db)

	event, err := svc.Record("org_1", TypeCallMinute, 3)
	require.NoError(t, err)

	// The ledger keeps the real cost even when the balance cannot cover it.
	assert.Equal(t, int64(45), event.CostCents)
	assert.Equal(t, int64(0), balanceOf(t, db, "org_1"))
}

func TestRecordRejectsBadInput(t *testing.T) {
	db := setupTestDB(t)
	seedOrg(t, db, "org_1", 1000, 0, 0)
	svc := newTestService(db)

	_, err := svc.Record("org_1", "fax_page", 1)
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = svc.Record("org_1", TypeSMS, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestRecordRejectsBatchedFreeTierTypes(t *testing.T) {
	db := setupTestDB(t)
	seedOrg(t, db, "org_1", 1000, 3, 1)
	svc := newTestService(db)

	// One free counter must never cover more than one action.
	_, err := svc.Record("org_1", TypeAIEdit, 3)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Record("org_1", TypeAIRegen, 2)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	assert.Equal(t, int64(1000), balanceOf(t, db, "org_1"))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM usage_events`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestSummaryAggregatesLedger(t *testing.T) {
	db := setupTestDB(t)
	seedOrg(t, db, "org_1", 10000, 0, 0)
	svc := newTestService(db)

	_, err := svc.Record("org_1", TypeCallMinute, 10)
	require.NoError(t, err)
	_, err = svc.Record("org_1", TypeSMS, 5)
	require.NoError(t, err)
	_, err = svc.Record("org_1", TypeSMS, 2)
	require.NoError(t, err)

	summary, err := svc.Summary("org_1", 0)
	require.NoError(t, err)

	assert.Equal(t, int64(7), summary.Totals[TypeSMS].Quantity)
	assert.Equal(t, int64(14), summary.Totals[TypeSMS].CostCents)
	assert.Equal(t, int64(150), summary.Totals[TypeCallMinute].CostCents)
	assert.Equal(t, int64(164), summary.TotalCostCents)
}
