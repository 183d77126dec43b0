package conversations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
	CREATE TABLE conversations (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		contact_id TEXT,
		conversation_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		direction TEXT,
		started_at INTEGER NOT NULL,
		ended_at INTEGER,
		duration_seconds INTEGER,
		summary TEXT,
		sentiment TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE messages (
		id TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`)
	require.NoError(t, err)
	return db
}

func TestOpenAndClose(t *testing.T) {
	svc := NewService(NewRepository(setupTestDB(t)))

	direction := DirectionInbound
	conv, err := svc.Open("org_1", OpenInput{Type: TypeCall, Direction: &direction})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, conv.Status)
	assert.Nil(t, conv.EndedAt)

	summary := "caller asked about pricing"
	sentiment := SentimentPositive
	closed, err := svc.Close("org_1", conv.ID, CloseInput{Summary: &summary, Sentiment: &sentiment})
	require.NoError(t, err)

	assert.Equal(t, StatusClosed, closed.Status)
	require.NotNil(t, closed.EndedAt)
	require.NotNil(t, closed.DurationSeconds)
	assert.Equal(t, &summary, closed.Summary)

	// Closing twice is an error.
	_, err = svc.Close("org_1", conv.ID, CloseInput{})
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestOpenRejectsUnknownType(t *testing.T) {
	svc := NewService(NewRepository(setupTestDB(t)))

	_, err := svc.Open("org_1", OpenInput{Type: "carrier_pigeon"})
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestAppendOnlyWhileActive(t *testing.T) {
	svc := NewService(NewRepository(setupTestDB(t)))

	conv, err := svc.Open("org_1", OpenInput{Type: TypeText})
	require.NoError(t, err)

	_, err = svc.Append("org_1", conv.ID, RoleUser, "hi, are you open today?")
	require.NoError(t, err)
	_, err = svc.Append("org_1", conv.ID, RoleAssistant, "Yes, until 6pm!")
	require.NoError(t, err)

	msgs, err := svc.Messages("org_1", conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)

	_, err = svc.Close("org_1", conv.ID, CloseInput{})
	require.NoError(t, err)

	_, err = svc.Append("org_1", conv.ID, RoleUser, "one more thing")
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestMessagesPreserveAppendOrder(t *testing.T) {
	svc := NewService(NewRepository(setupTestDB(t)))

	conv, err := svc.Open("org_1", OpenInput{Type: TypeText})
	require.NoError(t, err)

	// All appends land within the same second; order must still be the
	// append order, not a created_at/id sort.
	contents := []string{"hi", "are you open?", "yes, until 6pm", "great", "see you then"}
	for i, content := range contents {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		_, err := svc.Append("org_1", conv.ID, role, content)
		require.NoError(t, err)
	}

	msgs, err := svc.Messages("org_1", conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, len(contents))
	for i, msg := range msgs {
		assert.Equal(t, contents[i], msg.Content)
	}
}

func TestAppendRejectsUnknownRole(t *testing.T) {
	svc := NewService(NewRepository(setupTestDB(t)))

	conv, err := svc.Open("org_1", OpenInput{Type: TypeText})
	require.NoError(t, err)

	_, err = svc.Append("org_1", conv.ID, "moderator", "hello")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestArchive(t *testing.T) {
	svc := NewService(NewRepository(setupTestDB(t)))

	conv, err := svc.Open("org_1", OpenInput{Type: TypeCall})
	require.NoError(t, err)

	archived, err := svc.Archive("org_1", conv.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusArchived, archived.Status)

	_, err = svc.Archive("org_1", conv.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestListFilters(t *testing.T) {
	svc := NewService(NewRepository(setupTestDB(t)))

	_, err := svc.Open("org_1", OpenInput{Type: TypeCall})
	require.NoError(t, err)
	conv, err := svc.Open("org_1", OpenInput{Type: TypeText})
	require.NoError(t, err)
	_, err = svc.Close("org_1", conv.ID, CloseInput{})
	require.NoError(t, err)

	calls, err := svc.List("org_1", ListFilter{Type: TypeCall})
	require.NoError(t, err)
	assert.Len(t, calls, 1)

	closed, err := svc.List("org_1", ListFilter{Status: StatusClosed})
	require.NoError(t, err)
	assert.Len(t, closed, 1)

	other, err := svc.List("org_2", ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestConversationScopedToOrganization(t *testing.T) {
	svc := NewService(NewRepository(setupTestDB(t)))

	conv, err := svc.Open("org_1", OpenInput{Type: TypeCall})
	require.NoError(t, err)

	_, err = svc.Get("org_2", conv.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
