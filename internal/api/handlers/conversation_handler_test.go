package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiContext "frontdesk/internal/api/context"
	"frontdesk/internal/engine/conversations"
	"frontdesk/internal/platform/models"
)

func setupConversationTest(t *testing.T) *ConversationHandler {
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

	return NewConversationHandler(conversations.NewService(conversations.NewRepository(db)))
}

func orgRequest(method, target, id string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)

	ctx := context.WithValue(req.Context(), apiContext.Org, &models.Organization{ID: "org_1"})
	if id != "" {
		ctx = context.WithValue(ctx, httprouter.ParamsKey, httprouter.Params{{Key: "id", Value: id}})
	}
	return req.WithContext(ctx)
}

func TestConversationOpenAppendClose(t *testing.T) {
	handler := setupConversationTest(t)

	rec := httptest.NewRecorder()
	handler.Open(rec, orgRequest(http.MethodPost, "/api/v1/conversations", "", map[string]string{"type": "text"}))
	require.Equal(t, http.StatusCreated, rec.Code)

	var conv conversations.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	assert.Equal(t, conversations.StatusActive, conv.Status)

	rec = httptest.NewRecorder()
	handler.Append(rec, orgRequest(http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages", conv.ID,
		map[string]string{"role": "user", "content": "do you do same-day appointments?"}))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	handler.Close(rec, orgRequest(http.MethodPost, "/api/v1/conversations/"+conv.ID+"/close", conv.ID,
		map[string]string{"summary": "appointment question"}))
	require.Equal(t, http.StatusOK, rec.Code)

	var closed conversations.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &closed))
	assert.Equal(t, conversations.StatusClosed, closed.Status)
	require.NotNil(t, closed.Summary)

	// Appending after close is a conflict.
	rec = httptest.NewRecorder()
	handler.Append(rec, orgRequest(http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages", conv.ID,
		map[string]string{"role": "user", "content": "hello?"}))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestConversationOpenRejectsUnknownType(t *testing.T) {
	handler := setupConversationTest(t)

	rec := httptest.NewRecorder()
	handler.Open(rec, orgRequest(http.MethodPost, "/api/v1/conversations", "", map[string]string{"type": "fax"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
