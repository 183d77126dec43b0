package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"frontdesk/internal/api/middleware"
	"frontdesk/internal/engine/conversations"
	"frontdesk/internal/pkg/errors"
)

type ConversationHandler struct {
	svc *conversations.Service
}

func NewConversationHandler(svc *conversations.Service) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	filter := conversations.ListFilter{
		Type:   r.URL.Query().Get("type"),
		Status: r.URL.Query().Get("status"),
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}

	list, err := h.svc.List(org.ID, filter)
	if err != nil {
		log.Error().Err(err).Str("organization_id", org.ID).Msg("failed to list conversations")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error")
		return
	}
	if list == nil {
		list = []*conversations.Conversation{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"conversations": list})
}

func (h *ConversationHandler) Open(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	var in conversations.OpenInput
	if !decodeJSON(w, r, &in) {
		return
	}

	conv, err := h.svc.Open(org.ID, in)
	if err != nil {
		h.writeConversationError(w, org.ID, err)
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (h *ConversationHandler) Append(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	var in struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}

	msg, err := h.svc.Append(org.ID, param(r, "id"), in.Role, in.Content)
	if err != nil {
		h.writeConversationError(w, org.ID, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *ConversationHandler) Close(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	var in conversations.CloseInput
	if !decodeJSON(w, r, &in) {
		return
	}

	conv, err := h.svc.Close(org.ID, param(r, "id"), in)
	if err != nil {
		h.writeConversationError(w, org.ID, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	conv, err := h.svc.Get(org.ID, param(r, "id"))
	if err != nil {
		h.writeConversationError(w, org.ID, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	msgs, err := h.svc.Messages(org.ID, param(r, "id"))
	if err != nil {
		h.writeConversationError(w, org.ID, err)
		return
	}
	if msgs == nil {
		msgs = []*conversations.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": msgs})
}

func (h *ConversationHandler) Archive(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	conv, err := h.svc.Archive(org.ID, param(r, "id"))
	if err != nil {
		h.writeConversationError(w, org.ID, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (h *ConversationHandler) writeConversationError(w http.ResponseWriter, orgID string, err error) {
	switch {
	case stderrors.Is(err, conversations.ErrNotFound):
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Conversation not found")
	case stderrors.Is(err, conversations.ErrNotActive), stderrors.Is(err, conversations.ErrInvalidState):
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Conversation is not in a valid state for this operation")
	case stderrors.Is(err, conversations.ErrInvalidType), stderrors.Is(err, conversations.ErrInvalidRole):
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error())
	default:
		log.Error().Err(err).Str("organization_id", orgID).Msg("conversation operation failed")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error")
	}
}
