package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"frontdesk/internal/api/middleware"
	"frontdesk/internal/engine/knowledge"
	"frontdesk/internal/pkg/errors"
)

type KnowledgeHandler struct {
	repo *knowledge.Repository
}

func NewKnowledgeHandler(repo *knowledge.Repository) *KnowledgeHandler {
	return &KnowledgeHandler{repo: repo}
}

type knowledgeInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (in *knowledgeInput) validate(w http.ResponseWriter) bool {
	if in.Title == "" || in.Content == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Title and content are required")
		return false
	}
	return true
}

func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	list, err := h.repo.List(org.ID)
	if err != nil {
		log.Error().Err(err).Str("organization_id", org.ID).Msg("failed to list knowledge entries")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error")
		return
	}
	if list == nil {
		list = []*knowledge.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": list})
}

func (h *KnowledgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	var in knowledgeInput
	if !decodeJSON(w, r, &in) || !in.validate(w) {
		return
	}

	entry, err := h.repo.Create(org.ID, in.Title, in.Content)
	if err != nil {
		h.writeKnowledgeError(w, org.ID, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *KnowledgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	entry, err := h.repo.GetByID(org.ID, param(r, "id"))
	if err != nil {
		h.writeKnowledgeError(w, org.ID, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *KnowledgeHandler) Update(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	var in knowledgeInput
	if !decodeJSON(w, r, &in) || !in.validate(w) {
		return
	}

	entry, err := h.repo.Update(org.ID, param(r, "id"), in.Title, in.Content)
	if err != nil {
		h.writeKnowledgeError(w, org.ID, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *KnowledgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	if err := h.repo.Delete(org.ID, param(r, "id")); err != nil {
		h.writeKnowledgeError(w, org.ID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *KnowledgeHandler) writeKnowledgeError(w http.ResponseWriter, orgID string, err error) {
	if stderrors.Is(err, knowledge.ErrNotFound) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Knowledge entry not found")
		return
	}
	log.Error().Err(err).Str("organization_id", orgID).Msg("knowledge operation failed")
	errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error")
}
