package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"frontdesk/internal/api/middleware"
	"frontdesk/internal/engine/scripts"
	"frontdesk/internal/engine/usage"
	"frontdesk/internal/pkg/errors"
)

// ScriptHandler manages the per-organization call scripts. Edits and
// regenerations are metered: the free allowance is consumed first, then the
// prepaid balance.
type ScriptHandler struct {
	repo  *scripts.Repository
	meter *usage.Service
}

func NewScriptHandler(repo *scripts.Repository, meter *usage.Service) *ScriptHandler {
	return &ScriptHandler{repo: repo, meter: meter}
}

func (h *ScriptHandler) List(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	list, err := h.repo.List(org.ID)
	if err != nil {
		log.Error().Err(err).Str("organization_id", org.ID).Msg("failed to list scripts")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error")
		return
	}
	if list == nil {
		list = []*scripts.Script{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"scripts": list})
}

func (h *ScriptHandler) Get(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)
	scriptType := param(r, "type")

	if !scripts.ValidType(scriptType) {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid script type")
		return
	}

	script, err := h.repo.GetByType(org.ID, scriptType)
	if err != nil {
		log.Error().Err(err).Str("organization_id", org.ID).Msg("failed to load script")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error")
		return
	}
	if script == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Script not found")
		return
	}
	writeJSON(w, http.StatusOK, script)
}

// Put handles PUT /api/v1/scripts/:type. Saving counts as one AI edit.
func (h *ScriptHandler) Put(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)
	scriptType := param(r, "type")

	var in struct {
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Content == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Content is required")
		return
	}

	script, err := h.repo.Upsert(org.ID, scriptType, in.Content)
	if err != nil {
		h.writeScriptError(w, org.ID, err)
		return
	}

	if _, err := h.meter.Record(org.ID, usage.TypeAIEdit, 1); err != nil {
		log.Error().Err(err).Str("organization_id", org.ID).Msg("failed to meter script edit")
	}
	writeJSON(w, http.StatusOK, script)
}

// Regenerate handles POST /api/v1/scripts/:type/regenerate. It resets the
// script to the starter template and counts as one AI regeneration.
func (h *ScriptHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)
	scriptType := param(r, "type")

	content, ok := scripts.DefaultContent(scriptType)
	if !ok {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid script type")
		return
	}

	script, err := h.repo.Upsert(org.ID, scriptType, content)
	if err != nil {
		h.writeScriptError(w, org.ID, err)
		return
	}

	if _, err := h.meter.Record(org.ID, usage.TypeAIRegen, 1); err != nil {
		log.Error().Err(err).Str("organization_id", org.ID).Msg("failed to meter script regeneration")
	}
	writeJSON(w, http.StatusOK, script)
}

func (h *ScriptHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	var in struct {
		IsActive bool `json:"is_active"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}

	script, err := h.repo.SetActive(org.ID, param(r, "type"), in.IsActive)
	if err != nil {
		h.writeScriptError(w, org.ID, err)
		return
	}
	writeJSON(w, http.StatusOK, script)
}

func (h *ScriptHandler) writeScriptError(w http.ResponseWriter, orgID string, err error) {
	switch {
	case stderrors.Is(err, scripts.ErrInvalidType):
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid script type")
	case stderrors.Is(err, scripts.ErrNotFound):
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Script not found")
	default:
		log.Error().Err(err).Str("organization_id", orgID).Msg("script operation failed")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error")
	}
}
