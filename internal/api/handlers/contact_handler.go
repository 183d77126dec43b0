package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"frontdesk/internal/api/middleware"
	"frontdesk/internal/engine/contacts"
	"frontdesk/internal/pkg/errors"
	"frontdesk/internal/pkg/validator"
)

type ContactHandler struct {
	svc *contacts.Service
}

func NewContactHandler(svc *contacts.Service) *ContactHandler {
	return &ContactHandler{svc: svc}
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	list, err := h.svc.List(org.ID, queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		log.Error().Err(err).Str("organization_id", org.ID).Msg("failed to list contacts")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error")
		return
	}
	if list == nil {
		list = []*contacts.Contact{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"contacts": list})
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	var in contacts.CreateInput
	if !decodeJSON(w, r, &in) {
		return
	}

	contact, err := h.svc.Create(org.ID, in)
	if err != nil {
		h.writeContactError(w, org.ID, err)
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

func (h *ContactHandler) Import(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	var in struct {
		Contacts []contacts.CreateInput `json:"contacts"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if len(in.Contacts) == 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "No contacts to import")
		return
	}

	report, err := h.svc.Import(org.ID, in.Contacts)
	if err != nil {
		log.Error().Err(err).Str("organization_id", org.ID).Msg("contact import failed")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	contact, err := h.svc.Get(org.ID, param(r, "id"))
	if err != nil {
		h.writeContactError(w, org.ID, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	var in contacts.UpdateInput
	if !decodeJSON(w, r, &in) {
		return
	}

	contact, err := h.svc.Update(org.ID, param(r, "id"), in)
	if err != nil {
		h.writeContactError(w, org.ID, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	if err := h.svc.Delete(org.ID, param(r, "id")); err != nil {
		h.writeContactError(w, org.ID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContactHandler) OptOut(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	contact, err := h.svc.OptOut(org.ID, param(r, "id"))
	if err != nil {
		h.writeContactError(w, org.ID, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) OptIn(w http.ResponseWriter, r *http.Request) {
	org := middleware.OrgFrom(r)

	contact, err := h.svc.OptIn(org.ID, param(r, "id"))
	if err != nil {
		h.writeContactError(w, org.ID, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) writeContactError(w http.ResponseWriter, orgID string, err error) {
	switch {
	case stderrors.Is(err, contacts.ErrNotFound):
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Contact not found")
	case stderrors.Is(err, contacts.ErrDuplicatePhone):
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "A contact with this phone number already exists")
	case stderrors.Is(err, validator.ErrInvalidPhone):
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid phone number")
	default:
		log.Error().Err(err).Str("organization_id", orgID).Msg("contact operation failed")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error")
	}
}
