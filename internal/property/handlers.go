package property

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-travel/internal/common"
)

// Handler exposes the property read endpoints.
type Handler struct {
	Svc    *Service
	Logger zerolog.Logger
}

// Get returns a single property.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.propertyID(w, r)
	if !ok {
		return
	}
	p, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, p)
}

// Services lists the offerings that can be added to a stay at the property.
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	id, ok := h.propertyID(w, r)
	if !ok {
		return
	}
	offerings, err := h.Svc.Offerings(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, offerings)
}

func (h *Handler) propertyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := uuid.Parse(raw)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid property id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPropertyNotFound):
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "property not found", nil)
	case errors.Is(err, ErrOfferingNotFound):
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "service offering not found", nil)
	default:
		h.Logger.Error().Err(err).Msg("property lookup failed")
		common.WriteError(w, err)
	}
}
