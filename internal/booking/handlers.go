package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-travel/internal/common"
	"github.com/noah-isme/backend-travel/internal/property"
)

// Handler exposes quote and booking endpoints.
type Handler struct {
	Svc       *Service
	Validator *RequestValidator
	Logger    zerolog.Logger
}

// Quote handles POST /quotes.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if !h.decode(w, r, &req) {
		return
	}
	q, err := h.Svc.Quote(r.Context(), req.Input())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, q)
}

// Create handles POST /bookings.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if !h.decode(w, r, &req) {
		return
	}
	sub, err := req.Submission()
	if err != nil {
		h.writeError(w, err)
		return
	}
	b, err := h.Svc.Create(r.Context(), sub)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, toView(b))
}

// Get handles GET /bookings/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid booking id", nil)
		return
	}
	b, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, toView(b))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid payload", nil)
		return false
	}
	validate := h.Validator
	if validate == nil {
		validate = NewRequestValidator()
	}
	if err := validate.Validate(dst); err != nil {
		common.WriteError(w, err)
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, property.ErrPropertyNotFound):
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "property not found", nil)
	case errors.Is(err, property.ErrOfferingNotFound) && !common.IsAppError(err):
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "service offering not found", nil)
	case errors.Is(err, ErrBookingNotFound):
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "booking not found", nil)
	case common.IsAppError(err):
		common.WriteError(w, err)
	default:
		h.Logger.Error().Err(err).Msg("booking request failed")
		common.WriteError(w, err)
	}
}
