package venue

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/banquet/banquet-api/internal/domain/hall"
	"github.com/banquet/banquet-api/internal/middleware"
	"github.com/banquet/banquet-api/internal/pkg/response"
	"github.com/banquet/banquet-api/internal/pkg/validator"
)

// Handler handles venue HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates venue handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /venues
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	v, err := h.service.Create(r.Context(), requesterID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, NewVenueResponse(v))
}

// Get handles GET /venues/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid venue ID")
		return
	}

	v, err := h.service.GetByID(r.Context(), venueID)
	if err != nil {
		response.NotFound(w, "Venue not found")
		return
	}

	response.OK(w, NewVenueResponse(v))
}

// Update handles PUT /venues/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid venue ID")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	v, err := h.service.Update(r.Context(), venueID, requesterID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, NewVenueResponse(v))
}

// ListByHall handles GET /venues?hall_id=...
func (h *Handler) ListByHall(w http.ResponseWriter, r *http.Request) {
	hallID, err := uuid.Parse(r.URL.Query().Get("hall_id"))
	if err != nil {
		response.BadRequest(w, "hall_id query parameter is required")
		return
	}

	// Public listings only show bookable venues.
	venues, err := h.service.ListByHall(r.Context(), hallID, true)
	if err != nil {
		log.Error().Err(err).Msg("failed to list venues")
		response.InternalError(w)
		return
	}

	out := make([]VenueResponse, len(venues))
	for i := range venues {
		out[i] = NewVenueResponse(&venues[i])
	}
	response.OK(w, out)
}

// Activate handles POST /venues/{id}/activate
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate handles POST /venues/{id}/deactivate
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	venueID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid venue ID")
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	if err := h.service.SetActive(r.Context(), venueID, requesterID, active); err != nil {
		h.writeError(w, err)
		return
	}

	response.NoContent(w)
}

// SetPricing handles PUT /venues/{id}/pricing
func (h *Handler) SetPricing(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid venue ID")
		return
	}

	var req SetPricingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	slots, err := h.service.SetPricing(r.Context(), venueID, requesterID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, slots)
}

// GetPricing handles GET /venues/{id}/pricing?date=YYYY-MM-DD
func (h *Handler) GetPricing(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid venue ID")
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		response.BadRequest(w, "date query parameter is required")
		return
	}

	slots, err := h.service.GetPricing(r.Context(), venueID, date)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, slots)
}

// UploadPhoto handles POST /venues/{id}/photo
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid venue ID")
		return
	}

	if err := r.ParseMultipartForm(MaxPhotoSize); err != nil {
		response.BadRequest(w, "File too large or invalid form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Missing file field")
		return
	}
	defer file.Close()

	requesterID := middleware.GetUserID(r.Context())
	v, err := h.service.UploadPhoto(r.Context(), venueID, requesterID, file)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, NewVenueResponse(v))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch err {
	case ErrVenueNotFound:
		response.NotFound(w, "Venue not found")
	case hall.ErrHallNotFound:
		response.NotFound(w, "Hall not found")
	case hall.ErrNotHallOwner, hall.ErrNotHallStaff:
		response.Forbidden(w, "Not allowed to manage this hall")
	case ErrInvalidSlotRange, ErrOverlappingSlots, ErrInvalidPhoto:
		response.BadRequest(w, err.Error())
	default:
		log.Error().Err(err).Msg("venue request failed")
		response.InternalError(w)
	}
}
