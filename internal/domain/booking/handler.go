package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/banquet/banquet-api/internal/middleware"
	"github.com/banquet/banquet-api/internal/pkg/response"
	"github.com/banquet/banquet-api/internal/pkg/validator"
)

// Handler handles booking HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates booking handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /bookings
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

	customerID := middleware.GetUserID(r.Context())
	b, payableNow, err := h.service.Create(r.Context(), customerID, &req)
	if err != nil {
		h.writeError(w, err, customerID)
		return
	}

	response.Created(w, CreateResponse{
		Booking:    NewBookingResponse(b),
		PayableNow: int64(payableNow),
	})
}

// Get handles GET /bookings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	b, err := h.service.GetByID(r.Context(), bookingID, requesterID)
	if err != nil {
		h.writeError(w, err, requesterID)
		return
	}

	response.OK(w, NewBookingResponse(b))
}

// Cancel handles POST /bookings/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	b, err := h.service.Cancel(r.Context(), bookingID, requesterID, req.Reason)
	if err != nil {
		h.writeError(w, err, requesterID)
		return
	}

	response.OK(w, NewBookingResponse(b))
}

// ListMine handles GET /bookings/mine
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetUserID(r.Context())
	bookings, err := h.service.ListMine(r.Context(), customerID)
	if err != nil {
		log.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to list bookings")
		response.InternalError(w)
		return
	}
	response.OK(w, toResponses(bookings))
}

// ListByVenue handles GET /bookings/venue/{venueID}
func (h *Handler) ListByVenue(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "venueID"))
	if err != nil {
		response.BadRequest(w, "Invalid venue ID")
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	bookings, err := h.service.ListByVenue(r.Context(), venueID, requesterID)
	if err != nil {
		h.writeError(w, err, requesterID)
		return
	}
	response.OK(w, toResponses(bookings))
}

// ListByHall handles GET /bookings/hall/{hallID}
func (h *Handler) ListByHall(w http.ResponseWriter, r *http.Request) {
	hallID, err := uuid.Parse(chi.URLParam(r, "hallID"))
	if err != nil {
		response.BadRequest(w, "Invalid hall ID")
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	bookings, err := h.service.ListByHall(r.Context(), hallID, requesterID)
	if err != nil {
		h.writeError(w, err, requesterID)
		return
	}
	response.OK(w, toResponses(bookings))
}

// Receipt handles GET /bookings/{id}/receipt
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	pdf, filename, err := h.service.Receipt(r.Context(), bookingID, requesterID)
	if err != nil {
		h.writeError(w, err, requesterID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func toResponses(bookings []Booking) []BookingResponse {
	out := make([]BookingResponse, len(bookings))
	for i := range bookings {
		out[i] = NewBookingResponse(&bookings[i])
	}
	return out
}

func (h *Handler) writeError(w http.ResponseWriter, err error, requesterID uuid.UUID) {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, ErrVenueNotFound):
		response.NotFound(w, "Venue not found")
	case errors.Is(err, ErrVenueInactive):
		response.Error(w, http.StatusUnprocessableEntity, "VENUE_INACTIVE", "Venue is not open for booking")
	case errors.Is(err, ErrDateInPast):
		response.Error(w, http.StatusUnprocessableEntity, "DATE_IN_PAST", "Booking date is in the past")
	case errors.Is(err, ErrInvalidTimeRange):
		response.Error(w, http.StatusUnprocessableEntity, "INVALID_TIME_RANGE", "End time must be after start time")
	case errors.Is(err, ErrDurationTooShort):
		response.Error(w, http.StatusUnprocessableEntity, "DURATION_TOO_SHORT", "Booking is shorter than the venue minimum")
	case errors.Is(err, ErrSlotConflict):
		response.Conflict(w, "SLOT_CONFLICT", "The requested time slot is already booked")
	case errors.Is(err, ErrConflict):
		response.Conflict(w, "RETRY", "The slot is being booked by another request, please retry")
	case errors.Is(err, ErrInvalidState):
		response.Conflict(w, "INVALID_STATE", "Booking state does not allow this operation")
	case errors.Is(err, ErrUnauthorized):
		response.Forbidden(w, "You do not have access to this booking")
	case errors.Is(err, ErrEmptyReason):
		response.BadRequest(w, "Cancellation reason is required")
	default:
		log.Error().Err(err).Str("requester_id", requesterID.String()).Msg("booking operation failed")
		response.InternalError(w)
	}
}
