package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/banquet/banquet-api/internal/domain/booking"
	"github.com/banquet/banquet-api/internal/middleware"
	"github.com/banquet/banquet-api/internal/pkg/money"
	"github.com/banquet/banquet-api/internal/pkg/response"
	"github.com/banquet/banquet-api/internal/pkg/stripe"
	"github.com/banquet/banquet-api/internal/pkg/validator"
)

const maxWebhookBody = 64 * 1024

// Handler handles payment HTTP requests
type Handler struct {
	service       *Service
	webhookSecret string
}

// NewHandler creates payment handler
func NewHandler(service *Service, webhookSecret string) *Handler {
	return &Handler{service: service, webhookSecret: webhookSecret}
}

// CreateIntent handles POST /payments/intent
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req CreateIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	customerID := middleware.GetUserID(r.Context())
	intent, err := h.service.CreateIntent(r.Context(), customerID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, intent)
}

// Confirm handles POST /payments/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	result, err := h.service.Confirm(r.Context(), req.BookingID, req.ExternalRef, money.Amount(req.Amount))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, confirmResponse(result))
}

// Refund handles POST /payments/refund
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	var req RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	b, err := h.service.Refund(r.Context(), requesterID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"booking_id":  b.ID,
		"paid_amount": int64(b.PaidAmount),
	})
}

// ListByBooking handles GET /payments/booking/{bookingID}
func (h *Handler) ListByBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	payments, err := h.service.ListByBooking(r.Context(), bookingID, requesterID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = NewPaymentResponse(&payments[i])
	}
	response.OK(w, out)
}

// Webhook handles POST /payments/webhook. The gateway retries delivery,
// so everything downstream must tolerate replays.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(w, "Cannot read payload")
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	if err := stripe.VerifySignature(payload, sig, h.webhookSecret, 0); err != nil {
		log.Warn().Err(err).Msg("webhook signature rejected")
		response.Error(w, http.StatusBadRequest, "INVALID_SIGNATURE", "Webhook signature verification failed")
		return
	}

	event, err := stripe.ParseEvent(payload)
	if err != nil {
		response.BadRequest(w, "Invalid event payload")
		return
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
	default:
		// not ours, acknowledge so the gateway stops retrying
		response.OK(w, map[string]string{"status": "ignored"})
		return
	}

	pi, err := stripe.PaymentIntentFromEvent(event)
	if err != nil {
		response.BadRequest(w, "Invalid payment_intent object")
		return
	}
	bookingID, err := uuid.Parse(pi.Metadata["booking_id"])
	if err != nil {
		response.BadRequest(w, "Missing booking_id metadata")
		return
	}

	if event.Type == "payment_intent.payment_failed" {
		if err := h.service.MarkFailed(r.Context(), bookingID, pi.ID, pi.Status); err != nil {
			log.Error().Err(err).Str("external_ref", pi.ID).Msg("webhook mark failed")
			response.InternalError(w)
			return
		}
		response.OK(w, map[string]string{"status": "received"})
		return
	}

	if _, err := h.service.Confirm(r.Context(), bookingID, pi.ID, money.Amount(pi.Amount)); err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrAmountMismatch), errors.Is(err, ErrInvalidState):
			// a retry will not fix these; acknowledge and log
			log.Error().Err(err).Str("external_ref", pi.ID).Msg("webhook confirmation rejected")
			response.OK(w, map[string]string{"status": "rejected"})
		default:
			log.Error().Err(err).Str("external_ref", pi.ID).Msg("webhook confirmation failed")
			response.InternalError(w)
		}
		return
	}
	response.OK(w, map[string]string{"status": "received"})
}

func confirmResponse(result *ConfirmResult) ConfirmResponse {
	return ConfirmResponse{
		BookingID:     result.Booking.ID,
		BookingStatus: string(result.Booking.Status),
		PaidAmount:    int64(result.Booking.PaidAmount),
		TotalAmount:   int64(result.Booking.TotalAmount),
		Duplicate:     result.Duplicate,
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, booking.ErrBookingNotFound):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, ErrPaymentNotFound):
		response.NotFound(w, "Payment not found")
	case errors.Is(err, ErrInvalidState):
		response.Conflict(w, "INVALID_STATE", "Booking state does not allow this payment")
	case errors.Is(err, ErrInvalidPaymentType):
		response.Error(w, http.StatusUnprocessableEntity, "INVALID_PAYMENT_TYPE", "Payment type does not match the booking payment plan")
	case errors.Is(err, ErrAmountMismatch):
		response.Error(w, http.StatusUnprocessableEntity, "AMOUNT_MISMATCH", "Amount does not match the expected payment step")
	case errors.Is(err, ErrRefundExceedsPaid):
		response.Error(w, http.StatusUnprocessableEntity, "REFUND_EXCEEDS_PAID", "Refund amount exceeds the paid amount")
	case errors.Is(err, ErrNothingToRefund):
		response.Error(w, http.StatusUnprocessableEntity, "NOTHING_TO_REFUND", "Booking has no settled payments to refund")
	case errors.Is(err, ErrUnauthorized):
		response.Forbidden(w, "You do not have access to payments for this booking")
	default:
		log.Error().Err(err).Msg("payment operation failed")
		response.InternalError(w)
	}
}
