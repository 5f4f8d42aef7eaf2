package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/banquet/banquet-api/internal/domain/booking"
	"github.com/banquet/banquet-api/internal/pkg/money"
	"github.com/banquet/banquet-api/internal/pkg/stripe"
)

// BookingStore is the slice of booking data access payments need.
// Satisfied by booking.Repository.
type BookingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
}

// AccessChecker answers hall staff membership questions.
// Satisfied by hall.Service.
type AccessChecker interface {
	RequireAccess(ctx context.Context, hallID, requesterID uuid.UUID) error
}

// Gateway is the payment gateway surface the service uses.
// Satisfied by stripe.Client.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, metadata map[string]string) (*stripe.PaymentIntent, error)
	CreateRefund(ctx context.Context, paymentIntentID string, amount int64) (*stripe.Refund, error)
}

// Service handles payment business logic
type Service struct {
	repo      Repository
	bookings  BookingStore
	halls     AccessChecker
	gateway   Gateway
	policy    RefundPolicy
	publisher booking.EventPublisher
	currency  string
}

// NewService creates new payment service
func NewService(repo Repository, bookings BookingStore, halls AccessChecker, gateway Gateway, publisher booking.EventPublisher, currency string) *Service {
	if currency == "" {
		currency = "usd"
	}
	return &Service{
		repo:      repo,
		bookings:  bookings,
		halls:     halls,
		gateway:   gateway,
		policy:    FullRefund{},
		publisher: publisher,
		currency:  currency,
	}
}

// SetRefundPolicy overrides the cancellation refund policy.
func (s *Service) SetRefundPolicy(p RefundPolicy) {
	if p != nil {
		s.policy = p
	}
}

// CreateIntent opens a gateway charge for the next payment step of the
// booking. Only the booking's customer may pay.
func (s *Service) CreateIntent(ctx context.Context, customerID uuid.UUID, req *CreateIntentRequest) (*IntentResponse, error) {
	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("payment service lookup booking: %w", err)
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	if b.CustomerID != customerID {
		return nil, ErrUnauthorized
	}
	if b.Status.IsTerminal() || b.PaidAmount >= b.TotalAmount {
		return nil, ErrInvalidState
	}
	if Type(req.PaymentType) != stepTypeFor(b) {
		return nil, ErrInvalidPaymentType
	}

	amount := expectedStepAmount(b)
	intent, err := s.gateway.CreatePaymentIntent(ctx, int64(amount), map[string]string{
		"booking_id":   b.ID.String(),
		"payment_type": req.PaymentType,
	})
	if err != nil {
		return nil, fmt.Errorf("payment service create intent: %w", err)
	}

	p := &Payment{
		ID:          uuid.New(),
		BookingID:   b.ID,
		CustomerID:  customerID,
		Type:        Type(req.PaymentType),
		Status:      StatusPending,
		Amount:      amount,
		ExternalRef: intent.ID,
	}
	if err := s.repo.CreatePending(ctx, p); err != nil {
		return nil, err
	}

	return &IntentResponse{
		PaymentID:    p.ID,
		BookingID:    b.ID,
		Amount:       int64(amount),
		Currency:     s.currency,
		ExternalRef:  intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// Confirm settles a gateway charge. Safe under replays: a reference that
// already settled returns the current state without crediting again.
func (s *Service) Confirm(ctx context.Context, bookingID uuid.UUID, externalRef string, amount money.Amount) (*ConfirmResult, error) {
	result, err := s.repo.Confirm(ctx, bookingID, externalRef, amount)
	if err != nil {
		return nil, err
	}
	if result.Confirmed {
		s.publish(ctx, booking.NewEvent(booking.EventConfirmed, result.Booking))
	}
	return result, nil
}

// MarkFailed records a gateway failure against a pending intent.
func (s *Service) MarkFailed(ctx context.Context, bookingID uuid.UUID, externalRef, reason string) error {
	return s.repo.MarkFailed(ctx, bookingID, externalRef, reason)
}

// Refund returns money to the customer. Zero amount means everything
// paid so far. Hall staff only.
func (s *Service) Refund(ctx context.Context, requesterID uuid.UUID, req *RefundRequest) (*booking.Booking, error) {
	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("payment service lookup booking: %w", err)
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	if err := s.halls.RequireAccess(ctx, b.HallID, requesterID); err != nil {
		return nil, ErrUnauthorized
	}

	amount := money.Amount(req.Amount)
	if amount == 0 {
		amount = b.PaidAmount
	}
	if amount > b.PaidAmount {
		return nil, ErrRefundExceedsPaid
	}
	if amount == 0 {
		return nil, ErrNothingToRefund
	}

	return s.executeRefund(ctx, b.ID, amount)
}

// RefundForCancellation runs when a paid booking is cancelled. The
// injected policy decides how much of the paid amount comes back.
func (s *Service) RefundForCancellation(ctx context.Context, bookingID uuid.UUID, reason string) error {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("payment service lookup booking: %w", err)
	}
	if b == nil {
		return ErrBookingNotFound
	}

	amount := s.policy.RefundAmount(b)
	if amount <= 0 {
		return nil
	}
	if amount > b.PaidAmount {
		amount = b.PaidAmount
	}

	if _, err := s.executeRefund(ctx, bookingID, amount); err != nil {
		return err
	}
	log.Info().
		Str("booking_id", bookingID.String()).
		Int64("amount", int64(amount)).
		Str("reason", reason).
		Msg("cancellation refund issued")
	return nil
}

func (s *Service) executeRefund(ctx context.Context, bookingID uuid.UUID, amount money.Amount) (*booking.Booking, error) {
	ref, err := s.repo.LatestSuccessRef(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	refund, err := s.gateway.CreateRefund(ctx, ref, int64(amount))
	if err != nil {
		return nil, fmt.Errorf("payment service gateway refund: %w", err)
	}
	return s.repo.Refund(ctx, bookingID, amount, refund.ID)
}

// ListByBooking returns the booking's payment history to its customer or
// the hall's staff.
func (s *Service) ListByBooking(ctx context.Context, bookingID, requesterID uuid.UUID) ([]Payment, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("payment service lookup booking: %w", err)
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	if b.CustomerID != requesterID {
		if err := s.halls.RequireAccess(ctx, b.HallID, requesterID); err != nil {
			return nil, ErrUnauthorized
		}
	}
	return s.repo.ListByBooking(ctx, bookingID)
}

// ReceiptLines feeds the booking receipt with settled payments and the
// refunded total.
func (s *Service) ReceiptLines(ctx context.Context, bookingID uuid.UUID) ([]booking.PaymentRecord, money.Amount, error) {
	rows, refunded, err := s.repo.ReceiptRows(ctx, bookingID)
	if err != nil {
		return nil, 0, err
	}
	lines := make([]booking.PaymentRecord, len(rows))
	for i, p := range rows {
		lines[i] = booking.PaymentRecord{
			Type:      string(p.Type),
			Amount:    p.Amount,
			Reference: p.ExternalRef,
		}
		if p.PaidAt.Valid {
			lines[i].PaidAt = p.PaidAt.Time
		}
	}
	return lines, refunded, nil
}

func (s *Service) publish(ctx context.Context, ev booking.Event) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishBookingEvent(ctx, ev)
}
