package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/banquet/banquet-api/internal/domain/hall"
	"github.com/banquet/banquet-api/internal/domain/user"
	"github.com/banquet/banquet-api/internal/domain/venue"
	"github.com/banquet/banquet-api/internal/pkg/money"
	"github.com/banquet/banquet-api/internal/pkg/receipt"
	"github.com/banquet/banquet-api/internal/pkg/timeslot"
)

const dateLayout = "2006-01-02"

// VenueCatalog provides the venue facts a reservation depends on.
// Satisfied by venue.Repository.
type VenueCatalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*venue.Venue, error)
	GetPricing(ctx context.Context, venueID uuid.UUID, effectiveDate string) ([]venue.PricingSlot, error)
}

// HallAccess resolves halls and answers staff membership questions.
// Satisfied by hall.Service.
type HallAccess interface {
	GetByID(ctx context.Context, id uuid.UUID) (*hall.Hall, error)
	RequireAccess(ctx context.Context, hallID, requesterID uuid.UUID) error
}

// UserDirectory looks up account details for receipts.
// Satisfied by user.Repository.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// PaymentRecord is a settled payment attached to a booking.
type PaymentRecord struct {
	Type      string
	Amount    money.Amount
	Reference string
	PaidAt    time.Time
}

// PaymentLister reports the payment history used on receipts.
type PaymentLister interface {
	ReceiptLines(ctx context.Context, bookingID uuid.UUID) (lines []PaymentRecord, refunded money.Amount, err error)
}

// Refunder issues refunds when a paid booking is cancelled.
type Refunder interface {
	RefundForCancellation(ctx context.Context, bookingID uuid.UUID, reason string) error
}

// Service handles booking business logic
type Service struct {
	repo      Repository
	venues    VenueCatalog
	halls     HallAccess
	users     UserDirectory
	payments  PaymentLister
	refunder  Refunder
	publisher EventPublisher
	now       func() time.Time
}

// NewService creates new booking service
func NewService(repo Repository, venues VenueCatalog, halls HallAccess, users UserDirectory, publisher EventPublisher) *Service {
	return &Service{
		repo:      repo,
		venues:    venues,
		halls:     halls,
		users:     users,
		publisher: publisher,
		now:       time.Now,
	}
}

// SetPaymentLister wires the payment history source. Called during startup
// wiring; the payment domain depends on this package, not the reverse.
func (s *Service) SetPaymentLister(p PaymentLister) { s.payments = p }

// SetRefunder wires the refund issuer used on cancellation of paid bookings.
func (s *Service) SetRefunder(r Refunder) { s.refunder = r }

// Create reserves a time slot on a venue for the customer. The booking
// starts pending; it confirms once the required payment lands.
func (s *Service) Create(ctx context.Context, customerID uuid.UUID, req *CreateRequest) (*Booking, money.Amount, error) {
	v, err := s.venues.GetByID(ctx, req.VenueID)
	if err != nil {
		return nil, 0, fmt.Errorf("booking service lookup venue: %w", err)
	}
	if v == nil {
		return nil, 0, ErrVenueNotFound
	}
	if !v.Active {
		return nil, 0, ErrVenueInactive
	}

	// Dates are ISO strings, so lexical order is chronological order.
	today := s.now().Format(dateLayout)
	if req.BookingDate < today {
		return nil, 0, ErrDateInPast
	}

	start, err := timeslot.Parse(req.StartTime)
	if err != nil {
		return nil, 0, ErrInvalidTimeRange
	}
	end, err := timeslot.Parse(req.EndTime)
	if err != nil {
		return nil, 0, ErrInvalidTimeRange
	}
	if end <= start {
		return nil, 0, ErrInvalidTimeRange
	}
	duration := end.Minutes() - start.Minutes()
	if duration < v.MinDurationHours*60 {
		return nil, 0, ErrDurationTooShort
	}

	slots, err := s.venues.GetPricing(ctx, v.ID, req.BookingDate)
	if err != nil {
		return nil, 0, fmt.Errorf("booking service load pricing: %w", err)
	}
	priceSlots := make([]PriceSlot, len(slots))
	for i, sl := range slots {
		priceSlots[i] = PriceSlot{Start: sl.SlotStart, End: sl.SlotEnd, PricePerHour: sl.PricePerHour}
	}
	total := ComputeTotal(v.BasePricePerHour, start, end, priceSlots)

	b := &Booking{
		ID:          uuid.New(),
		VenueID:     v.ID,
		HallID:      v.HallID,
		CustomerID:  customerID,
		BookingDate: req.BookingDate,
		StartTime:   start,
		EndTime:     end,
		Status:      StatusPending,
		PaymentMode: PaymentMode(req.PaymentMode),
		TotalAmount: total,
		PaidAmount:  0,
	}

	if err := s.repo.CreateReserving(ctx, b); err != nil {
		return nil, 0, err
	}

	s.publish(ctx, NewEvent(EventCreated, b))
	return b, b.ConfirmationThreshold(), nil
}

// GetByID returns a booking visible to the requester: the customer who
// made it, or hall staff of the hall it belongs to.
func (s *Service) GetByID(ctx context.Context, bookingID, requesterID uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("booking service get: %w", err)
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	if err := s.authorize(ctx, b, requesterID); err != nil {
		return nil, err
	}
	return b, nil
}

// Cancel moves a pending or confirmed booking to cancelled, releasing its
// slot. Any settled payments are refunded.
func (s *Service) Cancel(ctx context.Context, bookingID, requesterID uuid.UUID, reason string) (*Booking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}

	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("booking service cancel lookup: %w", err)
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	if err := s.authorize(ctx, b, requesterID); err != nil {
		return nil, err
	}
	if b.Status.IsTerminal() {
		return nil, ErrInvalidState
	}

	if err := s.repo.UpdateStatusIf(ctx, bookingID, []Status{StatusPending, StatusConfirmed}, StatusCancelled, reason); err != nil {
		return nil, err
	}
	b.Status = StatusCancelled
	b.CancellationReason.String = reason
	b.CancellationReason.Valid = true

	if b.PaidAmount > 0 && s.refunder != nil {
		if err := s.refunder.RefundForCancellation(ctx, bookingID, reason); err != nil {
			log.Error().Err(err).Str("booking_id", bookingID.String()).Msg("refund on cancellation failed")
		}
	}

	ev := NewEvent(EventCancelled, b)
	ev.Reason = reason
	s.publish(ctx, ev)
	return b, nil
}

// ListMine returns the requesting customer's bookings, newest first.
func (s *Service) ListMine(ctx context.Context, customerID uuid.UUID) ([]Booking, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// ListByVenue returns a venue's schedule for hall staff.
func (s *Service) ListByVenue(ctx context.Context, venueID, requesterID uuid.UUID) ([]Booking, error) {
	v, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("booking service list venue: %w", err)
	}
	if v == nil {
		return nil, ErrVenueNotFound
	}
	if err := s.halls.RequireAccess(ctx, v.HallID, requesterID); err != nil {
		return nil, ErrUnauthorized
	}
	return s.repo.ListByVenue(ctx, venueID)
}

// ListByHall returns every booking across a hall's venues for its staff.
func (s *Service) ListByHall(ctx context.Context, hallID, requesterID uuid.UUID) ([]Booking, error) {
	if err := s.halls.RequireAccess(ctx, hallID, requesterID); err != nil {
		return nil, ErrUnauthorized
	}
	return s.repo.ListByHall(ctx, hallID)
}

// Receipt renders a PDF receipt for the booking.
func (s *Service) Receipt(ctx context.Context, bookingID, requesterID uuid.UUID) ([]byte, string, error) {
	b, err := s.GetByID(ctx, bookingID, requesterID)
	if err != nil {
		return nil, "", err
	}

	customer, err := s.users.GetByID(ctx, b.CustomerID)
	if err != nil {
		return nil, "", fmt.Errorf("booking service receipt customer: %w", err)
	}
	v, err := s.venues.GetByID(ctx, b.VenueID)
	if err != nil {
		return nil, "", fmt.Errorf("booking service receipt venue: %w", err)
	}
	h, err := s.halls.GetByID(ctx, b.HallID)
	if err != nil {
		return nil, "", fmt.Errorf("booking service receipt hall: %w", err)
	}

	data := receipt.Data{
		BookingID:     b.ID.String(),
		Date:          b.BookingDate,
		StartTime:     b.StartTime.String(),
		EndTime:       b.EndTime.String(),
		DurationHours: fmt.Sprintf("%.1f", float64(b.DurationMinutes())/60),
		TotalAmount:   b.TotalAmount.String(),
		PaidAmount:    b.PaidAmount.String(),
		PaymentMode:   string(b.PaymentMode),
		Status:        string(b.Status),
		GeneratedAt:   s.now(),
	}
	if customer != nil {
		data.CustomerName = customer.FullName
		data.CustomerEmail = customer.Email
	}
	if v != nil {
		data.VenueName = v.Name
		data.PricePerHour = v.BasePricePerHour.String()
	}
	if h != nil {
		data.HallName = h.Name
	}

	if s.payments != nil {
		lines, refunded, err := s.payments.ReceiptLines(ctx, bookingID)
		if err != nil {
			return nil, "", fmt.Errorf("booking service receipt payments: %w", err)
		}
		data.RefundedAmount = refunded.String()
		for _, line := range lines {
			data.Payments = append(data.Payments, receipt.PaymentLine{
				Type:      line.Type,
				Amount:    line.Amount.String(),
				Reference: line.Reference,
				PaidAt:    line.PaidAt.Format("2006-01-02 15:04"),
			})
		}
	}

	return receipt.Build(data)
}

// CompletePastBookings is the sweep run by the booking worker: confirmed
// bookings whose date is behind the server clock become completed.
func (s *Service) CompletePastBookings(ctx context.Context) (int64, error) {
	return s.repo.CompletePast(ctx, s.now().Format(dateLayout))
}

// ExpireStalePending cancels unpaid pending bookings older than maxAge.
func (s *Service) ExpireStalePending(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge)
	return s.repo.ExpireStalePending(ctx, cutoff, "expired: no payment received")
}

func (s *Service) authorize(ctx context.Context, b *Booking, requesterID uuid.UUID) error {
	if b.CustomerID == requesterID {
		return nil
	}
	if err := s.halls.RequireAccess(ctx, b.HallID, requesterID); err != nil {
		return ErrUnauthorized
	}
	return nil
}

func (s *Service) publish(ctx context.Context, ev Event) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishBookingEvent(ctx, ev)
}
