package booking

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/banquet/banquet-api/internal/domain/hall"
	"github.com/banquet/banquet-api/internal/domain/user"
	"github.com/banquet/banquet-api/internal/domain/venue"
	"github.com/banquet/banquet-api/internal/pkg/money"
	"github.com/banquet/banquet-api/internal/pkg/timeslot"
)

type fakeRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*Booking
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: make(map[uuid.UUID]*Booking)}
}

func (r *fakeRepo) CreateReserving(ctx context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.bookings {
		if existing.VenueID != b.VenueID || existing.BookingDate != b.BookingDate {
			continue
		}
		if existing.Status != StatusPending && existing.Status != StatusConfirmed {
			continue
		}
		if timeslot.Overlaps(existing.StartTime, existing.EndTime, b.StartTime, b.EndTime) {
			return ErrSlotConflict
		}
	}
	clone := *b
	clone.CreatedAt = time.Now()
	r.bookings[b.ID] = &clone
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	clone := *b
	return &clone, nil
}

func (r *fakeRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []Status, to Status, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return ErrBookingNotFound
	}
	for _, f := range from {
		if b.Status == f {
			b.Status = to
			if reason != "" {
				b.CancellationReason.String = reason
				b.CancellationReason.Valid = true
			}
			return nil
		}
	}
	return ErrInvalidState
}

func (r *fakeRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Booking
	for _, b := range r.bookings {
		if b.CustomerID == customerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByVenue(ctx context.Context, venueID uuid.UUID) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Booking
	for _, b := range r.bookings {
		if b.VenueID == venueID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByHall(ctx context.Context, hallID uuid.UUID) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Booking
	for _, b := range r.bookings {
		if b.HallID == hallID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeRepo) CompletePast(ctx context.Context, today string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.Status == StatusConfirmed && b.BookingDate < today {
			b.Status = StatusCompleted
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) ExpireStalePending(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.Status == StatusPending && b.PaidAmount == 0 && b.CreatedAt.Before(cutoff) {
			b.Status = StatusCancelled
			b.CancellationReason.String = reason
			b.CancellationReason.Valid = true
			n++
		}
	}
	return n, nil
}

type fakeVenues struct {
	venues  map[uuid.UUID]*venue.Venue
	pricing map[string][]venue.PricingSlot // venueID:date
}

func newFakeVenues() *fakeVenues {
	return &fakeVenues{
		venues:  make(map[uuid.UUID]*venue.Venue),
		pricing: make(map[string][]venue.PricingSlot),
	}
}

func (f *fakeVenues) GetByID(ctx context.Context, id uuid.UUID) (*venue.Venue, error) {
	return f.venues[id], nil
}

func (f *fakeVenues) GetPricing(ctx context.Context, venueID uuid.UUID, effectiveDate string) ([]venue.PricingSlot, error) {
	return f.pricing[venueID.String()+":"+effectiveDate], nil
}

type fakeHalls struct {
	halls map[uuid.UUID]*hall.Hall
	staff map[uuid.UUID]map[uuid.UUID]bool // hallID -> userID
}

func newFakeHalls() *fakeHalls {
	return &fakeHalls{
		halls: make(map[uuid.UUID]*hall.Hall),
		staff: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (f *fakeHalls) GetByID(ctx context.Context, id uuid.UUID) (*hall.Hall, error) {
	return f.halls[id], nil
}

func (f *fakeHalls) RequireAccess(ctx context.Context, hallID, requesterID uuid.UUID) error {
	if f.staff[hallID][requesterID] {
		return nil
	}
	return hall.ErrNotHallStaff
}

func (f *fakeHalls) grant(hallID, userID uuid.UUID) {
	if f.staff[hallID] == nil {
		f.staff[hallID] = make(map[uuid.UUID]bool)
	}
	f.staff[hallID][userID] = true
}

type fakeUsers struct {
	users map[uuid.UUID]*user.User
}

func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return f.users[id], nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *fakePublisher) PublishBookingEvent(ctx context.Context, event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fakeRefunder struct {
	calls []uuid.UUID
}

func (f *fakeRefunder) RefundForCancellation(ctx context.Context, bookingID uuid.UUID, reason string) error {
	f.calls = append(f.calls, bookingID)
	return nil
}

type fakePayments struct {
	lines    []PaymentRecord
	refunded money.Amount
}

func (f *fakePayments) ReceiptLines(ctx context.Context, bookingID uuid.UUID) ([]PaymentRecord, money.Amount, error) {
	return f.lines, f.refunded, nil
}

type fixture struct {
	svc       *Service
	repo      *fakeRepo
	venues    *fakeVenues
	halls     *fakeHalls
	users     *fakeUsers
	publisher *fakePublisher
	venueID   uuid.UUID
	hallID    uuid.UUID
	owner     uuid.UUID
	customer  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:      newFakeRepo(),
		venues:    newFakeVenues(),
		halls:     newFakeHalls(),
		users:     &fakeUsers{users: make(map[uuid.UUID]*user.User)},
		publisher: &fakePublisher{},
		venueID:   uuid.New(),
		hallID:    uuid.New(),
		owner:     uuid.New(),
		customer:  uuid.New(),
	}
	f.venues.venues[f.venueID] = &venue.Venue{
		ID:               f.venueID,
		HallID:           f.hallID,
		Name:             "Grand Ballroom",
		Capacity:         200,
		BasePricePerHour: 15000,
		MinDurationHours: 2,
		Active:           true,
	}
	f.halls.halls[f.hallID] = &hall.Hall{ID: f.hallID, OwnerID: f.owner, Name: "Astana Palace"}
	f.halls.grant(f.hallID, f.owner)
	f.users.users[f.customer] = &user.User{ID: f.customer, Email: "guest@example.com", FullName: "Guest One", Role: user.RoleCustomer}

	f.svc = NewService(f.repo, f.venues, f.halls, f.users, f.publisher)
	f.svc.now = func() time.Time {
		return time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	}
	return f
}

func (f *fixture) createReq(date, start, end, mode string) *CreateRequest {
	return &CreateRequest{
		VenueID:     f.venueID,
		BookingDate: date,
		StartTime:   start,
		EndTime:     end,
		PaymentMode: mode,
	}
}

func TestCreateComputesTotalFromDuration(t *testing.T) {
	f := newFixture(t)

	b, payable, err := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-10", "09:00", "11:30", "full"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// 150 minutes at 15000 per hour
	if b.TotalAmount != 37500 {
		t.Errorf("total = %d, want 37500", b.TotalAmount)
	}
	if payable != 37500 {
		t.Errorf("payable now = %d, want full total", payable)
	}
	if b.Status != StatusPending {
		t.Errorf("status = %s, want pending", b.Status)
	}
	if b.PaidAmount != 0 {
		t.Errorf("paid = %d, want 0", b.PaidAmount)
	}
	if got := f.publisher.types(); len(got) != 1 || got[0] != EventCreated {
		t.Errorf("events = %v, want [booking.created]", got)
	}
}

func TestCreateInstallmentPayableIsCeilHalf(t *testing.T) {
	f := newFixture(t)
	f.venues.venues[f.venueID].BasePricePerHour = 15001

	b, payable, err := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-10", "09:00", "11:30", "installment"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// 15001 * 150 / 60 = 37502.5, rounds half up to 37503; first
	// installment is the ceiling of half of that.
	if b.TotalAmount != 37503 {
		t.Fatalf("total = %d, want 37503", b.TotalAmount)
	}
	if payable != 18752 {
		t.Errorf("payable now = %d, want 18752", payable)
	}
	if first, second := money.SplitInstallments(b.TotalAmount); first+second != b.TotalAmount {
		t.Errorf("installments %d + %d != total %d", first, second, b.TotalAmount)
	}
}

func TestCreateSlotPricingOverride(t *testing.T) {
	f := newFixture(t)
	evening, _ := timeslot.Parse("18:00")
	close, _ := timeslot.Parse("22:00")
	f.venues.pricing[f.venueID.String()+":2026-06-10"] = []venue.PricingSlot{
		{VenueID: f.venueID, EffectiveDate: "2026-06-10", SlotStart: evening, SlotEnd: close, PricePerHour: 20000},
	}

	b, _, err := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-10", "17:00", "19:00", "full"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// one hour at base 15000 plus one hour at the 20000 override
	if b.TotalAmount != 35000 {
		t.Errorf("total = %d, want 35000", b.TotalAmount)
	}
}

func TestCreateMinimumDuration(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-10", "09:00", "10:30", "full"))
	if err != ErrDurationTooShort {
		t.Errorf("90min booking err = %v, want ErrDurationTooShort", err)
	}

	// exactly the minimum is allowed
	if _, _, err := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-10", "09:00", "11:00", "full")); err != nil {
		t.Errorf("120min booking err = %v, want nil", err)
	}
}

func TestCreateRejectsPastDateAndBadRange(t *testing.T) {
	f := newFixture(t)

	if _, _, err := f.svc.Create(context.Background(), f.customer, f.createReq("2026-05-31", "09:00", "12:00", "full")); err != ErrDateInPast {
		t.Errorf("past date err = %v, want ErrDateInPast", err)
	}
	// same-day booking is allowed
	if _, _, err := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-01", "09:00", "12:00", "full")); err != nil {
		t.Errorf("same-day err = %v, want nil", err)
	}
	if _, _, err := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-10", "12:00", "12:00", "full")); err != ErrInvalidTimeRange {
		t.Errorf("zero-length err = %v, want ErrInvalidTimeRange", err)
	}
	if _, _, err := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-10", "14:00", "12:00", "full")); err != ErrInvalidTimeRange {
		t.Errorf("inverted err = %v, want ErrInvalidTimeRange", err)
	}
}

func TestCreateRejectsInactiveOrMissingVenue(t *testing.T) {
	f := newFixture(t)

	f.venues.venues[f.venueID].Active = false
	if _, _, err := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-10", "09:00", "12:00", "full")); err != ErrVenueInactive {
		t.Errorf("inactive venue err = %v, want ErrVenueInactive", err)
	}

	req := f.createReq("2026-06-10", "09:00", "12:00", "full")
	req.VenueID = uuid.New()
	if _, _, err := f.svc.Create(context.Background(), f.customer, req); err != ErrVenueNotFound {
		t.Errorf("missing venue err = %v, want ErrVenueNotFound", err)
	}
}

func TestCreateAdjacentSlotsAllowed(t *testing.T) {
	f := newFixture(t)

	if _, _, err := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-10", "10:00", "12:00", "full")); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	// back to back is not a conflict
	if _, _, err := f.svc.Create(context.Background(), uuid.New(), f.createReq("2026-06-10", "12:00", "14:00", "full")); err != nil {
		t.Errorf("adjacent booking err = %v, want nil", err)
	}
	if _, _, err := f.svc.Create(context.Background(), uuid.New(), f.createReq("2026-06-10", "11:00", "13:00", "full")); err != ErrSlotConflict {
		t.Errorf("overlapping booking err = %v, want ErrSlotConflict", err)
	}
	// same time on another day is fine
	if _, _, err := f.svc.Create(context.Background(), uuid.New(), f.createReq("2026-06-11", "11:00", "13:00", "full")); err != nil {
		t.Errorf("other-day booking err = %v, want nil", err)
	}
}

func TestCancelReleasesSlot(t *testing.T) {
	f := newFixture(t)

	b, _, err := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-10", "10:00", "12:00", "full"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled, err := f.svc.Cancel(context.Background(), b.ID, f.customer, "change of plans")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if cancelled.CancellationReason.String != "change of plans" {
		t.Errorf("reason = %q", cancelled.CancellationReason.String)
	}

	// the slot is free again
	if _, _, err := f.svc.Create(context.Background(), uuid.New(), f.createReq("2026-06-10", "10:00", "12:00", "full")); err != nil {
		t.Errorf("rebooking cancelled slot err = %v, want nil", err)
	}

	got := f.publisher.types()
	if len(got) != 3 || got[1] != EventCancelled {
		t.Errorf("events = %v, want cancelled second", got)
	}
}

func TestCancelAuthorization(t *testing.T) {
	f := newFixture(t)

	b, _, err := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-10", "10:00", "12:00", "full"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.Cancel(context.Background(), b.ID, uuid.New(), "not mine"); err != ErrUnauthorized {
		t.Errorf("stranger cancel err = %v, want ErrUnauthorized", err)
	}
	// hall owner may cancel any booking in their hall
	if _, err := f.svc.Cancel(context.Background(), b.ID, f.owner, "double booked offline"); err != nil {
		t.Errorf("owner cancel err = %v, want nil", err)
	}
}

func TestCancelRequiresReason(t *testing.T) {
	f := newFixture(t)

	b, _, _ := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-10", "10:00", "12:00", "full"))
	if _, err := f.svc.Cancel(context.Background(), b.ID, f.customer, "   "); err != ErrEmptyReason {
		t.Errorf("blank reason err = %v, want ErrEmptyReason", err)
	}
}

func TestCancelledBookingIsImmutable(t *testing.T) {
	f := newFixture(t)

	b, _, _ := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-10", "10:00", "12:00", "full"))
	if _, err := f.svc.Cancel(context.Background(), b.ID, f.customer, "first"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), b.ID, f.customer, "second"); err != ErrInvalidState {
		t.Errorf("double cancel err = %v, want ErrInvalidState", err)
	}
}

func TestCancelPaidBookingTriggersRefund(t *testing.T) {
	f := newFixture(t)
	refunder := &fakeRefunder{}
	f.svc.SetRefunder(refunder)

	b, _, _ := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-10", "10:00", "12:00", "full"))
	f.repo.bookings[b.ID].PaidAmount = 30000
	f.repo.bookings[b.ID].Status = StatusConfirmed

	if _, err := f.svc.Cancel(context.Background(), b.ID, f.customer, "venue flooded"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(refunder.calls) != 1 || refunder.calls[0] != b.ID {
		t.Errorf("refunder calls = %v, want [%s]", refunder.calls, b.ID)
	}
}

func TestListByVenueRequiresHallAccess(t *testing.T) {
	f := newFixture(t)

	if _, _, err := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-10", "10:00", "12:00", "full")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.ListByVenue(context.Background(), f.venueID, uuid.New()); err != ErrUnauthorized {
		t.Errorf("stranger list err = %v, want ErrUnauthorized", err)
	}
	bookings, err := f.svc.ListByVenue(context.Background(), f.venueID, f.owner)
	if err != nil {
		t.Fatalf("owner list: %v", err)
	}
	if len(bookings) != 1 {
		t.Errorf("got %d bookings, want 1", len(bookings))
	}
}

func TestCompletePastBookings(t *testing.T) {
	f := newFixture(t)

	b, _, _ := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-10", "10:00", "12:00", "full"))
	f.repo.bookings[b.ID].Status = StatusConfirmed
	f.repo.bookings[b.ID].BookingDate = "2026-05-20"

	n, err := f.svc.CompletePastBookings(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Errorf("completed %d, want 1", n)
	}
	got, _ := f.repo.GetByID(context.Background(), b.ID)
	if got.Status != StatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
}

func TestExpireStalePending(t *testing.T) {
	f := newFixture(t)

	b, _, _ := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-10", "10:00", "12:00", "full"))
	f.repo.bookings[b.ID].CreatedAt = time.Date(2026, 5, 30, 9, 0, 0, 0, time.UTC)

	n, err := f.svc.ExpireStalePending(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Errorf("expired %d, want 1", n)
	}
	got, _ := f.repo.GetByID(context.Background(), b.ID)
	if got.Status != StatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
}

func TestReceiptIncludesPaymentHistory(t *testing.T) {
	f := newFixture(t)
	f.svc.SetPaymentLister(&fakePayments{
		lines: []PaymentRecord{
			{Type: "installment_1", Amount: 18750, Reference: "pi_123", PaidAt: time.Date(2026, 6, 2, 12, 0, 0, 0, time.UTC)},
		},
	})

	b, _, _ := f.svc.Create(context.Background(), f.customer, f.createReq("2026-06-10", "10:00", "12:00", "installment"))

	pdf, filename, err := f.svc.Receipt(context.Background(), b.ID, f.customer)
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if len(pdf) == 0 || !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("receipt is not a PDF (%d bytes)", len(pdf))
	}
	if filename != "RECEIPT_"+b.ID.String()+".pdf" {
		t.Errorf("filename = %q", filename)
	}

	// strangers cannot pull receipts
	if _, _, err := f.svc.Receipt(context.Background(), b.ID, uuid.New()); err != ErrUnauthorized {
		t.Errorf("stranger receipt err = %v, want ErrUnauthorized", err)
	}
}
