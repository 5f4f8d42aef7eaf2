package payment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/banquet/banquet-api/internal/domain/booking"
	"github.com/banquet/banquet-api/internal/pkg/money"
	"github.com/banquet/banquet-api/internal/pkg/stripe"
)

// fakeStore keeps bookings and payments in one place so confirm and
// refund mutate the same state the booking lookups read, mirroring the
// transactional behavior of the real repository.
type fakeStore struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*booking.Booking
	payments map[uuid.UUID]*Payment
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookings: make(map[uuid.UUID]*booking.Booking),
		payments: make(map[uuid.UUID]*Payment),
	}
}

// paymentRepo adapts fakeStore to the payment Repository interface:
// the booking-flavored GetByID on fakeStore collides with the
// payment-flavored one Repository wants, so it is shadowed here.
type paymentRepo struct {
	*fakeStore
}

func (r paymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	clone := *b
	return &clone, nil
}

func (f *fakeStore) CreatePending(ctx context.Context, p *Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *p
	clone.CreatedAt = time.Now()
	f.payments[p.ID] = &clone
	return nil
}

func (f *fakeStore) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Payment
	for _, p := range f.payments {
		if p.BookingID == bookingID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) Confirm(ctx context.Context, bookingID uuid.UUID, externalRef string, amount money.Amount) (*ConfirmResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.bookings[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	for _, p := range f.payments {
		if p.BookingID == bookingID && p.ExternalRef == externalRef && p.Status == StatusSuccess {
			clone := *b
			return &ConfirmResult{Booking: &clone, Duplicate: true}, nil
		}
	}
	if b.Status != booking.StatusPending && b.Status != booking.StatusConfirmed {
		return nil, ErrInvalidState
	}
	if b.PaidAmount >= b.TotalAmount {
		return nil, ErrInvalidState
	}
	if amount != expectedStepAmount(b) {
		return nil, ErrAmountMismatch
	}

	settled := false
	for _, p := range f.payments {
		if p.BookingID == bookingID && p.ExternalRef == externalRef && p.Status == StatusPending {
			p.Status = StatusSuccess
			p.PaidAt.Time = time.Now()
			p.PaidAt.Valid = true
			settled = true
			break
		}
	}
	if !settled {
		id := uuid.New()
		f.payments[id] = &Payment{
			ID: id, BookingID: bookingID, CustomerID: b.CustomerID,
			Type: stepTypeFor(b), Status: StatusSuccess, Amount: amount, ExternalRef: externalRef,
		}
	}

	b.PaidAmount += amount
	confirmed := false
	if b.Status == booking.StatusPending && b.PaidAmount >= b.ConfirmationThreshold() {
		b.Status = booking.StatusConfirmed
		confirmed = true
	}
	clone := *b
	return &ConfirmResult{Booking: &clone, Confirmed: confirmed}, nil
}

func (f *fakeStore) Refund(ctx context.Context, bookingID uuid.UUID, amount money.Amount, gatewayRef string) (*booking.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	if amount > b.PaidAmount {
		return nil, ErrRefundExceedsPaid
	}
	id := uuid.New()
	f.payments[id] = &Payment{
		ID: id, BookingID: bookingID, CustomerID: b.CustomerID,
		Type: TypeRefund, Status: StatusRefunded, Amount: amount, ExternalRef: gatewayRef,
	}
	b.PaidAmount -= amount
	clone := *b
	return &clone, nil
}

func (f *fakeStore) MarkFailed(ctx context.Context, bookingID uuid.UUID, externalRef, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.BookingID == bookingID && p.ExternalRef == externalRef && p.Status == StatusPending {
			p.Status = StatusFailed
			p.FailureReason.String = reason
			p.FailureReason.Valid = true
		}
	}
	return nil
}

func (f *fakeStore) LatestSuccessRef(ctx context.Context, bookingID uuid.UUID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.BookingID == bookingID && p.Status == StatusSuccess {
			return p.ExternalRef, nil
		}
	}
	return "", ErrNothingToRefund
}

func (f *fakeStore) ReceiptRows(ctx context.Context, bookingID uuid.UUID) ([]Payment, money.Amount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var lines []Payment
	var refunded money.Amount
	for _, p := range f.payments {
		if p.BookingID != bookingID {
			continue
		}
		switch p.Status {
		case StatusSuccess:
			lines = append(lines, *p)
		case StatusRefunded:
			refunded += p.Amount
		}
	}
	return lines, refunded, nil
}

type allowAllAccess struct{ allowed map[uuid.UUID]bool }

func (a allowAllAccess) RequireAccess(ctx context.Context, hallID, requesterID uuid.UUID) error {
	if a.allowed == nil || a.allowed[requesterID] {
		return nil
	}
	return ErrUnauthorized
}

type paymentFixture struct {
	svc       *Service
	store     *fakeStore
	gateway   *stripe.Client
	publisher *recordingPublisher
	bookingID uuid.UUID
	hallID    uuid.UUID
	customer  uuid.UUID
	staff     uuid.UUID
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []booking.Event
}

func (p *recordingPublisher) PublishBookingEvent(ctx context.Context, event booking.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func newPaymentFixture(t *testing.T, mode booking.PaymentMode, total money.Amount) *paymentFixture {
	t.Helper()

	f := &paymentFixture{
		store:     newFakeStore(),
		gateway:   stripe.NewClient(stripe.Config{}), // simulated mode
		publisher: &recordingPublisher{},
		bookingID: uuid.New(),
		hallID:    uuid.New(),
		customer:  uuid.New(),
		staff:     uuid.New(),
	}
	f.store.bookings[f.bookingID] = &booking.Booking{
		ID:          f.bookingID,
		VenueID:     uuid.New(),
		HallID:      f.hallID,
		CustomerID:  f.customer,
		BookingDate: "2026-07-01",
		StartTime:   600,
		EndTime:     720,
		Status:      booking.StatusPending,
		PaymentMode: mode,
		TotalAmount: total,
	}
	access := allowAllAccess{allowed: map[uuid.UUID]bool{f.staff: true}}
	f.svc = NewService(paymentRepo{f.store}, f.store, access, f.gateway, f.publisher, "kzt")
	return f
}

func TestCreateIntentFirstInstallment(t *testing.T) {
	f := newPaymentFixture(t, booking.PaymentModeInstallment, 37503)

	intent, err := f.svc.CreateIntent(context.Background(), f.customer, &CreateIntentRequest{
		BookingID:   f.bookingID,
		PaymentType: "installment_1",
	})
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	if intent.Amount != 18752 {
		t.Errorf("amount = %d, want ceil of half (18752)", intent.Amount)
	}
	if intent.ExternalRef == "" {
		t.Error("missing gateway reference")
	}
}

func TestCreateIntentRejectsWrongStep(t *testing.T) {
	f := newPaymentFixture(t, booking.PaymentModeInstallment, 30000)

	if _, err := f.svc.CreateIntent(context.Background(), f.customer, &CreateIntentRequest{
		BookingID:   f.bookingID,
		PaymentType: "installment_2",
	}); err != ErrInvalidPaymentType {
		t.Errorf("second installment before first err = %v, want ErrInvalidPaymentType", err)
	}
	if _, err := f.svc.CreateIntent(context.Background(), f.customer, &CreateIntentRequest{
		BookingID:   f.bookingID,
		PaymentType: "full",
	}); err != ErrInvalidPaymentType {
		t.Errorf("full on installment booking err = %v, want ErrInvalidPaymentType", err)
	}
}

func TestCreateIntentAuthorization(t *testing.T) {
	f := newPaymentFixture(t, booking.PaymentModeFull, 30000)

	if _, err := f.svc.CreateIntent(context.Background(), uuid.New(), &CreateIntentRequest{
		BookingID:   f.bookingID,
		PaymentType: "full",
	}); err != ErrUnauthorized {
		t.Errorf("stranger intent err = %v, want ErrUnauthorized", err)
	}
}

func TestConfirmFlipsBookingAtThreshold(t *testing.T) {
	f := newPaymentFixture(t, booking.PaymentModeInstallment, 30000)

	result, err := f.svc.Confirm(context.Background(), f.bookingID, "pi_first", 15000)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.Booking.Status != booking.StatusConfirmed {
		t.Errorf("status = %s, want confirmed after first installment", result.Booking.Status)
	}
	if !result.Confirmed {
		t.Error("expected Confirmed flag on the flipping call")
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].Type != booking.EventConfirmed {
		t.Errorf("events = %v, want one booking.confirmed", f.publisher.events)
	}

	// second installment settles the remainder without another flip
	result, err = f.svc.Confirm(context.Background(), f.bookingID, "pi_second", 15000)
	if err != nil {
		t.Fatalf("second confirm: %v", err)
	}
	if result.Confirmed {
		t.Error("second installment must not report a flip")
	}
	if result.Booking.PaidAmount != 30000 {
		t.Errorf("paid = %d, want 30000", result.Booking.PaidAmount)
	}
	if len(f.publisher.events) != 1 {
		t.Errorf("extra events published: %v", f.publisher.events)
	}
}

func TestConfirmIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t, booking.PaymentModeFull, 30000)

	first, err := f.svc.Confirm(context.Background(), f.bookingID, "pi_once", 30000)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	replay, err := f.svc.Confirm(context.Background(), f.bookingID, "pi_once", 30000)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !replay.Duplicate {
		t.Error("replay not flagged as duplicate")
	}
	if replay.Booking.PaidAmount != first.Booking.PaidAmount {
		t.Errorf("replay changed paid amount: %d != %d", replay.Booking.PaidAmount, first.Booking.PaidAmount)
	}
	if replay.Booking.Status != first.Booking.Status {
		t.Errorf("replay changed status: %s != %s", replay.Booking.Status, first.Booking.Status)
	}
	if len(f.publisher.events) != 1 {
		t.Errorf("duplicate published events: %v", f.publisher.events)
	}
}

func TestConfirmAmountMismatch(t *testing.T) {
	f := newPaymentFixture(t, booking.PaymentModeFull, 30000)

	if _, err := f.svc.Confirm(context.Background(), f.bookingID, "pi_x", 29999); err != ErrAmountMismatch {
		t.Errorf("err = %v, want ErrAmountMismatch", err)
	}
}

func TestRefundDefaultsToPaidAmount(t *testing.T) {
	f := newPaymentFixture(t, booking.PaymentModeFull, 30000)
	if _, err := f.svc.Confirm(context.Background(), f.bookingID, "pi_pay", 30000); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	b, err := f.svc.Refund(context.Background(), f.staff, &RefundRequest{BookingID: f.bookingID})
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if b.PaidAmount != 0 {
		t.Errorf("paid after refund = %d, want 0", b.PaidAmount)
	}

	_, refunded, err := f.svc.ReceiptLines(context.Background(), f.bookingID)
	if err != nil {
		t.Fatalf("receipt lines: %v", err)
	}
	if refunded != 30000 {
		t.Errorf("refunded total = %d, want 30000", refunded)
	}
}

func TestRefundCannotExceedPaid(t *testing.T) {
	f := newPaymentFixture(t, booking.PaymentModeInstallment, 30000)
	if _, err := f.svc.Confirm(context.Background(), f.bookingID, "pi_half", 15000); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if _, err := f.svc.Refund(context.Background(), f.staff, &RefundRequest{
		BookingID: f.bookingID,
		Amount:    20000,
	}); err != ErrRefundExceedsPaid {
		t.Errorf("err = %v, want ErrRefundExceedsPaid", err)
	}
}

func TestRefundRequiresStaff(t *testing.T) {
	f := newPaymentFixture(t, booking.PaymentModeFull, 30000)
	if _, err := f.svc.Confirm(context.Background(), f.bookingID, "pi_pay", 30000); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if _, err := f.svc.Refund(context.Background(), uuid.New(), &RefundRequest{BookingID: f.bookingID}); err != ErrUnauthorized {
		t.Errorf("stranger refund err = %v, want ErrUnauthorized", err)
	}
}

func TestCancellationRefundPolicies(t *testing.T) {
	f := newPaymentFixture(t, booking.PaymentModeFull, 30000)
	if _, err := f.svc.Confirm(context.Background(), f.bookingID, "pi_pay", 30000); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	f.svc.SetRefundPolicy(PercentageRefund{Percent: 50})
	if err := f.svc.RefundForCancellation(context.Background(), f.bookingID, "customer cancelled"); err != nil {
		t.Fatalf("cancellation refund: %v", err)
	}

	b, _ := f.store.GetByID(context.Background(), f.bookingID)
	if b.PaidAmount != 15000 {
		t.Errorf("paid after 50%% policy = %d, want 15000", b.PaidAmount)
	}
}

func TestCancellationRefundSkipsUnpaid(t *testing.T) {
	f := newPaymentFixture(t, booking.PaymentModeFull, 30000)

	if err := f.svc.RefundForCancellation(context.Background(), f.bookingID, "nothing paid"); err != nil {
		t.Errorf("unpaid cancellation refund err = %v, want nil", err)
	}
}

func TestListByBookingAccess(t *testing.T) {
	f := newPaymentFixture(t, booking.PaymentModeFull, 30000)
	if _, err := f.svc.Confirm(context.Background(), f.bookingID, "pi_pay", 30000); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	payments, err := f.svc.ListByBooking(context.Background(), f.bookingID, f.customer)
	if err != nil {
		t.Fatalf("customer list: %v", err)
	}
	if len(payments) != 1 {
		t.Errorf("got %d payments, want 1", len(payments))
	}
	if _, err := f.svc.ListByBooking(context.Background(), f.bookingID, uuid.New()); err != ErrUnauthorized {
		t.Errorf("stranger list err = %v, want ErrUnauthorized", err)
	}
}
