package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/banquet/banquet-api/internal/domain/booking"
	"github.com/banquet/banquet-api/internal/pkg/stripe"
)

const testWebhookSecret = "whsec_test"

func webhookPayload(t *testing.T, eventType, intentID string, amount int64, bookingID string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":   "evt_1",
		"type": eventType,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":     intentID,
				"amount": amount,
				"status": "succeeded",
				"metadata": map[string]string{
					"booking_id": bookingID,
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return payload
}

func postWebhook(t *testing.T, h *Handler, payload []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)
	return rec
}

func signTest(payload []byte) string {
	return stripe.SignPayload(payload, testWebhookSecret, time.Now())
}

func TestWebhookConfirmsBooking(t *testing.T) {
	f := newPaymentFixture(t, booking.PaymentModeFull, 30000)
	h := NewHandler(f.svc, testWebhookSecret)

	payload := webhookPayload(t, "payment_intent.succeeded", "pi_hook", 30000, f.bookingID.String())
	rec := postWebhook(t, h, payload, signTest(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	b, _ := f.store.GetByID(context.Background(), f.bookingID)
	if b.Status != booking.StatusConfirmed {
		t.Errorf("booking status = %s, want confirmed", b.Status)
	}
	if b.PaidAmount != 30000 {
		t.Errorf("paid = %d, want 30000", b.PaidAmount)
	}

	// at-least-once delivery: the retry must not double-credit
	rec = postWebhook(t, h, payload, signTest(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("replay status = %d", rec.Code)
	}
	b, _ = f.store.GetByID(context.Background(), f.bookingID)
	if b.PaidAmount != 30000 {
		t.Errorf("paid after replay = %d, want 30000", b.PaidAmount)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newPaymentFixture(t, booking.PaymentModeFull, 30000)
	h := NewHandler(f.svc, testWebhookSecret)

	payload := webhookPayload(t, "payment_intent.succeeded", "pi_hook", 30000, f.bookingID.String())

	rec := postWebhook(t, h, payload, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing signature status = %d, want 400", rec.Code)
	}

	rec = postWebhook(t, h, payload, stripe.SignPayload(payload, "whsec_wrong", time.Now()))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("wrong secret status = %d, want 400", rec.Code)
	}

	b, _ := f.store.GetByID(context.Background(), f.bookingID)
	if b.PaidAmount != 0 {
		t.Errorf("unverified webhook credited booking: paid = %d", b.PaidAmount)
	}
}

func TestWebhookIgnoresUnrelatedEvents(t *testing.T) {
	f := newPaymentFixture(t, booking.PaymentModeFull, 30000)
	h := NewHandler(f.svc, testWebhookSecret)

	payload := webhookPayload(t, "customer.created", "cus_1", 0, f.bookingID.String())
	rec := postWebhook(t, h, payload, signTest(payload))
	if rec.Code != http.StatusOK {
		t.Errorf("unrelated event status = %d, want 200 ack", rec.Code)
	}
}

func TestWebhookMarksFailedIntent(t *testing.T) {
	f := newPaymentFixture(t, booking.PaymentModeFull, 30000)
	h := NewHandler(f.svc, testWebhookSecret)

	intent, err := f.svc.CreateIntent(context.Background(), f.customer, &CreateIntentRequest{
		BookingID:   f.bookingID,
		PaymentType: "full",
	})
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}

	payload := webhookPayload(t, "payment_intent.payment_failed", intent.ExternalRef, 30000, f.bookingID.String())
	rec := postWebhook(t, h, payload, signTest(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	payments, _ := f.svc.ListByBooking(context.Background(), f.bookingID, f.customer)
	if len(payments) != 1 {
		t.Fatalf("got %d payments", len(payments))
	}
	if payments[0].Status != StatusFailed {
		t.Errorf("payment status = %s, want failed", payments[0].Status)
	}

	b, _ := f.store.GetByID(context.Background(), f.bookingID)
	if b.PaidAmount != 0 {
		t.Errorf("failed intent credited booking: paid = %d", b.PaidAmount)
	}
}

func TestWebhookAmountMismatchAcked(t *testing.T) {
	f := newPaymentFixture(t, booking.PaymentModeFull, 30000)
	h := NewHandler(f.svc, testWebhookSecret)

	payload := webhookPayload(t, "payment_intent.succeeded", "pi_bad", 100, f.bookingID.String())
	rec := postWebhook(t, h, payload, signTest(payload))
	// acknowledged so the gateway stops retrying a charge we will never accept
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rec.Body.String())
	}
	if body.Data.Status != "rejected" {
		t.Errorf("status field = %q, want rejected", body.Data.Status)
	}
}
