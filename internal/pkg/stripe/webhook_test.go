package stripe

import (
	"context"
	"strings"
	"testing"
	"time"
)

const testSecret = "whsec_test_secret"

func TestVerifySignatureRoundTrip(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123","amount":18750,"metadata":{"booking_id":"b1"}}}}`)
	header := SignPayload(payload, testSecret, time.Now())

	if err := VerifySignature(payload, header, testSecret, DefaultTolerance); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
}

func TestVerifySignatureRejectsTamperedPayload(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	header := SignPayload(payload, testSecret, time.Now())

	if err := VerifySignature([]byte(`{"id":"evt_2"}`), header, testSecret, DefaultTolerance); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	header := SignPayload(payload, testSecret, time.Now())

	if err := VerifySignature(payload, header, "whsec_other", DefaultTolerance); err == nil {
		t.Fatal("expected signature mismatch for wrong secret")
	}
}

func TestVerifySignatureRejectsStaleTimestamp(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	header := SignPayload(payload, testSecret, time.Now().Add(-1*time.Hour))

	if err := VerifySignature(payload, header, testSecret, DefaultTolerance); err == nil {
		t.Fatal("expected stale timestamp rejection")
	}
}

func TestVerifySignatureRejectsMalformedHeader(t *testing.T) {
	if err := VerifySignature([]byte("{}"), "nonsense", testSecret, DefaultTolerance); err == nil {
		t.Fatal("expected malformed header rejection")
	}
}

func TestParseEventAndExtractIntent(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123","amount":18750,"currency":"usd","status":"succeeded","metadata":{"booking_id":"b1","payment_type":"installment_1"}}}}`)

	ev, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("parse event failed: %v", err)
	}
	if ev.Type != "payment_intent.succeeded" {
		t.Fatalf("unexpected type %q", ev.Type)
	}

	pi, err := PaymentIntentFromEvent(ev)
	if err != nil {
		t.Fatalf("extract intent failed: %v", err)
	}
	if pi.ID != "pi_123" || pi.Amount != 18750 {
		t.Fatalf("unexpected intent: %+v", pi)
	}
	if pi.Metadata["booking_id"] != "b1" {
		t.Fatalf("missing metadata: %+v", pi.Metadata)
	}
}

func TestSimulatedClientIssuesSimReferences(t *testing.T) {
	c := NewClient(Config{})
	if c.Enabled() {
		t.Fatal("client without key must be simulated")
	}

	pi, err := c.CreatePaymentIntent(context.Background(), 37500, map[string]string{"booking_id": "b1"})
	if err != nil {
		t.Fatalf("simulated intent failed: %v", err)
	}
	if !strings.HasPrefix(pi.ID, "sim_") {
		t.Fatalf("expected sim_ reference, got %s", pi.ID)
	}
	if pi.Amount != 37500 {
		t.Fatalf("unexpected amount %d", pi.Amount)
	}

	re, err := c.CreateRefund(context.Background(), pi.ID, 10000)
	if err != nil {
		t.Fatalf("simulated refund failed: %v", err)
	}
	if re.Status != "succeeded" {
		t.Fatalf("unexpected refund status %s", re.Status)
	}
}
