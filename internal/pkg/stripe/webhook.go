package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance is the maximum accepted age of a signed webhook payload
const DefaultTolerance = 5 * time.Minute

// Event represents a Stripe webhook event envelope
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// EventPaymentIntent is the payment_intent object carried by payment events
type EventPaymentIntent struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
}

// VerifySignature validates a Stripe-Signature header against the payload.
// The header format is "t=<unix>,v1=<hex hmac>[,v1=...]"; the signed message
// is "<t>.<payload>" with HMAC-SHA256 over the webhook secret.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration) error {
	if secret == "" || header == "" {
		return fmt.Errorf("missing webhook secret or signature header")
	}
	if tolerance == 0 {
		tolerance = DefaultTolerance
	}

	var ts int64
	var signatures [][]byte
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			parsed, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid signature timestamp: %w", err)
			}
			ts = parsed
		case "v1":
			sig, err := hex.DecodeString(kv[1])
			if err != nil {
				continue
			}
			signatures = append(signatures, sig)
		}
	}

	if ts == 0 || len(signatures) == 0 {
		return fmt.Errorf("malformed signature header")
	}

	age := time.Since(time.Unix(ts, 0))
	if age > tolerance || age < -tolerance {
		return fmt.Errorf("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		if hmac.Equal(sig, expected) {
			return nil
		}
	}
	return fmt.Errorf("no matching signature")
}

// SignPayload produces a Stripe-Signature header value for testing
func SignPayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

// ParseEvent decodes a verified webhook payload
func ParseEvent(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("invalid event payload: %w", err)
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("event type is required")
	}
	return &ev, nil
}

// PaymentIntentFromEvent extracts the payment intent from a payment event
func PaymentIntentFromEvent(ev *Event) (*EventPaymentIntent, error) {
	var pi EventPaymentIntent
	if err := json.Unmarshal(ev.Data.Object, &pi); err != nil {
		return nil, fmt.Errorf("invalid payment_intent object: %w", err)
	}
	if pi.ID == "" {
		return nil, fmt.Errorf("payment_intent id is required")
	}
	return &pi, nil
}
