package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config holds Stripe API configuration
type Config struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	Timeout       time.Duration
}

// Client represents Stripe payment gateway client.
// When no secret key is configured the client runs in simulated mode and
// issues "sim_" references, so local development needs no Stripe account.
type Client struct {
	httpClient *http.Client
	config     Config
}

// PaymentIntent represents the subset of the Stripe PaymentIntent object we use
type PaymentIntent struct {
	ID           string `json:"id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
	ClientSecret string `json:"client_secret"`
}

// Refund represents the subset of the Stripe Refund object we use
type Refund struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

const apiBase = "https://api.stripe.com/v1"

// NewClient creates new Stripe API client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
	}
}

// Enabled reports whether a real Stripe key is configured
func (c *Client) Enabled() bool {
	key := strings.TrimSpace(c.config.SecretKey)
	return key != "" && !strings.Contains(key, "placeholder")
}

// CreatePaymentIntent creates a payment intent for the given amount in minor units.
// Metadata keys are passed through to Stripe for webhook correlation.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount int64, metadata map[string]string) (*PaymentIntent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("validation error: amount must be > 0")
	}

	if !c.Enabled() {
		return &PaymentIntent{
			ID:       fmt.Sprintf("sim_%d_%s", time.Now().UnixNano(), metadata["booking_id"]),
			Amount:   amount,
			Currency: c.config.Currency,
			Status:   "requires_payment_method",
		}, nil
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", c.config.Currency)
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	var out PaymentIntent
	if err := c.post(ctx, "/payment_intents", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRefund refunds part or all of a payment intent, amount in minor units.
func (c *Client) CreateRefund(ctx context.Context, paymentIntentID string, amount int64) (*Refund, error) {
	if strings.TrimSpace(paymentIntentID) == "" {
		return nil, fmt.Errorf("validation error: payment_intent is required")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("validation error: amount must be > 0")
	}

	// Simulated intents never reached Stripe, nothing to refund there
	if !c.Enabled() || strings.HasPrefix(paymentIntentID, "sim_") {
		return &Refund{
			ID:     fmt.Sprintf("sim_re_%d", time.Now().UnixNano()),
			Amount: amount,
			Status: "succeeded",
		}, nil
	}

	form := url.Values{}
	form.Set("payment_intent", paymentIntentID)
	form.Set("amount", strconv.FormatInt(amount, 10))

	var out Refund
	if err := c.post(ctx, "/refunds", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	timeout := c.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBase+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("stripe api call failed: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stripe api call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("stripe api call failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("stripe api returned non-2xx status: %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse stripe response: %w", err)
	}
	return nil
}
