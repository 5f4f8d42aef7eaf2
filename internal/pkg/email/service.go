package email

import (
	"bytes"
	"context"
	"html/template"
	"sync"

	"github.com/rs/zerolog/log"
)

// Sender interface for sending emails
type Sender interface {
	Send(ctx context.Context, msg *EmailMessage) error
}

// Service handles email sending with templates
type Service struct {
	client       *SendGridClient
	templates    map[string]*template.Template
	baseTemplate *template.Template
	queue        chan *QueuedEmail
	wg           sync.WaitGroup
}

// QueuedEmail represents an email in the send queue
type QueuedEmail struct {
	To           string
	ToName       string
	Subject      string
	TemplateName string
	Data         interface{}
}

// NewService creates email service
func NewService(config SendGridConfig) *Service {
	s := &Service{
		client:    NewSendGridClient(config),
		templates: make(map[string]*template.Template),
		queue:     make(chan *QueuedEmail, 100),
	}

	// Load base template
	s.baseTemplate, _ = template.New("base").Parse(BaseTemplate)

	// Load all templates
	s.loadTemplates()

	// Start async worker
	s.wg.Add(1)
	go s.worker()

	return s
}

// loadTemplates loads all email templates
func (s *Service) loadTemplates() {
	templates := map[string]string{
		"welcome":           WelcomeTemplate,
		"booking_created":   BookingCreatedTemplate,
		"booking_confirmed": BookingConfirmedTemplate,
		"booking_cancelled": BookingCancelledTemplate,
		"booking_completed": BookingCompletedTemplate,
		"payment_received":  PaymentReceivedTemplate,
		"refund_issued":     RefundIssuedTemplate,
		"hall_approved":     HallApprovedTemplate,
		"hall_rejected":     HallRejectedTemplate,
	}

	for name, content := range templates {
		tmpl, err := template.New(name).Parse(content)
		if err != nil {
			log.Error().Err(err).Str("template", name).Msg("Failed to parse email template")
			continue
		}
		s.templates[name] = tmpl
	}
}

// worker processes queued emails asynchronously
func (s *Service) worker() {
	defer s.wg.Done()

	for email := range s.queue {
		ctx := context.Background()
		if err := s.send(ctx, email); err != nil {
			log.Error().Err(err).
				Str("to", email.To).
				Str("template", email.TemplateName).
				Msg("Failed to send email")
		}
	}
}

// send actually sends the email
func (s *Service) send(ctx context.Context, email *QueuedEmail) error {
	tmpl, ok := s.templates[email.TemplateName]
	if !ok {
		log.Warn().Str("template", email.TemplateName).Msg("Template not found")
		return nil
	}

	var contentBuf bytes.Buffer
	if err := tmpl.Execute(&contentBuf, email.Data); err != nil {
		return err
	}

	// Wrap in base template
	var htmlBuf bytes.Buffer
	if err := s.baseTemplate.Execute(&htmlBuf, map[string]interface{}{
		"Content": template.HTML(contentBuf.String()),
	}); err != nil {
		return err
	}

	return s.client.Send(ctx, &EmailMessage{
		To:          email.To,
		ToName:      email.ToName,
		Subject:     email.Subject,
		HTMLContent: htmlBuf.String(),
	})
}

// Queue adds an email to the async send queue
func (s *Service) Queue(to, toName, templateName, subject string, data interface{}) {
	select {
	case s.queue <- &QueuedEmail{
		To:           to,
		ToName:       toName,
		Subject:      subject,
		TemplateName: templateName,
		Data:         data,
	}:
	default:
		log.Warn().Str("to", to).Msg("Email queue full, dropping email")
	}
}

// SendSync sends an email synchronously (blocking)
func (s *Service) SendSync(ctx context.Context, to, toName, templateName, subject string, data interface{}) error {
	return s.send(ctx, &QueuedEmail{
		To:           to,
		ToName:       toName,
		Subject:      subject,
		TemplateName: templateName,
		Data:         data,
	})
}

// Close stops the email worker
func (s *Service) Close() {
	close(s.queue)
	s.wg.Wait()
}

// --- Convenience methods for specific emails ---

// SendWelcome sends welcome email to new user
func (s *Service) SendWelcome(to, toName, userName, role, dashboardURL string) {
	s.Queue(to, toName, "welcome", "Welcome to Banquet!", map[string]string{
		"UserName":     userName,
		"Role":         role,
		"DashboardURL": dashboardURL,
	})
}

// SendBookingCreated notifies the customer a booking was placed and is awaiting payment
func (s *Service) SendBookingCreated(to, toName, venueName, date, timeRange, amount, bookingURL string) {
	s.Queue(to, toName, "booking_created", "Your booking is pending payment", map[string]string{
		"VenueName":  venueName,
		"Date":       date,
		"TimeRange":  timeRange,
		"Amount":     amount,
		"BookingURL": bookingURL,
	})
}

// SendBookingConfirmed notifies the customer a booking is confirmed
func (s *Service) SendBookingConfirmed(to, toName, venueName, date, timeRange, bookingURL string) {
	s.Queue(to, toName, "booking_confirmed", "Your booking is confirmed!", map[string]string{
		"VenueName":  venueName,
		"Date":       date,
		"TimeRange":  timeRange,
		"BookingURL": bookingURL,
	})
}

// SendBookingCancelled notifies the customer a booking was cancelled
func (s *Service) SendBookingCancelled(to, toName, venueName, date, reason string) {
	s.Queue(to, toName, "booking_cancelled", "Booking cancelled", map[string]string{
		"VenueName": venueName,
		"Date":      date,
		"Reason":    reason,
	})
}

// SendBookingCompleted thanks the customer after the event
func (s *Service) SendBookingCompleted(to, toName, venueName, date string) {
	s.Queue(to, toName, "booking_completed", "Thank you for celebrating with us", map[string]string{
		"VenueName": venueName,
		"Date":      date,
	})
}

// SendPaymentReceived confirms a payment to the customer
func (s *Service) SendPaymentReceived(to, toName, venueName, amount, reference string) {
	s.Queue(to, toName, "payment_received", "Payment received", map[string]string{
		"VenueName": venueName,
		"Amount":    amount,
		"Reference": reference,
	})
}

// SendRefundIssued notifies the customer a refund was issued
func (s *Service) SendRefundIssued(to, toName, venueName, amount string) {
	s.Queue(to, toName, "refund_issued", "Refund issued", map[string]string{
		"VenueName": venueName,
		"Amount":    amount,
	})
}

// SendHallApproved notifies the owner their hall was approved
func (s *Service) SendHallApproved(to, toName, hallName, dashboardURL string) {
	s.Queue(to, toName, "hall_approved", "Your hall has been approved", map[string]string{
		"HallName":     hallName,
		"DashboardURL": dashboardURL,
	})
}

// SendHallRejected notifies the owner their hall was rejected
func (s *Service) SendHallRejected(to, toName, hallName, reason string) {
	s.Queue(to, toName, "hall_rejected", "Hall listing reviewed", map[string]string{
		"HallName": hallName,
		"Reason":   reason,
	})
}
