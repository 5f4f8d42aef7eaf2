package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/banquet/banquet-api/internal/config"
	"github.com/banquet/banquet-api/internal/domain/booking"
	"github.com/banquet/banquet-api/internal/domain/user"
	"github.com/banquet/banquet-api/internal/domain/venue"
	"github.com/banquet/banquet-api/internal/pkg/database"
	"github.com/banquet/banquet-api/internal/pkg/email"
	"github.com/banquet/banquet-api/internal/pkg/logger"
	"github.com/banquet/banquet-api/internal/pkg/mq"
)

const queueName = "booking-emails"

// notify-worker consumes booking lifecycle events from RabbitMQ and sends
// the matching customer emails. It is the only process that talks to
// SendGrid, so a slow or flaky email provider never touches the API path.
func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().Str("queue", queueName).Msg("Starting notify worker")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	w := &worker{
		users:    user.NewRepository(db),
		venues:   venue.NewRepository(db),
		bookings: booking.NewRepository(db, cfg.LockTimeout),
		emails: email.NewService(email.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}),
		frontendURL: cfg.FrontendURL,
	}
	defer w.emails.Close()

	consumer, err := mq.NewConsumer(cfg.AMQPUrl, cfg.AMQPExchange, queueName, []string{"booking.*"})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliveries, err := consumer.Deliveries(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start consuming")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-quit:
			log.Info().Msg("Notify worker stopped")
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Error().Msg("Delivery channel closed")
				return
			}
			if err := w.handle(ctx, d); err != nil {
				log.Error().Err(err).Str("routing_key", d.RoutingKey).Msg("Event handling failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

type worker struct {
	users       user.Repository
	venues      venue.Repository
	bookings    booking.Repository
	emails      *email.Service
	frontendURL string
}

func (w *worker) handle(ctx context.Context, d amqp.Delivery) error {
	var event booking.Event
	if err := json.Unmarshal(d.Body, &event); err != nil {
		// A malformed body will never parse, so drop it instead of requeueing
		log.Warn().Err(err).Msg("Dropping unparseable event")
		return nil
	}

	customer, err := w.users.GetByID(ctx, event.CustomerID)
	if err != nil {
		return err
	}
	v, err := w.venues.GetByID(ctx, event.VenueID)
	if err != nil {
		return err
	}

	timeRange := event.StartTime + " - " + event.EndTime
	bookingURL := w.frontendURL + "/bookings/" + event.BookingID.String()

	switch event.Type {
	case booking.EventCreated:
		b, err := w.bookings.GetByID(ctx, event.BookingID)
		if err != nil {
			return err
		}
		w.emails.SendBookingCreated(customer.Email, customer.FullName, v.Name,
			event.BookingDate, timeRange, b.ConfirmationThreshold().String(), bookingURL)
	case booking.EventConfirmed:
		w.emails.SendBookingConfirmed(customer.Email, customer.FullName, v.Name,
			event.BookingDate, timeRange, bookingURL)
	case booking.EventCancelled:
		w.emails.SendBookingCancelled(customer.Email, customer.FullName, v.Name,
			event.BookingDate, event.Reason)
	case booking.EventCompleted:
		w.emails.SendBookingCompleted(customer.Email, customer.FullName, v.Name,
			event.BookingDate)
	default:
		log.Debug().Str("type", event.Type).Msg("Ignoring event type")
	}

	log.Info().
		Str("type", event.Type).
		Str("booking_id", event.BookingID.String()).
		Str("to", customer.Email).
		Msg("Processed booking event")
	return nil
}
