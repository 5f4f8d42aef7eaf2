package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/banquet/banquet-api/internal/config"
	"github.com/banquet/banquet-api/internal/domain/booking"
	"github.com/banquet/banquet-api/internal/pkg/database"
	"github.com/banquet/banquet-api/internal/pkg/logger"
)

// booking-worker runs the periodic lifecycle sweeps: confirmed bookings
// whose date has passed become completed, and pending bookings that were
// never paid within the TTL are released so the slot frees up.
func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().
		Dur("interval", cfg.BookingSweepInterval).
		Dur("pending_ttl", cfg.PendingBookingTTL).
		Msg("Starting booking worker")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	repo := booking.NewRepository(db, cfg.LockTimeout)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.BookingSweepInterval)
	defer ticker.Stop()

	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		now := time.Now()

		completed, err := repo.CompletePast(ctx, now.Format("2006-01-02"))
		if err != nil {
			log.Error().Err(err).Msg("Completion sweep failed")
		} else if completed > 0 {
			log.Info().Int64("count", completed).Msg("Marked past bookings completed")
		}

		expired, err := repo.ExpireStalePending(ctx, now.Add(-cfg.PendingBookingTTL), "payment window expired")
		if err != nil {
			log.Error().Err(err).Msg("Expiry sweep failed")
		} else if expired > 0 {
			log.Info().Int64("count", expired).Msg("Released unpaid pending bookings")
		}
	}

	sweep()

	for {
		select {
		case <-ticker.C:
			sweep()
		case <-quit:
			log.Info().Msg("Booking worker stopped")
			return
		}
	}
}
