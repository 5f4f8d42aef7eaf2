package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/banquet/banquet-api/internal/config"
	"github.com/banquet/banquet-api/internal/domain/auth"
	"github.com/banquet/banquet-api/internal/domain/booking"
	"github.com/banquet/banquet-api/internal/domain/hall"
	"github.com/banquet/banquet-api/internal/domain/notification"
	"github.com/banquet/banquet-api/internal/domain/payment"
	"github.com/banquet/banquet-api/internal/domain/user"
	"github.com/banquet/banquet-api/internal/domain/venue"
	"github.com/banquet/banquet-api/internal/middleware"
	"github.com/banquet/banquet-api/internal/pkg/database"
	"github.com/banquet/banquet-api/internal/pkg/imaging"
	"github.com/banquet/banquet-api/internal/pkg/jwt"
	"github.com/banquet/banquet-api/internal/pkg/logger"
	"github.com/banquet/banquet-api/internal/pkg/mq"
	pkgresponse "github.com/banquet/banquet-api/internal/pkg/response"
	"github.com/banquet/banquet-api/internal/pkg/storage"
	"github.com/banquet/banquet-api/internal/pkg/stripe"
)

func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Banquet API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	var store storage.Storage
	if cfg.S3AccessKey != "" {
		s3Store, err := storage.NewS3Storage(storage.Config{
			S3Endpoint:  cfg.S3Endpoint,
			S3Region:    cfg.S3Region,
			S3AccessKey: cfg.S3AccessKey,
			S3SecretKey: cfg.S3SecretKey,
			S3Bucket:    cfg.S3Bucket,
			PublicURL:   cfg.S3PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 storage")
		}
		store = s3Store
	} else {
		localStore, err := storage.NewLocalStorage("./uploads", cfg.BackendURL+"/uploads")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create local storage")
		}
		store = localStore
		log.Warn().Msg("No S3 credentials configured, storing uploads locally")
	}

	gateway := stripe.NewClient(stripe.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		Currency:      cfg.StripeCurrency,
	})
	if !gateway.Enabled() {
		log.Warn().Msg("No Stripe key configured, payments run in simulated mode")
	}

	var publisher *mq.Publisher
	if cfg.AMQPUrl != "" {
		publisher, err = mq.NewPublisher(cfg.AMQPUrl, cfg.AMQPExchange)
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ unavailable, booking events stay local")
		} else {
			defer publisher.Close()
		}
	}

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	hallRepo := hall.NewRepository(db)
	venueRepo := venue.NewRepository(db)
	bookingRepo := booking.NewRepository(db, cfg.LockTimeout)
	paymentRepo := payment.NewRepository(db)

	// ---------- Notification hub ----------
	hub := notification.NewHub(redisClient)
	go hub.Run()
	defer hub.Shutdown()

	dispatcher := notification.NewDispatcher(hub, publisher)

	// ---------- Services ----------
	tokenStore := auth.NewRedisTokenStore(redisClient)
	authService := auth.NewService(userRepo, jwtService, tokenStore)
	hallService := hall.NewService(hallRepo, store)
	venueService := venue.NewService(venueRepo, hallService, store, imaging.NewProcessor(imaging.DefaultConfig()))
	bookingService := booking.NewService(bookingRepo, venueRepo, hallService, userRepo, dispatcher)
	paymentService := payment.NewService(paymentRepo, bookingRepo, hallService, gateway, dispatcher, cfg.StripeCurrency)
	bookingService.SetPaymentLister(paymentService)
	bookingService.SetRefunder(paymentService)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	hallHandler := hall.NewHandler(hallService)
	venueHandler := venue.NewHandler(venueService)
	bookingHandler := booking.NewHandler(bookingService)
	paymentHandler := payment.NewHandler(paymentService, cfg.StripeWebhookSecret)
	notificationHandler := notification.NewHandler(hub, hallService, cfg.AllowedOrigins)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint accepts the token as a query parameter since
	// browsers cannot set headers on WS upgrades
	r.Get("/notifications/ws", func(w http.ResponseWriter, req *http.Request) {
		token := req.URL.Query().Get("token")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		authMiddleware(http.HandlerFunc(notificationHandler.WebSocket)).ServeHTTP(w, req)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/halls", hallHandler.Routes(authMiddleware))
		r.Mount("/venues", venueHandler.Routes(authMiddleware))
		r.Mount("/bookings", bookingHandler.Routes(authMiddleware))
		r.Mount("/payments", paymentHandler.Routes(authMiddleware))
		r.Mount("/notifications", notificationHandler.Routes(authMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
