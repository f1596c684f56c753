package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wanderstay/service-booking/internal/application"
	"github.com/wanderstay/service-booking/internal/auth"
	"github.com/wanderstay/service-booking/internal/config"
	"github.com/wanderstay/service-booking/internal/consumer"
	"github.com/wanderstay/service-booking/internal/database"
	bookingDomain "github.com/wanderstay/service-booking/internal/domain/booking"
	"github.com/wanderstay/service-booking/internal/handler"
	"github.com/wanderstay/service-booking/internal/health"
	"github.com/wanderstay/service-booking/internal/kafka"
	"github.com/wanderstay/service-booking/internal/logger"
	"github.com/wanderstay/service-booking/internal/metrics"
	"github.com/wanderstay/service-booking/internal/middleware"
	"github.com/wanderstay/service-booking/internal/provider"
	"github.com/wanderstay/service-booking/internal/repository"
)

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	db, err := database.Connect(cfg.DBConfig.DSN(), log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.BookingModel{}, &repository.PlaceModel{}, &repository.PaymentModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.URL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	metrics.Register()

	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	placeRepo := repository.NewGormPlaceRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)

	pricingStrategy := bookingDomain.NewStandardPricingStrategy()
	stripeGateway := provider.NewStripeGateway(cfg.StripeConfig.SecretKey, log)

	// Application services
	bookingService := application.NewBookingService(
		bookingRepo,
		placeRepo,
		pricingStrategy,
		kafkaProducer,
		log,
	)
	placeService := application.NewPlaceService(placeRepo, log)
	paymentService := application.NewPaymentService(
		paymentRepo,
		paymentRepo,
		bookingRepo,
		stripeGateway,
		kafkaProducer,
		log,
	)

	// Payment event consumer runs until shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
	paymentConsumer := consumer.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		paymentService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	placeHandler := handler.NewPlaceHandler(placeService, bookingService)
	paymentHandler := handler.NewPaymentHandler(paymentService, cfg.StripeConfig.WebhookSecret, log)
	adminHandler := handler.NewAdminHandler(bookingService, paymentService)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	healthHandler := health.NewHandler(db, "service-booking")
	healthHandler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	placeHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	paymentHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
