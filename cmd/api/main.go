package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/doclinic/booking-platform/cmd/mainconfig"
	"github.com/doclinic/booking-platform/internal/api/router"
	"github.com/doclinic/booking-platform/internal/appointments"
	"github.com/doclinic/booking-platform/internal/booking"
	"github.com/doclinic/booking-platform/internal/bot"
	appconfig "github.com/doclinic/booking-platform/internal/config"
	"github.com/doclinic/booking-platform/internal/notify"
	"github.com/doclinic/booking-platform/internal/observability/metrics"
	"github.com/doclinic/booking-platform/internal/slots"
	"github.com/doclinic/booking-platform/internal/workinghours"
	"github.com/doclinic/booking-platform/pkg/logging"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Stores and booking workflow
	slotStore := slots.NewStore(pool)
	apptStore := appointments.NewStore(pool)
	whStore := workinghours.NewStore(pool)
	generator := slots.NewGenerator(cfg.DayStartHour, cfg.DayEndHour)
	resolver := booking.NewResolver(slotStore, cfg.SlotMatchTolerance, cfg.DefaultSlotDuration)

	bookingMetrics := metrics.NewBookingMetrics(nil)
	notifier := notify.NewService(buildEmailSender(ctx, cfg, logger), logger.Component("notify"))
	workflow := booking.NewService(pool, slotStore, apptStore, resolver, notifier, bookingMetrics, logger.Component("booking"))

	// Handlers
	routerCfg := &router.Config{
		Logger:              logger,
		SlotsHandler:        slots.NewHandler(slotStore, generator, logger.Component("slots")),
		AppointmentsHandler: appointments.NewHandler(apptStore, logger.Component("appointments")),
		BookingHandler:      booking.NewHandler(workflow, logger.Component("booking")),
		WorkingHoursHandler: workinghours.NewHandler(whStore, logger.Component("workinghours")),
		BotWebhook:          bot.NewHandler(workflow, slotStore, apptStore, generator, bookingMetrics, logger.Component("bot"), cfg.MaxBookingHorizonDays),
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		AdminAuthSecret:     cfg.AdminJWTSecret,
		BotWebhookAPIKey:    cfg.BotWebhookAPIKey,
		WebhookRateLimit:    cfg.WebhookRateLimit,
		WebhookRateBurst:    cfg.WebhookRateBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildEmailSender picks the transactional email backend from configuration.
// Unknown or unconfigured providers fall back to the logging stub so the
// booking workflow never depends on email infrastructure.
func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but not configured, using stub sender")
	case "ses":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config, using stub sender", "error", err)
			break
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			return sender
		}
	}
	return notify.NewStubEmailSender(logger)
}
