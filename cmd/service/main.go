package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subscriber_notification_service/internal/app"
	"subscriber_notification_service/internal/domain/notify"
	"subscriber_notification_service/internal/infra/config"
	"subscriber_notification_service/internal/infra/database"
	"subscriber_notification_service/internal/infra/email"
	"subscriber_notification_service/internal/infra/httpapi"
	"subscriber_notification_service/internal/infra/logger"
	"subscriber_notification_service/internal/infra/otp"
	"subscriber_notification_service/internal/infra/scheduler"
	"subscriber_notification_service/internal/infra/sms"
)

func main() {
	fmt.Println("Subscriber Notification Service starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	logg := logger.Get()
	logg.Infof("Configuration loaded. LogLevel: %s, Environment: %s", cfg.LogLevel, cfg.Environment)

	// Document store
	db, err := database.NewMongoConnection(cfg.MongoURL, cfg.MongoDatabase)
	if err != nil {
		logg.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		if err := database.CloseMongoConnection(db); err != nil {
			logg.Warnf("Could not disconnect from MongoDB: %v", err)
		}
	}()
	logg.Info("MongoDB connection established successfully.")

	paymentRepo := database.NewMongoPaymentRepository(db)
	settingsRepo := database.NewMongoSettingsRepository(db)

	// Outbound transports
	smsSender, err := sms.NewTwilioSender(sms.Config{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		FromNumber: cfg.TwilioFromNumber,
	})
	if err != nil {
		logg.Fatalf("FATAL: Could not initialize SMS transport: %v", err)
	}
	logg.Info("SMS transport initialized.")

	var emailSender notify.EmailSender
	if es, err := email.NewSender(email.Config{
		FromName:    cfg.EmailFromName,
		FromAddress: cfg.EmailFromAddress,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
	}); err != nil {
		logg.Warnf("Email transport not configured, email OTP disabled: %v", err)
	} else {
		emailSender = es
		logg.Info("Email transport initialized.")
	}

	// OTP session store
	redisClient, err := otp.NewRedisConnection(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logg.Fatalf("FATAL: Could not connect to Redis: %v", err)
	}
	defer redisClient.Close()
	otpStore := otp.NewRedisStore(redisClient)
	logg.Info("Redis connection established successfully.")

	// Application services
	reminderService := app.NewReminderService(paymentRepo, settingsRepo, smsSender, logg, cfg.DispatchPause)
	lifecycleService := app.NewLifecycleService(smsSender, logg)
	otpService := app.NewOTPService(otpStore, smsSender, emailSender, logg)

	// Scheduler: two reminder passes per day
	sched := scheduler.NewReminderScheduler(reminderService, logg, cfg.CronSpecMorning, cfg.CronSpecEvening)
	if err := sched.Start(); err != nil {
		logg.Fatalf("FATAL: Could not start reminder scheduler: %v", err)
	}

	// HTTP surface
	handler := httpapi.NewHandler(reminderService, lifecycleService, otpService, smsSender, logg)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: handler.InitRouter()}
	go func() {
		logg.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatalf("FATAL: HTTP server failed: %v", err)
		}
	}()

	// Graceful shutdown: stop scheduling future runs and drain the HTTP
	// server. An in-flight reminder run is not awaited beyond the cron
	// engine's stop.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("Shutting down application...")
	sched.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Errorf("HTTP server shutdown failed: %v", err)
	}
	logg.Info("Application shut down gracefully.")
}
