// Package main wires the booking engine together and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"confbooking/config"
	_ "confbooking/docs"
	"confbooking/internal/adapters/notify"
	delivery "confbooking/internal/delivery/http"
	"confbooking/internal/delivery/http/controllers"
	"confbooking/internal/delivery/http/middleware"
	"confbooking/internal/repository/memory"
	"confbooking/internal/services"
)

// @title Conference Booking API
// @version 1.0
// @description Conference registration and booking engine with waitlists, deadline-based confirmation, and overlap conflict detection.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	notifier, err := notify.New(notify.Config{
		Provider:    cfg.NotifierProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: notify.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretKey,
		},
	}, logger)
	if err != nil {
		logger.Error("notifier init failed", "err", err)
		os.Exit(1)
	}

	conferenceRepo := memory.NewConferenceRepo()
	userRepo := memory.NewUserRepo()
	bookingRepo := memory.NewBookingRepo()
	waitlistRepo := memory.NewWaitlistRepo()

	registrySvc := services.NewRegistryService(conferenceRepo, userRepo, logger)
	bookingSvc := services.NewBookingService(conferenceRepo, userRepo, bookingRepo, waitlistRepo, notifier, logger, cfg.ConfirmationGrace)

	conferenceController := controllers.NewConferenceController(logger, registrySvc)
	userController := controllers.NewUserController(logger, registrySvc, bookingSvc)
	bookingController := controllers.NewBookingController(logger, bookingSvc)

	mux := delivery.NewRouter(conferenceController, userController, bookingController)
	handler := middleware.Logging(logger, middleware.CORS(cfg.AllowedOrigins, mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
