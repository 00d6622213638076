package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/auth"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/config"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/handler"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/metrics"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/middleware"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/report"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/repository"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/service"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize layers
	states := auth.NewStateStore(cfg.StateTTL)
	deps := service.Dependencies{
		Tokens:   auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		States:   states,
		Notifier: email.NewSender(cfg, logger),
		Renderers: map[string]service.ReportRenderer{
			"pdf": report.PDFRenderer{},
			"xml": report.XMLRenderer{},
		},
		Metrics: m,
	}
	if cfg.GoogleEnabled() {
		deps.Identity = auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	} else {
		logger.Warn("Google sign-in disabled: GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set")
	}

	repo := repository.NewRepository()
	svc := service.NewService(repo, logger, cfg, deps)
	h := handler.NewHandler(svc, logger)

	// Sweep abandoned OAuth states
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.StateSweepSchedule, func() {
		if n := states.PurgeExpired(); n > 0 {
			logger.Debugf("Purged %d expired OAuth states", n)
		}
	}); err != nil {
		logger.Fatalf("Invalid STATE_SWEEP_SCHEDULE %q: %v", cfg.StateSweepSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := handler.NewRouter(h, middleware.AuthMiddleware(deps.Tokens), promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Use(middleware.LoggingMiddleware(logger))

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Fatalf("Server failed: %v", err)
	case <-quit:
		logger.Info("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}
	logger.Info("Server exited")
}
