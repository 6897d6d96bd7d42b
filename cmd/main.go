/*
Package main is the entry point for the mocrs API server.

It is responsible for loading configuration, initializing the global logging system,
connecting to PostgreSQL, wiring the token codec, guards and meeting minter into the
HTTP router, starting the presence hub, and gracefully handling operating system
interrupt signals (SIGINT, SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"mocrs/internal/app/db"
	"mocrs/internal/app/presence"
	"mocrs/internal/app/storage"
	"mocrs/internal/configs"
	"mocrs/internal/handler"
	"mocrs/internal/pkg/auth/guard"
	"mocrs/internal/pkg/auth/jwt"
	"mocrs/internal/pkg/auth/meeting"
	"mocrs/internal/pkg/logx"
	"mocrs/internal/pkg/metrics"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Dur("session_token_ttl", cfg.SessionTokenTTL).
		Bool("storage_enabled", cfg.StorageEnabled()).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to initialize database")
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	codec := jwt.NewCodec(cfg.SecretKey, cfg.SessionTokenTTL)
	if cfg.JitsiAppID == "" || cfg.AppDomain == "" {
		logx.Warn("JITSI_APP_ID or APP_DOMAIN is empty; meeting tokens will carry empty iss/sub claims")
	}

	var store storage.Service
	if cfg.StorageEnabled() {
		store, err = storage.NewService(ctx, storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize storage service")
		}
	} else {
		logx.Warn("S3 storage is not configured; avatar endpoints are disabled")
	}

	// Initialize presence hub
	hub := presence.NewHub(m)

	router := handler.Router(ctx, &handler.AppDeps{
		Config:   cfg,
		Codec:    codec,
		Minter:   meeting.NewMinter(codec, meeting.Config{AppID: cfg.JitsiAppID, AppDomain: cfg.AppDomain}),
		Users:    db.NewUserStore(pool),
		Rooms:    db.NewRoomStore(pool),
		Storage:  store,
		Presence: hub,
		Metrics:  m,
		Guards:   guard.New(m),
		DB:       db.NewPinger(pool),
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info("mocrs API server starting", "addr", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	hub.Shutdown()

	logx.Info("Server gracefully stopped.")
}
