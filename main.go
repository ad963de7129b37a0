package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moneymanager/backend/api"
	"moneymanager/backend/config"
	"moneymanager/backend/database"
	"moneymanager/backend/logger"
	"moneymanager/backend/migrations"
	"moneymanager/backend/services"

	"github.com/sirupsen/logrus"
)

func main() {
	envFile := flag.String("env-file", ".env", "Environment file to load before reading configuration")
	migrateOnly := flag.Bool("migrate-only", false, "Apply schema migrations and exit")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.WithFields(logrus.Fields{
		"env":    cfg.Env,
		"driver": cfg.Database.Driver,
	}).Info("Starting money manager")

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	defer db.Close()

	// The schema must match before any request is served
	if err := migrations.Sync(ctx, db, log); err != nil {
		log.WithError(err).Fatal("Failed to prepare schema")
	}

	if *migrateOnly {
		log.Info("Migrations completed, exiting")
		return
	}

	store := database.NewTransactionStore(db)
	ledger := services.NewLedger(store, cfg.EditWindow)

	server := api.NewServer(ledger, store, log, api.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Production:     cfg.IsProduction(),
	})

	srv := &http.Server{
		Handler:      server.Handler(),
		Addr:         ":" + cfg.Port,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	log.Info("Server exited")
}
