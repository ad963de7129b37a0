package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"moneymanager/backend/config"
	"moneymanager/backend/database"
	"moneymanager/backend/logger"
	"moneymanager/backend/migrations"
)

func main() {
	envFile := flag.String("env-file", ".env", "Environment file to load before reading configuration")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	// Initialize database connection
	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := migrations.Sync(ctx, db, log); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	fmt.Println("Migrations completed successfully!")
}
