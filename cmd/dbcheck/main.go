package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"kobo-inventory/internal/config"
	"kobo-inventory/internal/database"
)

// Checks that the configured database is reachable and optionally applies
// the schema.
func main() {
	migrate := flag.Bool("migrate", false, "create missing tables and indexes")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	if *migrate {
		if err := database.EnsureSchema(ctx, pool, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Schema bootstrap failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Schema is up to date")
	}
}
