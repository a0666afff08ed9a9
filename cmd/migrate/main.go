package main

import (
	"context"
	"flag"
	"log"
	"time"

	"horizon/internal/infrastructure/postgres"
	"horizon/internal/shared/config"
)

func main() {
	command := flag.String("command", "up", "migrate command (up|status|down)")
	timeout := flag.Duration("timeout", time.Minute, "command timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *command {
	case "up":
		err = postgres.Migrate(ctx, db)
	case "status":
		err = postgres.MigrationStatus(ctx, db)
	case "down":
		err = postgres.MigrateDown(ctx, db)
	default:
		log.Fatalf("Unsupported command %q", *command)
	}
	if err != nil {
		log.Fatalf("Migration command %q failed: %v", *command, err)
	}

	log.Printf("Migration command %q completed", *command)
}
