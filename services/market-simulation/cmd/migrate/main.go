package main

import (
	"context"
	"flag"
	"log"

	"github.com/d-banana/safe-portfolio-management/pkg/logger"
	"github.com/d-banana/safe-portfolio-management/pkg/migration"
	"github.com/d-banana/safe-portfolio-management/pkg/questdb"
	"github.com/d-banana/safe-portfolio-management/services/market-simulation/pkg/config"
)

func main() {
	var (
		dir       = flag.String("dir", "migrations", "Directory holding the *.up.sql and *.down.sql files")
		direction = flag.String("direction", "up", "Migration direction: up or down")
		steps     = flag.Int("steps", 0, "Number of migrations to apply or revert, 0 applies every pending one")
	)
	flag.Parse()

	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l, err := logger.NewLogger(
		logger.WithLoggingLevel(logger.Level(cfg.App.LogLevel)),
		logger.WithOutputPaths(cfg.App.LogOutputPaths),
	)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer l.Sync()

	// Initialize QuestDB client
	client, err := questdb.NewClient(ctx, cfg.QuestDB)
	if err != nil {
		log.Fatalf("Failed to initialize QuestDB client: %v", err)
	}
	defer client.Close()

	runner := migration.NewRunner(client, l, *dir)
	if err := runner.EnsureMigrationTable(ctx); err != nil {
		log.Fatalf("Failed to create migration table: %v", err)
	}

	switch *direction {
	case "up":
		err = runner.MigrateUp(ctx, *steps)
	case "down":
		err = runner.MigrateDown(ctx, *steps)
	default:
		log.Fatalf("Unknown direction %q", *direction)
	}
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")
}
