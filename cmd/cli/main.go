package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gazon-app/waitlist/config"
	"github.com/gazon-app/waitlist/internal/log"
	"github.com/gazon-app/waitlist/internal/schema"
	"github.com/gazon-app/waitlist/pkg/migrations"
	"github.com/gazon-app/waitlist/pkg/utils"
)

func main() {
	logger := log.NewLoggerWithJSONOutput()

	config.InitializeEnvFile(logger) // Load envs early for CLI consistency

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "migrate":
		if err := migrate(logger); err != nil {
			logger.Error("Database migration failed", "error", err.Error())
			os.Exit(1)
		}
		logger.Info("Database migrations completed")
		return

	case "help", "-h", "--help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func migrate(logger *log.Logger) error {
	dbCfg := config.NewDBConfig()
	if dbCfg.Driver != config.DriverPostgres {
		return fmt.Errorf("SQL migrations target %s; use the server's --auto-migrate for DB_DRIVER=%s", config.DriverPostgres, dbCfg.Driver)
	}

	db, err := config.NewDatabase(logger, dbCfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("Failed to close SQL DB after migration", "error", err.Error())
		}
	}()

	cfg := migrations.Config{
		Dir:             utils.GetEnvTrimmed("MIGRATIONS_DIR"),
		MigrationsTable: utils.GetEnvTrimmed("MIGRATIONS_TABLE"),
		Logger:          logger,
	}
	// MIGRATIONS_DIR overrides the migrations compiled into the binary.
	if cfg.Dir == "" {
		cfg.FS = schema.Migrations()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	return migrations.Up(ctx, sqlDB, cfg)
}

func printUsage() {
	fmt.Println("Usage: cli <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate  Apply the waitlist SQL migrations to Postgres and exit")
	fmt.Println("  help     Show this message")
}
