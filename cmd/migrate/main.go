package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	"ms-registration/internal/config"
	"ms-registration/internal/database/migrations"
	"ms-registration/internal/logger"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	var (
		command    = flag.String("command", "up", "up | down | version | force | to")
		version    = flag.Int("version", -1, "Target version for force and to")
		schemaOnly = flag.Bool("schema-only", false, "With up, stop before the seed data migrations")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.NewLoggerWithOptions(logger.Options{Level: cfg.Log.Level})

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
	}

	runner := migrations.NewRunner(db, migrations.MigrateOptions{SeedData: !*schemaOnly}, log)
	defer runner.Close()

	if err := run(runner, *command, *version); err != nil {
		log.Error("MIGRATE", err.Error())
		os.Exit(1)
	}

	v, dirty, err := runner.Version()
	if err != nil {
		log.Error("MIGRATE", fmt.Sprintf("Failed to read version: %v", err))
		os.Exit(1)
	}
	log.Info("MIGRATE", fmt.Sprintf("Schema version %d (dirty=%t)", v, dirty))
}

func run(runner *migrations.Runner, command string, version int) error {
	switch command {
	case "up":
		return runner.RunMigrations()
	case "down":
		return runner.MigrateDown()
	case "version":
		return nil
	case "force":
		if version < 0 {
			return fmt.Errorf("force needs -version")
		}
		return runner.Force(version)
	case "to":
		if version < 0 {
			return fmt.Errorf("to needs -version")
		}
		return runner.MigrateTo(uint(version))
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
