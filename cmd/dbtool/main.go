package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"mrt-od-service/internal/adapters/repositories"
	"mrt-od-service/internal/config"
	"mrt-od-service/internal/domain"
	"mrt-od-service/internal/platform/db"
	"mrt-od-service/internal/platform/obs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// dbtool creates the passenger_flows schema and loads the ridership CSV
// exports into the configured SQL store.
func main() {
	schemaOnly := flag.Bool("schema-only", false, "create the schema without loading records")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	if err := obs.SetupLogger(cfg.LogLevel); err != nil {
		logrus.Fatal(err)
	}

	var (
		conn   *sql.DB
		initFn func(context.Context, *sql.DB) error
		seedFn func(context.Context, *sql.DB, []domain.PassengerRecord) error
	)

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		conn, err = db.Open(cfg.DatabaseURL)
		initFn, seedFn = repositories.InitSQLSchema, repositories.SeedSQLRecords
	case config.DriverSQLite:
		conn, err = db.OpenSQLite(cfg.DBPath)
		initFn, seedFn = repositories.InitSchema, repositories.SeedRecords
	default:
		logrus.Fatalf("STORE_DRIVER=%s has no database to initialize", cfg.StoreDriver)
	}
	if err != nil {
		logrus.Fatal(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := initAndSeed(ctx, conn, cfg.ODFile, *schemaOnly, initFn, seedFn); err != nil {
		logrus.Fatal(err)
	}
}

func initAndSeed(
	ctx context.Context,
	conn *sql.DB,
	pattern string,
	schemaOnly bool,
	initFn func(context.Context, *sql.DB) error,
	seedFn func(context.Context, *sql.DB, []domain.PassengerRecord) error,
) error {
	logrus.Info("Initializing database schema...")
	if err := initFn(ctx, conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	logrus.Info("Schema ready.")

	if schemaOnly {
		return nil
	}

	recs, err := repositories.LoadRecordsFromGlob(pattern)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	logrus.WithField("records", len(recs)).Info("Seeding database...")
	if err := seedFn(ctx, conn, recs); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	logrus.Info("Seeding complete.")

	return nil
}
