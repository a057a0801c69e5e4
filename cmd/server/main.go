package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mrt-od-service/internal/adapters/geodata"
	"mrt-od-service/internal/adapters/repositories"
	"mrt-od-service/internal/api"
	"mrt-od-service/internal/config"
	"mrt-od-service/internal/platform/db"
	"mrt-od-service/internal/platform/obs"
	"mrt-od-service/internal/ports"
	"mrt-od-service/internal/services"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// main is the application composition root.
// It wires the configured fact store, station geometry and services behind
// the HTTP router and serves until SIGINT or SIGTERM.
func main() {
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

	repo, closeStore, err := openStore(cfg)
	if err != nil {
		logrus.Fatal(err)
	}
	defer closeStore()

	stations, err := geodata.LoadStationIndex(cfg.StationsPath, cfg.StationNameProperty)
	if err != nil {
		logrus.Fatal(err)
	}
	logrus.WithField("stations", len(stations.Names())).Info("station index loaded")

	deps := api.Deps{Stations: stations, CORSOrigin: cfg.CORSOrigin}

	// The line layer is decoration for the map; the API works without it.
	if lines, err := geodata.LoadLines(cfg.LinesPath); err != nil {
		logrus.WithError(err).Warn("line layer unavailable")
	} else {
		deps.Lines = lines
	}

	od := services.NewODService(repo, cfg.QueryTimeout)
	deps.OD = od
	deps.Flows = services.NewBoundedFlowRenderer(od, stations, services.FlowStyle(cfg.Flow), cfg.MaxSessions, cfg.SessionIdle)
	deps.Stats = services.NewStatsService(repo, cfg.QueryTimeout)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.QueryTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{"addr": srv.Addr, "store": cfg.StoreDriver}).Info("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	case <-ctx.Done():
		logrus.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("graceful shutdown failed")
		}
	}
}

// openStore returns the repository for cfg.StoreDriver and a func that
// releases it.
func openStore(cfg config.Config) (ports.FactStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		recs, err := repositories.LoadRecordsFromGlob(cfg.ODFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		logrus.WithField("records", len(recs)).Info("memory store loaded")
		return repositories.NewMemoryODRepository(recs), func() {}, nil

	case config.DriverPostgres:
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		return repositories.NewSQLODRepository(conn), closer(conn), nil

	default:
		conn, err := db.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		// The schema is idempotent; an empty table just answers with no rows.
		if err := repositories.InitSchema(context.Background(), conn); err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		return repositories.NewSqliteODRepository(conn), closer(conn), nil
	}
}

func closer(conn *sql.DB) func() {
	return func() {
		if err := conn.Close(); err != nil {
			logrus.WithError(err).Warn("close database")
		}
	}
}
