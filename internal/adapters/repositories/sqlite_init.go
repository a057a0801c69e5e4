package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mrt-od-service/internal/domain"
)

// Initialize the SQLite database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	createFlowsQuery := `
	CREATE TABLE IF NOT EXISTS passenger_flows (
		travel_date TEXT NOT NULL DEFAULT '',
		entry_station TEXT NOT NULL,
		exit_station TEXT NOT NULL,
		time_slot INTEGER NOT NULL CHECK (time_slot BETWEEN 0 AND 23),
		passengers INTEGER NOT NULL CHECK (passengers >= 0)
	);
	`

	createEntryIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_passenger_flows_entry_slot
	ON passenger_flows(entry_station, time_slot);
	`

	createExitIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_passenger_flows_exit_slot
	ON passenger_flows(exit_station, time_slot);
	`

	return execSchema(ctx, db, []string{
		createFlowsQuery,
		createEntryIndexQuery,
		createExitIndexQuery,
	})
}

// Append passenger records to the SQLite fact table in one transaction.
func SeedRecords(ctx context.Context, db *sql.DB, records []domain.PassengerRecord) error {
	query := `
	INSERT INTO passenger_flows (
		travel_date,
		entry_station,
		exit_station,
		time_slot,
		passengers
	)
	VALUES (?, ?, ?, ?, ?);
	`
	return insertRecords(ctx, db, query, records)
}

func execSchema(ctx context.Context, db *sql.DB, statements []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

func insertRecords(ctx context.Context, db *sql.DB, query string, records []domain.PassengerRecord) error {
	if db == nil {
		return errors.New("seed records: DB is nil")
	}

	if len(records) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed records: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("seed records: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, r.TravelDate, r.Entry, r.Exit, r.TimeSlot, r.Passengers); err != nil {
			return fmt.Errorf("seed records: insert record #%d (%s -> %s): %w", i+1, r.Entry, r.Exit, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed records: commit tx: %w", err)
	}

	return nil
}
