package repositories

import (
	"context"
	"database/sql"
	"errors"
	"mrt-od-service/internal/domain"
)

// Initialize the Postgres database schema.
func InitSQLSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	createFlowsQuery := `
	CREATE TABLE IF NOT EXISTS passenger_flows (
		id BIGSERIAL PRIMARY KEY,
		travel_date TEXT NOT NULL DEFAULT '',
		entry_station TEXT NOT NULL,
		exit_station TEXT NOT NULL,
		time_slot SMALLINT NOT NULL CHECK (time_slot BETWEEN 0 AND 23),
		passengers BIGINT NOT NULL CHECK (passengers >= 0)
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

// Append passenger records to the Postgres fact table in one transaction.
func SeedSQLRecords(ctx context.Context, db *sql.DB, records []domain.PassengerRecord) error {
	query := `
	INSERT INTO passenger_flows (
		travel_date,
		entry_station,
		exit_station,
		time_slot,
		passengers
	)
	VALUES ($1, $2, $3, $4, $5);
	`
	return insertRecords(ctx, db, query, records)
}
