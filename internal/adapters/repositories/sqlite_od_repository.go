package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mrt-od-service/internal/domain"
	"mrt-od-service/internal/platform/obs"
)

// SQLite-backed implementation of the ODRepository and StatsRepository ports.
type SqliteODRepository struct{ DB *sql.DB }

func NewSqliteODRepository(db *sql.DB) *SqliteODRepository {
	return &SqliteODRepository{DB: db}
}

func (s *SqliteODRepository) SumPair(
	ctx context.Context,
	entry, exit string,
	w domain.TimeWindow,
) (_ domain.ODRow, _ bool, err error) {
	defer obs.Time(ctx, "od.sqlite.SumPair")(&err)

	if s.DB == nil {
		return domain.ODRow{}, false, errors.New("sqlite od repository: DB is nil")
	}

	query := `
	SELECT SUM(passengers) AS total_passengers
	FROM passenger_flows
	WHERE entry_station = ?
		AND exit_station = ?
		AND time_slot >= ?
		AND time_slot < ?;
	`

	var total sql.NullInt64
	if err := s.DB.QueryRowContext(ctx, query, entry, exit, w.Start, w.End).Scan(&total); err != nil {
		return domain.ODRow{}, false, fmt.Errorf("sum pair: query passenger_flows: %w", err)
	}
	if !total.Valid {
		return domain.ODRow{}, false, nil
	}

	return domain.ODRow{Entry: entry, Exit: exit, TotalPassengers: total.Int64}, true, nil
}

func (s *SqliteODRepository) TopDestinations(
	ctx context.Context,
	entry string,
	w domain.TimeWindow,
	limit int,
) (_ []domain.ODRow, err error) {
	defer obs.Time(ctx, "od.sqlite.TopDestinations")(&err)

	query := `
	SELECT exit_station, SUM(passengers) AS total_passengers
	FROM passenger_flows
	WHERE entry_station = ?
		AND time_slot >= ?
		AND time_slot < ?
	GROUP BY exit_station
	ORDER BY total_passengers DESC, exit_station ASC
	LIMIT ?;
	`

	out, err := s.ranked(ctx, query, entry, rankExit, w, limit)
	if err != nil {
		return nil, fmt.Errorf("top destinations: %w", err)
	}
	return out, nil
}

func (s *SqliteODRepository) TopOrigins(
	ctx context.Context,
	exit string,
	w domain.TimeWindow,
	limit int,
) (_ []domain.ODRow, err error) {
	defer obs.Time(ctx, "od.sqlite.TopOrigins")(&err)

	query := `
	SELECT entry_station, SUM(passengers) AS total_passengers
	FROM passenger_flows
	WHERE exit_station = ?
		AND time_slot >= ?
		AND time_slot < ?
	GROUP BY entry_station
	ORDER BY total_passengers DESC, entry_station ASC
	LIMIT ?;
	`

	out, err := s.ranked(ctx, query, exit, rankEntry, w, limit)
	if err != nil {
		return nil, fmt.Errorf("top origins: %w", err)
	}
	return out, nil
}

func (s *SqliteODRepository) ranked(
	ctx context.Context,
	query string,
	station string,
	side rankedSide,
	w domain.TimeWindow,
	limit int,
) ([]domain.ODRow, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite od repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, query, station, w.Start, w.End, limit)
	if err != nil {
		return nil, fmt.Errorf("query passenger_flows: %w", err)
	}
	defer rows.Close()

	return scanRanked(rows, station, side)
}

func (s *SqliteODRepository) HourlyProfile(ctx context.Context, station string) (_ []domain.HourlyCount, err error) {
	defer obs.Time(ctx, "stats.sqlite.HourlyProfile")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite od repository: DB is nil")
	}

	query := `
	SELECT
		time_slot,
		SUM(CASE WHEN entry_station = ?1 THEN passengers ELSE 0 END) AS entries,
		SUM(CASE WHEN exit_station = ?1 THEN passengers ELSE 0 END) AS exits
	FROM passenger_flows
	WHERE entry_station = ?1 OR exit_station = ?1
	GROUP BY time_slot
	ORDER BY time_slot;
	`

	rows, err := s.DB.QueryContext(ctx, query, station)
	if err != nil {
		return nil, fmt.Errorf("hourly profile: query passenger_flows: %w", err)
	}
	defer rows.Close()

	out, err := scanHourly(rows)
	if err != nil {
		return nil, fmt.Errorf("hourly profile: %w", err)
	}
	return out, nil
}

func (s *SqliteODRepository) TopRoutes(
	ctx context.Context,
	w domain.TimeWindow,
	limit int,
) (_ []domain.RouteCount, err error) {
	defer obs.Time(ctx, "stats.sqlite.TopRoutes")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite od repository: DB is nil")
	}

	query := `
	SELECT
		MIN(entry_station, exit_station) AS station_a,
		MAX(entry_station, exit_station) AS station_b,
		SUM(passengers) AS total_passengers
	FROM passenger_flows
	WHERE entry_station <> exit_station
		AND time_slot >= ?
		AND time_slot < ?
	GROUP BY station_a, station_b
	ORDER BY total_passengers DESC, station_a ASC, station_b ASC
	LIMIT ?;
	`

	rows, err := s.DB.QueryContext(ctx, query, w.Start, w.End, limit)
	if err != nil {
		return nil, fmt.Errorf("top routes: query passenger_flows: %w", err)
	}
	defer rows.Close()

	out, err := scanRoutes(rows)
	if err != nil {
		return nil, fmt.Errorf("top routes: %w", err)
	}
	return out, nil
}

func (s *SqliteODRepository) TopStations(
	ctx context.Context,
	w domain.TimeWindow,
	limit int,
) (_ []domain.StationCount, err error) {
	defer obs.Time(ctx, "stats.sqlite.TopStations")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite od repository: DB is nil")
	}

	query := `
	SELECT station, SUM(passengers) AS total_passengers
	FROM (
		SELECT entry_station AS station, passengers
		FROM passenger_flows
		WHERE entry_station <> exit_station AND time_slot >= ?1 AND time_slot < ?2
		UNION ALL
		SELECT exit_station AS station, passengers
		FROM passenger_flows
		WHERE entry_station <> exit_station AND time_slot >= ?1 AND time_slot < ?2
	)
	GROUP BY station
	ORDER BY total_passengers DESC, station ASC
	LIMIT ?3;
	`

	rows, err := s.DB.QueryContext(ctx, query, w.Start, w.End, limit)
	if err != nil {
		return nil, fmt.Errorf("top stations: query passenger_flows: %w", err)
	}
	defer rows.Close()

	out, err := scanStations(rows)
	if err != nil {
		return nil, fmt.Errorf("top stations: %w", err)
	}
	return out, nil
}

func (s *SqliteODRepository) HourlyAverages(ctx context.Context) (_ []domain.HourlyAverage, err error) {
	defer obs.Time(ctx, "stats.sqlite.HourlyAverages")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite od repository: DB is nil")
	}

	query := `
	SELECT time_slot, AVG(daily) AS avg_passengers
	FROM (
		SELECT travel_date, time_slot, SUM(passengers) AS daily
		FROM passenger_flows
		GROUP BY travel_date, time_slot
	)
	GROUP BY time_slot
	ORDER BY time_slot;
	`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("hourly averages: query passenger_flows: %w", err)
	}
	defer rows.Close()

	out, err := scanHourlyAverages(rows)
	if err != nil {
		return nil, fmt.Errorf("hourly averages: %w", err)
	}
	return out, nil
}

func (s *SqliteODRepository) DailyTotals(ctx context.Context) (_ []domain.DailyTotal, err error) {
	defer obs.Time(ctx, "stats.sqlite.DailyTotals")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite od repository: DB is nil")
	}

	query := `
	SELECT travel_date, SUM(passengers) AS total_passengers
	FROM passenger_flows
	GROUP BY travel_date
	ORDER BY travel_date;
	`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("daily totals: query passenger_flows: %w", err)
	}
	defer rows.Close()

	out, err := scanDailyTotals(rows)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	return out, nil
}
