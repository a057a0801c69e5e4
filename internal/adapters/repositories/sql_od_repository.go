package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mrt-od-service/internal/domain"
	"mrt-od-service/internal/platform/obs"
)

// SQLODRepository is the Postgres (pgx) implementation of the
// ODRepository and StatsRepository ports.
type SQLODRepository struct {
	DB *sql.DB
}

func NewSQLODRepository(db *sql.DB) *SQLODRepository {
	return &SQLODRepository{DB: db}
}

func (s *SQLODRepository) SumPair(
	ctx context.Context,
	entry, exit string,
	w domain.TimeWindow,
) (_ domain.ODRow, _ bool, err error) {
	defer obs.Time(ctx, "od.sql.SumPair")(&err)

	if s.DB == nil {
		return domain.ODRow{}, false, errors.New("od repository: db is nil")
	}

	q := `
	SELECT SUM(passengers)::bigint AS total_passengers
	FROM passenger_flows
	WHERE entry_station = $1
		AND exit_station = $2
		AND time_slot >= $3
		AND time_slot < $4;
	`

	var total sql.NullInt64
	if err := s.DB.QueryRowContext(ctx, q, entry, exit, w.Start, w.End).Scan(&total); err != nil {
		return domain.ODRow{}, false, fmt.Errorf("sum pair: query passenger_flows: %w", err)
	}
	if !total.Valid {
		return domain.ODRow{}, false, nil
	}

	return domain.ODRow{Entry: entry, Exit: exit, TotalPassengers: total.Int64}, true, nil
}

// Ties are broken by station name in byte order, as in the SQLite and memory
// stores.
const (
	pgTopDestinationsQuery = `
	SELECT exit_station, SUM(passengers)::bigint AS total_passengers
	FROM passenger_flows
	WHERE entry_station = $1
		AND time_slot >= $2
		AND time_slot < $3
	GROUP BY exit_station
	ORDER BY total_passengers DESC, exit_station COLLATE "C" ASC
	LIMIT $4;
	`

	pgTopOriginsQuery = `
	SELECT entry_station, SUM(passengers)::bigint AS total_passengers
	FROM passenger_flows
	WHERE exit_station = $1
		AND time_slot >= $2
		AND time_slot < $3
	GROUP BY entry_station
	ORDER BY total_passengers DESC, entry_station COLLATE "C" ASC
	LIMIT $4;
	`
)

func (s *SQLODRepository) TopDestinations(
	ctx context.Context,
	entry string,
	w domain.TimeWindow,
	limit int,
) (_ []domain.ODRow, err error) {
	defer obs.Time(ctx, "od.sql.TopDestinations")(&err)

	out, err := s.ranked(ctx, pgTopDestinationsQuery, entry, rankExit, w, limit)
	if err != nil {
		return nil, fmt.Errorf("top destinations: %w", err)
	}
	return out, nil
}

func (s *SQLODRepository) TopOrigins(
	ctx context.Context,
	exit string,
	w domain.TimeWindow,
	limit int,
) (_ []domain.ODRow, err error) {
	defer obs.Time(ctx, "od.sql.TopOrigins")(&err)

	out, err := s.ranked(ctx, pgTopOriginsQuery, exit, rankEntry, w, limit)
	if err != nil {
		return nil, fmt.Errorf("top origins: %w", err)
	}
	return out, nil
}

func (s *SQLODRepository) ranked(
	ctx context.Context,
	q string,
	station string,
	side rankedSide,
	w domain.TimeWindow,
	limit int,
) ([]domain.ODRow, error) {
	if s.DB == nil {
		return nil, errors.New("od repository: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, q, station, w.Start, w.End, limit)
	if err != nil {
		return nil, fmt.Errorf("query passenger_flows: %w", err)
	}
	defer rows.Close()

	return scanRanked(rows, station, side)
}

func (s *SQLODRepository) HourlyProfile(ctx context.Context, station string) (_ []domain.HourlyCount, err error) {
	defer obs.Time(ctx, "stats.sql.HourlyProfile")(&err)

	if s.DB == nil {
		return nil, errors.New("od repository: db is nil")
	}

	q := `
	SELECT
		time_slot,
		COALESCE(SUM(passengers) FILTER (WHERE entry_station = $1), 0)::bigint AS entries,
		COALESCE(SUM(passengers) FILTER (WHERE exit_station = $1), 0)::bigint AS exits
	FROM passenger_flows
	WHERE entry_station = $1 OR exit_station = $1
	GROUP BY time_slot
	ORDER BY time_slot;
	`

	rows, err := s.DB.QueryContext(ctx, q, station)
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

func (s *SQLODRepository) TopRoutes(
	ctx context.Context,
	w domain.TimeWindow,
	limit int,
) (_ []domain.RouteCount, err error) {
	defer obs.Time(ctx, "stats.sql.TopRoutes")(&err)

	if s.DB == nil {
		return nil, errors.New("od repository: db is nil")
	}

	q := `
	SELECT
		LEAST(entry_station COLLATE "C", exit_station COLLATE "C") AS station_a,
		GREATEST(entry_station COLLATE "C", exit_station COLLATE "C") AS station_b,
		SUM(passengers)::bigint AS total_passengers
	FROM passenger_flows
	WHERE entry_station <> exit_station
		AND time_slot >= $1
		AND time_slot < $2
	GROUP BY 1, 2
	ORDER BY total_passengers DESC, station_a ASC, station_b ASC
	LIMIT $3;
	`

	rows, err := s.DB.QueryContext(ctx, q, w.Start, w.End, limit)
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

func (s *SQLODRepository) TopStations(
	ctx context.Context,
	w domain.TimeWindow,
	limit int,
) (_ []domain.StationCount, err error) {
	defer obs.Time(ctx, "stats.sql.TopStations")(&err)

	if s.DB == nil {
		return nil, errors.New("od repository: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, pgTopStationsQuery, w.Start, w.End, limit)
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

const pgTopStationsQuery = `
	SELECT station, SUM(passengers)::bigint AS total_passengers
	FROM (
		SELECT entry_station AS station, passengers
		FROM passenger_flows
		WHERE entry_station <> exit_station AND time_slot >= $1 AND time_slot < $2
		UNION ALL
		SELECT exit_station AS station, passengers
		FROM passenger_flows
		WHERE entry_station <> exit_station AND time_slot >= $1 AND time_slot < $2
	) AS ends
	GROUP BY station
	ORDER BY total_passengers DESC, station COLLATE "C" ASC
	LIMIT $3;
	`

func (s *SQLODRepository) HourlyAverages(ctx context.Context) (_ []domain.HourlyAverage, err error) {
	defer obs.Time(ctx, "stats.sql.HourlyAverages")(&err)

	if s.DB == nil {
		return nil, errors.New("od repository: db is nil")
	}

	q := `
	SELECT time_slot::int, AVG(daily)::double precision AS avg_passengers
	FROM (
		SELECT travel_date, time_slot, SUM(passengers) AS daily
		FROM passenger_flows
		GROUP BY travel_date, time_slot
	) AS per_day
	GROUP BY time_slot
	ORDER BY time_slot;
	`

	rows, err := s.DB.QueryContext(ctx, q)
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

func (s *SQLODRepository) DailyTotals(ctx context.Context) (_ []domain.DailyTotal, err error) {
	defer obs.Time(ctx, "stats.sql.DailyTotals")(&err)

	if s.DB == nil {
		return nil, errors.New("od repository: db is nil")
	}

	q := `
	SELECT travel_date, SUM(passengers)::bigint AS total_passengers
	FROM passenger_flows
	GROUP BY travel_date
	ORDER BY travel_date COLLATE "C";
	`

	rows, err := s.DB.QueryContext(ctx, q)
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
