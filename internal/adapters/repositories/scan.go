package repositories

import (
	"database/sql"
	"fmt"
	"mrt-od-service/internal/domain"
)

// Which side of an ODRow the grouped column fills.
type rankedSide int

const (
	rankExit rankedSide = iota
	rankEntry
)

// scanRanked reads (station, total) rows. fixed fills the side that was
// filtered on so every returned row has both stations.
func scanRanked(rows *sql.Rows, fixed string, side rankedSide) ([]domain.ODRow, error) {
	out := make([]domain.ODRow, 0, domain.MaxODResults)
	for rows.Next() {
		var station string
		var total int64
		if err := rows.Scan(&station, &total); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := domain.ODRow{Entry: fixed, Exit: station, TotalPassengers: total}
		if side == rankEntry {
			row = domain.ODRow{Entry: station, Exit: fixed, TotalPassengers: total}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	return out, nil
}

func scanHourly(rows *sql.Rows) ([]domain.HourlyCount, error) {
	out := make([]domain.HourlyCount, 0, domain.LastTimeSlot+1)
	for rows.Next() {
		var h domain.HourlyCount
		if err := rows.Scan(&h.TimeSlot, &h.Entries, &h.Exits); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	return out, nil
}

func scanRoutes(rows *sql.Rows) ([]domain.RouteCount, error) {
	out := make([]domain.RouteCount, 0, 32)
	for rows.Next() {
		var r domain.RouteCount
		if err := rows.Scan(&r.StationA, &r.StationB, &r.Passengers); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	return out, nil
}

func scanStations(rows *sql.Rows) ([]domain.StationCount, error) {
	out := make([]domain.StationCount, 0, 32)
	for rows.Next() {
		var s domain.StationCount
		if err := rows.Scan(&s.Station, &s.Passengers); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	return out, nil
}

func scanHourlyAverages(rows *sql.Rows) ([]domain.HourlyAverage, error) {
	out := make([]domain.HourlyAverage, 0, domain.LastTimeSlot+1)
	for rows.Next() {
		var h domain.HourlyAverage
		if err := rows.Scan(&h.TimeSlot, &h.AvgPassengers); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	return out, nil
}

func scanDailyTotals(rows *sql.Rows) ([]domain.DailyTotal, error) {
	out := make([]domain.DailyTotal, 0, 31)
	for rows.Next() {
		var d domain.DailyTotal
		if err := rows.Scan(&d.TravelDate, &d.Passengers); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	return out, nil
}
