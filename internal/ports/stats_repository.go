package ports

import (
	"context"
	"mrt-od-service/internal/domain"
)

// Port: aggregate ridership statistics derived from the same fact table.
type StatsRepository interface {
	// Entries and exits per hour of day for a station, ordered by time slot.
	HourlyProfile(ctx context.Context, station string) ([]domain.HourlyCount, error)

	// Most travelled unordered station pairs inside the window, self-trips excluded.
	TopRoutes(ctx context.Context, w domain.TimeWindow, limit int) ([]domain.RouteCount, error)

	// Busiest stations inside the window, self-trips excluded, ties by name.
	TopStations(ctx context.Context, w domain.TimeWindow, limit int) ([]domain.StationCount, error)

	// System-wide passengers per hour averaged over travel dates, ordered by
	// time slot. Hours without records are omitted.
	HourlyAverages(ctx context.Context) ([]domain.HourlyAverage, error)

	// System-wide passengers per travel date, ordered by date string.
	DailyTotals(ctx context.Context) ([]domain.DailyTotal, error)
}

// FactStore is a backend serving both the OD and the statistics queries.
type FactStore interface {
	ODRepository
	StatsRepository
}
