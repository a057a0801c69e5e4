package ports

import (
	"context"
	"mrt-od-service/internal/domain"
)

// Port: read-only access to the aggregated passenger fact table.
// Station arguments are already normalized by the caller.
type ODRepository interface {
	// Sum all records from entry to exit inside the window.
	// found is false when no record matches.
	SumPair(ctx context.Context, entry, exit string, w domain.TimeWindow) (row domain.ODRow, found bool, err error)

	// Rank exit stations for trips starting at entry.
	TopDestinations(ctx context.Context, entry string, w domain.TimeWindow, limit int) ([]domain.ODRow, error)

	// Rank entry stations for trips ending at exit.
	TopOrigins(ctx context.Context, exit string, w domain.TimeWindow, limit int) ([]domain.ODRow, error)
}
