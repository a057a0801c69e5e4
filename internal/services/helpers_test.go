package services

import (
	"context"
	"mrt-od-service/internal/domain"

	"github.com/paulmach/orb"
)

// pointIndex is a StationLocator over a fixed map.
type pointIndex map[string]orb.Point

func (p pointIndex) Lookup(name string) (orb.Point, bool) {
	pt, ok := p[domain.NormalizeStationName(name)]
	return pt, ok
}

var testStations = pointIndex{
	"石牌": {302000, 2777000},
	"士林": {302500, 2773000},
	"芝山": {302300, 2775000},
	"北投": {301000, 2779000},
}

// stubRepo returns canned results or blocks until the context is done.
type stubRepo struct {
	rows  []domain.ODRow
	daily []domain.DailyTotal
	err   error
	block bool
}

func (s *stubRepo) wait(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

func (s *stubRepo) SumPair(ctx context.Context, entry, exit string, w domain.TimeWindow) (domain.ODRow, bool, error) {
	if err := s.wait(ctx); err != nil {
		return domain.ODRow{}, false, err
	}
	if len(s.rows) == 0 {
		return domain.ODRow{}, false, nil
	}
	return s.rows[0], true, nil
}

func (s *stubRepo) TopDestinations(ctx context.Context, entry string, w domain.TimeWindow, limit int) ([]domain.ODRow, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.rows, nil
}

func (s *stubRepo) TopOrigins(ctx context.Context, exit string, w domain.TimeWindow, limit int) ([]domain.ODRow, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.rows, nil
}

func (s *stubRepo) HourlyProfile(ctx context.Context, station string) ([]domain.HourlyCount, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return []domain.HourlyCount{{TimeSlot: 9, Entries: 4, Exits: 2}}, nil
}

func (s *stubRepo) TopRoutes(ctx context.Context, w domain.TimeWindow, limit int) ([]domain.RouteCount, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.RouteCount, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, domain.RouteCount{StationA: "a", StationB: "b", Passengers: int64(limit - i)})
	}
	return out, nil
}

func (s *stubRepo) TopStations(ctx context.Context, w domain.TimeWindow, limit int) ([]domain.StationCount, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.StationCount, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, domain.StationCount{Station: "s", Passengers: int64(limit - i)})
	}
	return out, nil
}

func (s *stubRepo) HourlyAverages(ctx context.Context) ([]domain.HourlyAverage, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return []domain.HourlyAverage{{TimeSlot: 8, AvgPassengers: 12.5}}, nil
}

func (s *stubRepo) DailyTotals(ctx context.Context) ([]domain.DailyTotal, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.daily, nil
}
