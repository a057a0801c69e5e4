package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"mrt-od-service/internal/domain"
	"mrt-od-service/internal/ports"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const (
	DefaultRouteLimit = 20
	MaxRouteLimit     = 100
)

// StatsService exposes ridership summaries derived from the fact table.
type StatsService struct {
	Repo    ports.StatsRepository
	Timeout time.Duration
}

func NewStatsService(repo ports.StatsRepository, timeout time.Duration) *StatsService {
	return &StatsService{Repo: repo, Timeout: timeout}
}

func (s *StatsService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout > 0 {
		return context.WithTimeout(ctx, s.Timeout)
	}
	return context.WithCancel(ctx)
}

// HourlyProfile returns entries and exits for every hour of the day,
// zero-filled for hours without records.
func (s *StatsService) HourlyProfile(ctx context.Context, station string) ([]domain.HourlyCount, error) {
	if s.Repo == nil {
		return nil, errors.New("hourly profile: repository is nil")
	}

	station = domain.NormalizeStationName(station)
	if station == "" {
		return nil, fmt.Errorf("hourly profile: %w", domain.ErrMissingStation)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	counts, err := s.Repo.HourlyProfile(ctx, station)
	if err != nil {
		return nil, wrapStoreErr(ctx, "hourly profile", err)
	}

	bySlot := lo.KeyBy(counts, func(h domain.HourlyCount) int { return h.TimeSlot })
	out := make([]domain.HourlyCount, 0, domain.LastTimeSlot+1)
	for slot := domain.FirstTimeSlot; slot <= domain.LastTimeSlot; slot++ {
		h, ok := bySlot[slot]
		if !ok {
			h = domain.HourlyCount{TimeSlot: slot}
		}
		out = append(out, h)
	}

	return out, nil
}

// TopRoutes ranks unordered station pairs. limit <= 0 selects the default;
// larger values are capped at MaxRouteLimit.
func (s *StatsService) TopRoutes(ctx context.Context, w domain.TimeWindow, limit int) ([]domain.RouteCount, error) {
	if s.Repo == nil {
		return nil, errors.New("top routes: repository is nil")
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("top routes: %w", err)
	}

	if limit <= 0 {
		limit = DefaultRouteLimit
	}
	limit = lo.Clamp(limit, 1, MaxRouteLimit)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	routes, err := s.Repo.TopRoutes(ctx, w, limit)
	if err != nil {
		return nil, wrapStoreErr(ctx, "top routes", err)
	}
	if routes == nil {
		routes = []domain.RouteCount{}
	}

	return routes, nil
}

// TopStations ranks stations by the trips touching them inside the window.
// limit follows the TopRoutes rules.
func (s *StatsService) TopStations(ctx context.Context, w domain.TimeWindow, limit int) ([]domain.StationCount, error) {
	if s.Repo == nil {
		return nil, errors.New("top stations: repository is nil")
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("top stations: %w", err)
	}

	if limit <= 0 {
		limit = DefaultRouteLimit
	}
	limit = lo.Clamp(limit, 1, MaxRouteLimit)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	stations, err := s.Repo.TopStations(ctx, w, limit)
	if err != nil {
		return nil, wrapStoreErr(ctx, "top stations", err)
	}
	if stations == nil {
		stations = []domain.StationCount{}
	}

	return stations, nil
}

// HourlyAverages returns the system-wide average per hour of day over all
// travel dates, zero-filled for hours without records.
func (s *StatsService) HourlyAverages(ctx context.Context) ([]domain.HourlyAverage, error) {
	if s.Repo == nil {
		return nil, errors.New("hourly averages: repository is nil")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	avgs, err := s.Repo.HourlyAverages(ctx)
	if err != nil {
		return nil, wrapStoreErr(ctx, "hourly averages", err)
	}

	bySlot := lo.KeyBy(avgs, func(h domain.HourlyAverage) int { return h.TimeSlot })
	out := make([]domain.HourlyAverage, 0, domain.LastTimeSlot+1)
	for slot := domain.FirstTimeSlot; slot <= domain.LastTimeSlot; slot++ {
		out = append(out, domain.HourlyAverage{TimeSlot: slot, AvgPassengers: bySlot[slot].AvgPassengers})
	}

	return out, nil
}

// WeekdayAverages averages daily totals per day of week, Monday first.
// Weekdays without any date report zero days.
func (s *StatsService) WeekdayAverages(ctx context.Context) ([]domain.WeekdayAverage, error) {
	days, err := s.datedTotals(ctx, "weekday averages")
	if err != nil {
		return nil, err
	}

	sums := map[time.Weekday]int64{}
	counts := map[time.Weekday]int{}
	for _, d := range days {
		wd := d.date.Weekday()
		sums[wd] += d.passengers
		counts[wd]++
	}

	out := make([]domain.WeekdayAverage, 0, len(domain.ReportWeekdays))
	for _, wd := range domain.ReportWeekdays {
		avg := domain.WeekdayAverage{Weekday: wd, Days: counts[wd]}
		if avg.Days > 0 {
			avg.AvgPassengers = float64(sums[wd]) / float64(avg.Days)
		}
		out = append(out, avg)
	}

	return out, nil
}

// MonthlyTotals sums passengers per calendar month, oldest first.
func (s *StatsService) MonthlyTotals(ctx context.Context) ([]domain.MonthlyTotal, error) {
	days, err := s.datedTotals(ctx, "monthly totals")
	if err != nil {
		return nil, err
	}

	totals := map[string]int64{}
	for _, d := range days {
		totals[d.date.Format("2006-01")] += d.passengers
	}

	out := lo.MapToSlice(totals, func(month string, n int64) domain.MonthlyTotal {
		return domain.MonthlyTotal{Month: month, Passengers: n}
	})
	slices.SortFunc(out, func(a, b domain.MonthlyTotal) int { return cmp.Compare(a.Month, b.Month) })

	return out, nil
}

type datedTotal struct {
	date       time.Time
	passengers int64
}

// datedTotals loads daily totals and drops records whose travel date is
// missing or unreadable.
func (s *StatsService) datedTotals(ctx context.Context, op string) ([]datedTotal, error) {
	if s.Repo == nil {
		return nil, fmt.Errorf("%s: repository is nil", op)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	daily, err := s.Repo.DailyTotals(ctx)
	if err != nil {
		return nil, wrapStoreErr(ctx, op, err)
	}

	out := make([]datedTotal, 0, len(daily))
	var skipped int64
	for _, d := range daily {
		t, ok := domain.ParseTravelDate(d.TravelDate)
		if !ok {
			skipped += d.Passengers
			continue
		}
		out = append(out, datedTotal{date: t, passengers: d.Passengers})
	}
	if skipped > 0 {
		logrus.WithFields(logrus.Fields{"op": op, "passengers": skipped}).Debug("undated records left out")
	}

	return out, nil
}
