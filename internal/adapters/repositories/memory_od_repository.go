package repositories

import (
	"cmp"
	"context"
	"mrt-od-service/internal/domain"
	"slices"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/samber/lo"
)

// MemoryODRepository answers OD and statistics queries from records held in
// memory. It serves STORE_DRIVER=memory (CSV loaded at startup) and tests.
// Per-station record lists are built on first use and shared across requests.
type MemoryODRepository struct {
	records []domain.PassengerRecord
	byEntry *xsync.MapOf[string, []domain.PassengerRecord]
	byExit  *xsync.MapOf[string, []domain.PassengerRecord]
}

func NewMemoryODRepository(records []domain.PassengerRecord) *MemoryODRepository {
	return &MemoryODRepository{
		records: slices.Clone(records),
		byEntry: xsync.NewMapOf[string, []domain.PassengerRecord](),
		byExit:  xsync.NewMapOf[string, []domain.PassengerRecord](),
	}
}

func (m *MemoryODRepository) entering(station string) []domain.PassengerRecord {
	recs, _ := m.byEntry.LoadOrCompute(station, func() []domain.PassengerRecord {
		return lo.Filter(m.records, func(r domain.PassengerRecord, _ int) bool { return r.Entry == station })
	})
	return recs
}

func (m *MemoryODRepository) exiting(station string) []domain.PassengerRecord {
	recs, _ := m.byExit.LoadOrCompute(station, func() []domain.PassengerRecord {
		return lo.Filter(m.records, func(r domain.PassengerRecord, _ int) bool { return r.Exit == station })
	})
	return recs
}

func inWindow(recs []domain.PassengerRecord, w domain.TimeWindow) []domain.PassengerRecord {
	return lo.Filter(recs, func(r domain.PassengerRecord, _ int) bool {
		return w.Contains(r.TimeSlot)
	})
}

func (m *MemoryODRepository) SumPair(
	ctx context.Context,
	entry, exit string,
	w domain.TimeWindow,
) (domain.ODRow, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.ODRow{}, false, err
	}

	matched := lo.Filter(inWindow(m.entering(entry), w), func(r domain.PassengerRecord, _ int) bool {
		return r.Exit == exit
	})
	if len(matched) == 0 {
		return domain.ODRow{}, false, nil
	}

	total := lo.SumBy(matched, func(r domain.PassengerRecord) int64 { return r.Passengers })
	return domain.ODRow{Entry: entry, Exit: exit, TotalPassengers: total}, true, nil
}

func (m *MemoryODRepository) TopDestinations(
	ctx context.Context,
	entry string,
	w domain.TimeWindow,
	limit int,
) ([]domain.ODRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	totals := map[string]int64{}
	for _, r := range inWindow(m.entering(entry), w) {
		totals[r.Exit] += r.Passengers
	}

	rows := make([]domain.ODRow, 0, len(totals))
	for exit, n := range totals {
		rows = append(rows, domain.ODRow{Entry: entry, Exit: exit, TotalPassengers: n})
	}
	return rankRows(rows, func(r domain.ODRow) string { return r.Exit }, limit), nil
}

func (m *MemoryODRepository) TopOrigins(
	ctx context.Context,
	exit string,
	w domain.TimeWindow,
	limit int,
) ([]domain.ODRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	totals := map[string]int64{}
	for _, r := range inWindow(m.exiting(exit), w) {
		totals[r.Entry] += r.Passengers
	}

	rows := make([]domain.ODRow, 0, len(totals))
	for entry, n := range totals {
		rows = append(rows, domain.ODRow{Entry: entry, Exit: exit, TotalPassengers: n})
	}
	return rankRows(rows, func(r domain.ODRow) string { return r.Entry }, limit), nil
}

// rankRows orders by total descending, then by the ranked station name, and
// truncates to limit. This matches the ORDER BY of the SQL adapters.
func rankRows(rows []domain.ODRow, station func(domain.ODRow) string, limit int) []domain.ODRow {
	slices.SortFunc(rows, func(a, b domain.ODRow) int {
		if c := cmp.Compare(b.TotalPassengers, a.TotalPassengers); c != 0 {
			return c
		}
		return cmp.Compare(station(a), station(b))
	})

	if limit >= 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

func (m *MemoryODRepository) HourlyProfile(ctx context.Context, station string) ([]domain.HourlyCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bySlot := map[int]*domain.HourlyCount{}
	slot := func(s int) *domain.HourlyCount {
		h, ok := bySlot[s]
		if !ok {
			h = &domain.HourlyCount{TimeSlot: s}
			bySlot[s] = h
		}
		return h
	}
	for _, r := range m.entering(station) {
		slot(r.TimeSlot).Entries += r.Passengers
	}
	for _, r := range m.exiting(station) {
		slot(r.TimeSlot).Exits += r.Passengers
	}

	out := lo.MapToSlice(bySlot, func(_ int, h *domain.HourlyCount) domain.HourlyCount { return *h })
	slices.SortFunc(out, func(a, b domain.HourlyCount) int { return cmp.Compare(a.TimeSlot, b.TimeSlot) })
	return out, nil
}

func (m *MemoryODRepository) TopRoutes(ctx context.Context, w domain.TimeWindow, limit int) ([]domain.RouteCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type pair struct{ a, b string }
	totals := map[pair]int64{}
	for _, r := range inWindow(m.records, w) {
		if r.Entry == r.Exit {
			continue
		}
		p := pair{a: min(r.Entry, r.Exit), b: max(r.Entry, r.Exit)}
		totals[p] += r.Passengers
	}

	out := make([]domain.RouteCount, 0, len(totals))
	for p, n := range totals {
		out = append(out, domain.RouteCount{StationA: p.a, StationB: p.b, Passengers: n})
	}

	slices.SortFunc(out, func(x, y domain.RouteCount) int {
		if c := cmp.Compare(y.Passengers, x.Passengers); c != 0 {
			return c
		}
		if c := cmp.Compare(x.StationA, y.StationA); c != 0 {
			return c
		}
		return cmp.Compare(x.StationB, y.StationB)
	})

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryODRepository) TopStations(ctx context.Context, w domain.TimeWindow, limit int) ([]domain.StationCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	totals := map[string]int64{}
	for _, r := range inWindow(m.records, w) {
		if r.Entry == r.Exit {
			continue
		}
		totals[r.Entry] += r.Passengers
		totals[r.Exit] += r.Passengers
	}

	out := lo.MapToSlice(totals, func(station string, n int64) domain.StationCount {
		return domain.StationCount{Station: station, Passengers: n}
	})
	slices.SortFunc(out, func(x, y domain.StationCount) int {
		if c := cmp.Compare(y.Passengers, x.Passengers); c != 0 {
			return c
		}
		return cmp.Compare(x.Station, y.Station)
	})

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryODRepository) HourlyAverages(ctx context.Context) ([]domain.HourlyAverage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type daySlot struct {
		date string
		slot int
	}
	daily := map[daySlot]int64{}
	for _, r := range m.records {
		daily[daySlot{date: r.TravelDate, slot: r.TimeSlot}] += r.Passengers
	}

	sums := map[int]int64{}
	days := map[int]int{}
	for k, n := range daily {
		sums[k.slot] += n
		days[k.slot]++
	}

	out := lo.MapToSlice(sums, func(slot int, n int64) domain.HourlyAverage {
		return domain.HourlyAverage{TimeSlot: slot, AvgPassengers: float64(n) / float64(days[slot])}
	})
	slices.SortFunc(out, func(a, b domain.HourlyAverage) int { return cmp.Compare(a.TimeSlot, b.TimeSlot) })
	return out, nil
}

func (m *MemoryODRepository) DailyTotals(ctx context.Context) ([]domain.DailyTotal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	totals := map[string]int64{}
	for _, r := range m.records {
		totals[r.TravelDate] += r.Passengers
	}

	out := lo.MapToSlice(totals, func(date string, n int64) domain.DailyTotal {
		return domain.DailyTotal{TravelDate: date, Passengers: n}
	})
	slices.SortFunc(out, func(a, b domain.DailyTotal) int { return cmp.Compare(a.TravelDate, b.TravelDate) })
	return out, nil
}
