package handlers

import (
	"context"
	"mrt-od-service/internal/api/dto"
	"mrt-od-service/internal/domain"
	"net/http"
	"net/url"
	"strconv"
)

// StatsProvider is the statistics dependency of StatsHandler.
type StatsProvider interface {
	HourlyProfile(ctx context.Context, station string) ([]domain.HourlyCount, error)
	TopRoutes(ctx context.Context, w domain.TimeWindow, limit int) ([]domain.RouteCount, error)
	TopStations(ctx context.Context, w domain.TimeWindow, limit int) ([]domain.StationCount, error)
	HourlyAverages(ctx context.Context) ([]domain.HourlyAverage, error)
	WeekdayAverages(ctx context.Context) ([]domain.WeekdayAverage, error)
	MonthlyTotals(ctx context.Context) ([]domain.MonthlyTotal, error)
}

type StatsHandler struct {
	Service StatsProvider
}

func (h *StatsHandler) Hourly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	station := domain.NormalizeStationName(r.URL.Query().Get("station"))
	counts, err := h.Service.HourlyProfile(r.Context(), station)
	if err != nil {
		writeServiceError(w, r, "stats.hourly", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewHourlyProfile(station, counts))
}

func (h *StatsHandler) Routes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	win, limit, ok := rankingParams(w, r)
	if !ok {
		return
	}

	routes, err := h.Service.TopRoutes(r.Context(), win, limit)
	if err != nil {
		writeServiceError(w, r, "stats.routes", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewTopRoutes(win, routes))
}

func (h *StatsHandler) Stations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	win, limit, ok := rankingParams(w, r)
	if !ok {
		return
	}

	stations, err := h.Service.TopStations(r.Context(), win, limit)
	if err != nil {
		writeServiceError(w, r, "stats.stations", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewTopStations(win, stations))
}

func (h *StatsHandler) HourlyAverage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	avgs, err := h.Service.HourlyAverages(r.Context())
	if err != nil {
		writeServiceError(w, r, "stats.hourly_average", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewHourlyAverages(avgs))
}

func (h *StatsHandler) Weekdays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	avgs, err := h.Service.WeekdayAverages(r.Context())
	if err != nil {
		writeServiceError(w, r, "stats.weekdays", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewWeekdayAverages(avgs))
}

func (h *StatsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	months, err := h.Service.MonthlyTotals(r.Context())
	if err != nil {
		writeServiceError(w, r, "stats.monthly", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewMonthlyTotals(months))
}

// rankingParams reads start_time, end_time and limit, writing a 400 when
// any is not an integer.
func rankingParams(w http.ResponseWriter, r *http.Request) (domain.TimeWindow, int, bool) {
	q := r.URL.Query()
	start, okStart := intParam(q, "start_time", domain.FirstTimeSlot)
	end, okEnd := intParam(q, "end_time", domain.LastTimeSlot+1)
	limit, okLimit := intParam(q, "limit", 0)
	if !okStart || !okEnd || !okLimit {
		writeError(w, r, http.StatusBadRequest, "invalid_query", "start_time, end_time and limit must be integers")
		return domain.TimeWindow{}, 0, false
	}
	return domain.TimeWindow{Start: start, End: end}, limit, true
}

// intParam reads an optional integer query parameter.
func intParam(q url.Values, key string, fallback int) (int, bool) {
	raw := q.Get(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
