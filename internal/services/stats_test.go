package services

import (
	"context"
	"mrt-od-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHourlyProfileZeroFills(t *testing.T) {
	svc := NewStatsService(&stubRepo{}, time.Second)

	profile, err := svc.HourlyProfile(context.Background(), "石牌站")
	require.NoError(t, err)
	require.Len(t, profile, 24)

	assert.Equal(t, domain.HourlyCount{TimeSlot: 9, Entries: 4, Exits: 2}, profile[9])
	assert.Equal(t, domain.HourlyCount{TimeSlot: 0}, profile[0])
	assert.Equal(t, domain.HourlyCount{TimeSlot: 23}, profile[23])

	_, err = svc.HourlyProfile(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrMissingStation)
}

func TestTopRoutesLimit(t *testing.T) {
	svc := NewStatsService(&stubRepo{}, time.Second)
	w := domain.TimeWindow{Start: 0, End: 24}

	routes, err := svc.TopRoutes(context.Background(), w, 0)
	require.NoError(t, err)
	assert.Len(t, routes, DefaultRouteLimit)

	routes, err = svc.TopRoutes(context.Background(), w, 1000)
	require.NoError(t, err)
	assert.Len(t, routes, MaxRouteLimit)

	_, err = svc.TopRoutes(context.Background(), domain.TimeWindow{Start: 5, End: 5}, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidTimeWindow)
}

func TestStatsTimeout(t *testing.T) {
	svc := NewStatsService(&stubRepo{block: true}, 10*time.Millisecond)

	_, err := svc.TopRoutes(context.Background(), domain.TimeWindow{Start: 0, End: 24}, 5)
	assert.ErrorIs(t, err, ErrQueryTimeout)
}

func TestTopStationsLimit(t *testing.T) {
	svc := NewStatsService(&stubRepo{}, time.Second)
	w := domain.TimeWindow{Start: 0, End: 24}

	stations, err := svc.TopStations(context.Background(), w, 0)
	require.NoError(t, err)
	assert.Len(t, stations, DefaultRouteLimit)

	stations, err = svc.TopStations(context.Background(), w, 500)
	require.NoError(t, err)
	assert.Len(t, stations, MaxRouteLimit)

	_, err = svc.TopStations(context.Background(), domain.TimeWindow{Start: -1, End: 5}, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidTimeWindow)
}

func TestHourlyAveragesZeroFills(t *testing.T) {
	svc := NewStatsService(&stubRepo{}, time.Second)

	avgs, err := svc.HourlyAverages(context.Background())
	require.NoError(t, err)
	require.Len(t, avgs, 24)
	assert.Equal(t, domain.HourlyAverage{TimeSlot: 8, AvgPassengers: 12.5}, avgs[8])
	assert.Equal(t, domain.HourlyAverage{TimeSlot: 0}, avgs[0])
}

func dailyFixture() []domain.DailyTotal {
	return []domain.DailyTotal{
		{TravelDate: "", Passengers: 999},
		{TravelDate: "2023-07-01", Passengers: 100}, // Saturday
		{TravelDate: "2023-07-03", Passengers: 300}, // Monday
		{TravelDate: "2023-07-08", Passengers: 200}, // Saturday
		{TravelDate: "2023/08/07", Passengers: 500}, // Monday
		{TravelDate: "not-a-date", Passengers: 7},
	}
}

func TestWeekdayAverages(t *testing.T) {
	svc := NewStatsService(&stubRepo{daily: dailyFixture()}, time.Second)

	avgs, err := svc.WeekdayAverages(context.Background())
	require.NoError(t, err)
	require.Len(t, avgs, 7)

	assert.Equal(t, domain.WeekdayAverage{Weekday: time.Monday, Days: 2, AvgPassengers: 400}, avgs[0])
	assert.Equal(t, domain.WeekdayAverage{Weekday: time.Tuesday}, avgs[1])
	assert.Equal(t, domain.WeekdayAverage{Weekday: time.Saturday, Days: 2, AvgPassengers: 150}, avgs[5])
	assert.Equal(t, time.Sunday, avgs[6].Weekday)
}

func TestMonthlyTotals(t *testing.T) {
	svc := NewStatsService(&stubRepo{daily: dailyFixture()}, time.Second)

	months, err := svc.MonthlyTotals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.MonthlyTotal{
		{Month: "2023-07", Passengers: 600},
		{Month: "2023-08", Passengers: 500},
	}, months)

	empty, err := NewStatsService(&stubRepo{}, time.Second).MonthlyTotals(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestDateStatsTimeout(t *testing.T) {
	svc := NewStatsService(&stubRepo{block: true}, 10*time.Millisecond)

	_, err := svc.WeekdayAverages(context.Background())
	assert.ErrorIs(t, err, ErrQueryTimeout)
	_, err = svc.MonthlyTotals(context.Background())
	assert.ErrorIs(t, err, ErrQueryTimeout)
	_, err = svc.HourlyAverages(context.Background())
	assert.ErrorIs(t, err, ErrQueryTimeout)
}
