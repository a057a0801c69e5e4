package domain

import (
	"strings"
	"time"
)

// Passengers entering and exiting a station during one hour of the day.
type HourlyCount struct {
	TimeSlot int
	Entries  int64
	Exits    int64
}

// Represents an unordered station pair ranked by combined volume in both
// directions. StationA sorts before StationB.
type RouteCount struct {
	StationA   string
	StationB   string
	Passengers int64
}

// Ranks a station by the passengers of every non-self trip touching it,
// counted once at each end.
type StationCount struct {
	Station    string
	Passengers int64
}

// Passengers in one hour of the day averaged over the travel dates that
// have records in that hour.
type HourlyAverage struct {
	TimeSlot      int
	AvgPassengers float64
}

// System-wide passengers on one travel date, as stored.
type DailyTotal struct {
	TravelDate string
	Passengers int64
}

// Daily passengers averaged over the dates falling on one weekday.
type WeekdayAverage struct {
	Weekday       time.Weekday
	Days          int
	AvgPassengers float64
}

// Passengers in one calendar month, keyed "YYYY-MM".
type MonthlyTotal struct {
	Month      string
	Passengers int64
}

// Weekdays in reporting order, Monday first.
var ReportWeekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

var travelDateLayouts = []string{"2006-01-02", "2006/01/02", "2006-1-2", "2006/1/2", "20060102"}

// ParseTravelDate reads the date column of a ridership export.
func ParseTravelDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range travelDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
