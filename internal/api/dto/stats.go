package dto

import "mrt-od-service/internal/domain"

type HourlyCountResponse struct {
	TimeSlot int   `json:"time_slot"`
	Entries  int64 `json:"entries"`
	Exits    int64 `json:"exits"`
}

type HourlyProfileResponse struct {
	Station string                `json:"station"`
	Hours   []HourlyCountResponse `json:"hours"`
}

type RouteCountResponse struct {
	StationA   string `json:"station_a"`
	StationB   string `json:"station_b"`
	Passengers int64  `json:"passengers"`
}

type TopRoutesResponse struct {
	StartTime int                  `json:"start_time"`
	EndTime   int                  `json:"end_time"`
	Routes    []RouteCountResponse `json:"routes"`
}

func NewHourlyProfile(station string, counts []domain.HourlyCount) HourlyProfileResponse {
	res := HourlyProfileResponse{
		Station: station,
		Hours:   make([]HourlyCountResponse, 0, len(counts)),
	}
	for _, h := range counts {
		res.Hours = append(res.Hours, HourlyCountResponse{TimeSlot: h.TimeSlot, Entries: h.Entries, Exits: h.Exits})
	}
	return res
}

func NewTopRoutes(w domain.TimeWindow, routes []domain.RouteCount) TopRoutesResponse {
	res := TopRoutesResponse{
		StartTime: w.Start,
		EndTime:   w.End,
		Routes:    make([]RouteCountResponse, 0, len(routes)),
	}
	for _, r := range routes {
		res.Routes = append(res.Routes, RouteCountResponse{StationA: r.StationA, StationB: r.StationB, Passengers: r.Passengers})
	}
	return res
}

type StationCountResponse struct {
	Station    string `json:"station"`
	Passengers int64  `json:"passengers"`
}

type TopStationsResponse struct {
	StartTime int                    `json:"start_time"`
	EndTime   int                    `json:"end_time"`
	Stations  []StationCountResponse `json:"stations"`
}

type HourlyAverageResponse struct {
	TimeSlot      int     `json:"time_slot"`
	AvgPassengers float64 `json:"avg_passengers"`
}

type HourlyAveragesResponse struct {
	Hours []HourlyAverageResponse `json:"hours"`
}

type WeekdayAverageResponse struct {
	Weekday       string  `json:"weekday"`
	Days          int     `json:"days"`
	AvgPassengers float64 `json:"avg_passengers"`
}

type WeekdayAveragesResponse struct {
	Weekdays []WeekdayAverageResponse `json:"weekdays"`
}

type MonthlyTotalResponse struct {
	Month      string `json:"month"`
	Passengers int64  `json:"passengers"`
}

type MonthlyTotalsResponse struct {
	Months []MonthlyTotalResponse `json:"months"`
}

func NewTopStations(w domain.TimeWindow, stations []domain.StationCount) TopStationsResponse {
	res := TopStationsResponse{
		StartTime: w.Start,
		EndTime:   w.End,
		Stations:  make([]StationCountResponse, 0, len(stations)),
	}
	for _, s := range stations {
		res.Stations = append(res.Stations, StationCountResponse{Station: s.Station, Passengers: s.Passengers})
	}
	return res
}

func NewHourlyAverages(avgs []domain.HourlyAverage) HourlyAveragesResponse {
	res := HourlyAveragesResponse{Hours: make([]HourlyAverageResponse, 0, len(avgs))}
	for _, h := range avgs {
		res.Hours = append(res.Hours, HourlyAverageResponse{TimeSlot: h.TimeSlot, AvgPassengers: h.AvgPassengers})
	}
	return res
}

func NewWeekdayAverages(avgs []domain.WeekdayAverage) WeekdayAveragesResponse {
	res := WeekdayAveragesResponse{Weekdays: make([]WeekdayAverageResponse, 0, len(avgs))}
	for _, a := range avgs {
		res.Weekdays = append(res.Weekdays, WeekdayAverageResponse{
			Weekday:       a.Weekday.String(),
			Days:          a.Days,
			AvgPassengers: a.AvgPassengers,
		})
	}
	return res
}

func NewMonthlyTotals(months []domain.MonthlyTotal) MonthlyTotalsResponse {
	res := MonthlyTotalsResponse{Months: make([]MonthlyTotalResponse, 0, len(months))}
	for _, m := range months {
		res.Months = append(res.Months, MonthlyTotalResponse{Month: m.Month, Passengers: m.Passengers})
	}
	return res
}
