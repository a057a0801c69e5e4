package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"mrt-od-service/internal/adapters/geodata"
	"mrt-od-service/internal/adapters/repositories"
	"mrt-od-service/internal/domain"
	"mrt-od-service/internal/services"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stationsJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "石牌站"}, "geometry": {"type": "Point", "coordinates": [302000, 2777000]}},
    {"type": "Feature", "properties": {"name": "士林站"}, "geometry": {"type": "Point", "coordinates": [302500, 2773000]}},
    {"type": "Feature", "properties": {"name": "芝山站"}, "geometry": {"type": "Point", "coordinates": [302300, 2775000]}}
  ]
}`

var fixtureRecords = []domain.PassengerRecord{
	{Entry: "石牌", Exit: "士林", TimeSlot: 9, Passengers: 500},
	{Entry: "石牌", Exit: "士林", TimeSlot: 10, Passengers: 300},
	{Entry: "石牌", Exit: "芝山", TimeSlot: 9, Passengers: 200},
	{Entry: "芝山", Exit: "士林", TimeSlot: 11, Passengers: 50},
}

func newODService() *services.ODService {
	return services.NewODService(repositories.NewMemoryODRepository(fixtureRecords), time.Second)
}

func newStationIndex(t *testing.T) *geodata.StationIndex {
	t.Helper()
	idx, err := geodata.ParseStationIndex([]byte(stationsJSON), "name")
	require.NoError(t, err)
	return idx
}

func do(h http.HandlerFunc, method, target, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(Health, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(Health, http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestHome(t *testing.T) {
	rec := do(Home, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Taipei MRT")

	rec = do(Home, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestODQueryBranches(t *testing.T) {
	h := &ODHandler{Service: newODService()}

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "pair",
			body: `{"from_station":"石牌站","to_station":"士林","start_time":9,"end_time":11}`,
			want: `[{"entry":"石牌","exit":"士林","total_passengers":800}]`,
		},
		{
			name: "from only with null sentinel",
			body: `{"from_station":"石牌","to_station":"null","start_time":"9","end_time":"10"}`,
			want: `[{"entry":"石牌","exit":"士林","total_passengers":500},{"entry":"石牌","exit":"芝山","total_passengers":200}]`,
		},
		{
			name: "to only",
			body: `{"from_station":null,"to_station":"士林","start_time":0,"end_time":24}`,
			want: `[{"entry":"石牌","exit":"士林","total_passengers":800},{"entry":"芝山","exit":"士林","total_passengers":50}]`,
		},
		{
			name: "pair without data",
			body: `{"from_station":"士林","to_station":"石牌","start_time":0,"end_time":24}`,
			want: `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h.Query, http.MethodPost, "/api/od", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestODQueryClientErrors(t *testing.T) {
	h := &ODHandler{Service: newODService()}

	tests := []struct {
		name   string
		body   string
		reason string
	}{
		{"no stations", `{"from_station":"","to_station":null,"start_time":9,"end_time":10}`, "missing_station"},
		{"reversed window", `{"from_station":"石牌","start_time":10,"end_time":9}`, "invalid_time_window"},
		{"missing hours", `{"from_station":"石牌"}`, "invalid_time_window"},
		{"unknown field", `{"from_station":"石牌","start_time":9,"end_time":10,"extra":1}`, "invalid_body"},
		{"trailing object", `{"from_station":"石牌","start_time":9,"end_time":10}{}`, "invalid_body"},
		{"non-numeric hour", `{"from_station":"石牌","start_time":"nine","end_time":10}`, "invalid_body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h.Query, http.MethodPost, "/api/od", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var res struct {
				Error   string            `json:"error"`
				Reason  string            `json:"reason"`
				Results []json.RawMessage `json:"results"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.Equal(t, tt.reason, res.Reason)
			assert.NotEmpty(t, res.Error)
			assert.NotNil(t, res.Results)
			assert.Empty(t, res.Results)
		})
	}
}

type failingQuerier struct{ err error }

func (f failingQuerier) Query(ctx context.Context, q domain.ODQuery) (*domain.ODResultSet, error) {
	return nil, f.err
}

func TestODQueryServerErrors(t *testing.T) {
	body := `{"from_station":"石牌","start_time":9,"end_time":10}`

	rec := do((&ODHandler{Service: failingQuerier{err: errors.New("disk on fire")}}).Query, http.MethodPost, "/api/od", body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")

	timeout := failingQuerier{err: errors.Join(services.ErrQueryTimeout, context.DeadlineExceeded)}
	rec = do((&ODHandler{Service: timeout}).Query, http.MethodPost, "/api/od", body)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Contains(t, rec.Body.String(), "query_timeout")
}

func TestODQueryMethod(t *testing.T) {
	rec := do((&ODHandler{Service: newODService()}).Query, http.MethodGet, "/api/od", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestFlowsLifecycle(t *testing.T) {
	renderer := services.NewFlowRenderer(newODService(), newStationIndex(t), services.DefaultFlowStyle())
	h := &FlowHandler{Renderer: renderer}

	rec := do(h.Flows, http.MethodPost, "/api/flows",
		`{"from_station":"石牌","start_time":9,"end_time":10}`, SessionHeader, "tab-1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var fc struct {
		Type            string `json:"type"`
		Mode            string `json:"mode"`
		TotalPassengers int64  `json:"total_passengers"`
		Features        []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Equal(t, "from", fc.Mode)
	assert.EqualValues(t, 700, fc.TotalPassengers)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "LineString", fc.Features[0].Geometry.Type)
	assert.Equal(t, "石牌", fc.Features[0].Properties["from"])
	assert.Equal(t, "士林", fc.Features[0].Properties["to"])
	assert.EqualValues(t, 500, fc.Features[0].Properties["passengers"])

	// the current set is per session
	rec = do(h.Flows, http.MethodGet, "/api/flows", "", SessionHeader, "tab-1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Len(t, fc.Features, 2)

	rec = do(h.Flows, http.MethodGet, "/api/flows?session=tab-2", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Empty(t, fc.Features)

	// a failed refresh keeps the previous set
	rec = do(h.Flows, http.MethodPost, "/api/flows",
		`{"start_time":9,"end_time":10}`, SessionHeader, "tab-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, renderer.Current("tab-1").Curves, 2)

	rec = do(h.Flows, http.MethodDelete, "/api/flows", "", SessionHeader, "tab-1")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, renderer.Current("tab-1").Curves)
}

type pendingRenderer struct{}

func (pendingRenderer) Refresh(ctx context.Context, id string, q domain.ODQuery) (domain.FlowSet, error) {
	return domain.FlowSet{}, domain.ErrRenderPending
}
func (pendingRenderer) Current(string) domain.FlowSet { return domain.FlowSet{} }
func (pendingRenderer) Clear(string)                  {}

func TestFlowsPending(t *testing.T) {
	h := &FlowHandler{Renderer: pendingRenderer{}}
	rec := do(h.Flows, http.MethodPost, "/api/flows", `{"from_station":"石牌","start_time":9,"end_time":10}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "render_pending")

	rec = do(h.Flows, http.MethodPut, "/api/flows", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type staticLayer []byte

func (s staticLayer) GeoJSON() []byte { return s }

func TestStations(t *testing.T) {
	h := &StationHandler{Stations: newStationIndex(t), Lines: staticLayer(`{"type":"FeatureCollection","features":[]}`)}

	rec := do(h.List, http.MethodGet, "/api/stations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"stations":["石牌站","士林站","芝山站"]}`, rec.Body.String())

	rec = do(h.StationsGeoJSON, http.MethodGet, "/api/stations/geojson", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "石牌站")

	rec = do(h.LinesGeoJSON, http.MethodGet, "/api/lines", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, rec.Body.String())
}

func TestStatsHourly(t *testing.T) {
	repo := repositories.NewMemoryODRepository(fixtureRecords)
	h := &StatsHandler{Service: services.NewStatsService(repo, time.Second)}

	rec := do(h.Hourly, http.MethodGet, "/api/stats/hourly?station=%E5%A3%AB%E6%9E%97%E7%AB%99", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		Station string `json:"station"`
		Hours   []struct {
			TimeSlot int   `json:"time_slot"`
			Entries  int64 `json:"entries"`
			Exits    int64 `json:"exits"`
		} `json:"hours"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "士林", res.Station)
	require.Len(t, res.Hours, 24)
	assert.EqualValues(t, 500, res.Hours[9].Exits)
	assert.EqualValues(t, 0, res.Hours[9].Entries)

	rec = do(h.Hourly, http.MethodGet, "/api/stats/hourly", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsRoutes(t *testing.T) {
	repo := repositories.NewMemoryODRepository(fixtureRecords)
	h := &StatsHandler{Service: services.NewStatsService(repo, time.Second)}

	rec := do(h.Routes, http.MethodGet, "/api/stats/routes?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t,
		`{"start_time":0,"end_time":24,"routes":[{"station_a":"士林","station_b":"石牌","passengers":800}]}`,
		rec.Body.String())

	rec = do(h.Routes, http.MethodGet, "/api/stats/routes?start_time=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h.Routes, http.MethodGet, "/api/stats/routes?start_time=12&end_time=3", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_time_window")
}

func TestStatsDateEndpoints(t *testing.T) {
	repo := repositories.NewMemoryODRepository([]domain.PassengerRecord{
		{TravelDate: "2023-07-03", Entry: "石牌", Exit: "士林", TimeSlot: 8, Passengers: 100},
		{TravelDate: "2023-07-03", Entry: "芝山", Exit: "石牌", TimeSlot: 9, Passengers: 40},
		{TravelDate: "2023-07-10", Entry: "石牌", Exit: "士林", TimeSlot: 8, Passengers: 60},
		{TravelDate: "2023-08-05", Entry: "士林", Exit: "士林", TimeSlot: 18, Passengers: 5},
	})
	h := &StatsHandler{Service: services.NewStatsService(repo, time.Second)}

	rec := do(h.Stations, http.MethodGet, "/api/stats/stations?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t,
		`{"start_time":0,"end_time":24,"stations":[{"station":"石牌","passengers":200},{"station":"士林","passengers":160}]}`,
		rec.Body.String())

	rec = do(h.HourlyAverage, http.MethodGet, "/api/stats/hourly-average", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var hourly struct {
		Hours []struct {
			TimeSlot      int     `json:"time_slot"`
			AvgPassengers float64 `json:"avg_passengers"`
		} `json:"hours"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hourly))
	require.Len(t, hourly.Hours, 24)
	assert.InDelta(t, 80, hourly.Hours[8].AvgPassengers, 1e-9)
	assert.InDelta(t, 40, hourly.Hours[9].AvgPassengers, 1e-9)
	assert.Zero(t, hourly.Hours[0].AvgPassengers)

	rec = do(h.Weekdays, http.MethodGet, "/api/stats/weekdays", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var weekdays struct {
		Weekdays []struct {
			Weekday       string  `json:"weekday"`
			Days          int     `json:"days"`
			AvgPassengers float64 `json:"avg_passengers"`
		} `json:"weekdays"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &weekdays))
	require.Len(t, weekdays.Weekdays, 7)
	assert.Equal(t, "Monday", weekdays.Weekdays[0].Weekday)
	assert.Equal(t, 2, weekdays.Weekdays[0].Days)
	assert.InDelta(t, 100, weekdays.Weekdays[0].AvgPassengers, 1e-9)
	assert.Equal(t, "Saturday", weekdays.Weekdays[5].Weekday)
	assert.InDelta(t, 5, weekdays.Weekdays[5].AvgPassengers, 1e-9)

	rec = do(h.Monthly, http.MethodGet, "/api/stats/monthly", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t,
		`{"months":[{"month":"2023-07","passengers":200},{"month":"2023-08","passengers":5}]}`,
		rec.Body.String())

	rec = do(h.Monthly, http.MethodPost, "/api/stats/monthly", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
