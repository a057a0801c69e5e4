package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mrt-od-service/internal/domain"
	"strconv"
	"strings"
)

// Legacy clients send the string "null" for an unselected station.
const unsetStationSentinel = "null"

// OptionalStation is a station name that may be absent. JSON null, "",
// and the legacy "null" string all decode to unset.
type OptionalStation struct {
	Name string
	Set  bool
}

func (o *OptionalStation) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*o = OptionalStation{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("station must be a string or null: %w", err)
	}

	s = strings.TrimSpace(s)
	if s == "" || s == unsetStationSentinel {
		*o = OptionalStation{}
		return nil
	}

	*o = OptionalStation{Name: s, Set: true}
	return nil
}

// FlexHour accepts an hour as a JSON number or a numeric string.
type FlexHour int

func (h *FlexHour) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return errors.New("hour must be a number or numeric string")
		}
		n = json.Number(strings.TrimSpace(s))
	}

	v, err := strconv.Atoi(n.String())
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil || f != float64(int(f)) {
			return fmt.Errorf("hour %q is not an integer", n.String())
		}
		v = int(f)
	}

	*h = FlexHour(v)
	return nil
}

type ODRequest struct {
	FromStation OptionalStation `json:"from_station"`
	ToStation   OptionalStation `json:"to_station"`
	StartTime   *FlexHour       `json:"start_time"`
	EndTime     *FlexHour       `json:"end_time"`
}

// ToQuery converts the request into a domain query. Missing hours are an
// invalid time window.
func (r ODRequest) ToQuery() (domain.ODQuery, error) {
	if r.StartTime == nil || r.EndTime == nil {
		return domain.ODQuery{}, fmt.Errorf("start_time and end_time are required: %w", domain.ErrInvalidTimeWindow)
	}

	return domain.ODQuery{
		From: r.FromStation.Name,
		To:   r.ToStation.Name,
		Window: domain.TimeWindow{
			Start: int(*r.StartTime),
			End:   int(*r.EndTime),
		},
	}, nil
}

// ODRowResponse is the canonical result row, identical for every store backend.
type ODRowResponse struct {
	Entry           string `json:"entry"`
	Exit            string `json:"exit"`
	TotalPassengers int64  `json:"total_passengers"`
}

func NewODRows(rows []domain.ODRow) []ODRowResponse {
	out := make([]ODRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ODRowResponse{
			Entry:           r.Entry,
			Exit:            r.Exit,
			TotalPassengers: r.TotalPassengers,
		})
	}
	return out
}

// ErrorResponse carries a machine-readable reason next to the message.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// ODErrorResponse is returned by /api/od on client errors so callers always
// receive a results array.
type ODErrorResponse struct {
	ErrorResponse
	Results []ODRowResponse `json:"results"`
}
