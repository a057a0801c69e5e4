package domain

import "fmt"

// Maximum number of rows returned by a one-sided OD query.
const MaxODResults = 20

// Hour-of-day bounds for time slots. End is exclusive, so 24 is a valid end.
const (
	FirstTimeSlot = 0
	LastTimeSlot  = 23
)

// Represents one pre-aggregated row of the ridership fact table.
// TravelDate is optional and only carried for statistics.
type PassengerRecord struct {
	TravelDate string
	Entry      string
	Exit       string
	TimeSlot   int
	Passengers int64
}

// Half-open hour window [Start, End).
type TimeWindow struct {
	Start int
	End   int
}

func (w TimeWindow) Validate() error {
	if w.Start < FirstTimeSlot || w.End > LastTimeSlot+1 || w.Start >= w.End {
		return fmt.Errorf("time window [%d, %d): %w", w.Start, w.End, ErrInvalidTimeWindow)
	}
	return nil
}

// Contains reports whether slot falls inside the window.
func (w TimeWindow) Contains(slot int) bool {
	return slot >= w.Start && slot < w.End
}

// Which branch of the OD query a request resolves to.
type QueryMode string

const (
	QueryModePair QueryMode = "pair"
	QueryModeFrom QueryMode = "from"
	QueryModeTo   QueryMode = "to"
)

// Parameters of a single OD query. An empty station means unset.
type ODQuery struct {
	From   string
	To     string
	Window TimeWindow
}

// Normalized returns a copy with both station names normalized.
func (q ODQuery) Normalized() ODQuery {
	q.From = NormalizeStationName(q.From)
	q.To = NormalizeStationName(q.To)
	return q
}

// Mode selects the query branch. Precedence: pair, then from, then to.
func (q ODQuery) Mode() (QueryMode, error) {
	switch {
	case q.From != "" && q.To != "":
		return QueryModePair, nil
	case q.From != "":
		return QueryModeFrom, nil
	case q.To != "":
		return QueryModeTo, nil
	default:
		return "", ErrMissingStation
	}
}

// Canonical aggregated OD result. Both station fields are always populated,
// regardless of which store produced the row.
type ODRow struct {
	Entry           string
	Exit            string
	TotalPassengers int64
}

// Ranked rows for a query together with the normalized query they answer.
type ODResultSet struct {
	Mode   QueryMode
	From   string
	To     string
	Window TimeWindow
	Rows   []ODRow
}

// Counterpart returns the station on the ranked side of a row.
func (rs *ODResultSet) Counterpart(row ODRow) string {
	if rs.Mode == QueryModeTo {
		return row.Entry
	}
	return row.Exit
}
