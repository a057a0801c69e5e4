package domain

import "github.com/paulmach/orb"

// Represents one rendered origin-destination arc.
// Weight is the raw count for pair queries and the share of the result
// total for one-sided queries. Width is the stroke width derived from Weight.
type FlowCurve struct {
	From       string
	To         string
	Passengers int64
	Weight     float64
	Width      float64
	Geometry   orb.LineString
}

// Immutable set of curves produced by one render. A new query replaces the
// whole set.
type FlowSet struct {
	Mode            QueryMode
	TotalPassengers int64
	Curves          []FlowCurve
}
