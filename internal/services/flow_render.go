package services

import (
	"mrt-od-service/internal/domain"
	"mrt-od-service/internal/ports"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// FlowStyle holds the visual tuning constants for rendered flows. Pair
// queries scale the raw count, one-sided queries scale the share of the
// result total, so the two modes use separate factors.
type FlowStyle struct {
	ControlDivisor  float64
	Samples         int
	ShareWidthScale float64
	PairWidthScale  float64
	MaxWidth        float64
}

func DefaultFlowStyle() FlowStyle {
	return FlowStyle{
		ControlDivisor:  1.996,
		Samples:         32,
		ShareWidthScale: 100,
		PairWidthScale:  0.02,
		MaxWidth:        50,
	}
}

// Weight returns the raw count for pair queries and the share of total otherwise.
func (s FlowStyle) Weight(mode domain.QueryMode, passengers, total int64) float64 {
	if mode == domain.QueryModePair {
		return float64(passengers)
	}
	return float64(passengers) / float64(total)
}

// Width maps a weight to a stroke width. MaxWidth <= 0 disables clamping.
func (s FlowStyle) Width(mode domain.QueryMode, weight float64) float64 {
	scale := s.ShareWidthScale
	if mode == domain.QueryModePair {
		scale = s.PairWidthScale
	}

	w := weight * scale
	if s.MaxWidth > 0 {
		w = lo.Clamp(w, 0, s.MaxWidth)
	}
	return w
}

// RenderFlows turns ranked OD rows into weighted curves. Rows whose
// stations cannot be resolved, whose endpoints coincide or that carry no
// passengers are left out. An empty or all-zero result renders nothing.
func RenderFlows(locator ports.StationLocator, rs *domain.ODResultSet, style FlowStyle) domain.FlowSet {
	set := domain.FlowSet{Curves: []domain.FlowCurve{}}
	if rs == nil || locator == nil {
		return set
	}
	set.Mode = rs.Mode

	total := lo.SumBy(rs.Rows, func(r domain.ODRow) int64 { return r.TotalPassengers })
	set.TotalPassengers = total
	if total <= 0 {
		return set
	}

	for _, row := range rs.Rows {
		if row.TotalPassengers <= 0 {
			continue
		}

		start, okStart := locator.Lookup(row.Entry)
		end, okEnd := locator.Lookup(row.Exit)
		if !okStart || !okEnd {
			logrus.WithFields(logrus.Fields{"entry": row.Entry, "exit": row.Exit}).Debug("flow skipped: unknown station")
			continue
		}
		if start.Equal(end) {
			continue
		}

		line, err := CurveBetween(start, end, style.ControlDivisor, style.Samples)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{"entry": row.Entry, "exit": row.Exit}).Debug("flow skipped")
			continue
		}

		weight := style.Weight(rs.Mode, row.TotalPassengers, total)
		set.Curves = append(set.Curves, domain.FlowCurve{
			From:       row.Entry,
			To:         row.Exit,
			Passengers: row.TotalPassengers,
			Weight:     weight,
			Width:      style.Width(rs.Mode, weight),
			Geometry:   line,
		})
	}

	return set
}
