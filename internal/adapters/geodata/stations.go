package geodata

import (
	"errors"
	"fmt"
	"mrt-od-service/internal/domain"
	"os"
	"slices"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
)

// Property names tried after the configured one.
var fallbackNameProperties = []string{"name", "Name", "StationName", "NAME"}

// StationIndex is the read-only station lookup built once at startup.
// Lookups normalize the requested name, so "石牌站" and "石牌" resolve to the
// same point.
type StationIndex struct {
	stations []domain.Station
	byName   map[string]orb.Point
	raw      []byte
}

// LoadStationIndex reads a GeoJSON FeatureCollection of stations.
func LoadStationIndex(path, nameProperty string) (*StationIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load station index: read %q: %w", path, err)
	}

	idx, err := ParseStationIndex(data, nameProperty)
	if err != nil {
		return nil, fmt.Errorf("load station index %q: %w", path, err)
	}
	return idx, nil
}

// ParseStationIndex builds an index from GeoJSON bytes. Point features are
// used as-is; other geometries are reduced to the center of their bound.
// When a name appears more than once (transfer stations are listed per
// line), the first feature wins.
func ParseStationIndex(data []byte, nameProperty string) (*StationIndex, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}

	props := fallbackNameProperties
	if nameProperty != "" {
		props = append([]string{nameProperty}, fallbackNameProperties...)
	}

	idx := &StationIndex{
		stations: make([]domain.Station, 0, len(fc.Features)),
		byName:   make(map[string]orb.Point, len(fc.Features)),
		raw:      data,
	}

	for i, f := range fc.Features {
		name := featureName(f, props)
		if name == "" || f.Geometry == nil {
			logrus.WithField("feature", i).Debug("station feature without name or geometry skipped")
			continue
		}

		key := domain.NormalizeStationName(name)
		if _, dup := idx.byName[key]; dup {
			continue
		}

		pt := stationPoint(f.Geometry)
		idx.byName[key] = pt
		idx.stations = append(idx.stations, domain.Station{Name: name, Point: pt})
	}

	if len(idx.stations) == 0 {
		return nil, errors.New("no named station features found")
	}

	return idx, nil
}

func featureName(f *geojson.Feature, props []string) string {
	for _, p := range props {
		if n := strings.TrimSpace(f.Properties.MustString(p, "")); n != "" {
			return n
		}
	}
	return ""
}

func stationPoint(g orb.Geometry) orb.Point {
	if p, ok := g.(orb.Point); ok {
		return p
	}
	return g.Bound().Center()
}

// Names returns station display names in file order.
func (s *StationIndex) Names() []string {
	names := make([]string, len(s.stations))
	for i, st := range s.stations {
		names[i] = st.Name
	}
	return names
}

// Stations returns a copy of the indexed stations in file order.
func (s *StationIndex) Stations() []domain.Station {
	return slices.Clone(s.stations)
}

// Lookup resolves a station name to its point.
func (s *StationIndex) Lookup(name string) (orb.Point, bool) {
	p, ok := s.byName[domain.NormalizeStationName(name)]
	return p, ok
}

// GeoJSON returns the source FeatureCollection for the map layer.
func (s *StationIndex) GeoJSON() []byte {
	return s.raw
}
