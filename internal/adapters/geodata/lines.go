package geodata

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LineLayer holds the metro line geometry served to the map unchanged.
type LineLayer struct {
	Features int
	Bound    orb.Bound
	raw      []byte
}

// LoadLines reads and validates the metro line FeatureCollection.
func LoadLines(path string) (*LineLayer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load lines: read %q: %w", path, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("load lines %q: parse geojson: %w", path, err)
	}

	layer := &LineLayer{Features: len(fc.Features), raw: data}
	for i, f := range fc.Features {
		switch f.Geometry.(type) {
		case orb.LineString, orb.MultiLineString:
		default:
			return nil, fmt.Errorf("load lines %q: feature %d is %T, want line geometry", path, i, f.Geometry)
		}

		if i == 0 {
			layer.Bound = f.Geometry.Bound()
			continue
		}
		layer.Bound = layer.Bound.Union(f.Geometry.Bound())
	}

	return layer, nil
}

// GeoJSON returns the source FeatureCollection.
func (l *LineLayer) GeoJSON() []byte {
	return l.raw
}
