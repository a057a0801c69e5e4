package dto

import (
	"mrt-od-service/internal/domain"

	"github.com/paulmach/orb/geojson"
)

// NewFlowCollection encodes a flow set as a GeoJSON FeatureCollection of
// line features. Feature properties drive stroke width and hover tooltips
// on the map.
func NewFlowCollection(set domain.FlowSet) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.ExtraMembers = geojson.Properties{
		"mode":             string(set.Mode),
		"total_passengers": set.TotalPassengers,
	}

	for _, c := range set.Curves {
		f := geojson.NewFeature(c.Geometry)
		f.Properties["from"] = c.From
		f.Properties["to"] = c.To
		f.Properties["passengers"] = c.Passengers
		f.Properties["weight"] = c.Weight
		f.Properties["width"] = c.Width
		fc.Append(f)
	}

	return fc
}
