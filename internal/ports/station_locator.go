package ports

import "github.com/paulmach/orb"

// Resolves a station name to its map coordinate.
type StationLocator interface {
	Lookup(name string) (orb.Point, bool)
}
