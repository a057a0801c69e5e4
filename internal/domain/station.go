package domain

import (
	"strings"

	"github.com/paulmach/orb"
)

// Suffix carried by station display names ("石牌站") but not by the
// identifiers stored in the passenger fact table ("石牌").
const stationSuffix = "站"

// Line-prefixed identifiers that appear in the raw ridership exports for
// transfer stations. They refer to the same physical station.
var stationAliases = map[string]string{
	"BL板橋": "板橋",
	"Y板橋":  "板橋",
	"G大坪林": "大坪林",
	"O景安":  "景安",
	"O頭前庄": "頭前庄",
}

// Stored identifiers whose last rune is part of the name, not a suffix.
var suffixedIdentifiers = map[string]struct{}{
	"台北車站": {},
}

// Represents a metro station loaded from the station geometry file.
// Point is expressed in the coordinate reference system of that file.
type Station struct {
	Name  string
	Point orb.Point
}

// NormalizeStationName maps a display name or raw identifier to the
// identifier convention of the fact table. It is idempotent.
func NormalizeStationName(name string) string {
	n := strings.TrimSpace(name)
	if alias, ok := stationAliases[n]; ok {
		n = alias
	}

	for strings.HasSuffix(n, stationSuffix) {
		if _, ok := suffixedIdentifiers[n]; ok {
			break
		}
		trimmed := strings.TrimSpace(strings.TrimSuffix(n, stationSuffix))
		if trimmed == "" {
			break
		}
		n = trimmed
		if alias, ok := stationAliases[n]; ok {
			n = alias
		}
	}

	return n
}
