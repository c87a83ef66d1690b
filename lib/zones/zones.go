// Package zones holds the per-source reference tables that map a
// commune to the zone/store identifier a source's stock backend wants.
// Tables are loaded once per run and read-only afterwards.
package zones

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/antzucaro/matchr"

	"medisearch-backend/lib/textutil"
)

var ErrNotFound = errors.New("zone not found")

type Zone struct {
	Region  string `json:"region"`
	Commune string `json:"commune"`
	ZoneID  string `json:"zoneId"`
}

type Table struct {
	zones []Zone
}

func NewTable(zones []Zone) Table {
	return Table{zones: zones}
}

func Parse(data []byte) (Table, error) {
	var zones []Zone
	err := json.Unmarshal(data, &zones)
	if err != nil {
		return Table{}, err
	}
	return Table{zones: zones}, nil
}

func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, err
	}
	table, err := Parse(data)
	if err != nil {
		return Table{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return table, nil
}

// Lookup resolves a commune name to its zone. Matching is exact after
// case/whitespace/diacritic normalization; there is deliberately no
// fuzzy resolution. The not-found error carries the closest known
// commune as a hint for the caller's error message.
func (t Table) Lookup(commune string) (Zone, error) {
	normalized := textutil.NormalizeCompact(commune)
	if normalized == "" {
		return Zone{}, fmt.Errorf("%w: empty commune", ErrNotFound)
	}
	for _, zone := range t.zones {
		if textutil.NormalizeCompact(zone.Commune) == normalized {
			return zone, nil
		}
	}

	if suggestion := t.suggest(normalized); suggestion != "" {
		return Zone{}, fmt.Errorf("%w: %q (did you mean %q?)", ErrNotFound, commune, suggestion)
	}
	return Zone{}, fmt.Errorf("%w: %q", ErrNotFound, commune)
}

// suggest returns the known commune closest to the input, or "" when
// nothing is close enough to be worth mentioning.
func (t Table) suggest(normalized string) string {
	best := ""
	bestScore := 0.85
	for _, zone := range t.zones {
		score := matchr.JaroWinkler(normalized, textutil.NormalizeCompact(zone.Commune), false)
		if score > bestScore {
			best = zone.Commune
			bestScore = score
		}
	}
	return best
}

// Communes lists the communes in table order, for CLI display.
func (t Table) Communes() []Zone {
	out := make([]Zone, len(t.zones))
	copy(out, t.zones)
	return out
}
