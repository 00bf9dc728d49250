package domain

import (
	"time"
)

// Geo represents a WGS-84 latitude/longitude coordinate pair.
// The zero value means "no resolvable coordinates".
type Geo struct {
	Lat float64 `json:"lat,omitempty"`
	Lon float64 `json:"lon,omitempty"`
}

// IsZero reports whether no coordinates have been resolved.
func (g Geo) IsZero() bool {
	return g.Lat == 0 && g.Lon == 0
}

// IncidentRecord is the canonical occurrence entity. Every record has a
// non-empty Address and a Severity drawn from the fixed set; rows that
// cannot satisfy that are dropped during mapping. Records are immutable
// once created; the live collection models updates as delete+reinsert.
type IncidentRecord struct {
	// ID is assigned by the live collection. Empty for CSV-sourced
	// records, which exist only for the duration of one plotting pass.
	ID string `json:"id,omitempty"`

	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Address     string   `json:"address"`
	Description string   `json:"description"`
	Geo         Geo      `json:"geo,omitempty"`

	// Photo is a base64 payload capped at the configured size.
	// Only present on records submitted through the form.
	Photo string `json:"photo,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Plottable reports whether the record can appear on the marker layer.
// Records without coordinates still show up in the list view.
func (r IncidentRecord) Plottable() bool {
	return !r.Geo.IsZero()
}

// DisplayTime renders CreatedAt in the dd/mm/yyyy hh:mm form the
// dashboard shows.
func (r IncidentRecord) DisplayTime() string {
	if r.CreatedAt.IsZero() {
		return ""
	}
	return r.CreatedAt.Format("02/01/2006 15:04")
}

// MissingValue is the placeholder for optional fields that resolve to
// nothing during mapping.
const MissingValue = "—"
