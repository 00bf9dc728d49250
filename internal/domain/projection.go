package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Marker is one entry of the marker layer, carrying everything the map
// needs to draw and label a pin.
type Marker struct {
	Geo      Geo      `json:"geo"`
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Color    string   `json:"color"`
	Address  string   `json:"address"`
	Summary  string   `json:"summary"`
}

// Projection is the derived view of a record set under a filter: the
// marker layer plus the sorted list. Both are rebuilt in full on every
// change, so a marker never outlives the snapshot it came from.
type Projection struct {
	Markers []Marker         `json:"markers"`
	List    []IncidentRecord `json:"list"`
}

// Project derives the marker set and the list view from records under
// the given filter. The list is sorted descending by CreatedAt; the
// marker set is the plottable subset of the same filtered records, so
// the two views can never disagree.
func Project(records []IncidentRecord, f Filter) Projection {
	list := make([]IncidentRecord, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			list = append(list, r)
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	markers := make([]Marker, 0, len(list))
	for _, r := range list {
		if !r.Plottable() {
			continue
		}
		markers = append(markers, MarkerFor(r))
	}

	return Projection{Markers: markers, List: list}
}

// MarkerFor builds the marker layer entry for a single record.
func MarkerFor(r IncidentRecord) Marker {
	return Marker{
		Geo:      r.Geo,
		Type:     r.Type,
		Severity: r.Severity,
		Color:    r.Severity.Color(),
		Address:  r.Address,
		Summary:  summarize(r),
	}
}

// summarize assembles the popup text for a marker. The dashboard renders
// it verbatim, one line per field.
func summarize(r IncidentRecord) string {
	lines := []string{
		r.Type,
		fmt.Sprintf("Severity: %s", r.Severity),
		fmt.Sprintf("Address: %s", r.Address),
		fmt.Sprintf("Description: %s", r.Description),
	}
	if t := r.DisplayTime(); t != "" {
		lines = append(lines, fmt.Sprintf("Registered: %s", t))
	}
	return strings.Join(lines, "\n")
}
