package domain

// Stats are the dashboard counters, always derived from the unfiltered
// full record set regardless of the active filter.
type Stats struct {
	Total        int `json:"total"`
	Today        int `json:"today"`
	HighSeverity int `json:"high_severity"`
}

// ComputeStats recounts the dashboard statistics over the full set.
// "Today" is evaluated against the injected clock's current date.
func ComputeStats(records []IncidentRecord) Stats {
	s := Stats{Total: len(records)}
	y, m, d := clock.Now().Date()
	for _, r := range records {
		ry, rm, rd := r.CreatedAt.Date()
		if ry == y && rm == m && rd == d {
			s.Today++
		}
		if r.Severity == SeverityHigh {
			s.HighSeverity++
		}
	}
	return s
}

// CountBySeverity tallies records per severity class, for the report's
// summary block.
func CountBySeverity(records []IncidentRecord) map[Severity]int {
	counts := make(map[Severity]int, 4)
	for _, r := range records {
		counts[r.Severity]++
	}
	return counts
}
