package domain

import "time"

// Period selects the time window a filter matches against CreatedAt.
type Period string

const (
	PeriodAll        Period = "all"
	PeriodToday      Period = "today"
	PeriodLast7Days  Period = "7d"
	PeriodLast30Days Period = "30d"
)

// ParsePeriod maps a request value to a Period, defaulting to PeriodAll
// for empty or unknown input.
func ParsePeriod(value string) Period {
	switch Period(value) {
	case PeriodToday, PeriodLast7Days, PeriodLast30Days:
		return Period(value)
	default:
		return PeriodAll
	}
}

// Filter is the conjunction of up to three independent predicates.
// An empty dimension matches all records.
type Filter struct {
	Type     string   `json:"type,omitempty"`
	Severity Severity `json:"severity,omitempty"`
	Period   Period   `json:"period,omitempty"`
}

// Matches reports whether the record passes every selected dimension.
func (f Filter) Matches(r IncidentRecord) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.Severity != "" && r.Severity != f.Severity {
		return false
	}
	return f.matchesPeriod(r)
}

func (f Filter) matchesPeriod(r IncidentRecord) bool {
	now := clock.Now()
	switch f.Period {
	case PeriodToday:
		y1, m1, d1 := now.Date()
		y2, m2, d2 := r.CreatedAt.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case PeriodLast7Days:
		return now.Sub(r.CreatedAt) <= 7*24*time.Hour && !r.CreatedAt.After(now)
	case PeriodLast30Days:
		return now.Sub(r.CreatedAt) <= 30*24*time.Hour && !r.CreatedAt.After(now)
	default:
		return true
	}
}
