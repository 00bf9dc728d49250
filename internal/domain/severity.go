package domain

import "strings"

// Severity is the normalized occurrence severity.
type Severity string

const (
	SeverityLow          Severity = "low"
	SeverityMedium       Severity = "medium"
	SeverityHigh         Severity = "high"
	SeverityUnclassified Severity = "unclassified"
)

// severitySynonyms lists the accepted free-text synonyms per class, in
// classification priority order. High is checked first so contrived input
// matching several classes resolves to the most severe one.
var severitySynonyms = []struct {
	class    Severity
	synonyms []string
}{
	{SeverityHigh, []string{"alta", "alto", "grave", "crítica", "critica", "high"}},
	{SeverityMedium, []string{"média", "media", "moderada", "moderado", "medium"}},
	{SeverityLow, []string{"baixa", "baixo", "leve", "low"}},
}

// ClassifySeverity maps a free-text severity value to one of the four
// fixed classes. Matching is case-insensitive substring membership over
// the synonym sets. Unmatched or empty input yields SeverityUnclassified;
// the function is total and never fails.
func ClassifySeverity(value string) Severity {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return SeverityUnclassified
	}
	for _, set := range severitySynonyms {
		for _, syn := range set.synonyms {
			if strings.Contains(v, syn) {
				return set.class
			}
		}
	}
	return SeverityUnclassified
}

// Color returns the marker color for a severity class. The dashboard
// styles markers with these, it never re-classifies.
func (s Severity) Color() string {
	switch s {
	case SeverityHigh:
		return "red"
	case SeverityMedium:
		return "orange"
	case SeverityLow:
		return "yellow"
	default:
		return "gray"
	}
}
