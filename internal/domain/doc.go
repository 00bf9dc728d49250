// Package domain models civil-defense occurrence records and the views
// derived from them.
//
// # Data Source
//
// Occurrences arrive from two places: a published spreadsheet CSV export
// (one-shot plotting passes, see internal/ingest) and a live Firestore
// collection fed by the dashboard's submission form (continuous sync, see
// internal/store). Both funnel into the same IncidentRecord shape; nothing
// downstream re-interprets raw header strings.
//
// # Spreadsheet Conventions
//
// The sheets are maintained by hand across several municipal deployments,
// so column names vary. Accepted header aliases per semantic field (first
// non-empty value wins, matching is case-insensitive on trimmed headers):
//
//	type:        "Tipo de Ocorrência", "Tipo", "Type", "Kind"
//	severity:    "Severidade", "Nível", "Nivel", "Severity", "Level"
//	address:     "Endereço", "Endereco", "Local", "Address", "Location"
//	description: "Descrição", "Descricao", "Observação", "Observacao", "Description"
//
// Address is required; a row whose resolved address is empty is dropped.
// Description defaults to the "—" placeholder.
//
// # Severity Classification
//
// Free-text severity values are normalized to a fixed four-class scale by
// case-insensitive substring matching over synonym sets, checked in
// priority order so ambiguous input resolves to the most severe class:
//
//	high:   alta, alto, grave, crítica, critica, high
//	medium: média, media, moderada, moderado, medium
//	low:    baixa, baixo, leve, low
//
// Anything else, including the empty string, classifies as unclassified.
// See [ClassifySeverity].
//
// # Projection
//
// The marker layer and the sorted list are both derived from one filtered
// record set by [Project]: the list is every matching record in descending
// CreatedAt order, the marker set is the plottable subset of exactly those
// records. Statistics are computed from the unfiltered set by
// [ComputeStats], independent of the active filter.
package domain
