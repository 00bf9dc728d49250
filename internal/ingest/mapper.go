package ingest

import (
	"strings"

	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/domain"
)

// Accepted header aliases per semantic field, in resolution order. The
// sheets are hand-maintained across deployments and the column names
// drift; the first alias with a non-empty value wins.
var (
	typeAliases        = []string{"tipo de ocorrência", "tipo de ocorrencia", "tipo", "type", "kind"}
	severityAliases    = []string{"severidade", "nível", "nivel", "severity", "level"}
	addressAliases     = []string{"endereço", "endereco", "local", "address", "location"}
	descriptionAliases = []string{"descrição", "descricao", "observação", "observacao", "description"}
)

// HeaderIndex maps a lower-cased, trimmed column name to its cell
// position. It is built once from the first row; every later row is
// mapped positionally against it.
type HeaderIndex map[string]int

// NewHeaderIndex builds the index from the header row.
func NewHeaderIndex(headers []string) HeaderIndex {
	idx := make(HeaderIndex, len(headers))
	for i, h := range headers {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			continue
		}
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

// value returns the cell under the named column, or "" when the column
// is unknown or the row is shorter than the header.
func (idx HeaderIndex) value(row []string, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// resolve returns the first non-empty value among the aliases.
func (idx HeaderIndex) resolve(row []string, aliases []string) string {
	for _, a := range aliases {
		if v := idx.value(row, a); v != "" {
			return v
		}
	}
	return ""
}

// MapRows projects tokenized rows into IncidentRecords. The first row is
// the header; each following row becomes one record unless its resolved
// address is empty, in which case it is silently dropped (reflected only
// in the dropped count). Output order equals input row order, and the
// mapping is pure: identical input always yields identical records.
//
// CSV-sourced records are ephemeral, so they get no ID; CreatedAt is
// stamped from the injected clock when the pass runs.
func MapRows(rows [][]string) (records []domain.IncidentRecord, dropped int) {
	if len(rows) == 0 {
		return nil, 0
	}

	idx := NewHeaderIndex(rows[0])
	now := domain.Now()

	records = make([]domain.IncidentRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		address := idx.resolve(row, addressAliases)
		if address == "" {
			dropped++
			continue
		}

		description := idx.resolve(row, descriptionAliases)
		if description == "" {
			description = domain.MissingValue
		}

		records = append(records, domain.IncidentRecord{
			Type:        idx.resolve(row, typeAliases),
			Severity:    domain.ClassifySeverity(idx.resolve(row, severityAliases)),
			Address:     address,
			Description: description,
			CreatedAt:   now,
		})
	}
	return records, dropped
}
