package ingest

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/domain"
)

func freezeClock(t *testing.T) time.Time {
	t.Helper()
	now := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { domain.SetClock(nil) })
	return now
}

func TestMapRows_AliasResolution(t *testing.T) {
	now := freezeClock(t)

	rows := Tokenize("Tipo de Ocorrência,Severidade,Endereço,Descrição\n" +
		"Alagamento,Alta,\"Rua A, 123\",Água na pista\n")

	records, dropped := MapRows(rows)
	require.Len(t, records, 1)
	assert.Zero(t, dropped)

	r := records[0]
	assert.Equal(t, "Alagamento", r.Type)
	assert.Equal(t, domain.SeverityHigh, r.Severity)
	assert.Equal(t, "Rua A, 123", r.Address)
	assert.Equal(t, "Água na pista", r.Description)
	assert.Equal(t, now, r.CreatedAt)
	assert.Empty(t, r.ID)
}

func TestMapRows_AlternateHeaders(t *testing.T) {
	freezeClock(t)

	rows := Tokenize("Tipo,Nível,Local,Observação\nDeslizamento,Moderada,Morro Azul,Encosta cedeu\n")

	records, _ := MapRows(rows)
	require.Len(t, records, 1)
	assert.Equal(t, "Deslizamento", records[0].Type)
	assert.Equal(t, domain.SeverityMedium, records[0].Severity)
	assert.Equal(t, "Morro Azul", records[0].Address)
	assert.Equal(t, "Encosta cedeu", records[0].Description)
}

func TestMapRows_DropsEmptyAddress(t *testing.T) {
	freezeClock(t)

	// The middle row tokenizes as a row of empty cells, not a blank
	// line, and is dropped only at mapping time for lacking an address.
	rows := Tokenize("Tipo,Severidade,Endereço\nAlagamento,Alta,Rua A\n,,\n")
	require.Len(t, rows, 3)

	records, dropped := MapRows(rows)
	require.Len(t, records, 1)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, "Alagamento", records[0].Type)
	assert.Equal(t, domain.SeverityHigh, records[0].Severity)
	assert.Equal(t, "Rua A", records[0].Address)

	// Output length plus dropped rows accounts for every data row.
	assert.Equal(t, len(rows)-1, len(records)+dropped)
}

func TestMapRows_ShortRowYieldsMissingTrailingFields(t *testing.T) {
	freezeClock(t)

	rows := Tokenize("Tipo,Severidade,Endereço,Descrição\nAlagamento,Alta,Rua B\n")

	records, dropped := MapRows(rows)
	require.Len(t, records, 1)
	assert.Zero(t, dropped)
	assert.Equal(t, domain.MissingValue, records[0].Description)
}

func TestMapRows_UnmatchedSeverityIsUnclassified(t *testing.T) {
	freezeClock(t)

	rows := Tokenize("Tipo,Severidade,Endereço\nQueda de Árvore,xyz,Rua C\n")

	records, _ := MapRows(rows)
	require.Len(t, records, 1)
	assert.Equal(t, domain.SeverityUnclassified, records[0].Severity)
}

func TestMapRows_Idempotent(t *testing.T) {
	freezeClock(t)

	rows := Tokenize("Tipo,Severidade,Endereço\nAlagamento,Alta,Rua A\nVendaval,Baixa,Rua B\n")

	first, d1 := MapRows(rows)
	second, d2 := MapRows(rows)
	assert.Equal(t, first, second)
	assert.Equal(t, d1, d2)
}

func TestMapRows_PreservesInputOrder(t *testing.T) {
	freezeClock(t)

	rows := Tokenize("Tipo,Endereço\nA,Rua 1\nB,Rua 2\nC,Rua 3\n")

	records, _ := MapRows(rows)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"A", "B", "C"},
		[]string{records[0].Type, records[1].Type, records[2].Type})
}

func TestMapRows_EmptyInput(t *testing.T) {
	records, dropped := MapRows(nil)
	assert.Empty(t, records)
	assert.Zero(t, dropped)

	records, dropped = MapRows([][]string{{"Tipo", "Endereço"}})
	assert.Empty(t, records)
	assert.Zero(t, dropped)
}
