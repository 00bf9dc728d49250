package httpapi_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/adapter/httpapi"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/domain"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/observability"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/store"
)

var testNow = time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)

// --- mocks ---

type mockCollection struct {
	added   []domain.IncidentRecord
	cleared int
	err     error
}

func (m *mockCollection) Add(_ context.Context, rec domain.IncidentRecord) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.added = append(m.added, rec)
	return "doc-1", nil
}

func (m *mockCollection) Clear(context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.cleared++
	return nil
}

type mockGeocoder struct {
	address string
	err     error
}

func (m *mockGeocoder) Resolve(context.Context, string) (domain.Geo, error) {
	return domain.Geo{}, domain.ErrNoCandidate
}

func (m *mockGeocoder) ResolveReverse(context.Context, float64, float64) (string, error) {
	return m.address, m.err
}

type fixture struct {
	srv        *httpapi.Server
	store      *store.Store
	collection *mockCollection
	geocoder   *mockGeocoder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(testNow))
	t.Cleanup(func() { domain.SetClock(nil) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	st := store.New(metrics, logger)
	col := &mockCollection{}
	geo := &mockGeocoder{address: "Rua A, Centro, Maricá, Rio de Janeiro"}
	srv := httpapi.NewServer(":0", st, col, geo, 2<<20, metrics, logger)
	return &fixture{srv: srv, store: st, collection: col, geocoder: geo}
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func seedRecord(id, typ string, sev domain.Severity, age time.Duration) domain.IncidentRecord {
	return domain.IncidentRecord{
		ID:        id,
		Type:      typ,
		Severity:  sev,
		Address:   "Rua " + id,
		CreatedAt: testNow.Add(-age),
		Geo:       domain.Geo{Lat: -22.9, Lon: -42.8},
	}
}

// --- tests ---

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	f.store.Replace(nil)
	rec = f.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProjection(t *testing.T) {
	f := newFixture(t)
	f.store.Replace([]domain.IncidentRecord{
		seedRecord("1", "Alagamento", domain.SeverityHigh, time.Hour),
		seedRecord("2", "Deslizamento", domain.SeverityLow, 2*time.Hour),
	})

	rec := f.do(t, http.MethodGet, "/api/projection", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Markers []domain.Marker         `json:"markers"`
		List    []domain.IncidentRecord `json:"list"`
		Stats   domain.Stats            `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Markers, 2)
	require.Len(t, resp.List, 2)
	assert.Equal(t, "1", resp.List[0].ID)
	assert.Equal(t, 2, resp.Stats.Total)
}

func TestSetFilter(t *testing.T) {
	f := newFixture(t)
	f.store.Replace([]domain.IncidentRecord{
		seedRecord("1", "Alagamento", domain.SeverityHigh, time.Hour),
		seedRecord("2", "Deslizamento", domain.SeverityLow, time.Hour),
	})

	rec := f.do(t, http.MethodPut, "/api/filter", map[string]string{
		"type":     "Alagamento",
		"severity": "alta",
		"period":   "today",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	p := f.store.Projection()
	require.Len(t, p.List, 1)
	assert.Equal(t, "1", p.List[0].ID)

	// Stats stay unfiltered.
	assert.Equal(t, 2, f.store.Stats().Total)
}

func TestSetFilter_InvalidBody(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPut, "/api/filter", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/occurrences", map[string]any{
		"type":     "Alagamento",
		"severity": "Alta",
		"address":  "Rua A, 123",
		"lat":      -22.91,
		"lon":      -42.81,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, f.collection.added, 1)
	added := f.collection.added[0]
	assert.Equal(t, domain.SeverityHigh, added.Severity)
	assert.Equal(t, domain.MissingValue, added.Description)
	assert.Equal(t, testNow, added.CreatedAt)

	// The store reflects confirmed snapshots only; a write alone
	// changes nothing locally.
	assert.Equal(t, 0, f.store.Stats().Total)
}

func TestSubmit_MissingAddress(t *testing.T) {
	f := newFixture(t)

	for _, address := range []string{"", "   ", "\t\n"} {
		rec := f.do(t, http.MethodPost, "/api/occurrences", map[string]string{
			"type":    "Alagamento",
			"address": address,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "address %q", address)
	}
	assert.Empty(t, f.collection.added)
}

func TestSubmit_AddressTrimmed(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/occurrences", map[string]string{"address": "  Rua A, 123  "})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.collection.added, 1)
	assert.Equal(t, "Rua A, 123", f.collection.added[0].Address)
}

func TestSubmit_PhotoTooLarge(t *testing.T) {
	f := newFixture(t)

	oversized := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0xff}, (2<<20)+1))
	rec := f.do(t, http.MethodPost, "/api/occurrences", map[string]string{
		"address": "Rua A",
		"photo":   oversized,
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, f.collection.added, "rejected before any write")
}

func TestSubmit_PhotoAtLimit(t *testing.T) {
	f := newFixture(t)

	atLimit := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x01}, 2<<20))
	rec := f.do(t, http.MethodPost, "/api/occurrences", map[string]string{
		"address": "Rua A",
		"photo":   atLimit,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSubmit_PersistenceFailure(t *testing.T) {
	f := newFixture(t)
	f.collection.err = errors.New("deadline exceeded")

	rec := f.do(t, http.MethodPost, "/api/occurrences", map[string]string{"address": "Rua A"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, 0, f.store.Stats().Total, "no optimistic mutation kept")
}

func TestClear_RequiresConfirmation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodDelete, "/api/occurrences", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Zero(t, f.collection.cleared)

	rec = f.do(t, http.MethodDelete, "/api/occurrences?confirm=true", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.collection.cleared)
}

func TestClear_PersistenceFailure(t *testing.T) {
	f := newFixture(t)
	f.collection.err = errors.New("unavailable")

	rec := f.do(t, http.MethodDelete, "/api/occurrences?confirm=true", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestReverse(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/reverse?lat=-22.9194&lon=-42.8184", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Rua A, Centro, Maricá, Rio de Janeiro", resp["address"])
}

func TestReverse_MissingParams(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/reverse?lat=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReport(t *testing.T) {
	f := newFixture(t)
	f.store.Replace([]domain.IncidentRecord{
		seedRecord("1", "Alagamento", domain.SeverityHigh, time.Hour),
	})

	rec := f.do(t, http.MethodGet, "/api/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
}

func TestSubmitAndClear_WithoutCollection(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(testNow))
	t.Cleanup(func() { domain.SetClock(nil) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	srv := httpapi.NewServer(":0", store.New(metrics, logger), nil, &mockGeocoder{}, 2<<20, metrics, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/occurrences", strings.NewReader(`{"address":"Rua A"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/occurrences?confirm=true", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
