package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/domain"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/report"
)

// projectionResponse bundles everything the dashboard redraws on: the
// marker layer, the sorted list, the active filter, and the unfiltered
// statistics. One response, one consistent view.
type projectionResponse struct {
	Markers []domain.Marker         `json:"markers"`
	List    []domain.IncidentRecord `json:"list"`
	Filter  domain.Filter           `json:"filter"`
	Stats   domain.Stats            `json:"stats"`
}

func (s *Server) handleProjection(w http.ResponseWriter, _ *http.Request) {
	p := s.store.Projection()
	writeJSON(w, http.StatusOK, projectionResponse{
		Markers: p.Markers,
		List:    p.List,
		Filter:  s.store.Filter(),
		Stats:   s.store.Stats(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Stats())
}

type filterRequest struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Period   string `json:"period"`
}

func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter body")
		return
	}

	var severity domain.Severity
	if req.Severity != "" {
		severity = domain.ClassifySeverity(req.Severity)
	}

	s.store.SetFilter(domain.Filter{
		Type:     req.Type,
		Severity: severity,
		Period:   domain.ParsePeriod(req.Period),
	})

	s.handleProjection(w, r)
}

type submitRequest struct {
	Type        string  `json:"type"`
	Severity    string  `json:"severity"`
	Address     string  `json:"address"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Photo       string  `json:"photo"` // base64
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if s.collection == nil {
		writeError(w, http.StatusServiceUnavailable, "live collection disabled")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid submission body")
		return
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		s.metrics.Submissions.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}

	// The photo cap is enforced before any write goes out; the form
	// keeps its state for correction.
	if req.Photo != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Photo)
		if err != nil {
			s.metrics.Submissions.WithLabelValues("rejected").Inc()
			writeError(w, http.StatusBadRequest, "photo is not valid base64")
			return
		}
		if int64(len(decoded)) > s.photoMaxBytes {
			s.metrics.Submissions.WithLabelValues("rejected").Inc()
			writeError(w, http.StatusRequestEntityTooLarge, "photo exceeds the size limit")
			return
		}
	}

	description := req.Description
	if description == "" {
		description = domain.MissingValue
	}

	rec := domain.IncidentRecord{
		Type:        req.Type,
		Severity:    domain.ClassifySeverity(req.Severity),
		Address:     address,
		Description: description,
		Geo:         domain.Geo{Lat: req.Lat, Lon: req.Lon},
		Photo:       req.Photo,
		CreatedAt:   domain.Now(),
	}

	id, err := s.collection.Add(r.Context(), rec)
	if err != nil {
		// No optimistic local mutation: the store only reflects
		// confirmed snapshots, so a failed write leaves it untouched.
		s.metrics.Submissions.WithLabelValues("failed").Inc()
		s.logger.Error("occurrence write failed", "error", err)
		writeError(w, http.StatusBadGateway, "could not save the occurrence")
		return
	}

	s.metrics.Submissions.WithLabelValues("accepted").Inc()
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if s.collection == nil {
		writeError(w, http.StatusServiceUnavailable, "live collection disabled")
		return
	}

	// Destructive call, so it fires only on the explicit second step.
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusConflict, "confirmation required: repeat the request with confirm=true")
		return
	}

	if err := s.collection.Clear(r.Context()); err != nil {
		s.logger.Error("bulk clear failed", "error", err)
		writeError(w, http.StatusBadGateway, "could not clear the collection")
		return
	}

	// The snapshot subscription observes the empty set and re-projects;
	// nothing is mutated locally here.
	s.metrics.BulkClears.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleReverse(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "lat and lon are required")
		return
	}

	address, err := s.geocoder.ResolveReverse(r.Context(), lat, lon)
	if err != nil {
		s.logger.Warn("reverse geocoding failed", "lat", lat, "lon", lon, "error", err)
		writeError(w, http.StatusBadGateway, "reverse geocoding unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"address": address})
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	records := s.store.Records()
	stats := s.store.Stats()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="ocorrencias.pdf"`)

	if err := report.Build(w, records, stats); err != nil {
		s.logger.Error("report rendering failed", "error", err)
		return
	}
	s.metrics.ReportsGenerated.Inc()
}
