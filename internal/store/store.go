// Package store holds the authoritative in-memory incident set and the
// views projected from it. State lives in one Store value owned by the
// caller; there is no package-level mutable state.
package store

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/domain"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/observability"
)

// SubscribeFunc establishes a snapshot subscription against the live
// collection and returns a handle that cancels it.
type SubscribeFunc func(onSnapshot func([]domain.IncidentRecord)) (cancel func(), err error)

// Store is the live incident store and filter projector. Every change,
// whether a new snapshot or a new filter, rebuilds the marker set and
// the list in full under one lock acquisition, so a reader can never
// observe a half-updated projection.
type Store struct {
	mu         sync.RWMutex
	records    []domain.IncidentRecord
	filter     domain.Filter
	projection domain.Projection
	stats      domain.Stats
	applied    bool

	cancelSub func()

	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates an empty store.
func New(metrics *observability.Metrics, logger *slog.Logger) *Store {
	return &Store{
		metrics: metrics,
		logger:  logger,
	}
}

// Replace swaps the full record set for the given snapshot and
// re-projects. There is no incremental patching; the snapshot is the
// whole truth. Records without an address never enter the store, so a
// malformed upstream document cannot leak into any view. Statistics are
// recomputed from the new unfiltered set.
func (s *Store) Replace(records []domain.IncidentRecord) {
	snapshot := make([]domain.IncidentRecord, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.Address) == "" {
			s.logger.Warn("record without address discarded", "id", r.ID)
			continue
		}
		snapshot = append(snapshot, r)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = snapshot
	s.reproject()
	s.stats = domain.ComputeStats(s.records)
	s.applied = true

	s.metrics.SnapshotsApplied.Inc()
	s.metrics.RecordsInStore.Set(float64(len(s.records)))
	s.logger.Debug("snapshot applied",
		"records", len(s.records),
		"markers", len(s.projection.Markers),
	)
}

// SetFilter replaces the active filter and re-projects against the
// current record set. Statistics are unaffected.
func (s *Store) SetFilter(f domain.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter = f
	s.reproject()
}

// reproject must be called with the write lock held.
func (s *Store) reproject() {
	start := time.Now()
	s.projection = domain.Project(s.records, s.filter)
	s.metrics.ProjectionDuration.Observe(time.Since(start).Seconds())
}

// Filter returns the active filter.
func (s *Store) Filter() domain.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Projection returns the current marker set and sorted list.
func (s *Store) Projection() domain.Projection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projection
}

// Stats returns the counters derived from the unfiltered record set.
func (s *Store) Stats() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Records returns a copy of the full unfiltered record set, for the
// report exporter.
func (s *Store) Records() []domain.IncidentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.IncidentRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Synchronized reports whether at least one snapshot has been applied.
// The readiness probe uses it.
func (s *Store) Synchronized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applied
}

// Bind attaches the store to a live collection. The store owns exactly
// one active subscription at a time: binding again cancels the previous
// one rather than stacking handlers.
func (s *Store) Bind(subscribe SubscribeFunc) error {
	s.mu.Lock()
	prev := s.cancelSub
	s.mu.Unlock()
	if prev != nil {
		prev()
	}

	cancel, err := subscribe(s.Replace)
	if err != nil {
		return fmt.Errorf("bind live collection: %w", err)
	}

	s.mu.Lock()
	s.cancelSub = cancel
	s.mu.Unlock()
	return nil
}

// Unbind cancels the active subscription, if any.
func (s *Store) Unbind() {
	s.mu.Lock()
	cancel := s.cancelSub
	s.cancelSub = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
