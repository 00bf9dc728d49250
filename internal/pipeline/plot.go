// Package pipeline runs the one-shot CSV plotting pass: fetch the sheet,
// tokenize and map it, geocode each record in row order, and load the
// result into the store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/domain"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/ingest"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/observability"
)

// SheetFetcher retrieves the raw CSV text of the published sheet.
type SheetFetcher interface {
	FetchCSV(ctx context.Context) (string, error)
}

// Loader receives the finished record set. The store implements it.
type Loader interface {
	Replace(records []domain.IncidentRecord)
}

// Plotter orchestrates one plotting pass. Geocoding runs strictly
// sequentially in input row order with a minimum spacing between calls;
// third-party usage limits make the spacing a policy of this pass, not
// of the geocoding client.
type Plotter struct {
	source   SheetFetcher
	geocoder domain.Geocoder
	limiter  *rate.Limiter
	loader   Loader
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Plotter. interval is the minimum spacing between
// consecutive geocoding calls; zero disables the wait, which tests use.
func New(source SheetFetcher, geocoder domain.Geocoder, interval time.Duration, loader Loader, logger *slog.Logger, metrics *observability.Metrics) *Plotter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Plotter{
		source:   source,
		geocoder: geocoder,
		limiter:  rate.NewLimiter(limit, 1),
		loader:   loader,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run executes one fetch-map-geocode-load pass. A fetch failure aborts
// the pass; a geocoding failure only skips the marker for that record.
// The record stays in the output and the batch continues.
func (p *Plotter) Run(ctx context.Context) error {
	start := time.Now()

	text, err := p.source.FetchCSV(ctx)
	if err != nil {
		return fmt.Errorf("plot pass: %w", err)
	}

	rows := ingest.Tokenize(text)
	p.metrics.RowsTokenized.Add(float64(len(rows)))

	records, dropped := ingest.MapRows(rows)
	p.metrics.RecordsMapped.Add(float64(len(records)))
	p.metrics.RowsDropped.Add(float64(dropped))

	var misses int
	for i := range records {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("plot pass: %w", err)
		}

		geo, err := p.geocoder.Resolve(ctx, records[i].Address)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("plot pass: %w", ctx.Err())
			}
			misses++
			level := slog.LevelWarn
			if errors.Is(err, domain.ErrNoCandidate) {
				level = slog.LevelInfo
			}
			p.logger.Log(ctx, level, "geocoding skipped",
				"address", records[i].Address,
				"error", err,
			)
			continue
		}
		records[i].Geo = geo
	}

	p.loader.Replace(records)

	p.metrics.PlotPassDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("plot pass complete",
		"rows", len(rows),
		"records", len(records),
		"dropped", dropped,
		"geocode_misses", misses,
		"duration", time.Since(start),
	)
	return nil
}
