package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	firestoreadapter "github.com/CelsoAntunesNogueira/alertadefesacivil/internal/adapter/firestore"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/adapter/httpapi"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/adapter/nominatim"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/config"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/domain"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/ingest"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/observability"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/pipeline"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var geocoder domain.Geocoder
	client := nominatim.NewClient(cfg.GeocodeBaseURL, cfg.GeocodeLocality, cfg.GeocodeTimeout, metrics, logger)
	geocoder = nominatim.NewCachedGeocoder(client, cfg.GeocodeCacheTTL, metrics)
	logger.Info("geocoding configured",
		"base_url", cfg.GeocodeBaseURL,
		"locality", cfg.GeocodeLocality,
		"cache_ttl", cfg.GeocodeCacheTTL,
	)

	st := store.New(metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Live occurrence collection (feature-flagged via FIRESTORE_ENABLED /
	// FIRESTORE_PROJECT_ID). When enabled, the store tracks collection
	// snapshots; submissions and the bulk clear round-trip through it.
	var collection *firestoreadapter.Collection
	if cfg.FirestoreEnabled {
		collection, err = firestoreadapter.New(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentials, cfg.FirestoreCollection, logger)
		if err != nil {
			logger.Error("failed to connect to firestore", "error", err)
			os.Exit(1)
		}
		if err := st.Bind(collection.Subscribe); err != nil {
			logger.Error("failed to subscribe to collection", "error", err)
			os.Exit(1)
		}
		logger.Info("live collection enabled", "collection", cfg.FirestoreCollection)
	} else {
		logger.Info("live collection disabled")
	}

	// The HTTP API takes the collection through a narrow interface; a
	// typed nil would dodge the disabled checks, so pass nil explicitly.
	var apiCollection httpapi.Collection
	if collection != nil {
		apiCollection = collection
	}
	srv := httpapi.NewServer(cfg.HTTPAddr, st, apiCollection, geocoder, cfg.PhotoMaxBytes, metrics, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Spreadsheet plot pass: fetch, tokenize, map, geocode, load.
	if cfg.SheetURL != "" {
		source := ingest.NewSheetSource(cfg.SheetURL, cfg.SheetProxyURL, cfg.SheetTimeout, logger)
		plotter := pipeline.New(source, geocoder, cfg.GeocodeInterval, st, logger, metrics)
		go func() {
			if err := plotter.Run(ctx); err != nil {
				logger.Error("plot pass error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	st.Unbind()
	if collection != nil {
		if err := collection.Close(); err != nil {
			logger.Error("firestore close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
