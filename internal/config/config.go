package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Spreadsheet CSV source. SheetProxyURL is an optional CORS-proxy
	// prefix the sheet URL is query-escaped onto; deployments differ on
	// whether they need one.
	SheetURL      string
	SheetProxyURL string
	SheetTimeout  time.Duration

	// Geocoding.
	GeocodeBaseURL  string
	GeocodeLocality string
	GeocodeTimeout  time.Duration
	GeocodeInterval time.Duration // minimum spacing between sequential batch calls
	GeocodeCacheTTL time.Duration

	// Live collection. Enabled when a project ID is set.
	FirestoreProjectID   string
	FirestoreCredentials string // base64-encoded service account JSON
	FirestoreCollection  string
	FirestoreEnabled     bool

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	PhotoMaxBytes int64
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	sheetTimeout, err := parseDuration("SHEET_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	geocodeInterval, err := parseNonNegativeDuration("GEOCODE_INTERVAL", "1s")
	if err != nil {
		return nil, err
	}
	geocodeCacheTTL, err := parseDuration("GEOCODE_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}
	photoMaxBytes, err := parsePhotoMaxBytes()
	if err != nil {
		return nil, err
	}

	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	firestoreEnabled := projectID != ""
	if v := os.Getenv("FIRESTORE_ENABLED"); v != "" {
		firestoreEnabled = v == "true"
	}

	cfg := &Config{
		SheetURL:      os.Getenv("SHEET_URL"),
		SheetProxyURL: os.Getenv("SHEET_PROXY_URL"),
		SheetTimeout:  sheetTimeout,

		GeocodeBaseURL:  envOrDefault("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocodeLocality: os.Getenv("GEOCODE_LOCALITY"),
		GeocodeTimeout:  geocodeTimeout,
		GeocodeInterval: geocodeInterval,
		GeocodeCacheTTL: geocodeCacheTTL,

		FirestoreProjectID:   projectID,
		FirestoreCredentials: os.Getenv("FIRESTORE_CREDENTIALS"),
		FirestoreCollection:  envOrDefault("FIRESTORE_COLLECTION", "ocorrencias"),
		FirestoreEnabled:     firestoreEnabled,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		PhotoMaxBytes: photoMaxBytes,
	}

	if cfg.SheetURL == "" && !cfg.FirestoreEnabled {
		return nil, errors.New("no data source configured: set SHEET_URL or FIRESTORE_PROJECT_ID")
	}
	if cfg.FirestoreEnabled && cfg.FirestoreProjectID == "" {
		return nil, errors.New("FIRESTORE_ENABLED is true but FIRESTORE_PROJECT_ID is not set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parseNonNegativeDuration allows zero, which tests use to run geocoding
// batches with no spacing.
func parseNonNegativeDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePhotoMaxBytes() (int64, error) {
	s := os.Getenv("PHOTO_MAX_BYTES")
	if s == "" {
		return 2 << 20, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid PHOTO_MAX_BYTES")
	}
	return n, nil
}
