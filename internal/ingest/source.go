package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// SheetSource fetches the published spreadsheet CSV over HTTP. Deployments
// disagree on transport: some expose the export URL directly, others wrap
// it in a CORS proxy that returns a JSON envelope with a "contents" field.
// The source supports both, by configuration and by sniffing the body.
type SheetSource struct {
	sheetURL   string
	proxyURL   string // optional prefix; the sheet URL is query-escaped onto it
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSheetSource creates a sheet fetcher. proxyURL may be empty for
// direct fetches.
func NewSheetSource(sheetURL, proxyURL string, timeout time.Duration, logger *slog.Logger) *SheetSource {
	return &SheetSource{
		sheetURL:   sheetURL,
		proxyURL:   proxyURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchCSV retrieves the raw CSV text. A network or HTTP-level failure is
// returned as-is for the caller to surface; there is no retry.
func (s *SheetSource) FetchCSV(ctx context.Context) (string, error) {
	target := s.sheetURL
	if s.proxyURL != "" {
		target = s.proxyURL + url.QueryEscape(s.sheetURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("create sheet request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch sheet: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read sheet body: %w", err)
	}

	return unwrapEnvelope(string(body)), nil
}

// unwrapEnvelope extracts the CSV text from a proxy JSON envelope when
// the body is one, and returns the body untouched otherwise. Sniffing
// the content rather than trusting configuration keeps a misconfigured
// proxy/direct pairing working.
func unwrapEnvelope(body string) string {
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "{") || !gjson.Valid(trimmed) {
		return body
	}
	if contents := gjson.Get(trimmed, "contents"); contents.Exists() {
		return contents.String()
	}
	return body
}
