package nominatim

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

	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/domain"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/observability"
)

// userAgent identifies the service to the Nominatim usage policy.
const userAgent = "alertadefesacivil/1.0"

// Client implements domain.Geocoder against a Nominatim-style API.
type Client struct {
	baseURL    string
	locality   string // optional suffix appended to forward queries for disambiguation
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Nominatim geocoding client. locality may be empty;
// when set it is appended to every forward query as ", <locality>".
func NewClient(baseURL, locality string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		locality:   locality,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// Resolve converts a free-text address to coordinates. The first
// candidate returned by the provider is authoritative. Returns
// domain.ErrNoCandidate when the candidate list is empty.
func (c *Client) Resolve(ctx context.Context, address string) (domain.Geo, error) {
	query := address
	if c.locality != "" {
		query = fmt.Sprintf("%s, %s", address, c.locality)
	}

	params := url.Values{
		"format": {"json"},
		"q":      {query},
		"limit":  {"1"},
	}

	body, err := c.doRequest(ctx, c.baseURL+"/search?"+params.Encode(), "forward")
	if err != nil {
		return domain.Geo{}, err
	}

	first := gjson.Get(body, "0")
	if !first.Exists() {
		c.metrics.GeocodeRequests.WithLabelValues("forward", "empty").Inc()
		return domain.Geo{}, domain.ErrNoCandidate
	}

	c.metrics.GeocodeRequests.WithLabelValues("forward", "success").Inc()
	return domain.Geo{
		Lat: first.Get("lat").Float(),
		Lon: first.Get("lon").Float(),
	}, nil
}

// ResolveReverse converts coordinates to an address string assembled
// from the provider's component breakdown: road, suburb, city and state
// joined with ", ", skipping empty components. Returns "" when nothing
// usable comes back.
func (c *Client) ResolveReverse(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{
		"format": {"json"},
		"lat":    {fmt.Sprintf("%.6f", lat)},
		"lon":    {fmt.Sprintf("%.6f", lon)},
	}

	body, err := c.doRequest(ctx, c.baseURL+"/reverse?"+params.Encode(), "reverse")
	if err != nil {
		return "", err
	}

	addr := gjson.Get(body, "address")
	var parts []string
	for _, component := range []string{"road", "suburb", "city", "state"} {
		if v := addr.Get(component).String(); v != "" {
			parts = append(parts, v)
		}
	}

	if len(parts) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues("reverse", "empty").Inc()
		return "", nil
	}
	c.metrics.GeocodeRequests.WithLabelValues("reverse", "success").Inc()
	return strings.Join(parts, ", "), nil
}

func (c *Client) doRequest(ctx context.Context, fullURL, method string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GeocodeAPIDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues(method, "error").Inc()
		return "", fmt.Errorf("%s geocode request: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues(method, "error").Inc()
		return "", fmt.Errorf("read %s geocode response: %w", method, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.metrics.GeocodeRequests.WithLabelValues(method, "error").Inc()
		return "", fmt.Errorf("geocoding API error: status %d: %s", resp.StatusCode, body)
	}

	return string(body), nil
}
