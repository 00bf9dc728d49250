package nominatim

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/domain"
	"github.com/CelsoAntunesNogueira/alertadefesacivil/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory TTL cache. Addresses
// repeat heavily across plotting passes of the same sheet, so a short
// TTL already removes most provider traffic.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *gocache.Cache
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, ttl time.Duration, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   gocache.New(ttl, 2*ttl),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) Resolve(ctx context.Context, address string) (domain.Geo, error) {
	key := "fwd:" + address
	if v, ok := c.cache.Get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("forward", "hit").Inc()
		return v.(domain.Geo), nil
	}
	c.metrics.GeocodeCache.WithLabelValues("forward", "miss").Inc()

	geo, err := c.inner.Resolve(ctx, address)
	if err != nil {
		// Misses and transport failures are not cached so they can be retried.
		return geo, err
	}
	c.cache.SetDefault(key, geo)
	return geo, nil
}

func (c *CachedGeocoder) ResolveReverse(ctx context.Context, lat, lon float64) (string, error) {
	key := fmt.Sprintf("rev:%.6f,%.6f", lat, lon)
	if v, ok := c.cache.Get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("reverse", "hit").Inc()
		return v.(string), nil
	}
	c.metrics.GeocodeCache.WithLabelValues("reverse", "miss").Inc()

	addr, err := c.inner.ResolveReverse(ctx, lat, lon)
	if err != nil {
		return addr, err
	}
	if addr != "" {
		c.cache.SetDefault(key, addr)
	}
	return addr, nil
}
