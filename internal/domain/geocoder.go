package domain

import (
	"context"
	"errors"
)

// ErrNoCandidate is returned by Resolve when the provider has no match
// for an address. Batch callers log it and keep going; the record stays
// in the list view but is never plotted.
var ErrNoCandidate = errors.New("no geocoding candidate")

// Geocoder resolves addresses to coordinates and back.
type Geocoder interface {
	// Resolve converts a free-text address to coordinates. Returns
	// ErrNoCandidate when the provider has no match.
	Resolve(ctx context.Context, address string) (Geo, error)

	// ResolveReverse converts coordinates to a human-readable address,
	// or "" when the provider has nothing usable.
	ResolveReverse(ctx context.Context, lat, lon float64) (string, error)
}
