package geocode

import (
	"context"
	"errors"

	"github.com/couchcryptid/location-mapper/internal/domain"
)

// ErrUnavailable marks a provider error that indicates the provider
// itself is unusable (network failure, auth rejection, rate-limit
// lockout, server error) rather than a problem with one address.
// The orchestrator switches to the next provider when it sees it.
var ErrUnavailable = errors.New("provider unavailable")

// Resolution is the typed outcome of a single geocoding call.
// Found=false with a nil error means the provider answered but has no
// match for the address; that is not a provider failure.
type Resolution struct {
	Found       bool
	Coordinates domain.Coordinates
	RawResponse []byte
}

// Provider resolves a free-text address to coordinates.
// Implementations classify their own failures: errors wrapping
// ErrUnavailable poison the provider for the rest of the batch, any
// other error is transient to the address that triggered it.
type Provider interface {
	// Name identifies the provider in results, metrics, and rate-limiter keys.
	Name() string

	Resolve(ctx context.Context, address string) (Resolution, error)
}

// outcomeLabel maps a call result onto the metrics outcome label.
func outcomeLabel(res Resolution, err error) string {
	switch {
	case err != nil:
		return "error"
	case !res.Found:
		return "no_result"
	default:
		return "found"
	}
}
