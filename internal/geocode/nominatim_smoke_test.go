//go:build nominatim

package geocode

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Nominatim API and require NOMINATIM_USER_AGENT
// to be set, per the service's usage policy.
// Run with: go test -tags=nominatim ./internal/geocode/ -v -count=1

func smokeNominatim(t *testing.T) *Nominatim {
	t.Helper()
	userAgent := os.Getenv("NOMINATIM_USER_AGENT")
	if userAgent == "" {
		t.Fatal("NOMINATIM_USER_AGENT must be set to run smoke tests")
	}
	return NewNominatim(userAgent, "https://nominatim.openstreetmap.org", 10*time.Second, testMetrics(), discardLogger())
}

func TestSmoke_Nominatim_Resolve(t *testing.T) {
	c := smokeNominatim(t)

	res, err := c.Resolve(context.Background(), "Champ de Mars, 5 Avenue Anatole France, Paris")
	require.NoError(t, err)

	require.True(t, res.Found)
	assert.InDelta(t, 48.8584, res.Coordinates.Lat, 0.01, "lat should be near the Eiffel Tower")
	assert.InDelta(t, 2.2945, res.Coordinates.Lon, 0.01, "lon should be near the Eiffel Tower")
	assert.NotEmpty(t, res.RawResponse)
}

func TestSmoke_Nominatim_NoResult(t *testing.T) {
	c := smokeNominatim(t)

	res, err := c.Resolve(context.Background(), "Xyzzyplugh Street 99, Nowhereville, Atlantis")
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestSmoke_Nominatim_Cached(t *testing.T) {
	c := smokeNominatim(t)
	cached := NewCachedProvider(c, 10, testMetrics())

	// First call: cache miss, real API call.
	r1, err := cached.Resolve(context.Background(), "Place du Parvis, Cathedrale, Reims")
	require.NoError(t, err)
	require.True(t, r1.Found)

	// Second call: cache hit, no API call.
	r2, err := cached.Resolve(context.Background(), "Place du Parvis, Cathedrale, Reims")
	require.NoError(t, err)
	assert.Equal(t, r1.Coordinates, r2.Coordinates)
}
