//go:build opencage

package geocode

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real OpenCage API and require a valid
// OPENCAGE_API_KEY env var.
// Run with: go test -tags=opencage ./internal/geocode/ -v -count=1

func smokeOpenCage(t *testing.T) *OpenCage {
	t.Helper()
	key := os.Getenv("OPENCAGE_API_KEY")
	if key == "" {
		t.Fatal("OPENCAGE_API_KEY must be set to run smoke tests")
	}
	return NewOpenCage(key, 10*time.Second, testMetrics(), discardLogger())
}

func TestSmoke_OpenCage_Resolve(t *testing.T) {
	c := smokeOpenCage(t)

	res, err := c.Resolve(context.Background(), "Champ de Mars, 5 Avenue Anatole France, Paris")
	require.NoError(t, err)

	require.True(t, res.Found)
	assert.InDelta(t, 48.8584, res.Coordinates.Lat, 0.01, "lat should be near the Eiffel Tower")
	assert.InDelta(t, 2.2945, res.Coordinates.Lon, 0.01, "lon should be near the Eiffel Tower")
	assert.NotEmpty(t, res.RawResponse)
}

func TestSmoke_OpenCage_NoResult(t *testing.T) {
	c := smokeOpenCage(t)

	// OpenCage's fuzzy matching may still answer for odd queries, so only
	// require a clean response, found or not.
	_, err := c.Resolve(context.Background(), "Xyzzyplugh Street 99, Nowhereville, Atlantis")
	require.NoError(t, err)
}
