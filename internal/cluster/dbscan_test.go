package cluster

import (
	"sort"
	"strconv"
	"testing"

	"github.com/couchcryptid/location-mapper/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineKm_KnownDistances(t *testing.T) {
	paris := domain.Coordinates{Lat: 48.8566, Lon: 2.3522}
	london := domain.Coordinates{Lat: 51.5074, Lon: -0.1278}

	d := HaversineKm(paris, london)
	assert.InDelta(t, 343.5, d, 2.0, "Paris-London is about 344 km")

	assert.Zero(t, HaversineKm(paris, paris))
}

func TestAssign_EmptyInput(t *testing.T) {
	assert.Empty(t, Assign(nil, 2.0, 2))
}

func TestAssign_SinglePointIsNoise(t *testing.T) {
	got := Assign([]domain.Coordinates{{Lat: 48.8584, Lon: 2.2945}}, 2.0, 2)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].RecordIndex)
	assert.Equal(t, domain.NoiseCluster, got[0].ClusterID)
}

func TestAssign_TwoClosePointsOneDistant(t *testing.T) {
	// Two points ~500 m apart in central Paris, one 50 km away.
	points := []domain.Coordinates{
		{Lat: 48.8584, Lon: 2.2945},
		{Lat: 48.8630, Lon: 2.2950},
		{Lat: 49.3000, Lon: 2.3000},
	}

	got := Assign(points, 2.0, 2)
	require.Len(t, got, 3)

	assert.NotEqual(t, domain.NoiseCluster, got[0].ClusterID)
	assert.Equal(t, got[0].ClusterID, got[1].ClusterID, "close points share a cluster")
	assert.Equal(t, domain.NoiseCluster, got[2].ClusterID, "distant point is noise")
}

func TestAssign_TwoSeparateClusters(t *testing.T) {
	points := []domain.Coordinates{
		// Pair near the Eiffel Tower.
		{Lat: 48.8584, Lon: 2.2945},
		{Lat: 48.8600, Lon: 2.2950},
		// Pair near Notre-Dame, ~4.5 km east of the first pair.
		{Lat: 48.8530, Lon: 2.3499},
		{Lat: 48.8540, Lon: 2.3510},
	}

	got := Assign(points, 2.0, 2)
	require.Len(t, got, 4)

	assert.Equal(t, got[0].ClusterID, got[1].ClusterID)
	assert.Equal(t, got[2].ClusterID, got[3].ClusterID)
	assert.NotEqual(t, got[0].ClusterID, got[2].ClusterID, "pairs beyond epsilon form separate clusters")
	for _, a := range got {
		assert.NotEqual(t, domain.NoiseCluster, a.ClusterID)
	}
}

func TestAssign_ChainedDensityReachability(t *testing.T) {
	// Points in a line ~1.5 km apart: each neighbors the next, so all
	// of them join a single cluster even though the ends are far apart.
	points := []domain.Coordinates{
		{Lat: 48.8584, Lon: 2.2945},
		{Lat: 48.8719, Lon: 2.2945},
		{Lat: 48.8854, Lon: 2.2945},
		{Lat: 48.8989, Lon: 2.2945},
	}

	got := Assign(points, 2.0, 2)
	for _, a := range got[1:] {
		assert.Equal(t, got[0].ClusterID, a.ClusterID)
	}
}

func TestAssign_MinPointsAboveInputSizeAllNoise(t *testing.T) {
	points := []domain.Coordinates{
		{Lat: 48.8584, Lon: 2.2945},
		{Lat: 48.8585, Lon: 2.2946},
	}
	for _, a := range Assign(points, 2.0, 5) {
		assert.Equal(t, domain.NoiseCluster, a.ClusterID)
	}
}

func TestAssign_MembershipIdempotent(t *testing.T) {
	points := []domain.Coordinates{
		{Lat: 48.8584, Lon: 2.2945},
		{Lat: 48.8630, Lon: 2.2950},
		{Lat: 49.3000, Lon: 2.3000},
		{Lat: 48.8530, Lon: 2.3499},
		{Lat: 48.8540, Lon: 2.3510},
		{Lat: 40.7128, Lon: -74.0060},
	}

	first := partition(Assign(points, 2.0, 2))
	second := partition(Assign(points, 2.0, 2))

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("partitions differ between runs (-first +second):\n%s", diff)
	}
}

func TestAssign_AntimeridianNeighbors(t *testing.T) {
	// Haversine handles longitude wraparound; the two points straddle
	// the antimeridian but are under 1 km apart.
	points := []domain.Coordinates{
		{Lat: 0, Lon: 179.999},
		{Lat: 0, Lon: -179.999},
	}
	d := HaversineKm(points[0], points[1])
	require.Less(t, d, 1.0)

	got := Assign(points, 2.0, 2)
	assert.Equal(t, got[0].ClusterID, got[1].ClusterID)
	assert.NotEqual(t, domain.NoiseCluster, got[0].ClusterID)
}

// partition canonicalizes assignments so two runs compare by membership
// rather than by the arbitrary cluster labels: each cluster becomes its
// sorted member list keyed by smallest member, noise is its own list.
func partition(assignments []domain.ClusterAssignment) map[string][]int {
	byCluster := make(map[int][]int)
	var noise []int
	for _, a := range assignments {
		if a.ClusterID == domain.NoiseCluster {
			noise = append(noise, a.RecordIndex)
			continue
		}
		byCluster[a.ClusterID] = append(byCluster[a.ClusterID], a.RecordIndex)
	}

	out := make(map[string][]int)
	for _, members := range byCluster {
		sort.Ints(members)
		out["cluster@"+strconv.Itoa(members[0])] = members
	}
	sort.Ints(noise)
	out["noise"] = noise
	return out
}

func TestAssign_EpsilonConversionMatchesHaversine(t *testing.T) {
	// Two points just under 2 km apart cluster at epsilon 2, but not at
	// an epsilon below their separation.
	a := domain.Coordinates{Lat: 48.8584, Lon: 2.2945}
	b := domain.Coordinates{Lat: 48.8584 + 1.9/111.0, Lon: 2.2945}
	require.InDelta(t, 1.9, HaversineKm(a, b), 0.05)

	clustered := Assign([]domain.Coordinates{a, b}, 2.0, 2)
	assert.NotEqual(t, domain.NoiseCluster, clustered[0].ClusterID)

	split := Assign([]domain.Coordinates{a, b}, 1.0, 2)
	assert.Equal(t, domain.NoiseCluster, split[0].ClusterID)
	assert.Equal(t, domain.NoiseCluster, split[1].ClusterID)
}
