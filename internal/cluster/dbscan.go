// Package cluster groups geocoded points with density-based (DBSCAN)
// clustering over great-circle distance.
package cluster

import (
	"math"

	"github.com/couchcryptid/location-mapper/internal/domain"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two coordinate
// pairs in kilometers.
func HaversineKm(a, b domain.Coordinates) float64 {
	return centralAngle(radians(a), radians(b)) * earthRadiusKm
}

// Assign runs DBSCAN over the points using haversine neighborhoods:
// the epsilon radius in kilometers is converted to its central-angle
// equivalent (epsilonKm / earth radius) and compared against the
// great-circle angle between points. One assignment is returned per
// input point, in input order. Points with fewer than minPoints
// neighbors (the point itself included) that fall in no cluster's reach
// are labeled domain.NoiseCluster. Membership is deterministic for a
// fixed input order; cluster IDs are arbitrary labels.
func Assign(points []domain.Coordinates, epsilonKm float64, minPoints int) []domain.ClusterAssignment {
	assignments := make([]domain.ClusterAssignment, len(points))
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unvisited
	}

	rads := make([]radianPoint, len(points))
	for i, p := range points {
		rads[i] = radians(p)
	}
	epsRad := epsilonKm / earthRadiusKm

	clusterID := 0
	for i := range points {
		if labels[i] != unvisited {
			continue
		}
		neighbors := regionQuery(rads, i, epsRad)
		if len(neighbors) < minPoints {
			labels[i] = domain.NoiseCluster
			continue
		}
		expandCluster(rads, labels, i, neighbors, clusterID, epsRad, minPoints)
		clusterID++
	}

	for i := range points {
		assignments[i] = domain.ClusterAssignment{RecordIndex: i, ClusterID: labels[i]}
	}
	return assignments
}

// unvisited must be distinct from every cluster ID and from NoiseCluster.
const unvisited = -2

// expandCluster grows a cluster from a core point by breadth-first
// traversal of density-reachable neighbors.
func expandCluster(rads []radianPoint, labels []int, seed int, neighbors []int, clusterID int, epsRad float64, minPoints int) {
	labels[seed] = clusterID

	queue := append([]int(nil), neighbors...)
	for qi := 0; qi < len(queue); qi++ {
		j := queue[qi]
		if labels[j] == domain.NoiseCluster {
			// Border point previously marked noise: claim it, but do not
			// expand from it.
			labels[j] = clusterID
			continue
		}
		if labels[j] != unvisited {
			continue
		}
		labels[j] = clusterID

		jNeighbors := regionQuery(rads, j, epsRad)
		if len(jNeighbors) >= minPoints {
			queue = append(queue, jNeighbors...)
		}
	}
}

// regionQuery returns the indices of all points within epsRad of point i,
// including i itself.
func regionQuery(rads []radianPoint, i int, epsRad float64) []int {
	var neighbors []int
	for j := range rads {
		if centralAngle(rads[i], rads[j]) <= epsRad {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

type radianPoint struct {
	lat float64
	lon float64
}

func radians(c domain.Coordinates) radianPoint {
	return radianPoint{
		lat: c.Lat * math.Pi / 180,
		lon: c.Lon * math.Pi / 180,
	}
}

// centralAngle computes the haversine central angle between two points
// in radians. Multiply by the sphere radius for a distance.
func centralAngle(a, b radianPoint) float64 {
	dLat := b.lat - a.lat
	dLon := b.lon - a.lon

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.lat)*math.Cos(b.lat)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
