package domain

import "time"

// LocationRecord is the immutable input unit of a batch: one named
// free-text address per input row.
type LocationRecord struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Coordinates is a WGS-84 latitude/longitude pair.
// Latitude is in [-90,90], longitude in [-180,180].
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeocodeStatus classifies the outcome of geocoding one record.
type GeocodeStatus string

const (
	// StatusSuccess means the provider resolved the address to coordinates.
	StatusSuccess GeocodeStatus = "success"
	// StatusInvalidFormat means the address failed validation and no
	// provider call was made.
	StatusInvalidFormat GeocodeStatus = "invalid_format"
	// StatusNoResult means the provider answered but found nothing for
	// this address. Not a provider failure.
	StatusNoResult GeocodeStatus = "no_result"
	// StatusProviderError means the provider call itself failed.
	StatusProviderError GeocodeStatus = "provider_error"
)

// FailureStatuses enumerates every non-success status, in report order.
var FailureStatuses = []GeocodeStatus{StatusInvalidFormat, StatusNoResult, StatusProviderError}

// GeocodeResult is produced once per record by the orchestrator and is
// immutable thereafter. Coordinates is non-nil if and only if Status is
// StatusSuccess.
type GeocodeResult struct {
	Record      LocationRecord `json:"record"`
	Status      GeocodeStatus  `json:"status"`
	Coordinates *Coordinates   `json:"coordinates,omitempty"`
	Provider    string         `json:"provider,omitempty"`
	RawResponse []byte         `json:"-"`
	ErrorDetail string         `json:"error_detail,omitempty"`
	ProcessedAt time.Time      `json:"processed_at"`
}

// BatchReport summarizes a batch. It is recomputed from the full result
// sequence rather than incrementally mutated, so it can never drift.
type BatchReport struct {
	Total     int                   `json:"total"`
	Successes int                   `json:"successes"`
	Failures  map[GeocodeStatus]int `json:"failures"`
}

// Valid reports whether the pair lies in the WGS-84 range.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// NoiseCluster is the cluster ID assigned to unclustered points.
const NoiseCluster = -1

// ClusterAssignment maps a point (by its index in the success set) to a
// cluster. Cluster IDs are arbitrary labels; only membership is stable.
type ClusterAssignment struct {
	RecordIndex int `json:"record_index"`
	ClusterID   int `json:"cluster_id"`
}

// PlacedPoint is a successfully geocoded record joined with its cluster
// assignment, ready for rendering or publishing.
type PlacedPoint struct {
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	Coordinates Coordinates `json:"coordinates"`
	Provider    string      `json:"provider"`
	ClusterID   int         `json:"cluster_id"`
	ProcessedAt time.Time   `json:"processed_at"`
}
