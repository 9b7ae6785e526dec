// Package domain models the geocoding batch pipeline: named location
// records in, validated and geocoded results out.
//
// # Input Conventions
//
// A batch arrives as tabular rows with two required columns, "name" and
// "address". The address is free text; the only structure assumed is the
// comma-separated "street, city, region" shape checked by
// [ValidateAddress]. Records are never mutated after ingestion.
//
// # Result Lifecycle
//
// The orchestrator produces exactly one [GeocodeResult] per input record,
// in input order, and the result is immutable from then on. Coordinates
// are present if and only if the status is [StatusSuccess]; every other
// status leaves them nil. Downstream stages (aggregation, clustering,
// export) only read results, so a report or cluster assignment can be
// recomputed from the result sequence at any time.
//
// # Failure Statuses
//
//	invalid_format  address rejected before any network call
//	no_result       provider answered, nothing matched this address
//	provider_error  the provider call itself failed
//
// A no_result is deliberately distinct from provider_error: the former
// says something about the address, the latter about the provider, and
// only the latter can contribute to a batch-global provider switch.
//
// # Clustering
//
// Cluster assignments are computed over the success set only and are
// keyed by index into that set. The ID -1 ([NoiseCluster]) marks points
// with too few neighbors to join any cluster. IDs are arbitrary labels;
// two runs over the same input agree on membership, not on numbering.
package domain
