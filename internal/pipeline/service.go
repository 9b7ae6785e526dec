package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/location-mapper/internal/cluster"
	"github.com/couchcryptid/location-mapper/internal/domain"
	"github.com/couchcryptid/location-mapper/internal/observability"
)

// ErrEmptyBatch is the fatal input error for a batch with no records.
var ErrEmptyBatch = errors.New("empty input set")

// ResultPublisher pushes placed points to an external sink after a
// batch completes. Optional; a nil publisher disables publishing.
type ResultPublisher interface {
	PublishBatch(ctx context.Context, points []domain.PlacedPoint) error
}

// BatchOutput is everything one batch run produces. Clusters and Placed
// are indexed against Successes, not against the full result sequence.
type BatchOutput struct {
	Results   []domain.GeocodeResult
	Successes []domain.GeocodeResult
	Failures  []domain.GeocodeResult
	Report    domain.BatchReport
	Clusters  []domain.ClusterAssignment
	Placed    []domain.PlacedPoint
	Cancelled bool
}

// Service runs the full validate-geocode-aggregate-cluster sequence and
// optionally publishes the placed points. It also carries the readiness
// flag for the HTTP adapter.
type Service struct {
	orchestrator *Orchestrator
	publisher    ResultPublisher
	epsilonKm    float64
	minPoints    int
	logger       *slog.Logger
	metrics      *observability.Metrics
	ready        atomic.Bool
}

// NewService creates a Service. publisher may be nil.
func NewService(orch *Orchestrator, epsilonKm float64, minPoints int, publisher ResultPublisher, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		orchestrator: orch,
		publisher:    publisher,
		epsilonKm:    epsilonKm,
		minPoints:    minPoints,
		logger:       logger,
		metrics:      metrics,
	}
}

// CheckReadiness returns nil once the service has completed at least one
// batch, or an error describing why it is not yet ready.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("service has not processed any batch yet")
	}
	return nil
}

// Process runs one batch. A cancelled context yields the partial output
// with Cancelled=true; only an empty input is an error.
func (s *Service) Process(ctx context.Context, records []domain.LocationRecord, progress ProgressFunc) (BatchOutput, error) {
	if len(records) == 0 {
		return BatchOutput{}, ErrEmptyBatch
	}

	s.metrics.BatchInFlight.Set(1)
	defer s.metrics.BatchInFlight.Set(0)
	s.metrics.BatchSize.Observe(float64(len(records)))
	start := time.Now()

	s.logger.Info("batch started",
		"records", len(records),
		"provider", s.orchestrator.ActiveProvider(),
	)

	results, cancelled := s.orchestrator.Run(ctx, records, progress)
	successes, failures, report := Aggregate(results)

	points := make([]domain.Coordinates, len(successes))
	for i, r := range successes {
		points[i] = *r.Coordinates
	}
	clusters := cluster.Assign(points, s.epsilonKm, s.minPoints)

	placed := make([]domain.PlacedPoint, len(successes))
	for i, r := range successes {
		placed[i] = domain.PlacedPoint{
			Name:        r.Record.Name,
			Address:     r.Record.Address,
			Coordinates: *r.Coordinates,
			Provider:    r.Provider,
			ClusterID:   clusters[i].ClusterID,
			ProcessedAt: r.ProcessedAt,
		}
	}

	s.observeClusters(clusters)
	s.metrics.BatchDuration.Observe(time.Since(start).Seconds())
	s.metrics.BatchesCompleted.Inc()

	// Publishing is a side channel: a failure is surfaced in the log but
	// never invalidates the computed results.
	if s.publisher != nil && len(placed) > 0 && !cancelled {
		if err := s.publisher.PublishBatch(ctx, placed); err != nil {
			s.logger.Warn("publishing placed points failed", "error", err, "points", len(placed))
		}
	}

	s.ready.Store(true)
	s.logger.Info("batch finished",
		"total", report.Total,
		"successes", report.Successes,
		"cancelled", cancelled,
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)

	return BatchOutput{
		Results:   results,
		Successes: successes,
		Failures:  failures,
		Report:    report,
		Clusters:  clusters,
		Placed:    placed,
		Cancelled: cancelled,
	}, nil
}

func (s *Service) observeClusters(clusters []domain.ClusterAssignment) {
	maxID := -1
	noise := 0
	for _, c := range clusters {
		if c.ClusterID == domain.NoiseCluster {
			noise++
		} else if c.ClusterID > maxID {
			maxID = c.ClusterID
		}
	}
	s.metrics.ClusterCount.Observe(float64(maxID + 1))
	s.metrics.NoisePoints.Observe(float64(noise))
}
