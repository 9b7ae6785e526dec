package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/location-mapper/internal/domain"
	"github.com/couchcryptid/location-mapper/internal/geocode"
	"github.com/couchcryptid/location-mapper/internal/observability"
	"github.com/couchcryptid/location-mapper/internal/ratelimit"
)

// defaultMaxConsecutiveErrors is how many provider errors in a row are
// tolerated before the provider is treated as unavailable even when no
// single error said so explicitly.
const defaultMaxConsecutiveErrors = 3

// ProgressFunc receives one event after each processed record. It is the
// only incremental signal the orchestrator exposes; the CLI adapts it to
// a progress bar, the HTTP adapter ignores it.
type ProgressFunc func(processed, total int)

// Orchestrator drives one batch through validation, rate limiting, and
// the provider chain. It is not safe for concurrent Run calls: the
// active-provider pointer and error counter are batch state.
type Orchestrator struct {
	providers            []geocode.Provider
	limiter              *ratelimit.Limiter
	logger               *slog.Logger
	metrics              *observability.Metrics
	maxConsecutiveErrors int

	active          int
	consecutiveErrs int
}

// NewOrchestrator wires the provider chain. An empty chain is a fatal
// configuration error: the batch never starts. maxConsecutiveErrors <= 0
// selects the default threshold.
func NewOrchestrator(providers []geocode.Provider, limiter *ratelimit.Limiter, logger *slog.Logger, metrics *observability.Metrics, maxConsecutiveErrors int) (*Orchestrator, error) {
	if len(providers) == 0 {
		return nil, errors.New("no geocoding provider configured")
	}
	if maxConsecutiveErrors <= 0 {
		maxConsecutiveErrors = defaultMaxConsecutiveErrors
	}
	return &Orchestrator{
		providers:            providers,
		limiter:              limiter,
		logger:               logger,
		metrics:              metrics,
		maxConsecutiveErrors: maxConsecutiveErrors,
	}, nil
}

// ActiveProvider returns the name of the provider new records will use.
func (o *Orchestrator) ActiveProvider() string {
	return o.providers[o.active].Name()
}

// Run processes records in input order and returns one result per
// record, in the same order. Individual failures never abort the batch.
// Cancellation is honoured at record boundaries: when ctx is done the
// accumulated results are returned with cancelled=true rather than
// discarded.
func (o *Orchestrator) Run(ctx context.Context, records []domain.LocationRecord, progress ProgressFunc) (results []domain.GeocodeResult, cancelled bool) {
	total := len(records)
	results = make([]domain.GeocodeResult, 0, total)

	for i, rec := range records {
		if ctx.Err() != nil {
			return results, true
		}

		result, err := o.processRecord(ctx, rec)
		if err != nil {
			// Only cancellation surfaces here; the record was not processed.
			return results, true
		}

		results = append(results, result)
		o.metrics.RecordsProcessed.WithLabelValues(string(result.Status)).Inc()
		if progress != nil {
			progress(i+1, total)
		}
	}
	return results, false
}

// processRecord produces the final result for one record, switching
// providers mid-record when the active one turns out to be unavailable.
// The returned error is non-nil only when ctx was cancelled.
func (o *Orchestrator) processRecord(ctx context.Context, rec domain.LocationRecord) (domain.GeocodeResult, error) {
	if v := domain.ValidateAddress(rec.Address); !v.Valid {
		return domain.GeocodeResult{
			Record:      rec,
			Status:      domain.StatusInvalidFormat,
			ErrorDetail: v.Reason,
			ProcessedAt: domain.Clock().Now(),
		}, nil
	}

	retried := false
	for {
		provider := o.providers[o.active]

		if err := o.limiter.Acquire(ctx, provider.Name()); err != nil {
			return domain.GeocodeResult{}, err
		}

		res, err := provider.Resolve(ctx, rec.Address)
		if err == nil && res.Found && !res.Coordinates.Valid() {
			err = fmt.Errorf("coordinates out of range: lat=%f lon=%f", res.Coordinates.Lat, res.Coordinates.Lon)
		}

		switch {
		case err == nil && res.Found:
			o.consecutiveErrs = 0
			coords := res.Coordinates
			return domain.GeocodeResult{
				Record:      rec,
				Status:      domain.StatusSuccess,
				Coordinates: &coords,
				Provider:    provider.Name(),
				RawResponse: res.RawResponse,
				ProcessedAt: domain.Clock().Now(),
			}, nil

		case err == nil:
			o.consecutiveErrs = 0
			return domain.GeocodeResult{
				Record:      rec,
				Status:      domain.StatusNoResult,
				Provider:    provider.Name(),
				RawResponse: res.RawResponse,
				ProcessedAt: domain.Clock().Now(),
			}, nil

		default:
			if ctx.Err() != nil {
				return domain.GeocodeResult{}, ctx.Err()
			}

			o.consecutiveErrs++
			unavailable := errors.Is(err, geocode.ErrUnavailable) ||
				o.consecutiveErrs >= o.maxConsecutiveErrors

			if unavailable && o.switchProvider(err) && !retried {
				// Give this record one shot on the new provider before
				// recording a failure.
				retried = true
				continue
			}

			o.logger.Warn("geocoding failed",
				"name", rec.Name,
				"provider", provider.Name(),
				"error", err,
			)
			return domain.GeocodeResult{
				Record:      rec,
				Status:      domain.StatusProviderError,
				Provider:    provider.Name(),
				ErrorDetail: err.Error(),
				ProcessedAt: domain.Clock().Now(),
			}, nil
		}
	}
}

// switchProvider advances the chain permanently for the rest of the
// batch. The switch is forward-only and batch-global; it never switches
// back. Returns false when no provider remains, in which case processing
// continues on the last (degraded) provider.
func (o *Orchestrator) switchProvider(cause error) bool {
	if o.active >= len(o.providers)-1 {
		return false
	}

	from := o.providers[o.active].Name()
	o.active++
	o.consecutiveErrs = 0
	o.metrics.ProviderSwitches.Inc()
	o.logger.Warn("provider unavailable, switching for remainder of batch",
		"from", from,
		"to", o.providers[o.active].Name(),
		"cause", cause,
	)
	return true
}
