// Package render implements the renderer fallback policy: try renderers
// in order, degrade gracefully, and never touch the point data.
package render

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/location-mapper/internal/domain"
	"github.com/couchcryptid/location-mapper/internal/observability"
)

// Renderer consumes placed points for display or export. Render must not
// mutate the slice it receives.
type Renderer interface {
	Name() string
	Render(points []domain.PlacedPoint) error
}

// ChainError reports that every renderer in the chain failed. It carries
// the untouched points so the caller can fall back to manual inspection.
type ChainError struct {
	Points   []domain.PlacedPoint
	Attempts []error
}

func (e *ChainError) Error() string {
	msgs := make([]string, len(e.Attempts))
	for i, err := range e.Attempts {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("all %d renderer(s) failed: %s", len(e.Attempts), strings.Join(msgs, "; "))
}

// Chain tries renderers in order and falls through on failure.
type Chain struct {
	renderers []Renderer
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewChain creates a renderer chain. Order matters: put the rich
// renderer first and the simplest last.
func NewChain(renderers []Renderer, logger *slog.Logger, metrics *observability.Metrics) *Chain {
	return &Chain{renderers: renderers, logger: logger, metrics: metrics}
}

// Render attempts each renderer until one succeeds. When all fail it
// returns a ChainError holding the points; the computed geocoding and
// clustering results stay valid either way.
func (c *Chain) Render(points []domain.PlacedPoint) error {
	attempts := make([]error, 0, len(c.renderers))
	for _, r := range c.renderers {
		err := r.Render(points)
		if err == nil {
			if len(attempts) > 0 {
				c.logger.Info("rendered after fallback", "renderer", r.Name(), "failed_attempts", len(attempts))
			}
			return nil
		}
		c.metrics.RenderFallbacks.Inc()
		c.logger.Warn("renderer failed, falling through", "renderer", r.Name(), "error", err)
		attempts = append(attempts, fmt.Errorf("%s: %w", r.Name(), err))
	}
	return &ChainError{Points: points, Attempts: attempts}
}
