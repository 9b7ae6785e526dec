package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/location-mapper/internal/domain"
	"github.com/couchcryptid/location-mapper/internal/observability"
)

// OpenCageName is the provider identity used in results and metrics.
const OpenCageName = "opencage"

// OpenCage implements Provider using the OpenCage forward geocoding API,
// a commercial service gated by an API key. Used as the fallback behind
// Nominatim.
type OpenCage struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewOpenCage creates an OpenCage geocoding client.
func NewOpenCage(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *OpenCage {
	return &OpenCage{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.opencagedata.com/geocode/v1/json",
		metrics: metrics,
		logger:  logger,
	}
}

func (o *OpenCage) Name() string { return OpenCageName }

func (o *OpenCage) Resolve(ctx context.Context, address string) (Resolution, error) {
	params := url.Values{
		"q":              {address},
		"key":            {o.apiKey},
		"limit":          {"1"},
		"no_annotations": {"1"},
	}
	fullURL := o.baseURL + "?" + params.Encode()

	start := time.Now()
	res, err := o.doRequest(ctx, fullURL)
	o.metrics.GeocodeAPIDuration.WithLabelValues(OpenCageName).Observe(time.Since(start).Seconds())
	o.metrics.GeocodeRequests.WithLabelValues(OpenCageName, outcomeLabel(res, err)).Inc()
	return res, err
}

func (o *OpenCage) doRequest(ctx context.Context, fullURL string) (Resolution, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return Resolution{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return Resolution{}, fmt.Errorf("opencage request: %w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Resolution{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("opencage API error: status %d: %s", resp.StatusCode, body)
		if opencageUnavailableStatus(resp.StatusCode) {
			return Resolution{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return Resolution{}, err
	}

	var ocResp opencageResponse
	if err := json.Unmarshal(body, &ocResp); err != nil {
		return Resolution{}, fmt.Errorf("decode response: %w", err)
	}

	if len(ocResp.Results) == 0 {
		return Resolution{RawResponse: body}, nil
	}

	g := ocResp.Results[0].Geometry
	return Resolution{
		Found:       true,
		Coordinates: domain.Coordinates{Lat: g.Lat, Lon: g.Lng},
		RawResponse: body,
	}, nil
}

// opencageUnavailableStatus treats key and quota rejections as
// provider-level failures: 401/402/403 mean the key will never work this
// batch, 429 means the daily quota is spent.
func opencageUnavailableStatus(code int) bool {
	switch code {
	case http.StatusUnauthorized, http.StatusPaymentRequired, http.StatusForbidden, http.StatusTooManyRequests:
		return true
	}
	return code >= 500
}

// OpenCage API response types.

type opencageResponse struct {
	Results []opencageResult `json:"results"`
}

type opencageResult struct {
	Geometry  opencageGeometry `json:"geometry"`
	Formatted string           `json:"formatted"`
}

type opencageGeometry struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
