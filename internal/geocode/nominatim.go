package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/location-mapper/internal/domain"
	"github.com/couchcryptid/location-mapper/internal/observability"
)

// NominatimName is the provider identity used in results and metrics.
const NominatimName = "nominatim"

// Nominatim implements Provider using the OpenStreetMap Nominatim search
// API. Nominatim's usage policy requires an identifying User-Agent on
// every request.
type Nominatim struct {
	userAgent  string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewNominatim creates a Nominatim geocoding client. baseURL points at
// the public service in production and at a self-hosted or test instance
// otherwise.
func NewNominatim(userAgent, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Nominatim {
	return &Nominatim{
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

func (n *Nominatim) Name() string { return NominatimName }

// Resolve looks up an address via /search with jsonv2 output.
func (n *Nominatim) Resolve(ctx context.Context, address string) (Resolution, error) {
	params := url.Values{
		"q":      {address},
		"format": {"jsonv2"},
		"limit":  {"1"},
	}
	fullURL := n.baseURL + "/search?" + params.Encode()

	start := time.Now()
	res, err := n.doRequest(ctx, fullURL)
	n.metrics.GeocodeAPIDuration.WithLabelValues(NominatimName).Observe(time.Since(start).Seconds())
	n.metrics.GeocodeRequests.WithLabelValues(NominatimName, outcomeLabel(res, err)).Inc()
	return res, err
}

func (n *Nominatim) doRequest(ctx context.Context, fullURL string) (Resolution, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return Resolution{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		// Transport failures mean we cannot reach the service at all.
		return Resolution{}, fmt.Errorf("nominatim request: %w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Resolution{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
		if unavailableStatus(resp.StatusCode) {
			return Resolution{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return Resolution{}, err
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return Resolution{}, fmt.Errorf("decode response: %w", err)
	}

	if len(places) == 0 {
		return Resolution{RawResponse: body}, nil
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return Resolution{}, fmt.Errorf("nominatim returned malformed coordinates: lat=%q lon=%q", places[0].Lat, places[0].Lon)
	}

	return Resolution{
		Found:       true,
		Coordinates: domain.Coordinates{Lat: lat, Lon: lon},
		RawResponse: body,
	}, nil
}

// unavailableStatus reports whether an HTTP status says the provider is
// unusable rather than unhappy about one request. 403 and 429 cover
// usage-policy blocks and rate-limit lockouts; 5xx covers outages.
func unavailableStatus(code int) bool {
	switch {
	case code == http.StatusForbidden, code == http.StatusTooManyRequests:
		return true
	case code >= 500:
		return true
	default:
		return false
	}
}

// Nominatim API response types. Coordinates arrive as JSON strings.

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
