// Package landsearch resolves detection coordinates to administrative areas
// using the Mapbox Geocoding API. The resolved state and county feed the
// classifier's geographic features.
package landsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/fire-detection-etl/internal/domain"
	"github.com/couchcryptid/fire-detection-etl/internal/observability"
)

// Client implements domain.RegionLookup using the Mapbox Geocoding API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox region lookup client.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.mapbox.com/geocoding/v5/mapbox.places",
		metrics: metrics,
		logger:  logger,
	}
}

// ReverseLookup converts coordinates to state, county, and place details.
func (c *Client) ReverseLookup(ctx context.Context, lat, lon float64) (domain.RegionResult, error) {
	// Mapbox uses lon,lat order.
	coord := fmt.Sprintf("%.6f,%.6f", lon, lat)
	u := fmt.Sprintf("%s/%s.json", c.baseURL, coord)
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
		"types":        {"place,district,region"},
	}

	start := time.Now()
	result, err := c.doRequest(ctx, u+"?"+params.Encode())
	c.metrics.RegionAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.RegionRequests.WithLabelValues("error").Inc()
	case result.State == "" && result.PlaceName == "":
		c.metrics.RegionRequests.WithLabelValues("empty").Inc()
	default:
		c.metrics.RegionRequests.WithLabelValues("success").Inc()
	}
	return result, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.RegionResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.RegionResult{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RegionResult{}, fmt.Errorf("region lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.RegionResult{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var mapboxResp response
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		return domain.RegionResult{}, fmt.Errorf("decode response: %w", err)
	}

	if len(mapboxResp.Features) == 0 {
		return domain.RegionResult{}, nil
	}

	f := mapboxResp.Features[0]
	result := domain.RegionResult{
		PlaceName: f.Text,
		Relevance: f.Relevance,
	}
	applyContext(&result, f)
	return result, nil
}

// applyContext extracts state and county from the feature and its context
// chain. Mapbox identifies states as "region" entries with a US short code
// and counties as "district" entries.
func applyContext(result *domain.RegionResult, f feature) {
	entries := append([]contextEntry{{ID: f.ID, Text: f.Text, ShortCode: f.ShortCode}}, f.Context...)
	for _, e := range entries {
		switch {
		case strings.HasPrefix(e.ID, "region."):
			result.State = stateCode(e)
		case strings.HasPrefix(e.ID, "district."):
			result.County = e.Text
		}
	}
}

// stateCode prefers the two-letter code from short codes like "US-CA",
// falling back to the full region name.
func stateCode(e contextEntry) string {
	if code, ok := strings.CutPrefix(e.ShortCode, "US-"); ok {
		return code
	}
	return e.Text
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	ShortCode string         `json:"short_code"`
	Relevance float64        `json:"relevance"`
	Context   []contextEntry `json:"context"`
}

type contextEntry struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	ShortCode string `json:"short_code"`
}
