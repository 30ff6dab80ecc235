// Package geocode resolves free-form place names to IANA time zones through the
// Google Maps Geocoding and Time Zone APIs.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api"

	// zoneTimestamp is sent to the Time Zone API, which requires one. The zone
	// identifier does not depend on it; keeping it fixed keeps responses cacheable.
	zoneTimestamp = "1609459200"
)

var (
	// ErrNoAPIKey is returned when no Google Maps API key is configured.
	ErrNoAPIKey = errors.New("google maps API key not configured")

	// ErrNotFound is returned when the API has no result for the query.
	ErrNotFound = errors.New("place not found")

	// ErrImprecise is returned for country-level matches, which span several zones.
	ErrImprecise = errors.New("place too imprecise to pick a time zone")
)

// Location is a geocoded point.
type Location struct {
	Address   string
	Latitude  float64
	Longitude float64
}

// Place is a place name resolved all the way to a zone.
type Place struct {
	Query     string  `json:"query"`
	Address   string  `json:"address"`
	Zone      string  `json:"zone"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// HTTPClient interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client handles Google Maps API operations.
type Client struct {
	httpClient HTTPClient
	logger     *slog.Logger
	apiKey     string
	baseURL    string
	attempts   uint
	delay      time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithRetry overrides the retry policy for transient failures.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// NewClient creates a new Google Maps API client.
func NewClient(apiKey string, httpClient HTTPClient, logger *slog.Logger, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
		baseURL:    defaultBaseURL,
		attempts:   4,
		delay:      time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cacheable reports whether an API response body is a successful answer worth caching.
func Cacheable(body []byte) bool {
	var r struct {
		Status string `json:"status"`
	}
	return json.Unmarshal(body, &r) == nil && r.Status == "OK"
}

// ZoneForPlace geocodes place and looks up the zone at its coordinates.
func (c *Client) ZoneForPlace(ctx context.Context, place string) (*Place, error) {
	loc, err := c.GeocodeLocation(ctx, place)
	if err != nil {
		return nil, err
	}
	zone, err := c.TimezoneForCoordinates(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return nil, err
	}
	return &Place{
		Query:     place,
		Address:   loc.Address,
		Zone:      zone,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}, nil
}

// GeocodeLocation converts a location string to coordinates using the Geocoding API.
func (c *Client) GeocodeLocation(ctx context.Context, location string) (*Location, error) {
	var result struct {
		Results []struct {
			Geometry struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
				LocationType string `json:"location_type"`
			} `json:"geometry"`
			Types            []string `json:"types"`
			FormattedAddress string   `json:"formatted_address"`
		} `json:"results"`
	}

	params := url.Values{"address": {location}}
	if err := c.get(ctx, "/geocode/json", params, &result); err != nil {
		return nil, fmt.Errorf("geocode %q: %w", location, err)
	}
	if len(result.Results) == 0 {
		return nil, fmt.Errorf("geocode %q: %w", location, ErrNotFound)
	}

	first := result.Results[0]
	if strings.EqualFold(first.Geometry.LocationType, "approximate") {
		hasCountry, hasPrecise := false, false
		for _, t := range first.Types {
			switch t {
			case "country":
				hasCountry = true
			case "locality", "administrative_area_level_1", "administrative_area_level_2":
				hasPrecise = true
			}
		}
		if hasCountry && !hasPrecise {
			c.logger.Debug("rejecting imprecise geocoding result", "location", location,
				"address", first.FormattedAddress)
			return nil, fmt.Errorf("geocode %q: %w", location, ErrImprecise)
		}
	}

	return &Location{
		Address:   first.FormattedAddress,
		Latitude:  first.Geometry.Location.Lat,
		Longitude: first.Geometry.Location.Lng,
	}, nil
}

// TimezoneForCoordinates returns the IANA zone at the given coordinates.
func (c *Client) TimezoneForCoordinates(ctx context.Context, lat, lng float64) (string, error) {
	var result struct {
		TimeZoneID   string `json:"timeZoneId"`
		TimeZoneName string `json:"timeZoneName"`
	}

	params := url.Values{
		"location":  {strconv.FormatFloat(lat, 'f', 6, 64) + "," + strconv.FormatFloat(lng, 'f', 6, 64)},
		"timestamp": {zoneTimestamp},
	}
	if err := c.get(ctx, "/timezone/json", params, &result); err != nil {
		return "", fmt.Errorf("time zone at %f,%f: %w", lat, lng, err)
	}
	if result.TimeZoneID == "" {
		return "", fmt.Errorf("time zone at %f,%f: %w", lat, lng, ErrNotFound)
	}
	return result.TimeZoneID, nil
}

// apiStatus is the envelope shared by both APIs.
type apiStatus struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// get calls endpoint and decodes the body into out, retrying transient failures.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}
	params.Set("key", c.apiKey)
	apiURL := c.baseURL + endpoint + "?" + params.Encode()

	var body []byte
	var lastErr error
	err := retry.Do(
		func() error {
			var permanent bool
			body, permanent, lastErr = c.attempt(ctx, apiURL)
			if lastErr != nil && permanent {
				return retry.Unrecoverable(lastErr)
			}
			return lastErr
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(30*time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying Google Maps request", "endpoint", endpoint, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		if lastErr != nil {
			return lastErr
		}
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// attempt performs a single request. permanent marks errors a retry cannot fix.
func (c *Client) attempt(ctx context.Context, apiURL string) (body []byte, permanent bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return nil, true, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Debug("failed to close response body", "error", err)
		}
	}()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, false, fmt.Errorf("server error: HTTP %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, true, fmt.Errorf("unexpected HTTP %d", resp.StatusCode)
	}

	var status apiStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, true, fmt.Errorf("failed to parse response: %w", err)
	}
	switch status.Status {
	case "OK":
		return body, false, nil
	case "ZERO_RESULTS":
		return nil, true, ErrNotFound
	case "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
		return nil, false, fmt.Errorf("transient API status %s", status.Status)
	default:
		if status.ErrorMessage != "" {
			return nil, true, fmt.Errorf("API status %s: %s", status.Status, status.ErrorMessage)
		}
		return nil, true, fmt.Errorf("API status %s", status.Status)
	}
}
