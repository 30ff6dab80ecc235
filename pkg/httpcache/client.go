package httpcache

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// HeaderFromCache is set on responses served from the cache.
const HeaderFromCache = "X-From-Cache"

// Client wraps an HTTPClient and serves repeated GETs from a Cache.
type Client struct {
	cache      *Cache
	httpClient HTTPClient
	logger     *slog.Logger

	// Cacheable decides whether a 200 response may be stored. Nil stores every 200.
	Cacheable func(body []byte) bool
}

// NewClient wraps httpClient. A nil cache disables caching.
func NewClient(cache *Cache, httpClient HTTPClient, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cache: cache, httpClient: httpClient, logger: logger}
}

// Do performs req, answering from the cache when possible.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.cache == nil || req.Method != http.MethodGet {
		return c.httpClient.Do(req)
	}

	key := Key(req.Method, req.URL)
	if body, found := c.cache.Get(key); found {
		c.logger.Debug("cache hit", "host", req.URL.Host, "path", req.URL.Path)
		resp := &http.Response{
			Status:        "200 OK",
			StatusCode:    http.StatusOK,
			Proto:         "HTTP/1.1",
			ProtoMajor:    1,
			ProtoMinor:    1,
			Body:          io.NopCloser(bytes.NewReader(body)),
			ContentLength: int64(len(body)),
			Header:        make(http.Header),
			Request:       req,
		}
		resp.Header.Set(HeaderFromCache, "true")
		return resp, nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	if closeErr := resp.Body.Close(); closeErr != nil {
		c.logger.Debug("failed to close response body", "error", closeErr)
	}
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if c.Cacheable == nil || c.Cacheable(body) {
		c.cache.Set(key, body)
		c.logger.Debug("cache set", "host", req.URL.Host, "path", req.URL.Path, "size", len(body))
	}
	return resp, nil
}
