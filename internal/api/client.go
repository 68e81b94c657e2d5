package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"turfbook/internal/config"
	"turfbook/internal/domain"
	"turfbook/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// Client talks to the turf booking backend over REST.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    domain.SessionReader
	limiter    *rateLimiter
	logger     *zerolog.Logger

	cache    domain.Cache
	cacheTTL time.Duration
}

// NewClient constructs a client from the api config section. session may be nil
// until somebody logs in.
func NewClient(cfg *config.APIConfig, session domain.SessionReader, logger *zerolog.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		session:    session,
		limiter:    newRateLimiter(cfg.RateLimit),
		logger:     logger,
	}
}

// UseCache configures optional caching for GET /turfs and GET /turfs/{id}.
func (c *Client) UseCache(cache domain.Cache, ttl time.Duration) {
	c.cache = cache
	c.cacheTTL = ttl
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.cache == nil || c.cacheTTL <= 0 {
		return false
	}
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil || !ok {
		metrics.IncCache(false)
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		metrics.IncCache(false)
		return false
	}
	metrics.IncCache(true)
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil && c.logger != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (c *Client) dropCache(ctx context.Context, keys ...string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, keys...); err != nil && c.logger != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}

func (c *Client) doGet(ctx context.Context, route, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, route, path, nil, out)
}

func (c *Client) doPost(ctx context.Context, route, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, route, path, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, route, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", route, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, method+" "+route, out)
}

func (c *Client) do(req *http.Request, endpoint string, out any) error {
	if err := c.limiter.wait(req.Context(), endpoint); err != nil {
		return err
	}
	c.addHeaders(req)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncAPI(endpoint, 0)
		c.logCall(req, endpoint, 0, started, err)
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	metrics.IncAPI(endpoint, resp.StatusCode)
	c.logCall(req, endpoint, resp.StatusCode, started, nil)

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) addHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if c.session == nil {
		return
	}
	if s := c.session.Current(); s != nil && s.Token != "" {
		req.Header.Set("Authorization", s.AuthHeader())
	}
}

func (c *Client) logCall(req *http.Request, endpoint string, status int, started time.Time, err error) {
	if c.logger == nil {
		return
	}
	ev := c.logger.Debug()
	if err != nil || status >= 500 {
		ev = c.logger.Warn().Err(err)
	}
	ev.Str("endpoint", endpoint).
		Str("request_id", req.Header.Get(requestIDHeader)).
		Int("status", status).
		Dur("duration", time.Since(started)).
		Msg("api call")
}
