// Package request is the outbound HTTP layer shared by all provider
// adapters. Calls to the same vendor are serialized through a per-provider
// queue with pacing and adaptive backoff; responses can be cached through the
// two-tier cache. Vendor errors come back as *gen.APIError so callers can
// classify them without parsing response bodies.
package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/cache"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/config"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/gen"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/tracker"
	"github.com/liveanandveo2-ux/ai-story-maker-sub000/pkg/version"
)

var defaultUserAgent = fmt.Sprintf("storymaker/%s", version.Version)

// errorBodyLimit caps how much of a failed response body lands in the error
// message.
const errorBodyLimit = 300

// Client handles HTTP requests with queuing, pacing, caching, and tracking.
type Client struct {
	httpClient *http.Client
	cache      cache.Cacher
	tracker    *tracker.Tracker
	backoff    *ProviderBackoff
	retries    int
	retryBase  time.Duration
	pace       time.Duration

	// Queues per provider
	queues map[string]chan job
	mu     sync.Mutex // Protects queues map
}

// job represents a queued request.
type job struct {
	req      *http.Request
	headers  map[string]string
	cacheKey string
	respChan chan jobResult
}

type jobResult struct {
	body []byte
	err  error
}

// New creates a new Client.
func New(c cache.Cacher, t *tracker.Tracker, cfg config.RequestConfig) *Client {
	retries := cfg.Retries
	if retries <= 0 {
		retries = 3
	}
	timeout := time.Duration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	pace := time.Duration(cfg.Pace)
	if pace <= 0 {
		pace = 100 * time.Millisecond
	}
	retryBase := time.Duration(cfg.Backoff.BaseDelay)
	if retryBase <= 0 {
		retryBase = 500 * time.Millisecond
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cache:      c,
		tracker:    t,
		backoff:    NewProviderBackoff(time.Duration(cfg.Backoff.BaseDelay), time.Duration(cfg.Backoff.MaxDelay)),
		retries:    retries,
		retryBase:  retryBase,
		pace:       pace,
		queues:     make(map[string]chan job),
	}
}

// Get performs a GET request with queuing and caching if key is provided.
func (c *Client) Get(ctx context.Context, u, cacheKey string) ([]byte, error) {
	return c.GetWithHeaders(ctx, u, nil, cacheKey)
}

// GetWithHeaders performs a GET request with custom headers and optional caching.
func (c *Client) GetWithHeaders(ctx context.Context, u string, headers map[string]string, cacheKey string) ([]byte, error) {
	provider, err := providerFor(u)
	if err != nil {
		return nil, err
	}

	if body, hit := c.checkCache(ctx, provider, cacheKey); hit {
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.enqueue(ctx, provider, job{req: req, headers: headers, cacheKey: cacheKey})
}

// Post performs a POST request with queuing.
func (c *Client) Post(ctx context.Context, u string, body []byte, contentType string) ([]byte, error) {
	return c.PostWithHeaders(ctx, u, body, map[string]string{"Content-Type": contentType})
}

// PostWithHeaders performs a POST request with custom headers and queuing.
func (c *Client) PostWithHeaders(ctx context.Context, u string, body []byte, headers map[string]string) ([]byte, error) {
	return c.PostWithCache(ctx, u, body, headers, "")
}

// PostWithCache performs a POST request with queuing and caching.
func (c *Client) PostWithCache(ctx context.Context, u string, body []byte, headers map[string]string, cacheKey string) ([]byte, error) {
	provider, err := providerFor(u)
	if err != nil {
		return nil, err
	}

	if val, hit := c.checkCache(ctx, provider, cacheKey); hit {
		return val, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.enqueue(ctx, provider, job{req: req, headers: headers, cacheKey: cacheKey})
}

func providerFor(u string) (string, error) {
	parsed, err := url.Parse(u)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	return normalizeProvider(parsed.Host), nil
}

func (c *Client) checkCache(ctx context.Context, provider, cacheKey string) ([]byte, bool) {
	if cacheKey == "" || c.cache == nil {
		return nil, false
	}
	if val, hit := c.cache.GetCache(ctx, cacheKey); hit {
		c.tracker.TrackCacheHit(provider)
		slog.Debug("Cache Hit", "provider", provider, "key", cacheKey)
		return val, true
	}
	c.tracker.TrackCacheMiss(provider)
	slog.Debug("Cache Miss", "provider", provider, "key", cacheKey)
	return nil, false
}

func (c *Client) enqueue(ctx context.Context, provider string, j job) ([]byte, error) {
	j.respChan = make(chan jobResult, 1)
	c.dispatch(provider, j)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-j.respChan:
		return res.body, res.err
	}
}

// normalizeProvider groups vendor API hosts under the provider names the
// registry and tracker use.
func normalizeProvider(host string) string {
	switch {
	case strings.HasSuffix(host, "openai.com"):
		return "openai"
	case strings.HasSuffix(host, "huggingface.co"), strings.HasSuffix(host, "hf.space"):
		return "huggingface"
	case strings.HasSuffix(host, "googleapis.com"):
		return "googleai"
	case strings.HasSuffix(host, "stability.ai"):
		return "stability"
	case strings.HasSuffix(host, "elevenlabs.io"):
		return "elevenlabs"
	}
	return host
}

// dispatch sends the job to the provider's queue, creating the queue/worker if needed.
func (c *Client) dispatch(provider string, j job) {
	c.mu.Lock()
	defer c.mu.Unlock()

	q, ok := c.queues[provider]
	if !ok {
		q = make(chan job, 100)
		c.queues[provider] = q
		go c.worker(provider, q)
	}

	// We block here if the queue is full, effectively throttling the caller
	select {
	case q <- j:
	case <-j.req.Context().Done():
		// Caller gave up before we could even enqueue
		j.respChan <- jobResult{err: j.req.Context().Err()}
	}
}

// worker processes requests for a specific provider sequentially. A rate
// limiter enforces the configured pace between calls; the adaptive backoff
// pushes the next call further out after repeated failures.
func (c *Client) worker(provider string, q <-chan job) {
	limiter := rate.NewLimiter(rate.Every(c.pace), 1)

	for j := range q {
		// Check context before processing
		if j.req.Context().Err() != nil {
			slog.Warn("Job dropped from queue (context expired)", "provider", provider, "error", j.req.Context().Err())
			j.respChan <- jobResult{err: j.req.Context().Err()}
			continue
		}

		c.backoff.Wait(provider)
		if err := limiter.Wait(j.req.Context()); err != nil {
			j.respChan <- jobResult{err: err}
			continue
		}

		// Apply User-Agent (Default if not provided)
		uaMatch := false
		for k, v := range j.headers {
			j.req.Header.Set(k, v)
			if http.CanonicalHeaderKey(k) == "User-Agent" {
				uaMatch = true
			}
		}
		if !uaMatch {
			j.req.Header.Set("User-Agent", defaultUserAgent)
		}

		body, err := c.executeWithBackoff(provider, j.req)

		if err == nil {
			c.backoff.RecordSuccess(provider)
			// Cache result (Only if key is provided)
			if j.cacheKey != "" && c.cache != nil {
				if err := c.cache.SetCache(context.Background(), j.cacheKey, body); err != nil {
					slog.Error("Failed to cache response", "url", j.req.URL, "error", err)
				}
			}
		} else {
			c.backoff.RecordFailure(provider)
		}

		j.respChan <- jobResult{body: body, err: err}
	}
}

// executeWithBackoff attempts the request with exponential backoff on
// retryable statuses (429 and 5xx). Other HTTP failures surface immediately
// as *gen.APIError.
func (c *Client) executeWithBackoff(provider string, req *http.Request) ([]byte, error) {
	baseDelay := c.retryBase
	lastStatus := 0
	lastMessage := ""

	for attempt := 0; attempt < c.retries; attempt++ {
		// Verify context is still alive before dialing
		if req.Context().Err() != nil {
			return nil, req.Context().Err()
		}

		// Rewind the body for retries
		if attempt > 0 && req.GetBody != nil {
			rc, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("failed to rewind request body: %w", err)
			}
			req.Body = rc
		}

		slog.Debug("Network Request", "host", req.URL.Host, "path", req.URL.Path, "attempt", attempt+1)
		resp, err := c.httpClient.Do(req)

		if err != nil {
			// Check if the error is a context cancellation from OUR side
			if req.Context().Err() != nil {
				return nil, req.Context().Err()
			}

			slog.Warn("Request failed, retrying", "url", req.URL, "attempt", attempt+1, "error", err)
			lastStatus = 0
			lastMessage = err.Error()
			if !sleepBackoff(req.Context(), attempt, baseDelay) {
				return nil, req.Context().Err()
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			snippet := readSnippet(resp.Body)
			resp.Body.Close()
			slog.Warn("API Backoff", "provider", provider, "status", resp.StatusCode, "attempt", attempt+1)

			lastStatus = resp.StatusCode
			lastMessage = snippet
			if !sleepBackoff(req.Context(), attempt, baseDelay) {
				return nil, req.Context().Err()
			}
			continue
		}

		if resp.StatusCode >= 400 {
			snippet := readSnippet(resp.Body)
			resp.Body.Close()
			return nil, &gen.APIError{Provider: provider, StatusCode: resp.StatusCode, Message: snippet}
		}

		// Success
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		return body, nil
	}

	if lastStatus != 0 {
		return nil, &gen.APIError{Provider: provider, StatusCode: lastStatus, Message: lastMessage}
	}
	return nil, &gen.APIError{Provider: provider, Message: "max retries exceeded: " + lastMessage}
}

// sleepBackoff sleeps 2^attempt * base, or returns false if the context
// expired first.
func sleepBackoff(ctx context.Context, attempt int, base time.Duration) bool {
	select {
	case <-time.After(base << uint(attempt)):
		return true
	case <-ctx.Done():
		return false
	}
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, errorBodyLimit))
	return strings.TrimSpace(string(b))
}
