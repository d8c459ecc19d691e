package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/medusaxd/medusa-bot/internal/infra"
)

// ErrNoEndpoints indicates the client was configured without any upstream
// endpoint candidates.
var ErrNoEndpoints = errors.New("imagegen: at least one endpoint is required")

// Options configures the upstream image-generation client.
type Options struct {
	// Endpoints are candidate base URLs tried in order within each attempt.
	Endpoints []string
	// MaxAttempts bounds full retry cycles across the endpoint list.
	MaxAttempts int
	// BackoffCap caps the exponential backoff between attempt cycles.
	BackoffCap time.Duration
	// RateLimitDelay is the minimum pre-retry delay after an HTTP 429.
	RateLimitDelay time.Duration
	// OverallTimeout bounds one Generate call end to end, sleeps included.
	OverallTimeout time.Duration
	// PayloadTimeout is the timeout hint (seconds) sent in the payload.
	PayloadTimeout int
	// ClientTag is the fixed identifier sent in the payload "user" field.
	ClientTag      string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	Sleep          func(context.Context, time.Duration) error
}

// Client talks to the upstream image-generation HTTP API. It holds no
// mutable state of its own, so one instance serves concurrent calls.
type Client struct {
	endpoints      []string
	maxAttempts    int
	backoffCap     time.Duration
	rateLimitDelay time.Duration
	overallTimeout time.Duration
	payloadTimeout int
	clientTag      string
	httpClient     *http.Client
	logger         *infra.Logger
	sleep          func(context.Context, time.Duration) error

	seed   func() int64
	jitter func() time.Duration
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	if len(opts.Endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	backoffCap := opts.BackoffCap
	if backoffCap <= 0 {
		backoffCap = 12 * time.Second
	}
	rateLimitDelay := opts.RateLimitDelay
	if rateLimitDelay <= 0 {
		rateLimitDelay = 30 * time.Second
	}
	overallTimeout := opts.OverallTimeout
	if overallTimeout <= 0 {
		overallTimeout = 120 * time.Second
	}
	payloadTimeout := opts.PayloadTimeout
	if payloadTimeout <= 0 {
		payloadTimeout = 60
	}
	clientTag := strings.TrimSpace(opts.ClientTag)
	if clientTag == "" {
		clientTag = "medusaxd-bot"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return &Client{
		endpoints:      append([]string(nil), opts.Endpoints...),
		maxAttempts:    maxAttempts,
		backoffCap:     backoffCap,
		rateLimitDelay: rateLimitDelay,
		overallTimeout: overallTimeout,
		payloadTimeout: payloadTimeout,
		clientTag:      clientTag,
		httpClient:     httpClient,
		logger:         logger,
		sleep:          sleep,
		seed:           func() int64 { return 1 + rand.Int63n(1<<31-1) },
		jitter:         func() time.Duration { return time.Duration(rand.Int63n(int64(2 * time.Second))) },
	}, nil
}

type payload struct {
	Prompt         string `json:"prompt"`
	Model          string `json:"model"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
	User           string `json:"user"`
	Style          string `json:"style"`
	AspectRatio    string `json:"aspect_ratio"`
	Timeout        int    `json:"timeout"`
	ImageFormat    string `json:"image_format"`
	Seed           int64  `json:"seed"`
}

type apiResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// attemptError classifies one failed HTTP call. fatal short-circuits the
// retry loop, rateLimited raises the next pre-retry delay, malformed marks
// an unusable HTTP 200 payload so exhaustion surfaces ErrMalformedResponse.
type attemptError struct {
	err         error
	fatal       bool
	rateLimited bool
	malformed   bool
}

// Generate validates the request, then walks the endpoint candidates for up
// to MaxAttempts cycles with exponential backoff between cycles. Attempts
// are strictly sequential. The whole call, sleeps included, is bounded by
// OverallTimeout.
func (c *Client) Generate(ctx context.Context, req Request) (*Result, error) {
	req, err := c.normalize(req)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(c.payloadFor(req))
	if err != nil {
		return nil, fmt.Errorf("imagegen: encode payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.overallTimeout)
	defer cancel()

	c.logger.Info().
		Str("model", req.Model).
		Str("aspect_ratio", req.AspectRatio).
		Str("style", req.Style).
		Int("n", req.NumImages).
		Msg("imagegen: generating")

	var last *attemptError
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			if last != nil && last.rateLimited && delay < c.rateLimitDelay {
				delay = c.rateLimitDelay
			}
			c.logger.Info().Int("attempt", attempt+1).Dur("delay", delay).Msg("imagegen: backing off before retry")
			if err := c.sleep(ctx, delay); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
			}
		}
		for i, endpoint := range c.endpoints {
			res, aerr := c.call(ctx, endpoint, body, attempt)
			if aerr == nil {
				return res, nil
			}
			if aerr.fatal {
				return nil, aerr.err
			}
			c.logger.Warn().
				Err(aerr.err).
				Str("endpoint", endpoint).
				Int("attempt", attempt+1).
				Int("candidate", i+1).
				Msg("imagegen: call failed")
			last = aerr
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, ctx.Err())
			}
		}
	}

	if last != nil && last.malformed {
		return nil, last.err
	}
	var cause error
	if last != nil {
		cause = last.err
	}
	return nil, fmt.Errorf("%w: failed after %d attempts: %v", ErrUpstreamUnavailable, c.maxAttempts, cause)
}

// normalize applies the pre-flight validation rules. Unknown aspect ratios
// and styles fall back to defaults instead of failing.
func (c *Client) normalize(req Request) (Request, error) {
	if !KnownModel(req.Model) {
		return req, fmt.Errorf("%w: model %q is not supported", ErrValidation, req.Model)
	}
	if req.NumImages < 1 || req.NumImages > MaxImages {
		return req, fmt.Errorf("%w: number of images must be between 1 and %d", ErrValidation, MaxImages)
	}
	if !KnownAspectRatio(req.AspectRatio) {
		if req.AspectRatio != "" {
			c.logger.Warn().Str("aspect_ratio", req.AspectRatio).Msgf("imagegen: unknown aspect ratio, using %q", DefaultAspectRatio)
		}
		req.AspectRatio = DefaultAspectRatio
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if len(req.Prompt) < MinPromptLen {
		return req, fmt.Errorf("%w: prompt must be at least %d characters", ErrValidation, MinPromptLen)
	}
	if len(req.Prompt) > MaxPromptLen {
		req.Prompt = req.Prompt[:MaxPromptLen]
		c.logger.Warn().Msgf("imagegen: prompt truncated to %d characters", MaxPromptLen)
	}
	if !KnownStyle(req.Style) {
		req.Style = DefaultStyle
	}
	if req.Seed <= 0 {
		req.Seed = c.seed()
	}
	if req.Timeout <= 0 {
		req.Timeout = c.payloadTimeout
	}
	return req, nil
}

func (c *Client) payloadFor(req Request) payload {
	return payload{
		Prompt:         req.Prompt,
		Model:          req.Model,
		N:              req.NumImages,
		Size:           ratioSizes[req.AspectRatio],
		ResponseFormat: "url",
		User:           c.clientTag,
		Style:          req.Style,
		AspectRatio:    ratioTokens[req.AspectRatio],
		Timeout:        req.Timeout,
		ImageFormat:    "png",
		Seed:           req.Seed,
	}
}

func (c *Client) call(ctx context.Context, endpoint string, body []byte, attempt int) (*Result, *attemptError) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &attemptError{err: fmt.Errorf("%w: build request: %v", ErrValidation, err), fatal: true}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent(attempt))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &attemptError{err: fmt.Errorf("imagegen: http request: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &attemptError{err: fmt.Errorf("imagegen: read response: %w", err)}
	}

	// An HTML body means a service-level failure page, not a transient
	// network blip. Still retryable, but logged louder.
	if ct := strings.ToLower(resp.Header.Get("Content-Type")); strings.Contains(ct, "text/html") {
		c.logger.Error().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Msg("imagegen: upstream returned an html error page")
		return nil, &attemptError{err: fmt.Errorf("imagegen: upstream returned html instead of json (status %d)", resp.StatusCode)}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest:
		return nil, &attemptError{err: fmt.Errorf("%w: bad request: %s", ErrUpstreamRejected, upstreamMessage(raw)), fatal: true}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &attemptError{err: fmt.Errorf("%w: status %d: %s", ErrUpstreamRejected, resp.StatusCode, upstreamMessage(raw)), fatal: true}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &attemptError{err: fmt.Errorf("%w: endpoint not found", ErrUpstreamRejected), fatal: true}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &attemptError{err: errors.New("imagegen: rate limited (429)"), rateLimited: true}
	default:
		return nil, &attemptError{err: fmt.Errorf("imagegen: status %d: %s", resp.StatusCode, upstreamMessage(raw))}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &attemptError{err: errors.New("imagegen: empty response body")}
	}

	var decoded apiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &attemptError{err: fmt.Errorf("%w: decode: %v", ErrMalformedResponse, err), malformed: true}
	}
	return c.validateResponse(decoded)
}

// validateResponse checks the minimal shape: a non-empty data sequence with
// at least one entry carrying a non-empty url. Invalid entries are skipped,
// an entirely unusable payload is a failure despite the HTTP 200.
func (c *Client) validateResponse(decoded apiResponse) (*Result, *attemptError) {
	if len(decoded.Data) == 0 {
		return nil, &attemptError{err: fmt.Errorf("%w: missing or empty data field", ErrMalformedResponse), malformed: true}
	}
	images := make([]Image, 0, len(decoded.Data))
	for i, item := range decoded.Data {
		url := strings.TrimSpace(item.URL)
		if url == "" {
			c.logger.Warn().Int("index", i).Msg("imagegen: skipping response entry without url")
			continue
		}
		images = append(images, Image{URL: url})
	}
	if len(images) == 0 {
		return nil, &attemptError{err: fmt.Errorf("%w: no valid images in response", ErrMalformedResponse), malformed: true}
	}
	created := time.Now()
	if decoded.Created > 0 {
		created = time.Unix(decoded.Created, 0)
	}
	return &Result{CreatedAt: created, Images: images}, nil
}

// backoff computes the delay before retry cycle `attempt`:
// min(2^attempt + jitter[0,2s), cap).
func (c *Client) backoff(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt))*time.Second + c.jitter()
	if d > c.backoffCap {
		d = c.backoffCap
	}
	return d
}

// upstreamMessage extracts a human-readable message from an error body.
func upstreamMessage(raw []byte) string {
	var decoded struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &decoded); err == nil {
		if decoded.Error.Message != "" {
			return decoded.Error.Message
		}
		if decoded.Message != "" {
			return decoded.Message
		}
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200]
	}
	if s == "" {
		s = "no details"
	}
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
