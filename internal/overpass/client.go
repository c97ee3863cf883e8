// Package overpass is the HTTP adapter for the Overpass API. It owns request
// serialisation, pacing, status mapping and response decoding; retry and
// quota decisions belong to the enrichment worker.
package overpass

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
)

const (
	DefaultUserAgent = "wildside-backend-overpass-worker/0.1"
	DefaultContact   = "ops@wildside.invalid"

	defaultQueryTimeout = 180 * time.Second
	maxResponseBytes    = 64 << 20
	previewLimit        = 160
)

// Config describes the endpoint and outbound identity.
type Config struct {
	Endpoint          string        `koanf:"endpoint" validate:"required,url"`
	UserAgent         string        `koanf:"user_agent"`
	Contact           string        `koanf:"contact"`
	RequestTimeout    time.Duration `koanf:"request_timeout" validate:"min=0"`
	QueryTimeout      time.Duration `koanf:"query_timeout" validate:"min=0"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int           `koanf:"burst" validate:"gte=0"`
}

// Client implements ports.OverpassEnrichmentSource.
type Client struct {
	endpoint     string
	userAgent    string
	contact      string
	queryTimeout int
	http         *http.Client
	limiter      *rate.Limiter
	logger       zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. The client's own timeout applies.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New builds a client. A zero RequestsPerSecond disables pacing.
func New(cfg Config, opts ...Option) (*Client, error) {
	endpoint, err := url.Parse(cfg.Endpoint)
	if err != nil || endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, fmt.Errorf("overpass endpoint %q is not an absolute URL", cfg.Endpoint)
	}

	queryTimeout := cfg.QueryTimeout
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = queryTimeout + 10*time.Second
	}

	c := &Client{
		endpoint:     endpoint.String(),
		userAgent:    firstNonEmpty(cfg.UserAgent, DefaultUserAgent),
		contact:      firstNonEmpty(cfg.Contact, DefaultContact),
		queryTimeout: max(int(queryTimeout/time.Second), 1),
		http:         &http.Client{Timeout: requestTimeout},
		logger:       zerolog.Nop(),
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.Burst, 1))
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch posts the query and decodes the matching elements.
func (c *Client) Fetch(ctx context.Context, query ports.OverpassQuery) (ports.EnrichmentResult, error) {
	ql, err := BuildQuery(query, c.queryTimeout)
	if err != nil {
		return ports.EnrichmentResult{}, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return ports.EnrichmentResult{}, mapTransportError(ctx, err)
		}
	}

	form := url.Values{"data": {ql}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return ports.EnrichmentResult{}, ports.NewOverpassSourceError(ports.OverpassInvalidRequest, err.Error(), err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Contact", c.contact)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return ports.EnrichmentResult{}, mapTransportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return ports.EnrichmentResult{}, mapTransportError(ctx, err)
	}

	c.logger.Debug().
		Str("job_id", query.JobID.String()).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("overpass response received")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ports.EnrichmentResult{}, mapStatusError(resp.StatusCode, body)
	}

	pois, err := decodePOIs(body)
	if err != nil {
		return ports.EnrichmentResult{}, err
	}
	return ports.EnrichmentResult{POIs: pois, TransferBytes: uint64(len(body)), SourceURL: c.endpoint}, nil
}

func mapTransportError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return ports.NewOverpassSourceError(ports.OverpassTimeout, err.Error(), err)
	}
	return ports.NewOverpassSourceError(ports.OverpassTransport, err.Error(), err)
}

func mapStatusError(status int, body []byte) error {
	message := "status " + strconv.Itoa(status)
	if preview := bodyPreview(body); preview != "" {
		message += ": " + preview
	}

	switch {
	case status == http.StatusTooManyRequests:
		return ports.NewOverpassSourceError(ports.OverpassRateLimited, message, nil)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return ports.NewOverpassSourceError(ports.OverpassTimeout, message, nil)
	case status >= 400 && status < 500:
		return ports.NewOverpassSourceError(ports.OverpassInvalidRequest, message, nil)
	default:
		return ports.NewOverpassSourceError(ports.OverpassTransport, message, nil)
	}
}

// bodyPreview collapses whitespace and keeps the first previewLimit runes.
func bodyPreview(body []byte) string {
	compact := strings.Join(strings.Fields(strings.ToValidUTF8(string(body), "�")), " ")
	runes := []rune(compact)
	if len(runes) <= previewLimit {
		return compact
	}
	return string(runes[:previewLimit]) + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
