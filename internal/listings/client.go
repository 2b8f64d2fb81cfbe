package listings

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/card-cli/internal/model"
	"github.com/sells-group/card-cli/internal/resilience"
	"github.com/sells-group/card-cli/internal/valuation"
)

const serviceName = "listings"

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAPIKey sends the key as a bearer token.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithRateLimit caps requests per second. Zero or negative disables the limiter.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithGuard replaces the retry and circuit breaker policy.
func WithGuard(g *resilience.Guard) Option {
	return func(c *Client) { c.guard = g }
}

// Client talks to a marketplace listings API over JSON.
//
//	POST {base}/v1/comps     ListingQuery -> {"comps": [Comp]}
//	POST {base}/v1/for-sale  ListingQuery -> ForSaleSummary
//	GET  {base}/v1/listings?q=...         -> {"listings": [Listing]}
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	guard   *resilience.Guard
}

// NewClient creates a listings client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 20 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		guard: resilience.NewGuard(serviceName,
			resilience.DefaultRetryConfig(),
			resilience.DefaultCircuitBreakerConfig()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type compsResponse struct {
	Comps []model.Comp `json:"comps"`
}

type listingsResponse struct {
	Listings []model.Listing `json:"listings"`
}

// FetchComps returns completed sales for the query.
func (c *Client) FetchComps(ctx context.Context, q model.ListingQuery) ([]model.Comp, error) {
	var resp compsResponse
	if err := c.call(ctx, http.MethodPost, "/v1/comps", q, &resp); err != nil {
		return nil, eris.Wrapf(err, "listings: fetch comps %q", QueryText(q))
	}
	return resp.Comps, nil
}

// FetchForSale summarizes active listings for the query.
func (c *Client) FetchForSale(ctx context.Context, q model.ListingQuery) (*model.ForSaleSummary, error) {
	var resp model.ForSaleSummary
	if err := c.call(ctx, http.MethodPost, "/v1/for-sale", q, &resp); err != nil {
		return nil, eris.Wrapf(err, "listings: fetch for-sale %q", QueryText(q))
	}
	return &resp, nil
}

// Search returns raw listings for free text.
func (c *Client) Search(ctx context.Context, query string) ([]model.Listing, error) {
	var resp listingsResponse
	path := "/v1/listings?q=" + url.QueryEscape(query)
	if err := c.call(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, eris.Wrapf(err, "listings: search %q", query)
	}
	return resp.Listings, nil
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return eris.Wrap(err, "marshal request")
		}
		payload = b
	}

	body, err := resilience.Call(ctx, c.guard, func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, method, path, payload)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "decode response")
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limit wait")
		}
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "read body"), 0)
	}

	zap.L().Debug("listings: response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resilience.StatusError(serviceName, resp.StatusCode, string(body))
	}
	return body, nil
}

var (
	_ valuation.CompSource    = (*Client)(nil)
	_ valuation.ForSaleSource = (*Client)(nil)
)
