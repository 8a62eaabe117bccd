package client

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/flowgrid/flowgrid-go/pkg/backoff"
	"github.com/flowgrid/flowgrid-go/pkg/cache"
	"github.com/flowgrid/flowgrid-go/pkg/credstore"
)

// cachedResponse is what the GET cache retains per method:url:body key.
type cachedResponse struct {
	status      int
	contentType string
	body        []byte
}

// Client is the FlowGrid API HTTP client. Construct with New; the zero value
// is not usable.
type Client struct {
	cfg      Config
	http     *http.Client
	creds    *credstore.Credentials
	cache    *cache.TTLCache[string, cachedResponse]
	strategy backoff.Strategy
	log      *slog.Logger

	reqInterceptors  []RequestInterceptor
	respInterceptors []ResponseInterceptor
}

// Option configures a Client during construction.
type Option func(*Client)

// WithHTTPClient substitutes the transport. Useful for proxies and tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithBackoff replaces the retry delay strategy. Defaults to linear backoff
// based on the configured retry delay.
func WithBackoff(s backoff.Strategy) Option {
	return func(c *Client) {
		if s != nil {
			c.strategy = s
		}
	}
}

// WithCredentials attaches a credential store and registers the standard
// auth interceptors: bearer token injection on requests and central 401
// cleanup on responses.
func WithCredentials(creds *credstore.Credentials) Option {
	return WithCredentialsHook(creds, nil)
}

// WithCredentialsHook is WithCredentials plus a hook invoked after a 401
// cleared the stored credentials, the SDK equivalent of the browser
// redirecting to the login page.
func WithCredentialsHook(creds *credstore.Credentials, onUnauthorized func(ctx context.Context)) Option {
	return func(c *Client) {
		if creds == nil {
			return
		}
		c.creds = creds
		c.reqInterceptors = append(c.reqInterceptors, BearerAuthInterceptor(creds))
		c.respInterceptors = append(c.respInterceptors, UnauthorizedInterceptor(creds, onUnauthorized))
	}
}

// WithRequestInterceptor appends a request interceptor. Interceptors run in
// registration order.
func WithRequestInterceptor(ic RequestInterceptor) Option {
	return func(c *Client) {
		c.reqInterceptors = append(c.reqInterceptors, ic)
	}
}

// WithResponseInterceptor appends a response interceptor. Interceptors run
// in registration order.
func WithResponseInterceptor(ic ResponseInterceptor) Option {
	return func(c *Client) {
		c.respInterceptors = append(c.respInterceptors, ic)
	}
}

// New creates a configured Client. The request ID interceptor is always
// registered first so every later interceptor and the server see the ID.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg: cfg,
		// Timeouts are applied per request via context, not on the
		// transport, so per-call overrides work.
		http:     &http.Client{},
		cache:    cache.New[string, cachedResponse](cfg.CacheMaxSize, cfg.CacheTTL),
		strategy: backoff.Linear{Interval: cfg.RetryDelay, MaxInterval: 30 * time.Second},
		log:      slog.Default(),
		reqInterceptors: []RequestInterceptor{
			RequestIDInterceptor(),
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Config returns the client's configuration.
func (c *Client) Config() Config { return c.cfg }

// Credentials returns the attached credential store, or nil.
func (c *Client) Credentials() *credstore.Credentials { return c.creds }

// InvalidateCache drops all cached GET responses.
func (c *Client) InvalidateCache() { c.cache.Clear() }
