package services

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesync/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Option configures a platform adapter.
type Option func(*options)

type options struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *log.Logger
}

// newOptions applies opts over the adapter defaults: its API root and one request per interval.
func newOptions(defaultBaseURL string, interval time.Duration, burst int, opts []Option) options {
	o := options{
		httpClient: http.DefaultClient,
		baseURL:    defaultBaseURL,
	}
	WithRateLimit(interval, burst)(&o)
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = shared.NewLogger(nil)
	}
	return o
}

// WithHTTPClient sets the base HTTP client. Its transport is wrapped with authentication and rate limiting.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithBaseURL overrides the API root, e.g. to point an adapter at a test server.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithRateLimit allows one request every interval with the given burst. A zero interval disables limiting.
func WithRateLimit(interval time.Duration, burst int) Option {
	return func(o *options) {
		if interval <= 0 {
			o.limiter = nil
			return
		}
		o.limiter = rate.NewLimiter(rate.Every(interval), burst)
	}
}

// WithLogger sets the adapter logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// transport returns the base round tripper wrapped with the rate limiter.
func (o options) transport() http.RoundTripper {
	base := o.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if o.limiter == nil {
		return base
	}
	return &limitedTransport{base: base, limiter: o.limiter}
}

// client returns an HTTP client authorizing requests with ts. A nil ts yields an unauthenticated client.
func (o options) client(ts oauth2.TokenSource) *http.Client {
	c := &http.Client{
		Transport:     o.transport(),
		CheckRedirect: o.httpClient.CheckRedirect,
		Jar:           o.httpClient.Jar,
		Timeout:       o.httpClient.Timeout,
	}
	if ts != nil {
		c.Transport = &oauth2.Transport{Source: ts, Base: c.Transport}
	}
	return c
}

// limitedTransport waits on a shared limiter before every request.
type limitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
