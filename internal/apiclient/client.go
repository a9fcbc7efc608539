// Package apiclient wraps outbound requests to the upstream API with a
// uniform error-routing policy: HTTP 401, HTTP 500 and network failures send
// the browser to a fixed error route, everything else is left to the caller.
package apiclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/starford/finboard/internal/apperr"
)

// Credentials controls whether browser cookies travel with a request.
type Credentials int

const (
	// CredentialsOmit sends no browser cookies.
	CredentialsOmit Credentials = iota
	// CredentialsInclude forwards browser cookies and relays Set-Cookie back.
	CredentialsInclude
)

// Options configures a single Fetch. Cancellation is carried by the context.
type Options struct {
	Method            string
	Header            http.Header
	Body              io.Reader
	Credentials       Credentials
	SkipErrorHandling bool
}

// Client performs upstream requests against a base URL.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	nav     Navigator
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithNavigator sets the navigator used when the context carries no Browser.
func WithNavigator(n Navigator) ClientOption {
	return func(c *Client) { c.nav = n }
}

// New creates a Client for baseURL.
func New(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
		nav:     nopNavigator{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint joins the base URL and path.
func (c *Client) Endpoint(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Fetch issues the request and applies the error-routing policy.
//
// On a 2xx status, or when SkipErrorHandling is set, the response is returned
// as is. On 401 and 500 the browser is sent to the matching error route
// (unless already there) and the call fails with apperr.ErrUnauthorized or
// apperr.ErrServerError; the response body is discarded. Other statuses are
// returned for the caller to inspect. A caller-cancelled context is returned
// unchanged and never treated as a network failure.
func (c *Client) Fetch(ctx context.Context, rawURL string, opts Options) (*http.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, opts.Body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	b := BrowserFrom(ctx)
	if opts.Credentials == CredentialsInclude && b != nil {
		for _, ck := range b.Cookies() {
			req.AddCookie(ck)
		}
		if mutating(method) && req.Header.Get(CSRFHeader) == "" {
			if tok, ok := b.Cookie(CSRFCookie); ok {
				req.Header.Set(CSRFHeader, tok)
			}
		}
	}
	nav := c.navigator(b)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, nav, req, opts, err)
	}
	c.logger.Debug("upstream request",
		slog.String("method", method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if opts.Credentials == CredentialsInclude && b != nil {
		for _, ck := range resp.Cookies() {
			b.SetCookie(ck)
		}
	}

	if opts.SkipErrorHandling || success(resp.StatusCode) {
		return resp, nil
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		discard(resp)
		c.redirect(nav, RouteUnauthorized, req)
		return nil, fmt.Errorf("%w: %s %s", apperr.ErrUnauthorized, method, req.URL.Path)
	case http.StatusInternalServerError:
		discard(resp)
		c.redirect(nav, RouteServerError, req)
		return nil, fmt.Errorf("%w: %s %s", apperr.ErrServerError, method, req.URL.Path)
	}
	return resp, nil
}

func (c *Client) transportError(ctx context.Context, nav Navigator, req *http.Request, opts Options, err error) error {
	if ctx.Err() != nil {
		return err
	}
	if opts.SkipErrorHandling || !isNetworkError(err) || onRoute(nav, RouteServerError) {
		return err
	}
	c.logger.Error("upstream unreachable",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.String("error", err.Error()))
	nav.Navigate(RouteServerError)
	return fmt.Errorf("%w: %v", apperr.ErrNetwork, err)
}

func (c *Client) redirect(nav Navigator, route string, req *http.Request) {
	if onRoute(nav, route) {
		return
	}
	c.logger.Warn("redirecting to error route",
		slog.String("route", route),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path))
	nav.Navigate(route)
}

func (c *Client) navigator(b *Browser) Navigator {
	if b != nil {
		return b
	}
	return c.nav
}

func success(status int) bool {
	return status >= 200 && status < 300
}

func mutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
