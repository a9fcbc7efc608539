package apiclient

import (
	"context"
	"net/http"
	"strings"
	"sync"
)

// Error routes the interceptor navigates to.
const (
	RouteUnauthorized = "/error-401"
	RouteServerError  = "/error-500"
)

// CSRF cookie and header names used on mutating requests.
const (
	CSRFCookie = "csrf_token"
	CSRFHeader = "X-CSRF-Token"
)

// Navigator exposes the current location of a view and performs full-page
// navigations away from it.
type Navigator interface {
	Location() string
	Navigate(route string)
}

// Browser is the end user on whose behalf upstream requests are made: its
// cookies, its current location and any navigation requested while serving
// it. A Browser is safe for concurrent use.
type Browser struct {
	mu          sync.Mutex
	location    string
	cookies     map[string]*http.Cookie
	order       []string
	target      string
	navigations int
	pending     []*http.Cookie
}

// NewBrowser returns a Browser currently at location and holding cookies.
func NewBrowser(location string, cookies []*http.Cookie) *Browser {
	b := &Browser{location: location, cookies: make(map[string]*http.Cookie, len(cookies))}
	for _, c := range cookies {
		b.put(c)
	}
	return b
}

func (b *Browser) put(c *http.Cookie) {
	if _, ok := b.cookies[c.Name]; !ok {
		b.order = append(b.order, c.Name)
	}
	b.cookies[c.Name] = c
}

// Location returns the current path. After a navigation it is the
// navigation target.
func (b *Browser) Location() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.target != "" {
		return b.target
	}
	return b.location
}

// Navigate records a full navigation to route. Only the first navigation
// is kept.
func (b *Browser) Navigate(route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.navigations++
	if b.target == "" {
		b.target = route
	}
}

// Redirect returns the recorded navigation target, if any.
func (b *Browser) Redirect() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.target, b.target != ""
}

// Navigations returns how many times Navigate was called.
func (b *Browser) Navigations() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.navigations
}

// Cookie returns the value of the named cookie.
func (b *Browser) Cookie(name string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cookies[name]
	if !ok {
		return "", false
	}
	return c.Value, true
}

// Cookies returns the cookies sent with credentialed requests.
func (b *Browser) Cookies() []*http.Cookie {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*http.Cookie, 0, len(b.order))
	for _, name := range b.order {
		c := b.cookies[name]
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// SetCookie stores c for subsequent requests and queues it to be written
// back to the end user. A cookie with MaxAge < 0 is removed.
func (b *Browser) SetCookie(c *http.Cookie) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c.MaxAge < 0 {
		delete(b.cookies, c.Name)
		for i, name := range b.order {
			if name == c.Name {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	} else {
		b.put(c)
	}
	b.pending = append(b.pending, c)
}

// PendingCookies returns cookies set since the Browser was created.
func (b *Browser) PendingCookies() []*http.Cookie {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*http.Cookie(nil), b.pending...)
}

type browserKey struct{}

// WithBrowser returns a copy of ctx carrying b.
func WithBrowser(ctx context.Context, b *Browser) context.Context {
	return context.WithValue(ctx, browserKey{}, b)
}

// BrowserFrom returns the Browser carried by ctx, or nil.
func BrowserFrom(ctx context.Context) *Browser {
	b, _ := ctx.Value(browserKey{}).(*Browser)
	return b
}

// onRoute reports whether location is already at (or under) route.
func onRoute(nav Navigator, route string) bool {
	return strings.HasPrefix(nav.Location(), route)
}

type nopNavigator struct{}

func (nopNavigator) Location() string { return "" }
func (nopNavigator) Navigate(string)  {}
