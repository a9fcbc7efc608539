// Package session identifies browsers and keeps their long-lived views.
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ClientCookie holds the browser's client id.
const ClientCookie = "fb_client"

// clientMaxAge is one year.
const clientMaxAge = 365 * 24 * 60 * 60

// ClientID returns the client id carried by r, if it is a valid uuid.
func ClientID(r *http.Request) (string, bool) {
	c, err := r.Cookie(ClientCookie)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// EnsureClient returns the client id of r, issuing a new one (and setting
// its cookie on w) when r has none.
func EnsureClient(w http.ResponseWriter, r *http.Request) string {
	if id, ok := ClientID(r); ok {
		return id
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     ClientCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   clientMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// Disposer is a view that owns background work.
type Disposer interface {
	Dispose()
}

// Registry maps client ids to views. Views idle for longer than the TTL, or
// pushed out when more than size clients are active, are disposed.
type Registry[V Disposer] struct {
	mu    sync.Mutex
	views *expirable.LRU[string, V]
	build func(client string) V
}

// NewRegistry creates a Registry that builds missing views with build.
func NewRegistry[V Disposer](size int, ttl time.Duration, build func(client string) V) *Registry[V] {
	return &Registry[V]{
		views: expirable.NewLRU[string, V](size, func(_ string, v V) { v.Dispose() }, ttl),
		build: build,
	}
}

// Get returns the client's view, creating it on first use.
func (r *Registry[V]) Get(client string) V {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.views.Get(client); ok {
		return v
	}
	v := r.build(client)
	r.views.Add(client, v)
	return v
}

// Peek returns the client's view without creating one or refreshing it.
func (r *Registry[V]) Peek(client string) (V, bool) {
	return r.views.Peek(client)
}

// Drop disposes the client's view.
func (r *Registry[V]) Drop(client string) {
	r.views.Remove(client)
}

// Close disposes every view.
func (r *Registry[V]) Close() {
	r.views.Purge()
}
