// Package testutil provides shared test helpers: a temporary cache database
// and a scriptable fake of the upstream API.
package testutil

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/starford/finboard/internal/apiclient"
	"github.com/starford/finboard/internal/localstore"
)

// TestStore creates a temporary SQLite cache that is automatically cleaned up.
func TestStore(t *testing.T) *localstore.DB {
	t.Helper()
	db, err := localstore.Open(filepath.Join(t.TempDir(), "finboard-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// QuietLogger discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Upstream is a fake upstream API. Routes are chi patterns; every request is
// counted by its URL path.
type Upstream struct {
	*httptest.Server

	mu     sync.Mutex
	router chi.Router
	hits   map[string]int
	last   map[string]*http.Request
}

// NewUpstream starts a fake upstream that is closed when the test ends.
// Unregistered routes answer 404 with a JSON detail.
func NewUpstream(t *testing.T) *Upstream {
	t.Helper()
	u := &Upstream{
		router: chi.NewRouter(),
		hits:   make(map[string]int),
		last:   make(map[string]*http.Request),
	}
	u.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusNotFound, map[string]string{"detail": "not found"})
	})
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.hits[r.URL.Path]++
		u.last[r.URL.Path] = r.Clone(r.Context())
		u.mu.Unlock()
		u.router.ServeHTTP(w, r)
	}))
	t.Cleanup(u.Close)
	return u
}

// Handle registers h for GET and POST on pattern.
func (u *Upstream) Handle(pattern string, h http.HandlerFunc) {
	u.router.Get(pattern, h)
	u.router.Post(pattern, h)
}

// JSON registers a fixed JSON reply on pattern.
func (u *Upstream) JSON(pattern string, status int, body any) {
	u.Handle(pattern, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, body)
	})
}

// Hits returns how many requests reached path.
func (u *Upstream) Hits(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[path]
}

// Last returns the most recent request to path, or nil. Its body has
// already been consumed.
func (u *Upstream) Last(path string) *http.Request {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.last[path]
}

// Client returns an API client pointed at the fake.
func (u *Upstream) Client() *apiclient.Client {
	return apiclient.New(u.URL, apiclient.WithLogger(QuietLogger()))
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
