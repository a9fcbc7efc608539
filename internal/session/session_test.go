package session

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type fakeView struct {
	disposed atomic.Int32
}

func (v *fakeView) Dispose() { v.disposed.Add(1) }

func TestEnsureClient_IssuesOnce(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	id := EnsureClient(w, r)
	if id == "" {
		t.Fatal("expected client id")
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != ClientCookie || cookies[0].Value != id {
		t.Fatalf("cookies = %v", cookies)
	}

	w2 := httptest.NewRecorder()
	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(cookies[0])
	if got := EnsureClient(w2, r2); got != id {
		t.Errorf("id = %q, want %q", got, id)
	}
	if len(w2.Result().Cookies()) != 0 {
		t.Error("cookie re-issued for known client")
	}
}

func TestClientID_RejectsGarbage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: ClientCookie, Value: "not-a-uuid"})
	if _, ok := ClientID(r); ok {
		t.Error("accepted invalid client id")
	}
}

func TestRegistry_GetCreatesOnce(t *testing.T) {
	built := 0
	reg := NewRegistry(8, time.Minute, func(string) *fakeView {
		built++
		return &fakeView{}
	})
	defer reg.Close()

	a := reg.Get("c1")
	b := reg.Get("c1")
	if a != b || built != 1 {
		t.Fatalf("built = %d, same = %v", built, a == b)
	}
}

func TestRegistry_EvictionDisposes(t *testing.T) {
	reg := NewRegistry(1, time.Minute, func(string) *fakeView { return &fakeView{} })
	defer reg.Close()

	first := reg.Get("c1")
	reg.Get("c2")
	if first.disposed.Load() != 1 {
		t.Errorf("evicted view disposed %d times, want 1", first.disposed.Load())
	}
	if _, ok := reg.Peek("c1"); ok {
		t.Error("evicted view still present")
	}
	if _, ok := reg.Peek("c2"); !ok {
		t.Error("newest view missing")
	}
}

func TestRegistry_DropAndClose(t *testing.T) {
	reg := NewRegistry(8, time.Minute, func(string) *fakeView { return &fakeView{} })
	v1 := reg.Get("c1")
	v2 := reg.Get("c2")
	reg.Drop("c1")
	if v1.disposed.Load() != 1 {
		t.Error("dropped view not disposed")
	}
	if _, ok := reg.Peek("c1"); ok {
		t.Error("dropped view still present")
	}
	reg.Close()
	if v2.disposed.Load() != 1 {
		t.Error("Close did not dispose remaining view")
	}
}
