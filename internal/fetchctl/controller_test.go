package fetchctl

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu     sync.Mutex
	phases []Phase
}

func (r *recorder) observe(st State[string]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, st.Phase)
}

func (r *recorder) list() []Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Phase(nil), r.phases...)
}

func receive(t *testing.T, ch <-chan Result[string]) Result[string] {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for result")
		return Result[string]{}
	}
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
}

func TestTrigger_SuccessApplies(t *testing.T) {
	rec := &recorder{}
	c := New(WithOnChange(rec.observe), WithClock[string](fixedClock))
	defer c.Dispose()

	res := receive(t, c.Trigger(context.Background(), "exchange_rate-202503", func(context.Context) (string, error) {
		return "rates", nil
	}))
	if res.Outcome != OutcomeOk || res.Data != "rates" {
		t.Fatalf("result = %+v", res)
	}
	if !res.RetrievedAt.Equal(fixedClock()) {
		t.Errorf("retrievedAt = %v", res.RetrievedAt)
	}

	st := c.Snapshot()
	want := State[string]{Phase: PhaseApplied, Key: "exchange_rate-202503", Data: "rates", HasData: true, RetrievedAt: fixedClock()}
	if diff := cmp.Diff(want, st); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Phase{PhaseFetching, PhaseApplied}, rec.list()); diff != "" {
		t.Errorf("phases mismatch (-want +got):\n%s", diff)
	}
	if c.Pending() {
		t.Error("expected no pending request")
	}
}

func TestTrigger_ErrorSetsMessage(t *testing.T) {
	rec := &recorder{}
	c := New(WithOnChange(rec.observe))
	defer c.Dispose()

	res := receive(t, c.Trigger(context.Background(), "k", func(context.Context) (string, error) {
		return "", errors.New("HTTP 404: 데이터를 불러오는데 실패했습니다.")
	}))
	if res.Outcome != OutcomeError {
		t.Fatalf("outcome = %v, want error", res.Outcome)
	}
	st := c.Snapshot()
	if st.Phase != PhaseErrored || st.Loading || st.Err == "" || st.HasData {
		t.Errorf("state = %+v", st)
	}
	if diff := cmp.Diff([]Phase{PhaseFetching, PhaseErrored}, rec.list()); diff != "" {
		t.Errorf("phases mismatch (-want +got):\n%s", diff)
	}
}

func TestTrigger_ClearsStateImmediately(t *testing.T) {
	c := New[string]()
	defer c.Dispose()

	receive(t, c.Trigger(context.Background(), "a", func(context.Context) (string, error) {
		return "old", nil
	}))

	ch := c.Trigger(context.Background(), "b", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	st := c.Snapshot()
	if !st.Loading || st.HasData || st.Data != "" || st.Err != "" || st.Key != "b" {
		t.Errorf("state after trigger = %+v", st)
	}
	c.Dispose()
	if res := receive(t, ch); res.Outcome != OutcomeCancelled {
		t.Errorf("outcome = %v, want cancelled", res.Outcome)
	}
}

// The first request resolves after the second one even though it ignores
// its context; its payload must not be applied.
func TestTrigger_StaleResultNeverApplied(t *testing.T) {
	rec := &recorder{}
	c := New(WithOnChange(rec.observe))
	defer c.Dispose()

	release := make(chan struct{})
	first := c.Trigger(context.Background(), "interest_rate-202502", func(context.Context) (string, error) {
		<-release
		return "february", nil
	})
	second := c.Trigger(context.Background(), "interest_rate-202503", func(context.Context) (string, error) {
		return "march", nil
	})

	if res := receive(t, second); res.Outcome != OutcomeOk {
		t.Fatalf("second outcome = %v", res.Outcome)
	}
	close(release)
	if res := receive(t, first); res.Outcome != OutcomeCancelled {
		t.Fatalf("first outcome = %v, want cancelled", res.Outcome)
	}

	st := c.Snapshot()
	if st.Data != "march" || st.Key != "interest_rate-202503" {
		t.Errorf("state = %+v, want march", st)
	}
	if diff := cmp.Diff([]Phase{PhaseFetching, PhaseFetching, PhaseApplied}, rec.list()); diff != "" {
		t.Errorf("phases mismatch (-want +got):\n%s", diff)
	}
}

func TestTrigger_CancelledNeverErrors(t *testing.T) {
	rec := &recorder{}
	c := New(WithOnChange(rec.observe))
	defer c.Dispose()

	started := make(chan struct{})
	first := c.Trigger(context.Background(), "a", func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	})
	<-started
	second := c.Trigger(context.Background(), "b", func(context.Context) (string, error) {
		return "b-data", nil
	})

	if res := receive(t, first); res.Outcome != OutcomeCancelled {
		t.Fatalf("first outcome = %v, want cancelled", res.Outcome)
	}
	receive(t, second)

	for _, p := range rec.list() {
		if p == PhaseErrored {
			t.Fatalf("cancellation surfaced as error: %v", rec.list())
		}
	}
	if st := c.Snapshot(); st.Err != "" || st.Data != "b-data" {
		t.Errorf("state = %+v", st)
	}
}

func TestTrigger_ParentCancelStopsLoading(t *testing.T) {
	c := New[string]()
	defer c.Dispose()

	ctx, cancel := context.WithCancel(context.Background())
	ch := c.Trigger(ctx, "k", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	cancel()
	if res := receive(t, ch); res.Outcome != OutcomeCancelled {
		t.Fatalf("outcome = %v, want cancelled", res.Outcome)
	}
	st := c.Snapshot()
	if st.Phase != PhaseCancelled || st.Loading || st.Err != "" {
		t.Errorf("state = %+v", st)
	}
}

func TestDispose_CancelsAndRejectsLaterTriggers(t *testing.T) {
	c := New[string]()

	ch := c.Trigger(context.Background(), "k", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	c.Dispose()
	if res := receive(t, ch); res.Outcome != OutcomeCancelled {
		t.Fatalf("outcome = %v, want cancelled", res.Outcome)
	}
	if c.Pending() {
		t.Error("expected no pending request after dispose")
	}

	called := false
	res := receive(t, c.Trigger(context.Background(), "k2", func(context.Context) (string, error) {
		called = true
		return "x", nil
	}))
	if res.Outcome != OutcomeCancelled || called {
		t.Errorf("trigger after dispose: outcome=%v called=%v", res.Outcome, called)
	}
}
