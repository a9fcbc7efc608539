package fetchctl

import (
	"context"
	"errors"
	"sync"
	"time"
)

// FetchFunc performs one request. It must honour ctx cancellation.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Controller owns the current-request slot for one view.
type Controller[T any] struct {
	mu       sync.Mutex
	cancel   context.CancelFunc
	gen      uint64
	state    State[T]
	disposed bool
	onChange func(State[T])
	now      func() time.Time
	wg       sync.WaitGroup
}

// Option configures a Controller.
type Option[T any] func(*Controller[T])

// WithOnChange registers fn to observe every state change, in order. fn is
// called with the controller's lock held and must not call back into it.
func WithOnChange[T any](fn func(State[T])) Option[T] {
	return func(c *Controller[T]) { c.onChange = fn }
}

// WithClock overrides the time source used for RetrievedAt.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *Controller[T]) { c.now = now }
}

// New returns an idle Controller.
func New[T any](opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Trigger cancels the outstanding request, clears displayed data and error,
// and starts fetch under a fresh cancellable context. The returned channel
// receives exactly one Result and is then closed.
//
// A success is applied only while the request is still current and its
// context is live. A failure caused by cancellation is reported as
// OutcomeCancelled and changes nothing.
func (c *Controller[T]) Trigger(parent context.Context, key string, fetch FetchFunc[T]) <-chan Result[T] {
	out := make(chan Result[T], 1)

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		out <- Result[T]{Outcome: OutcomeCancelled}
		close(out)
		return out
	}
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	c.gen++
	gen := c.gen
	var zero T
	c.set(State[T]{Phase: PhaseFetching, Key: key, Loading: true, Data: zero})
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer close(out)
		data, err := fetch(ctx)
		out <- c.settle(ctx, gen, key, data, err)
	}()
	return out
}

func (c *Controller[T]) settle(ctx context.Context, gen uint64, key string, data T, err error) Result[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := gen == c.gen && !c.disposed
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		// Superseded or disposed requests never touch state. A current one
		// can only get here through its parent context, so it just stops
		// loading.
		if current {
			c.releaseLocked()
			st := c.state
			st.Phase = PhaseCancelled
			st.Loading = false
			c.set(st)
		}
		return Result[T]{Outcome: OutcomeCancelled}
	}
	if !current {
		return Result[T]{Outcome: OutcomeCancelled}
	}

	c.releaseLocked()
	if err != nil {
		c.set(State[T]{Phase: PhaseErrored, Key: key, Err: err.Error()})
		return Result[T]{Outcome: OutcomeError, Message: err.Error()}
	}
	at := c.now()
	c.set(State[T]{Phase: PhaseApplied, Key: key, Data: data, HasData: true, RetrievedAt: at})
	return Result[T]{Outcome: OutcomeOk, Data: data, RetrievedAt: at}
}

// releaseLocked frees the context of the settled current request.
func (c *Controller[T]) releaseLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller[T]) set(st State[T]) {
	c.state = st
	if c.onChange != nil {
		c.onChange(st)
	}
}

// Snapshot returns the current state.
func (c *Controller[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending reports whether a request is in flight.
func (c *Controller[T]) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// Dispose cancels the outstanding request and waits for every fetch
// goroutine to finish. Later triggers return OutcomeCancelled immediately.
func (c *Controller[T]) Dispose() {
	c.mu.Lock()
	c.disposed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}
