// Package viewstate owns the fetch lifecycle of a single mounted view.
//
// A Loader runs at most one effective fetch at a time. Starting a new load
// cancels the previous one, and Close cancels whatever is in flight. A
// fetch result is applied only if it still belongs to the latest run and
// neither its context nor the view has been cancelled in the meantime, so
// a stale response can never overwrite newer state.
package viewstate

import (
	"context"
	"sync"
)

// Status is the display state of a view.
type Status string

const (
	StatusIdle            Status = "idle"
	StatusLoading         Status = "loading"
	StatusReady           Status = "ready"
	StatusError           Status = "error"
	StatusUnauthenticated Status = "unauthenticated"
	StatusUnavailable     Status = "unavailable"
)

// State is a snapshot of a view.
type State[T any] struct {
	Status  Status
	Data    T
	Message string
	// Unauthorized marks an upstream 401, a candidate for re-login.
	Unauthorized bool
}

// Failure describes how a fetch error should be displayed.
type Failure struct {
	Status       Status
	Message      string
	Unauthorized bool
}

// Fetch loads the data for one run. It must honour ctx.
type Fetch[T any] func(ctx context.Context) (T, error)

// Options customise how results are turned into state.
type Options[T any] struct {
	// Describe maps a fetch error to a display failure.
	// Defaults to StatusError with err.Error() as message.
	Describe func(error) Failure
	// Empty reports a successful but absent result; such results settle
	// as StatusUnavailable instead of StatusReady.
	Empty func(T) bool
}

// Loader is the state holder of one view instance.
type Loader[T any] struct {
	opts Options[T]

	mu     sync.Mutex
	state  State[T]
	gen    uint64
	cancel context.CancelFunc
	closed bool
}

func NewLoader[T any](opts Options[T]) *Loader[T] {
	if opts.Describe == nil {
		opts.Describe = func(err error) Failure {
			return Failure{Status: StatusError, Message: err.Error()}
		}
	}
	return &Loader[T]{
		opts:  opts,
		state: State[T]{Status: StatusIdle},
	}
}

// Load starts a new run, superseding any in-flight one. The returned
// channel is closed once this run has settled, whether its result was
// applied or discarded.
func (l *Loader[T]) Load(parent context.Context, fetch Fetch[T]) <-chan struct{} {
	done := make(chan struct{})

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		close(done)
		return done
	}
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	l.state.Status = StatusLoading
	l.state.Message = ""
	l.state.Unauthorized = false
	l.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		data, err := fetch(ctx)
		l.settle(ctx, gen, data, err)
	}()

	return done
}

// Run loads once and waits for the run to settle or ctx to end.
func (l *Loader[T]) Run(ctx context.Context, fetch Fetch[T]) State[T] {
	done := l.Load(ctx, fetch)
	select {
	case <-done:
	case <-ctx.Done():
	}
	return l.Snapshot()
}

// settle applies a result if its run is still the current, live one.
func (l *Loader[T]) settle(ctx context.Context, gen uint64, data T, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || gen != l.gen || ctx.Err() != nil {
		return false
	}

	if err != nil {
		f := l.opts.Describe(err)
		l.state.Status = f.Status
		l.state.Message = f.Message
		l.state.Unauthorized = f.Unauthorized
		// data keeps its previous value
		return true
	}

	l.state.Data = data
	l.state.Status = StatusReady
	if l.opts.Empty != nil && l.opts.Empty(data) {
		l.state.Status = StatusUnavailable
	}
	return true
}

// Snapshot returns the current state.
func (l *Loader[T]) Snapshot() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Close unmounts the view: the in-flight run is cancelled and no later
// result is applied.
func (l *Loader[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
