package async

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned by AwaitWithTimeout when the deadline passes before
// the background function completes.
var ErrTimeout = errors.New("async: await timed out")

// Future represents the pending result of a background computation.
type Future[T any] struct {
	result T
	err    error
	done   chan struct{}
}

// Run executes fn in a new goroutine and returns a Future for its result.
// A pre-cancelled context short-circuits without invoking fn.
func Run[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		f.result, f.err = fn(ctx)
	}()

	return f
}

// Await blocks until the computation completes and returns its result.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout blocks until completion or the timeout, whichever comes
// first. On timeout the background goroutine keeps running; only the wait is
// abandoned.
func (f *Future[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		var zero T
		return zero, ErrTimeout
	}
}

// Done returns a channel closed when the computation completes. Useful for
// select loops and tests.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}
