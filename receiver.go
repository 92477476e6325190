package mpsc

import (
	"context"
	"iter"

	"github.com/creachadair/mpsc/trigger"
)

// A Receiver is the single consuming handle of a channel. Its methods must
// not be called concurrently with each other.
//
// A receiver is always in one of three states: idle, parked waiting for a
// sender to wake it, or closed. The end of the stream is reported once all
// senders are closed and every value sent has been delivered.
//
// The receiver should be released by calling [Receiver.Close], which
// disconnects the senders and discards any undelivered values.
type Receiver[T any] struct {
	c    *shared[T]
	wait *trigger.Cond // wake token, set only while Poll reports Pending
	done bool          // End has been reported, or Close was called
}

// closedCh is returned by Wait when the receiver is not parked.
var closedCh = func() chan struct{} { ch := make(chan struct{}); close(ch); return ch }()

// Poll reports the next value from the queue without blocking.
//
// If a value is available, Poll removes it and returns it with [Ready]. If
// the queue is empty and all senders are closed, Poll returns [End]; after
// that every call returns End. Otherwise, Poll parks the receiver and returns
// [Pending]. The channel returned by [Receiver.Wait] is then closed by the
// next Send or by the close of the last sender, after which the caller should
// Poll again.
func (r *Receiver[T]) Poll() (T, Status) {
	var zero T
	if r.done {
		return zero, End
	}
	r.wait = nil
	if v, ok := r.c.store.Pop(); ok {
		return v, Ready
	}
	if r.c.senders.Load() == 0 {
		return r.finish()
	}

	// Park, publishing a wake token before looking at the queue again.  A
	// sender that pushes after our check above will either find the token or
	// will have pushed before our next check below.
	w := r.park()
	if v, ok := r.c.store.Pop(); ok {
		r.unpark(w)
		return v, Ready
	}
	if r.c.senders.Load() == 0 {
		r.unpark(w)
		return r.finish()
	}
	r.wait = w
	return zero, Pending
}

// finish reports End, after one last check of the queue. A sender may have
// pushed a value just before it was closed.
func (r *Receiver[T]) finish() (T, Status) {
	if v, ok := r.c.store.Pop(); ok {
		return v, Ready
	}
	r.done = true
	var zero T
	return zero, End
}

// park publishes a wake token for r, reusing the current one if no sender
// has fired it yet.
func (r *Receiver[T]) park() *trigger.Cond {
	if w := r.c.parked.Load(); w != nil {
		return w
	}
	w := trigger.New()
	r.c.parked.Store(w)
	return w
}

// unpark withdraws w, if no sender has already claimed it.
func (r *Receiver[T]) unpark(w *trigger.Cond) {
	r.c.parked.CompareAndSwap(w, nil)
	r.wait = nil
}

// Wait returns a channel that is closed when a receiver parked by Poll is
// woken. If r is not parked, the channel is already closed.
func (r *Receiver[T]) Wait() <-chan struct{} {
	if r.wait == nil {
		return closedCh
	}
	return r.wait.Ready()
}

// Recv blocks until a value is available, the stream ends, or ctx ends.
// It returns the value and true if one is available. At the end of the
// stream it returns a zero value, false, and nil. If ctx ends first, Recv
// returns a zero value, false, and the context error.
func (r *Receiver[T]) Recv(ctx context.Context) (T, bool, error) {
	for {
		v, st := r.Poll()
		switch st {
		case Ready:
			return v, true, nil
		case End:
			return v, false, nil
		}
		select {
		case <-ctx.Done():
			r.unpark(r.wait)
			var zero T
			return zero, false, ctx.Err()
		case <-r.Wait():
		}
	}
}

// All returns an iterator over the values delivered to r. The iterator
// blocks waiting for values, and stops at the end of the stream. Stopping the
// iteration early leaves r ready for further use.
func (r *Receiver[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok, _ := r.Recv(context.Background())
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Collect receives values until the end of the stream or until ctx ends,
// and returns the values received. If ctx ends first, Collect returns the
// values received so far along with the context error.
func (r *Receiver[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for {
		v, ok, err := r.Recv(ctx)
		if err != nil {
			return out, err
		} else if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

// Close disconnects r from its senders. Every value still queued is
// discarded, head to tail, and any further Send reports [ErrDisconnected].
// Calling Close more than once has no further effect. After Close, Poll
// reports [End].
func (r *Receiver[T]) Close() {
	if !r.c.alive.CompareAndSwap(true, false) {
		return
	}
	r.done = true
	if w := r.c.parked.Swap(nil); w != nil {
		w.Set() // release anyone still selecting on Wait
	}
	r.wait = nil
	r.c.drain()
}
