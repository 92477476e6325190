package mpsc

import "sync/atomic"

// A Sender is a handle for adding values to a channel. Each Sender value may
// be used by one goroutine at a time; use [Sender.Clone] to obtain a separate
// handle for each concurrent producer.
//
// Each sender must be released by calling [Sender.Close]. The receiver sees
// the end of the stream once every sender has been closed.
type Sender[T any] struct {
	c      *shared[T]
	closed atomic.Bool
}

// Send adds v to the back of the queue without blocking. If the receiver has
// been closed, Send discards v (passing it to the OnDrop hook, if any) and
// returns [ErrDisconnected].
//
// Values sent by a single sender are received in the order they were sent.
// Values from different senders are interleaved in an unspecified order.
//
// Send panics if s has been closed.
func (s *Sender[T]) Send(v T) error {
	s.mustBeOpen("Send")
	if !s.c.push(v) {
		s.c.onDrop(v)
		return ErrDisconnected
	}
	return nil
}

// Clone returns a new sender for the same channel as s. The new sender is
// independent of s, and must be closed separately.
//
// Clone panics if s has been closed.
func (s *Sender[T]) Clone() *Sender[T] {
	s.mustBeOpen("Clone")
	if s.c.senders.Add(1) <= 1 {
		panic("mpsc: sender count overflow")
	}
	return &Sender[T]{c: s.c}
}

// Close releases s. When the last open sender for a channel is closed, the
// receiver is woken to observe the end of the stream. Calling Close more than
// once for the same sender has no further effect.
func (s *Sender[T]) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	switch n := s.c.senders.Add(-1); {
	case n == 0:
		s.c.wake()
	case n < 0:
		panic("mpsc: sender count underflow")
	}
}

// Disconnected reports whether the receiver for s has been closed. Once
// Disconnected reports true, every subsequent Send will fail.
func (s *Sender[T]) Disconnected() bool { return !s.c.alive.Load() }

// SameChannel reports whether s and o send to the same channel.
func (s *Sender[T]) SameChannel(o *Sender[T]) bool { return s.c == o.c }

func (s *Sender[T]) mustBeOpen(op string) {
	if s.closed.Load() {
		panic("mpsc: " + op + " on closed Sender")
	}
}
