// Package mpsc implements an unbounded multi-producer, single-consumer
// channel.
//
// A channel has two halves that share one state block: any number of
// [Sender] handles, obtained by [Sender.Clone], and exactly one [Receiver].
// Sending never blocks. The receiver drains values in the order they were
// sent, suspends while the queue is empty and senders remain, and reports
// [End] once every sender has been closed and the queue is drained.
//
// Handles do not rely on finalizers: each handle must be released by calling
// its Close method, which is where the "drop" effects of the channel happen.
package mpsc

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/creachadair/mpsc/trigger"
)

// ErrDisconnected is the sentinel error reported by [Sender.Send] when the
// receiver has been closed. Disconnection is permanent.
var ErrDisconnected = errors.New("mpsc: receiver disconnected")

// Status reports the outcome of a call to [Receiver.Poll].
type Status int

const (
	Ready   Status = iota // a value was delivered
	Pending               // no value yet; the receiver is parked
	End                   // no value will ever be delivered
)

var statusStr = [...]string{Ready: "Ready", Pending: "Pending", End: "End"}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusStr) {
		return statusStr[s]
	}
	return "Status(invalid)"
}

// Options are optional settings for a channel. A nil *Options is ready for
// use and provides defaults as described.
type Options[T any] struct {
	// If true, queue values on a lock-free linked list. Otherwise, queue them
	// in a mutex-guarded ring buffer. The two strategies have the same
	// behavior and differ only in performance under contention.
	LockFree bool

	// If set, OnDrop is called for each value discarded by the channel: the
	// argument of a Send that fails because the receiver is gone, and each
	// value still queued when the receiver is closed. Values discarded at
	// teardown are passed in queue order, head to tail.
	//
	// OnDrop may be called concurrently from multiple goroutines, when failed
	// sends race each other or the receiver's Close, and must be safe for
	// concurrent use.
	OnDrop func(T)
}

// New constructs a channel with default options, and returns its initial
// sender and its receiver.
func New[T any]() (*Sender[T], *Receiver[T]) { return (*Options[T])(nil).New() }

// New constructs a channel with the settings from o, and returns its initial
// sender and its receiver.
func (o *Options[T]) New() (*Sender[T], *Receiver[T]) {
	c := &shared[T]{store: o.newStore(), onDrop: o.onDrop()}
	c.senders.Store(1)
	c.alive.Store(true)
	return &Sender[T]{c: c}, &Receiver[T]{c: c}
}

func (o *Options[T]) newStore() store[T] {
	if o != nil && o.LockFree {
		return newListStore[T]()
	}
	return newRingStore[T]()
}

func (o *Options[T]) onDrop() func(T) {
	if o == nil || o.OnDrop == nil {
		return func(T) {}
	}
	return o.OnDrop
}

// shared is the state block jointly owned by all the senders and the
// receiver of a channel.
type shared[T any] struct {
	store  store[T]
	onDrop func(T) // never nil

	senders atomic.Int64                 // live sender handles; 0 is final
	alive   atomic.Bool                  // false once the receiver closes; final
	parked  atomic.Pointer[trigger.Cond] // non-nil while the receiver is parked

	// After alive becomes false, every Pop from store must hold drainμ.
	drainμ sync.Mutex
}

// push adds v to the queue and wakes the receiver if it is parked. It
// reports false without queueing v if the receiver had already closed.
func (c *shared[T]) push(v T) bool {
	if !c.alive.Load() {
		return false
	}
	c.store.Push(v)
	if !c.alive.Load() {
		// The receiver closed while we were pushing, and its own drain may
		// have missed v. Discard whatever remains on its behalf.
		c.drain()
		return true
	}
	c.wake()
	return true
}

// wake fires the parked receiver's token, if any. The Swap guarantees each
// parking episode is woken at most once, no matter how many producers race.
func (c *shared[T]) wake() {
	if c.parked.Load() == nil {
		return
	}
	if w := c.parked.Swap(nil); w != nil {
		w.Set()
	}
}

// drain discards every queued value, head to tail.
func (c *shared[T]) drain() {
	c.drainμ.Lock()
	defer c.drainμ.Unlock()
	for {
		v, ok := c.store.Pop()
		if !ok {
			return
		}
		c.onDrop(v)
	}
}
