// Package trigger implements a one-shot wake signal shared by a goroutine
// that waits and any number of goroutines that may fire it.
package trigger

import "sync"

// Cond is a one-shot condition. It starts inactive, and becomes active the
// first time Set is called; it is never reset. The Ready method returns a
// channel that is closed once c is active.
//
// A Cond is meant to cover a single episode of waiting: a waiter that needs
// to wait again should obtain a fresh Cond rather than reuse an old one.
//
// A Cond must be constructed by New.
type Cond struct {
	once sync.Once
	ch   chan struct{} // closed by the first Set
}

// New constructs a new inactive Cond.
func New() *Cond { return &Cond{ch: make(chan struct{})} }

// Set activates c, and reports whether this call did so. Only the first of
// any number of concurrent or repeated calls reports true.
func (c *Cond) Set() (fired bool) {
	c.once.Do(func() { close(c.ch); fired = true })
	return
}

// Ready returns a channel that is closed when c is activated. The same
// channel is returned on every call, whether it is obtained before or after
// the call to Set that activates c.
func (c *Cond) Ready() <-chan struct{} { return c.ch }
