package mpsc

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/creachadair/mds/queue"
)

// A store is the FIFO storage behind a channel. Push is safe for concurrent
// use by multiple goroutines. Pop must only be called by one goroutine at a
// time, but may run concurrently with Push.
//
// Pop reports false only if the queue was empty at some moment during the
// call: a value whose Push has returned is never missed.
type store[T any] interface {
	Push(T)
	Pop() (T, bool)
}

// ringStore is a store that guards a ring buffer with a mutex.
type ringStore[T any] struct {
	μ sync.Mutex
	q *queue.Queue[T]
}

func newRingStore[T any]() *ringStore[T] { return &ringStore[T]{q: queue.New[T]()} }

func (s *ringStore[T]) Push(v T) {
	s.μ.Lock()
	defer s.μ.Unlock()
	s.q.Add(v)
}

func (s *ringStore[T]) Pop() (T, bool) {
	s.μ.Lock()
	defer s.μ.Unlock()
	return s.q.Pop()
}

// listStore is a lock-free intrusive singly-linked list.
//
// Producers append by exchanging the tail pointer and then linking the old
// tail to the new node. The consumer owns head, which always points to a
// sentinel node whose value has already been delivered (or is the initial
// stub). A node whose predecessor has been exchanged out but not yet linked is
// "in flight"; Pop waits for it rather than report a false empty.
type listStore[T any] struct {
	tail atomic.Pointer[node[T]] // most recently pushed node
	head *node[T]                // consumer-owned sentinel
}

type node[T any] struct {
	next  atomic.Pointer[node[T]]
	value T
}

func newListStore[T any]() *listStore[T] {
	stub := new(node[T])
	s := &listStore[T]{head: stub}
	s.tail.Store(stub)
	return s
}

func (s *listStore[T]) Push(v T) {
	n := &node[T]{value: v}
	prev := s.tail.Swap(n)
	prev.next.Store(n)
}

func (s *listStore[T]) Pop() (T, bool) {
	var zero T

	head := s.head
	next := head.next.Load()
	for next == nil {
		if s.tail.Load() == head {
			return zero, false // empty
		}
		// A producer has swapped the tail but not yet linked its node.
		runtime.Gosched()
		next = head.next.Load()
	}
	s.head = next
	v := next.value
	next.value = zero // next is the new sentinel; don't pin its value
	return v, true
}
