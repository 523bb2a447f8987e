// Package ringchan provides a bounded channel that never blocks its producer.
package ringchan

import "sync/atomic"

// RingChannel is a bounded buffer with overwrite-oldest semantics.
//
// The radio stack delivers reports from its own goroutine and must never be
// stalled by a slow consumer, so Push discards the oldest buffered element
// when the buffer is full. Consumers read from C() like a normal channel.
//
// A RingChannel expects a single producer; concurrent producers may block
// briefly in Push while racing for the freed slot.
type RingChannel[T any] struct {
	ch      chan T
	pushed  atomic.Int64
	dropped atomic.Int64
}

// New creates a RingChannel with the given capacity.
func New[T any](capacity int) *RingChannel[T] {
	if capacity <= 0 {
		panic("ringchan: capacity must be > 0")
	}
	return &RingChannel[T]{ch: make(chan T, capacity)}
}

// C returns the receive side of the channel.
func (rc *RingChannel[T]) C() <-chan T {
	return rc.ch
}

// Push inserts v, discarding the oldest element if the buffer is full.
// Reports whether an element was discarded.
func (rc *RingChannel[T]) Push(v T) bool {
	dropped := false

	select {
	case rc.ch <- v:
	default:
		select {
		case <-rc.ch:
			rc.dropped.Add(1)
			dropped = true
		default:
		}
		rc.ch <- v
	}

	rc.pushed.Add(1)
	return dropped
}

// Drain discards every buffered element and returns how many were removed.
func (rc *RingChannel[T]) Drain() int {
	n := 0
	for {
		select {
		case <-rc.ch:
			n++
		default:
			return n
		}
	}
}

// Len returns the number of buffered elements.
func (rc *RingChannel[T]) Len() int {
	return len(rc.ch)
}

// Stats is a snapshot of the channel counters.
type Stats struct {
	Pushed  int64
	Dropped int64
}

// Stats returns the number of elements pushed and overwritten so far.
func (rc *RingChannel[T]) Stats() Stats {
	return Stats{
		Pushed:  rc.pushed.Load(),
		Dropped: rc.dropped.Load(),
	}
}
