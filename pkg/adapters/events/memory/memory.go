// Package memory provides an in-memory event buffer.
//
// The buffer keeps the most recent events in a fixed-size ring so the
// observability API can serve them without any external broker. It is
// usually composed with the log sink through events.Tee.
package memory

import (
	"sync"

	"github.com/manojdaspy/inspection-system/internal/domain"
)

// Buffer is a bounded in-memory event sink. Once full, the oldest event is
// evicted for each new one. Safe for concurrent use.
type Buffer struct {
	mu       sync.RWMutex
	ring     []domain.Event
	start    int
	count    int
	seq      uint64
	closed   bool
	overflow uint64
}

// NewBuffer creates a buffer holding up to capacity events.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{ring: make([]domain.Event, capacity)}
}

// Emit stores an event, evicting the oldest when the ring is full. The
// buffer assigns its own sequence number at write time.
func (b *Buffer) Emit(event domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.seq++
	event.Seq = b.seq

	if b.count < len(b.ring) {
		b.ring[(b.start+b.count)%len(b.ring)] = event
		b.count++
		return
	}

	b.ring[b.start] = event
	b.start = (b.start + 1) % len(b.ring)
	b.overflow++
}

// Close stops accepting events. Stored events remain readable.
func (b *Buffer) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

// Recent returns up to limit events, newest last. A limit of 0 or less
// returns everything buffered.
func (b *Buffer) Recent(limit int) []domain.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := b.count
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]domain.Event, 0, n)
	for i := b.count - n; i < b.count; i++ {
		out = append(out, b.ring[(b.start+i)%len(b.ring)])
	}
	return out
}

// Len returns how many events are currently buffered.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Evicted returns how many events were evicted to make room.
func (b *Buffer) Evicted() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.overflow
}
