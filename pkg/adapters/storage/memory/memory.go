// Package memory provides a bounded in-memory report history.
package memory

import (
	"sync"

	"github.com/manojdaspy/inspection-system/internal/domain"
)

// History keeps the most recent cycle reports in a fixed-size ring.
// Safe for concurrent use; the driver appends and the observability
// server reads.
type History struct {
	mu    sync.RWMutex
	ring  []*domain.Report
	start int
	count int
}

// NewHistory creates a history holding up to capacity reports.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{ring: make([]*domain.Report, capacity)}
}

// Append stores a report, evicting the oldest when the ring is full.
func (h *History) Append(report *domain.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count < len(h.ring) {
		h.ring[(h.start+h.count)%len(h.ring)] = report
		h.count++
		return
	}

	h.ring[h.start] = report
	h.start = (h.start + 1) % len(h.ring)
}

// Recent returns up to limit reports, newest last. A limit of 0 or less
// returns everything retained.
func (h *History) Recent(limit int) []*domain.Report {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := h.count
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]*domain.Report, 0, n)
	for i := h.count - n; i < h.count; i++ {
		out = append(out, h.ring[(h.start+i)%len(h.ring)])
	}
	return out
}

// Get returns the report for a cycle sequence number, if still retained.
func (h *History) Get(seq uint64) (*domain.Report, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := 0; i < h.count; i++ {
		report := h.ring[(h.start+i)%len(h.ring)]
		if report.CycleSeq == seq {
			return report, true
		}
	}
	return nil, false
}

// Len returns how many reports are currently retained.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}
