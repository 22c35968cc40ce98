// Package zaplog implements ports.EventSink on top of zap.
//
// Events from concurrent tracks are handed off through a bounded channel to
// a single consumer goroutine, so each event is written atomically as one
// log record and no track ever blocks on a slow sink. When the buffer is
// full the event is dropped and counted rather than stalling the cycle.
package zaplog

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/manojdaspy/inspection-system/internal/domain"
)

// Sink is a bounded, asynchronous event sink backed by a zap logger.
type Sink struct {
	ch     chan domain.Event
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool

	wg      sync.WaitGroup
	seq     uint64
	dropped atomic.Uint64
}

// NewSink creates a sink with the given buffer size and starts its consumer.
func NewSink(bufferSize int, logger *zap.Logger) *Sink {
	s := &Sink{
		ch:     make(chan domain.Event, bufferSize),
		logger: logger,
	}

	s.wg.Add(1)
	go s.consume()

	return s
}

// Emit hands an event to the consumer. It never blocks: if the buffer is
// full the event is dropped and counted.
func (s *Sink) Emit(event domain.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.dropped.Add(1)
		return
	}

	select {
	case s.ch <- event:
	default:
		s.dropped.Add(1)
	}
}

// Close stops accepting events, drains the buffer, and waits for the
// consumer to finish.
func (s *Sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.ch)
	s.wg.Wait()

	if n := s.dropped.Load(); n > 0 {
		s.logger.Warn("event sink dropped events", zap.Uint64("dropped", n))
	}
	return nil
}

// Dropped returns how many events were dropped because the buffer was full.
func (s *Sink) Dropped() uint64 {
	return s.dropped.Load()
}

// consume is the single writer goroutine. The event sequence number is
// assigned here so output order and sequence order always agree.
func (s *Sink) consume() {
	defer s.wg.Done()

	for event := range s.ch {
		s.seq++
		event.Seq = s.seq
		s.write(event)
	}
}

// write renders one event as a single structured log record.
func (s *Sink) write(e domain.Event) {
	fields := []zap.Field{
		zap.Uint64("seq", e.Seq),
		zap.Time("ts", e.Timestamp),
		zap.Uint64("cycle", e.CycleSeq),
	}

	switch e.Type {
	case domain.EventCaptureAttempt:
		fields = append(fields,
			zap.String("source_id", e.SourceID),
			zap.Int("attempt", e.Attempt),
			zap.String("outcome", string(e.AttemptOutcome)),
			zap.Duration("latency", e.Latency))
		if e.Err != "" {
			fields = append(fields, zap.String("error", e.Err))
		}
		s.logger.Info("capture attempt", fields...)

	case domain.EventSourceOutcome:
		fields = append(fields,
			zap.String("source_id", e.SourceID),
			zap.String("status", string(e.SourceStatus)),
			zap.Int("attempts", e.Attempt),
			zap.Int("defects", e.Defects),
			zap.Duration("elapsed", e.Elapsed))
		if e.Err != "" {
			fields = append(fields, zap.String("error", e.Err))
		}
		s.logger.Info("source outcome", fields...)

	case domain.EventCycleSummary:
		fields = append(fields,
			zap.String("status", string(e.CycleStatus)),
			zap.String("verdict", string(e.Verdict)),
			zap.Float64("score", e.Score),
			zap.Int("defects", e.Defects),
			zap.Duration("elapsed", e.Elapsed))
		s.logger.Info("cycle summary", fields...)

	default:
		s.logger.Info("event", fields...)
	}
}
