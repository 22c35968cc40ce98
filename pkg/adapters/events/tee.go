package events

import (
	"errors"

	"github.com/manojdaspy/inspection-system/internal/domain"
	"github.com/manojdaspy/inspection-system/internal/ports"
)

// Tee fans every event out to all given sinks. Each sink keeps its own
// ordering and drop policy.
func Tee(sinks ...ports.EventSink) ports.EventSink {
	return tee(sinks)
}

type tee []ports.EventSink

func (t tee) Emit(event domain.Event) {
	for _, s := range t {
		s.Emit(event)
	}
}

func (t tee) Close() error {
	var errs []error
	for _, s := range t {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
