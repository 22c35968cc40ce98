package cycle

import (
	"sort"
	"sync"
	"time"

	"github.com/manojdaspy/inspection-system/internal/domain"
)

// collector gathers per-source outcomes for one cycle with write-once
// semantics. Each registered source has one slot; a slot can be written at
// most once, and nothing can be written after finalization. Rejection is a
// state check, not a blocking operation, so late-arriving track results
// simply bounce off.
type collector struct {
	mu        sync.Mutex
	slots     map[string]*domain.SourceOutcome
	finalized bool
}

// newCollector creates a collector with one empty slot per source id.
func newCollector(sourceIDs []string) *collector {
	slots := make(map[string]*domain.SourceOutcome, len(sourceIDs))
	for _, id := range sourceIDs {
		slots[id] = nil
	}
	return &collector{slots: slots}
}

// record stores an outcome in its source's slot. It returns false when the
// outcome is for an unregistered source, the slot is already written, or
// the collector is finalized.
func (c *collector) record(outcome domain.SourceOutcome) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.finalized {
		return false
	}
	existing, registered := c.slots[outcome.SourceID]
	if !registered || existing != nil {
		return false
	}

	c.slots[outcome.SourceID] = &outcome
	return true
}

// pending returns the source ids whose slots are still empty.
func (c *collector) pending() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var ids []string
	for id, outcome := range c.slots {
		if outcome == nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// finalize seals the collector and returns all outcomes ordered by source
// id. Empty slots are filled with synthetic timed-out outcomes carrying the
// given elapsed time; their ids are returned so the caller can emit events
// for them. Calling finalize more than once returns nil.
func (c *collector) finalize(elapsed time.Duration) ([]domain.SourceOutcome, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.finalized {
		return nil, nil
	}
	c.finalized = true

	var synthesized []string
	outcomes := make([]domain.SourceOutcome, 0, len(c.slots))
	for id, outcome := range c.slots {
		if outcome == nil {
			outcome = &domain.SourceOutcome{
				SourceID: id,
				Status:   domain.SourceTimedOut,
				Elapsed:  elapsed,
			}
			synthesized = append(synthesized, id)
		}
		outcomes = append(outcomes, *outcome)
	}

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].SourceID < outcomes[j].SourceID
	})
	sort.Strings(synthesized)

	return outcomes, synthesized
}
