package cycle

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojdaspy/inspection-system/internal/domain"
)

func TestCollectorWriteOnce(t *testing.T) {
	col := newCollector([]string{"CAM_01"})

	first := domain.SourceOutcome{SourceID: "CAM_01", Status: domain.SourceCaptured}
	second := domain.SourceOutcome{SourceID: "CAM_01", Status: domain.SourceProcessingFailed}

	assert.True(t, col.record(first))
	assert.False(t, col.record(second), "second write to the same slot must be rejected")

	outcomes, synthesized := col.finalize(time.Second)
	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.SourceCaptured, outcomes[0].Status)
	assert.Empty(t, synthesized)
}

func TestCollectorRejectsUnregisteredSource(t *testing.T) {
	col := newCollector([]string{"CAM_01"})
	assert.False(t, col.record(domain.SourceOutcome{SourceID: "CAM_99"}))
}

func TestCollectorRejectsAfterFinalize(t *testing.T) {
	col := newCollector([]string{"CAM_01", "CAM_02"})
	require.True(t, col.record(domain.SourceOutcome{SourceID: "CAM_01", Status: domain.SourceCaptured}))

	outcomes, synthesized := col.finalize(250 * time.Millisecond)
	require.Len(t, outcomes, 2)
	require.Equal(t, []string{"CAM_02"}, synthesized)

	assert.False(t, col.record(domain.SourceOutcome{SourceID: "CAM_02", Status: domain.SourceCaptured}))
}

func TestCollectorFinalizeSynthesizesTimedOut(t *testing.T) {
	col := newCollector([]string{"CAM_01", "CAM_02", "CAM_03"})
	require.True(t, col.record(domain.SourceOutcome{SourceID: "CAM_02", Status: domain.SourceCaptured}))

	outcomes, synthesized := col.finalize(300 * time.Millisecond)
	require.Len(t, outcomes, 3)
	assert.Equal(t, []string{"CAM_01", "CAM_03"}, synthesized)

	for _, outcome := range outcomes {
		if outcome.SourceID == "CAM_02" {
			assert.Equal(t, domain.SourceCaptured, outcome.Status)
			continue
		}
		assert.Equal(t, domain.SourceTimedOut, outcome.Status)
		assert.Equal(t, 300*time.Millisecond, outcome.Elapsed)
	}
}

func TestCollectorFinalizeOrdersBySourceID(t *testing.T) {
	col := newCollector([]string{"CAM_03", "CAM_01", "CAM_02"})
	for _, id := range []string{"CAM_02", "CAM_03", "CAM_01"} {
		require.True(t, col.record(domain.SourceOutcome{SourceID: id, Status: domain.SourceCaptured}))
	}

	outcomes, _ := col.finalize(time.Second)
	require.Len(t, outcomes, 3)
	assert.Equal(t, "CAM_01", outcomes[0].SourceID)
	assert.Equal(t, "CAM_02", outcomes[1].SourceID)
	assert.Equal(t, "CAM_03", outcomes[2].SourceID)
}

func TestCollectorSecondFinalizeReturnsNil(t *testing.T) {
	col := newCollector([]string{"CAM_01"})
	outcomes, _ := col.finalize(time.Second)
	require.Len(t, outcomes, 1)

	outcomes, synthesized := col.finalize(time.Second)
	assert.Nil(t, outcomes)
	assert.Nil(t, synthesized)
}

func TestCollectorPending(t *testing.T) {
	col := newCollector([]string{"CAM_01", "CAM_02"})
	assert.Equal(t, []string{"CAM_01", "CAM_02"}, col.pending())

	require.True(t, col.record(domain.SourceOutcome{SourceID: "CAM_02", Status: domain.SourceCaptured}))
	assert.Equal(t, []string{"CAM_01"}, col.pending())
}

func TestCollectorConcurrentRecordSingleWinner(t *testing.T) {
	col := newCollector([]string{"CAM_01"})

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if col.record(domain.SourceOutcome{SourceID: "CAM_01", Status: domain.SourceCaptured}) {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
}
