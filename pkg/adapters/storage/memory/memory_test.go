package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojdaspy/inspection-system/internal/domain"
)

func appendN(h *History, n int) {
	for i := 1; i <= n; i++ {
		h.Append(&domain.Report{CycleSeq: uint64(i), Verdict: domain.VerdictPass})
	}
}

func TestHistoryAppendAndRecent(t *testing.T) {
	h := NewHistory(8)
	appendN(h, 3)

	assert.Equal(t, 3, h.Len())

	reports := h.Recent(0)
	require.Len(t, reports, 3)
	assert.Equal(t, uint64(1), reports[0].CycleSeq)
	assert.Equal(t, uint64(3), reports[2].CycleSeq)
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(2)
	appendN(h, 4)

	reports := h.Recent(0)
	require.Len(t, reports, 2)
	assert.Equal(t, uint64(3), reports[0].CycleSeq)
	assert.Equal(t, uint64(4), reports[1].CycleSeq)

	_, ok := h.Get(1)
	assert.False(t, ok, "evicted report must not be retrievable")
}

func TestHistoryGetBySeq(t *testing.T) {
	h := NewHistory(8)
	appendN(h, 3)

	report, ok := h.Get(2)
	require.True(t, ok)
	assert.Equal(t, uint64(2), report.CycleSeq)

	_, ok = h.Get(9)
	assert.False(t, ok)
}
