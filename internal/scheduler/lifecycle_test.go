package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareAttachesMetadataOnce(t *testing.T) {
	s := New(nil, nil)
	h := &fakeHandle{}

	s.Prepare(h)
	first := h.SchedMeta()
	require.NotNil(t, first)

	s.Prepare(h)
	assert.Same(t, first, h.SchedMeta())
}

func TestInsertAtHeadGoesToPriorityQueue(t *testing.T) {
	s := New(nil, nil)
	h := &fakeHandle{op: OpWrite, byteLen: 4096, submitNs: 1}
	s.Prepare(h)

	require.NoError(t, s.Insert(h, true))

	assert.Equal(t, 1, s.PriorityQueueLen())
	assert.Equal(t, 0, s.index.Len())
}

func TestInsertComputesDeadlineFromLatencyTargetAndPrediction(t *testing.T) {
	s := New(nil, nil)
	h := &fakeHandle{op: OpRead, byteLen: 4096, submitNs: 1000}
	s.Prepare(h)

	require.NoError(t, s.Insert(h, false))

	d := h.SchedMeta()
	require.True(t, d.InIndex())
	assert.Equal(t, uint64(1000)+s.knobs.LatencyTarget(OpRead)+d.PredLat(), d.Deadline())
}

func TestInsertWithoutPrepareFails(t *testing.T) {
	s := New(nil, nil)
	h := &fakeHandle{}

	assert.ErrorIs(t, s.Insert(h, false), ErrNoRequest)
}

func TestInsertAfterExitShedFails(t *testing.T) {
	s := New(nil, nil)
	h := &fakeHandle{}
	s.Prepare(h)
	s.ExitSched()

	assert.ErrorIs(t, s.Insert(h, false), ErrShuttingDown)
}

type alwaysMerge struct {
	redundant Handle
}

func (m *alwaysMerge) TryMerge(rq Handle) (bool, Handle) {
	// The redundant request itself is admitted normally so that it is
	// in the index when a later request merges it away.
	if rq == m.redundant {
		return false, nil
	}
	return true, m.redundant
}

func TestInsertConsultsMergerBeforeIndexing(t *testing.T) {
	victim := &fakeHandle{}
	s := New(&alwaysMerge{redundant: victim}, nil)
	s.Prepare(victim)
	require.NoError(t, s.Insert(victim, false))
	require.True(t, victim.SchedMeta().InIndex())

	h := &fakeHandle{op: OpRead, byteLen: 4096, submitNs: 1}
	s.Prepare(h)

	require.NoError(t, s.Insert(h, false))

	assert.Equal(t, 0, s.index.Len(), "merged request and its victim should both leave the index")
	assert.Nil(t, victim.SchedMeta())
}

func TestFinishWithoutMetaErrors(t *testing.T) {
	s := New(nil, nil)
	h := &fakeHandle{}
	assert.ErrorIs(t, s.Finish(h), ErrNoRequest)
}

func TestFinishClearsMetadata(t *testing.T) {
	s := New(nil, nil)
	h := &fakeHandle{}
	s.Prepare(h)

	require.NoError(t, s.Finish(h))
	assert.Nil(t, h.SchedMeta())
}

func TestCompleteSubtractsPredLatAndFeedsModel(t *testing.T) {
	s := New(nil, nil)
	h := &fakeHandle{op: OpRead, byteLen: 4096, submitNs: 1, startServiceNs: 1}
	s.Prepare(h)
	require.NoError(t, s.Insert(h, false))

	pred := h.SchedMeta().PredLat()
	s.totalPredLat.Store(pred)

	h.startServiceNs = time.Now().Add(-time.Millisecond).UnixNano()
	s.Complete(h, time.Now())

	assert.Equal(t, uint64(0), s.totalPredLat.Load())
	assert.True(t, s.models[OpRead].Ready())
}

func TestCompleteWithoutMetaIsNoop(t *testing.T) {
	s := New(nil, nil)
	h := &fakeHandle{}
	assert.NotPanics(t, func() { s.Complete(h, time.Now()) })
}
