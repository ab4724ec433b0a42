package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchPriorityQueueAlwaysWinsFirst(t *testing.T) {
	s := New(nil, nil)
	urgent := &fakeHandle{op: OpWrite, byteLen: 4096, submitNs: 1}
	s.Prepare(urgent)
	require.NoError(t, s.Insert(urgent, true))

	normal := &fakeHandle{op: OpRead, byteLen: 4096, submitNs: 1}
	s.Prepare(normal)
	require.NoError(t, s.Insert(normal, false))

	got := s.Dispatch()
	assert.Same(t, urgent, got)
}

func TestDispatchEmptyReturnsNil(t *testing.T) {
	s := New(nil, nil)
	assert.Nil(t, s.Dispatch())
}

func TestDispatchColdStartAlwaysTakesFirstRequest(t *testing.T) {
	s := New(nil, nil)
	h := &fakeHandle{op: OpRead, byteLen: 4096, submitNs: 1}
	s.Prepare(h)
	require.NoError(t, s.Insert(h, false))

	// The model has no samples yet (Ready() == false), but the very
	// first candidate in an empty batch must still be taken, or a cold
	// scheduler would never dispatch anything.
	got := s.Dispatch()
	assert.Same(t, h, got)
}

func TestDispatchDrainsMultipleRequestsAfterWarmup(t *testing.T) {
	s := New(nil, nil)
	// Warm the read model so refill's per-candidate readiness check
	// passes for requests after the first.
	s.models[OpRead].Input(4096, 1000, 0)

	var handles []*fakeHandle
	for i := 0; i < 3; i++ {
		h := &fakeHandle{op: OpRead, byteLen: 4096, submitNs: int64(i)}
		s.Prepare(h)
		require.NoError(t, s.Insert(h, false))
		handles = append(handles, h)
	}

	for i, want := range handles {
		got := s.Dispatch()
		require.NotNil(t, got, "dispatch %d", i)
		assert.Same(t, want, got)
	}
	assert.Nil(t, s.Dispatch())
}

func TestDispatchRespectsPerOpBatchLimit(t *testing.T) {
	s := New(nil, nil)
	require.NoError(t, s.Knobs().SetBatchLimit(OpRead, 1))
	s.models[OpRead].Input(4096, 1000, 0)

	var handles []*fakeHandle
	for i := 0; i < 3; i++ {
		h := &fakeHandle{op: OpRead, byteLen: 4096, submitNs: int64(i)}
		s.Prepare(h)
		require.NoError(t, s.Insert(h, false))
		handles = append(handles, h)
	}

	// First refill should only pull 1 (the batch limit) after the
	// unconditional first pick, i.e. exactly 1 total since the first
	// pick already counts toward op 0's slot.
	first := s.Dispatch()
	require.NotNil(t, first)
	assert.Same(t, handles[0], first)

	// Remaining two are still sitting in the deadline index, reachable
	// by a subsequent dispatch once a new refill runs.
	assert.Equal(t, 2, s.index.Len())
}

func TestHasWork(t *testing.T) {
	s := New(nil, nil)
	assert.False(t, s.HasWork())

	h := &fakeHandle{op: OpRead, byteLen: 4096, submitNs: 1}
	s.Prepare(h)
	require.NoError(t, s.Insert(h, false))
	assert.True(t, s.HasWork())
}
