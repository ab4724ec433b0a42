package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitDepthLeavesReadsUncapped(t *testing.T) {
	s := New(nil, nil)
	s.DepthUpdated(32)

	assert.EqualValues(t, 128, s.LimitDepth(OpRead, 128))
}

func TestLimitDepthCapsNonReadsToAsyncDepth(t *testing.T) {
	s := New(nil, nil)
	s.DepthUpdated(32) // async_depth = 32 - 32/4 = 24

	assert.EqualValues(t, 24, s.LimitDepth(OpWrite, 128))
	assert.EqualValues(t, 24, s.LimitDepth(OpDiscard, 128))
}

func TestLimitDepthNeverWidensHint(t *testing.T) {
	s := New(nil, nil)
	s.DepthUpdated(32)

	assert.EqualValues(t, 8, s.LimitDepth(OpWrite, 8))
}

func TestLimitDepthUncappedBeforeDepthUpdated(t *testing.T) {
	s := New(nil, nil)
	assert.EqualValues(t, 128, s.LimitDepth(OpWrite, 128))
}

func TestDepthUpdatedNeverYieldsZero(t *testing.T) {
	s := New(nil, nil)
	s.DepthUpdated(1)
	assert.EqualValues(t, 1, s.knobs.AsyncDepth())

	s.DepthUpdated(0)
	assert.EqualValues(t, 1, s.knobs.AsyncDepth())
}
