package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpTypeString(t *testing.T) {
	assert.Equal(t, "read", OpRead.String())
	assert.Equal(t, "write", OpWrite.String())
	assert.Equal(t, "discard", OpDiscard.String())
	assert.Equal(t, "other", OpOther.String())
	assert.Equal(t, "unknown", OpType(99).String())
}

func TestOpTypeValid(t *testing.T) {
	for _, op := range []OpType{OpRead, OpWrite, OpDiscard, OpOther} {
		assert.True(t, op.valid())
	}
	assert.False(t, OpType(-1).valid())
	assert.False(t, OpType(4).valid())
}

func TestDispatchOrder(t *testing.T) {
	assert.Equal(t, [numOpTypes]OpType{OpRead, OpWrite, OpDiscard, OpOther}, dispatchOrder)
}
