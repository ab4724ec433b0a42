package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchBufferRefillThenDispatch(t *testing.T) {
	bb := NewBatchBuffer()
	page := bb.BeginRefill()

	read := &RqData{op: OpRead}
	write := &RqData{op: OpWrite}
	bb.Append(page, read)
	bb.Append(page, write)
	bb.EndRefill(page)

	assert.True(t, bb.MoreReady())
	assert.Same(t, read, bb.Next())
	assert.Same(t, write, bb.Next())
	assert.Nil(t, bb.Next())
}

func TestBatchBufferDispatchOrderIsOpOrderNotInsertOrder(t *testing.T) {
	bb := NewBatchBuffer()
	page := bb.BeginRefill()

	discard := &RqData{op: OpDiscard}
	other := &RqData{op: OpOther}
	write := &RqData{op: OpWrite}
	read := &RqData{op: OpRead}
	bb.Append(page, discard)
	bb.Append(page, other)
	bb.Append(page, write)
	bb.Append(page, read)
	bb.EndRefill(page)

	assert.Same(t, read, bb.Next())
	assert.Same(t, write, bb.Next())
	assert.Same(t, discard, bb.Next())
	assert.Same(t, other, bb.Next())
}

func TestBatchBufferFlipPageRequiresMoreReady(t *testing.T) {
	bb := NewBatchBuffer()
	assert.False(t, bb.FlipPage())

	page := bb.BeginRefill()
	bb.Append(page, &RqData{op: OpRead})
	bb.EndRefill(page)

	require.True(t, bb.MoreReady())
	assert.True(t, bb.FlipPage())
	assert.False(t, bb.MoreReady())
	// Second flip without a new refill has nothing to offer.
	assert.False(t, bb.FlipPage())
}

func TestBatchBufferActivePageEmpty(t *testing.T) {
	bb := NewBatchBuffer()
	assert.True(t, bb.ActivePageEmpty())

	page := bb.BeginRefill()
	bb.Append(page, &RqData{op: OpRead})
	bb.EndRefill(page)

	assert.False(t, bb.ActivePageEmpty())
	bb.Next()
	assert.True(t, bb.ActivePageEmpty())
}

func TestBatchBufferActualMaxHighWaterMark(t *testing.T) {
	bb := NewBatchBuffer()

	page := bb.BeginRefill()
	bb.Append(page, &RqData{op: OpRead})
	bb.Append(page, &RqData{op: OpRead})
	bb.EndRefill(page)
	bb.Next()
	bb.Next()

	page = bb.BeginRefill()
	bb.Append(page, &RqData{op: OpRead})
	bb.EndRefill(page)

	assert.EqualValues(t, 2, bb.ActualMax(OpRead))

	bb.ResetStats()
	assert.EqualValues(t, 0, bb.ActualMax(OpRead))
}

func TestBatchBufferBeginRefillClearsStalePage(t *testing.T) {
	bb := NewBatchBuffer()

	page := bb.BeginRefill()
	bb.Append(page, &RqData{op: OpRead})
	bb.EndRefill(page)
	bb.FlipPage()

	// The page just vacated by FlipPage is now inactive; BeginRefill
	// must wipe whatever was dispatched from it before, or a half-drained
	// leftover would resurface on the next flip.
	next := bb.BeginRefill()
	assert.Equal(t, 0, bb.pages[next].count(OpRead))
}
