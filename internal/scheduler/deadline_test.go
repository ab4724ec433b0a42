package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadlineIndexFIFOWithinGroup(t *testing.T) {
	idx := NewDeadlineIndex()
	a := &RqData{}
	b := &RqData{}
	idx.Insert(100, a)
	idx.Insert(100, b)

	require.Equal(t, 2, idx.Len())
	assert.Same(t, a, idx.PopLeftmost())
	assert.Same(t, b, idx.PopLeftmost())
	assert.Equal(t, 0, idx.Len())
}

func TestDeadlineIndexOrdersByDeadline(t *testing.T) {
	idx := NewDeadlineIndex()
	late := &RqData{}
	early := &RqData{}
	idx.Insert(500, late)
	idx.Insert(100, early)

	assert.Same(t, early, idx.PopLeftmost())
	assert.Same(t, late, idx.PopLeftmost())
}

func TestDeadlineIndexRemoveErasesEmptyGroup(t *testing.T) {
	idx := NewDeadlineIndex()
	a := &RqData{}
	idx.Insert(100, a)

	idx.Remove(a)

	assert.Equal(t, 0, idx.Len())
	assert.Nil(t, idx.Peek())
	assert.False(t, a.InIndex())
}

func TestDeadlineIndexRemoveFromMultiElementGroup(t *testing.T) {
	idx := NewDeadlineIndex()
	a := &RqData{}
	b := &RqData{}
	c := &RqData{}
	idx.Insert(100, a)
	idx.Insert(100, b)
	idx.Insert(100, c)

	idx.Remove(b)

	assert.Equal(t, 2, idx.Len())
	assert.Same(t, a, idx.PopLeftmost())
	assert.Same(t, c, idx.PopLeftmost())
}

func TestDeadlineIndexPeekIsNonDestructive(t *testing.T) {
	idx := NewDeadlineIndex()
	a := &RqData{}
	idx.Insert(100, a)

	assert.Same(t, a, idx.Peek())
	assert.Equal(t, 1, idx.Len())
}

func TestDeadlineIndexEmpty(t *testing.T) {
	idx := NewDeadlineIndex()
	assert.Nil(t, idx.Peek())
	assert.Nil(t, idx.PopLeftmost())
	assert.Equal(t, 0, idx.Len())
}

func TestDeadlineIndexRefillOffersEveryCandidateInOrder(t *testing.T) {
	idx := NewDeadlineIndex()
	a := &RqData{predLat: 1000}
	idx.Insert(100, a)

	var offered []*RqData
	got := idx.Refill(0, func(d *RqData, tentative uint64) bool {
		offered = append(offered, d)
		return true
	})

	assert.Equal(t, []*RqData{a}, offered)
	assert.Equal(t, []*RqData{a}, got)
}

func TestDeadlineIndexRefillStopsOnCaller(t *testing.T) {
	idx := NewDeadlineIndex()
	a := &RqData{predLat: 1000}
	b := &RqData{predLat: 1000}
	idx.Insert(100, a)
	idx.Insert(200, b)

	taken := 0
	got := idx.Refill(0, func(d *RqData, tentative uint64) bool {
		if taken == 0 {
			taken++
			return true
		}
		return false
	})

	require.Len(t, got, 1)
	assert.Same(t, a, got[0])
	assert.Equal(t, 1, idx.Len())
}

func TestDeadlineIndexRefillDrainsEverythingWhenAccepted(t *testing.T) {
	idx := NewDeadlineIndex()
	for i := 0; i < 5; i++ {
		idx.Insert(uint64(100+i), &RqData{predLat: 10})
	}

	got := idx.Refill(0, func(d *RqData, tentative uint64) bool { return true })

	assert.Len(t, got, 5)
	assert.Equal(t, 0, idx.Len())
}
