package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityQueueFIFO(t *testing.T) {
	q := NewPriorityQueue()
	a := &RqData{}
	b := &RqData{}

	q.Push(a)
	q.Push(b)

	assert.Equal(t, 2, q.Len())
	assert.Same(t, a, q.Pop())
	assert.Same(t, b, q.Pop())
	assert.Nil(t, q.Pop())
	assert.Equal(t, 0, q.Len())
}
