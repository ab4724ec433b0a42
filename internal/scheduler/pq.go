package scheduler

import (
	"container/list"
	"sync"
)

// PriorityQueue is the bypass FIFO of spec.md §4.4: requests inserted
// at the head (barriers, flushes, anything the host marks urgent) skip
// the deadline model entirely and are always checked first by dispatch.
// It never reorders its own contents; priority comes from dispatch
// always draining it before the batch buffer, not from any ordering
// within it.
type PriorityQueue struct {
	mu    sync.Mutex
	items list.List // of *RqData
}

// NewPriorityQueue returns an empty bypass queue.
func NewPriorityQueue() *PriorityQueue {
	pq := &PriorityQueue{}
	pq.items.Init()
	return pq
}

// Push appends d to the tail of the bypass queue.
func (q *PriorityQueue) Push(d *RqData) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items.PushBack(d)
}

// Pop removes and returns the head of the bypass queue, or nil if
// empty.
func (q *PriorityQueue) Pop() *RqData {
	q.mu.Lock()
	defer q.mu.Unlock()
	e := q.items.Front()
	if e == nil {
		return nil
	}
	q.items.Remove(e)
	return e.Value.(*RqData)
}

// Len returns the number of requests currently bypassing the model.
func (q *PriorityQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}
