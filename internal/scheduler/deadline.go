package scheduler

import (
	"container/heap"
	"sync"
)

// dlElem is one node of a DeadlineGroup's insertion-ordered list. It is
// intrusive (stored by pointer on RqData) so removal of an arbitrary
// element — as happens on a front-merge re-deadline — is O(1) once the
// element is known, without a list scan.
type dlElem struct {
	prev, next *dlElem
	data       *RqData
}

// DeadlineGroup holds every RqData sharing one absolute deadline, in
// FIFO insertion order. Created on first insertion at that deadline;
// the DeadlineIndex erases it once its list empties.
type DeadlineGroup struct {
	deadline  uint64
	head      *dlElem
	tail      *dlElem
	length    int
	heapIndex int // maintained by dlHeap's Swap for O(log n) removal
}

func (g *DeadlineGroup) pushTail(d *RqData) *dlElem {
	e := &dlElem{data: d}
	if g.tail == nil {
		g.head, g.tail = e, e
	} else {
		e.prev = g.tail
		g.tail.next = e
		g.tail = e
	}
	g.length++
	return e
}

func (g *DeadlineGroup) popHead() *RqData {
	e := g.head
	if e == nil {
		return nil
	}
	g.remove(e)
	return e.data
}

func (g *DeadlineGroup) remove(e *dlElem) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		g.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		g.tail = e.prev
	}
	e.prev, e.next = nil, nil
	g.length--
}

func (g *DeadlineGroup) empty() bool {
	return g.length == 0
}

// dlHeap is a min-heap of DeadlineGroup ordered by deadline, giving
// O(1) access to the leftmost (earliest-deadline) group and O(log n)
// insert/removal — the balanced structure spec.md §4.2 asks for.
type dlHeap []*DeadlineGroup

func (h dlHeap) Len() int            { return len(h) }
func (h dlHeap) Less(i, j int) bool  { return h[i].deadline < h[j].deadline }
func (h dlHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *dlHeap) Push(x any) {
	g := x.(*DeadlineGroup)
	g.heapIndex = len(*h)
	*h = append(*h, g)
}

func (h *dlHeap) Pop() any {
	old := *h
	n := len(old)
	g := old[n-1]
	old[n-1] = nil
	g.heapIndex = -1
	*h = old[:n-1]
	return g
}

// DeadlineIndex is an ordered map from absolute deadline to the group
// of requests sharing it, with O(1) leftmost lookup and O(log N)
// insert/remove. Every RqData whose dlGroup is non-nil appears in
// exactly one group whose deadline equals the RqData's deadline.
type DeadlineIndex struct {
	mu     sync.Mutex
	groups map[uint64]*DeadlineGroup
	heap   dlHeap
	len    int
}

// NewDeadlineIndex returns an empty index.
func NewDeadlineIndex() *DeadlineIndex {
	return &DeadlineIndex{groups: make(map[uint64]*DeadlineGroup)}
}

// Insert places rq's RqData at the given absolute deadline, appending
// to an existing group if one already exists at that deadline
// (earlier insertions into the same group dispatch first), or
// allocating a new one.
func (idx *DeadlineIndex) Insert(deadline uint64, d *RqData) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	g, ok := idx.groups[deadline]
	if !ok {
		g = &DeadlineGroup{deadline: deadline}
		idx.groups[deadline] = g
		heap.Push(&idx.heap, g)
	}
	d.deadline = deadline
	d.dlGroup = g
	d.elem = g.pushTail(d)
	idx.len++
}

// Remove detaches rq's RqData from its group; if the group's list
// becomes empty, the group is erased from the index.
func (idx *DeadlineIndex) Remove(d *RqData) {
	if d == nil || d.dlGroup == nil {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()

	g := d.dlGroup
	g.remove(d.elem)
	d.dlGroup = nil
	d.elem = nil
	idx.len--

	if g.empty() {
		delete(idx.groups, g.deadline)
		if g.heapIndex >= 0 {
			heap.Remove(&idx.heap, g.heapIndex)
		}
	}
}

// PopLeftmost removes and returns the first RqData of the
// earliest-deadline group (FIFO within that group), or nil if the
// index is empty.
func (idx *DeadlineIndex) PopLeftmost() *RqData {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.popLeftmostLocked()
}

func (idx *DeadlineIndex) popLeftmostLocked() *RqData {
	if len(idx.heap) == 0 {
		return nil
	}
	g := idx.heap[0]
	d := g.popHead()
	d.dlGroup = nil
	d.elem = nil
	idx.len--
	if g.empty() {
		delete(idx.groups, g.deadline)
		heap.Remove(&idx.heap, g.heapIndex)
	}
	return d
}

// WithLock runs fn holding the index lock, for callers (bio_merge)
// that must serialize a host merge attempt against concurrent insert
// and refill activity per spec.md §4.5/§5's lock hierarchy.
func (idx *DeadlineIndex) WithLock(fn func()) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	fn()
}

// Peek returns the first RqData of the leftmost group without
// removing it, or nil if the index is empty.
func (idx *DeadlineIndex) Peek() *RqData {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if len(idx.heap) == 0 {
		return nil
	}
	return idx.heap[0].head.data
}

// Refill drains the index from the leftmost deadline under a single
// lock acquisition, matching spec.md §4.3 (refill happens entirely
// under the index lock so it cannot interleave with a concurrent
// insert). For each candidate it computes a tentative running total
// (current + candidate's predicted latency) and asks accept whether to
// take it; accept returning false stops the drain without consuming
// that candidate. The very first candidate, if any, is still offered
// to accept — callers implement "always take at least one" by
// special-casing an empty taken slice in their own accept closure.
func (idx *DeadlineIndex) Refill(current uint64, accept func(d *RqData, tentative uint64) bool) []*RqData {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var out []*RqData
	for len(idx.heap) > 0 {
		g := idx.heap[0]
		d := g.head.data
		tentative := current + d.predLat
		if !accept(d, tentative) {
			break
		}
		current = tentative

		g.popHead()
		d.dlGroup = nil
		d.elem = nil
		idx.len--
		if g.empty() {
			delete(idx.groups, g.deadline)
			heap.Remove(&idx.heap, g.heapIndex)
		}
		out = append(out, d)
	}
	return out
}

// Len returns the number of requests currently indexed.
func (idx *DeadlineIndex) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.len
}
