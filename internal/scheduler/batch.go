package scheduler

import "sync"

// batchPage is one of BatchBuffer's two double-buffered halves: one
// FIFO per OpType plus the batch_count the refill loop stops at.
type batchPage struct {
	items [numOpTypes][]*RqData
	pos   [numOpTypes]int // dispatch cursor into items[op]
}

func (p *batchPage) reset() {
	for i := range p.items {
		p.items[i] = p.items[i][:0]
		p.pos[i] = 0
	}
}

func (p *batchPage) count(op OpType) int {
	return len(p.items[op]) - p.pos[op]
}

func (p *batchPage) empty() bool {
	for op := range p.items {
		if p.count(OpType(op)) > 0 {
			return false
		}
	}
	return true
}

// BatchBuffer is the double-buffered dispatch queue of spec.md §4.3:
// two pages, each holding per-OpType FIFOs, with refill filling the
// inactive page while dispatch drains the active one. active_page and
// more_ready are the only fields read by dispatch and written by
// refill, so they live behind their own short critical sections rather
// than the per-page slices, which only one side touches at a time.
type BatchBuffer struct {
	mu         sync.Mutex
	pages      [2]batchPage
	activePage int
	moreReady  bool

	// batchActualMax is the high-water mark, per OpType, of the number
	// of requests a single refill placed into a page. Surfaced read-only
	// as the batch_actual_max knob.
	batchActualMax [numOpTypes]uint32
}

// NewBatchBuffer returns an empty, two-page buffer.
func NewBatchBuffer() *BatchBuffer {
	return &BatchBuffer{}
}

// InactivePage returns the page index refill should fill next.
func (b *BatchBuffer) InactivePage() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return 1 - b.activePage
}

// BeginRefill clears the inactive page and returns its index, ready
// for Append calls.
func (b *BatchBuffer) BeginRefill() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	inactive := 1 - b.activePage
	b.pages[inactive].reset()
	return inactive
}

// Append places d into page's FIFO for its op type. Called by refill
// only, outside the buffer's own lock (refill holds the DeadlineIndex
// lock for the whole drain instead); page indices are stable for the
// duration of one refill so this is safe without additional locking
// as long as no concurrent Dispatch touches the same page, which
// EndRefill's page flip guarantees.
func (b *BatchBuffer) Append(page int, d *RqData) {
	p := &b.pages[page]
	p.items[d.op] = append(p.items[d.op], d)
}

// EndRefill records per-op high-water marks for the page just filled
// and flips it live, setting more_ready so a dispatch already in
// progress on the old page knows to continue once it drains.
func (b *BatchBuffer) EndRefill(page int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := &b.pages[page]
	for op := 0; op < numOpTypes; op++ {
		if n := uint32(len(p.items[op])); n > b.batchActualMax[op] {
			b.batchActualMax[op] = n
		}
	}
	b.activePage = page
	b.moreReady = true
}

// MoreReady peeks the more_ready flag without clearing it, for
// dispatch's refill-trigger check (spec.md §4.3 step 2).
func (b *BatchBuffer) MoreReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.moreReady
}

// FlipPage flips the active page and clears more_ready if it was set,
// reporting whether a flip happened (spec.md §4.3 step 4).
func (b *BatchBuffer) FlipPage() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.moreReady {
		return false
	}
	b.activePage ^= 1
	b.moreReady = false
	return true
}

// ActivePageEmpty reports whether the currently active page has
// nothing left to dispatch for any op type.
func (b *BatchBuffer) ActivePageEmpty() bool {
	b.mu.Lock()
	page := b.activePage
	b.mu.Unlock()
	return b.pages[page].empty()
}

// Next returns the next request to dispatch from the active page,
// scanning op types in dispatchOrder, or nil if the active page has
// nothing left.
func (b *BatchBuffer) Next() *RqData {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := &b.pages[b.activePage]
	for _, op := range dispatchOrder {
		if p.pos[op] < len(p.items[op]) {
			d := p.items[op][p.pos[op]]
			p.pos[op]++
			return d
		}
	}
	return nil
}

// PageCount returns how many requests page currently holds for op.
// Only valid to call while that page is the inactive one, i.e. from
// within a single in-progress refill (callers serialize refills
// themselves; BatchBuffer only serializes the active/inactive flip).
func (b *BatchBuffer) PageCount(page int, op OpType) int {
	return len(b.pages[page].items[op])
}

// ActualMax returns the high-water mark of requests placed into a
// single page for op, backing the batch_actual_max knob.
func (b *BatchBuffer) ActualMax(op OpType) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.batchActualMax[op]
}

// ResetStats zeroes the batch_actual_max high-water marks, driven by
// the reset_bq_stats knob.
func (b *BatchBuffer) ResetStats() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.batchActualMax {
		b.batchActualMax[i] = 0
	}
}
