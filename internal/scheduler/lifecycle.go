package scheduler

import "time"

// Prepare allocates and attaches a zeroed RqData to rq, the
// prepare_request hook of spec.md §4.5. Safe to call more than once;
// a request that already carries metadata is left untouched.
func (s *Scheduler) Prepare(rq Handle) {
	if rq.SchedMeta() != nil {
		return
	}
	rq.SetSchedMeta(&RqData{rq: rq})
}

// Insert is the insert_requests hook: atHead pushes rq onto the
// priority-queue bypass path; otherwise it attempts a host merge
// before computing a deadline and placing rq in the DeadlineIndex.
func (s *Scheduler) Insert(rq Handle, atHead bool) error {
	if s.exited.Load() {
		return ErrShuttingDown
	}
	d := rq.SchedMeta()
	if d == nil {
		return ErrNoRequest
	}

	if atHead {
		s.pq.Push(d)
		return nil
	}

	if s.BioMerge(rq) {
		return nil
	}

	s.indexInsert(rq, d)
	return nil
}

// BioMerge is the bio_merge hook: it calls into the host's merge
// primitive under the index lock and, if the host reports a second
// in-flight request made redundant by the merge, frees it via
// MergedRequests. Returns false with no effect when no merger is
// configured or the merge attempt fails.
func (s *Scheduler) BioMerge(rq Handle) bool {
	if s.merger == nil {
		return false
	}

	var merged bool
	var redundant Handle
	s.index.WithLock(func() {
		merged, redundant = s.merger.TryMerge(rq)
	})
	if !merged {
		return false
	}
	if redundant != nil {
		s.MergedRequests(rq, redundant)
	}
	return true
}

// indexInsert computes block size, predicted latency, and absolute
// deadline for rq and places it in the DeadlineIndex, per
// DeadlineIndex.insert in spec.md §4.2.
func (s *Scheduler) indexInsert(rq Handle, d *RqData) {
	op := rq.Op()
	if !op.valid() {
		op = OpOther
	}
	bs := rq.ByteLen()
	model := s.models[op]
	pred := model.Predict(bs)

	d.op = op
	d.blockSize = bs
	d.predLat = pred

	deadline := uint64(rq.SubmitTimeNs()) + s.knobs.LatencyTarget(op) + pred
	s.index.Insert(deadline, d)
}

// MergeKind distinguishes the two merge directions for RequestMerged.
type MergeKind int

const (
	FrontMerge MergeKind = iota
	BackMerge
)

// RequestMerged is the request_merged hook: a front merge changes rq's
// start time and length, so its deadline must be recomputed; a back
// merge leaves the deadline valid and needs no action.
func (s *Scheduler) RequestMerged(rq Handle, kind MergeKind) {
	if kind != FrontMerge {
		return
	}
	d := rq.SchedMeta()
	if d == nil || !d.InIndex() {
		return
	}
	s.index.Remove(d)
	s.indexInsert(rq, d)
}

// MergedRequests is the merged_requests hook: next is being absorbed
// into rq and must be removed from every structure it could be in.
func (s *Scheduler) MergedRequests(rq Handle, next Handle) {
	nd := next.SchedMeta()
	if nd == nil {
		s.warnOnce(&s.mergedNoMetaWarn, "scheduler: merged_requests called with a request carrying no metadata")
		return
	}
	if nd.InIndex() {
		s.index.Remove(nd)
	}
	next.SetSchedMeta(nil)
}

// Complete is the completed_request hook: it retires rq.pred_lat from
// total_pred_lat, feeds the observed latency into the op's model when
// a start-of-service timestamp is available, and arms the update
// timer for a coalesced recompute.
func (s *Scheduler) Complete(rq Handle, now time.Time) {
	d := rq.SchedMeta()
	if d == nil {
		return
	}

	s.subPredLat(d.predLat)
	predLat := d.predLat

	start := rq.StartServiceNs()
	if d.blockSize > 0 && start > 0 {
		latency := uint64(now.UnixNano() - start)
		model := s.models[d.op]
		model.Input(d.blockSize, latency, predLat)
		s.timer.Arm()
	}
}

// subPredLat atomically subtracts predLat from total_pred_lat,
// clamping at zero rather than wrapping if a race made it momentarily
// stale.
func (s *Scheduler) subPredLat(predLat uint64) {
	for {
		old := s.totalPredLat.Load()
		next := uint64(0)
		if predLat < old {
			next = old - predLat
		}
		if s.totalPredLat.CompareAndSwap(old, next) {
			return
		}
	}
}

// Finish is the finish_request hook: it frees rq's RqData and clears
// the private slot.
func (s *Scheduler) Finish(rq Handle) error {
	if rq.SchedMeta() == nil {
		return ErrNoRequest
	}
	rq.SetSchedMeta(nil)
	return nil
}
