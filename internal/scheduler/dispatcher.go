package scheduler

// refill drains the DeadlineIndex into the inactive BatchBuffer page
// under per-op batch caps and the global latency window, implementing
// spec.md §4.3's Refill. It always takes at least one request if the
// index is nonempty, then stops once taking the next would push the
// running predicted-latency total over budget, or a per-op cap or an
// unready model is hit.
func (s *Scheduler) refill() bool {
	s.refillMu.Lock()
	defer s.refillMu.Unlock()

	page := s.batch.BeginRefill()
	window := s.knobs.GlobalLatencyWindow()
	start := s.totalPredLat.Load()

	taken := 0
	var perOpCount [numOpTypes]int
	got := s.index.Refill(start, func(d *RqData, tentative uint64) bool {
		if taken > 0 {
			model := s.models[d.op]
			switch {
			case !model.Ready():
				return false
			case perOpCount[d.op] >= int(s.knobs.BatchLimit(d.op)):
				return false
			case tentative > window:
				return false
			}
		}
		taken++
		perOpCount[d.op]++
		return true
	})

	if len(got) == 0 {
		return false
	}

	var added uint64
	for _, d := range got {
		s.batch.Append(page, d)
		added += d.predLat
	}
	s.totalPredLat.Add(added)
	s.batch.EndRefill(page)
	return true
}

// Dispatch returns the next Request to serve, or nil if the scheduler
// currently has none, implementing spec.md §4.3's Dispatch.
func (s *Scheduler) Dispatch() Handle {
	if d := s.pq.Pop(); d != nil {
		return d.rq
	}

	tpl := s.totalPredLat.Load()
	window := s.knobs.GlobalLatencyWindow()
	ratio := uint64(s.knobs.RefillBelowRatio())
	if !s.batch.MoreReady() && (tpl == 0 || tpl < window*ratio/100) {
		s.refill()
	}

	if d := s.batch.Next(); d != nil {
		return d.rq
	}

	if s.batch.FlipPage() {
		if d := s.batch.Next(); d != nil {
			return d.rq
		}
	}
	return nil
}
