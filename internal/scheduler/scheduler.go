package scheduler

import (
	"sync"
	"sync/atomic"

	"github.com/go-adios/adios/internal/interfaces"
)

// Merger is the host's merge collaborator (spec.md §3's "external
// merge primitive"). TryMerge attempts to fold rq into an existing
// request; when it succeeds and absorbs a second in-flight request,
// redundant names that request so the scheduler can remove it from its
// own structures via MergedRequests.
type Merger interface {
	TryMerge(rq Handle) (merged bool, redundant Handle)
}

// Scheduler wires together the four per-op LatencyModels, the
// DeadlineIndex, the double-buffered BatchBuffer, the PriorityQueue
// bypass path, the Knobs surface, and the UpdateTimer into the core
// described by spec.md §2. It has no knowledge of the transport that
// hands it Requests.
type Scheduler struct {
	models [numOpTypes]*LatencyModel
	index  *DeadlineIndex
	batch  *BatchBuffer
	pq     *PriorityQueue
	knobs  *Knobs
	timer  *UpdateTimer
	merger Merger
	logger interfaces.Logger

	totalPredLat atomic.Uint64
	exited       atomic.Bool

	// refillMu serializes refill() calls: a refill's BeginRefill,
	// Append, and EndRefill steps mutate the inactive page without
	// BatchBuffer's own lock held throughout, so only one refill may
	// run at a time.
	refillMu sync.Mutex

	// exitWithWorkWarn and mergedNoMetaWarn back the "assertions (warn
	// once)" rule of spec.md §7: each distinct internal-state
	// inconsistency logs at most once per Scheduler rather than once
	// per occurrence.
	exitWithWorkWarn sync.Once
	mergedNoMetaWarn sync.Once
}

// New returns a Scheduler with fresh models and default knobs. merger
// may be nil, in which case insert never attempts a merge. logger may
// be nil, in which case assertion warnings are dropped.
func New(merger Merger, logger interfaces.Logger) *Scheduler {
	s := &Scheduler{
		index:  NewDeadlineIndex(),
		batch:  NewBatchBuffer(),
		pq:     NewPriorityQueue(),
		knobs:  NewKnobs(),
		merger: merger,
		logger: logger,
	}
	for i := range s.models {
		s.models[i] = NewLatencyModel()
	}
	s.timer = NewUpdateTimer(s.models)
	return s
}

// Knobs returns the tunable-parameter surface.
func (s *Scheduler) Knobs() *Knobs { return s.knobs }

// Model returns the LatencyModel for op, or nil if op is invalid.
func (s *Scheduler) Model(op OpType) *LatencyModel {
	if !op.valid() {
		return nil
	}
	return s.models[op]
}

// BatchActualMax exposes the BatchBuffer high-water marks for the
// batch_actual_max knob.
func (s *Scheduler) BatchActualMax(op OpType) uint32 { return s.batch.ActualMax(op) }

// ResetBatchStats clears batch_actual_max high-water marks, driven by
// the reset_bq_stats knob.
func (s *Scheduler) ResetBatchStats() { s.batch.ResetStats() }

// ResetLatencyModels zeroes every op's learned model, driven by the
// reset_lat_model knob.
func (s *Scheduler) ResetLatencyModels() {
	for _, m := range s.models {
		m.Reset()
	}
}

// ApplyKnobProfile loads a LatencyTargetProfile, e.g. parsed from a
// YAML config file, into this scheduler's knob surface.
func (s *Scheduler) ApplyKnobProfile(p LatencyTargetProfile) error {
	return s.knobs.Apply(p, s.models)
}

// HasWork reports whether the scheduler currently holds any request in
// the priority queue, the deadline index, or either batch page.
func (s *Scheduler) HasWork() bool {
	if s.pq.Len() > 0 || s.index.Len() > 0 {
		return true
	}
	if !s.batch.ActivePageEmpty() {
		return true
	}
	// The inactive page can still hold requests only while more_ready
	// is set; while it is clear, refill may be writing that page.
	return s.batch.MoreReady() && !s.batch.pages[s.batch.InactivePage()].empty()
}

// ExitSched cancels the update timer. The host contract requires the
// priority queue be empty by this point; callers in a test harness can
// check PriorityQueueLen() themselves before calling this. A non-empty
// queue here is a host-contract violation, not something the core can
// correct, so it is logged once rather than returned as an error.
func (s *Scheduler) ExitSched() {
	if s.pq.Len() > 0 {
		s.warnOnce(&s.exitWithWorkWarn, "scheduler: exit_sched called with priority queue non-empty")
	}
	s.exited.Store(true)
	s.timer.Stop()
}

// warnOnce logs format/args through the injected logger the first time
// it is called for a given once, and is a no-op on every call after
// that or when no logger was configured.
func (s *Scheduler) warnOnce(once *sync.Once, format string, args ...interface{}) {
	once.Do(func() {
		if s.logger != nil {
			s.logger.Printf(format, args...)
		}
	})
}

// PriorityQueueLen reports the bypass queue's current length.
func (s *Scheduler) PriorityQueueLen() int { return s.pq.Len() }
