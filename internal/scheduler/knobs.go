package scheduler

import (
	"fmt"
	"sync/atomic"
)

// Default tunable values, spec.md §6's defaults table.
const (
	DefaultGlobalLatencyWindow uint64 = 16_000_000 // ns
	DefaultRefillBelowRatio    uint32 = 50          // percent

	DefaultBatchLimitRead    uint32 = 16
	DefaultBatchLimitWrite   uint32 = 8
	DefaultBatchLimitDiscard uint32 = 1
	DefaultBatchLimitOther   uint32 = 1

	DefaultLatencyTargetRead    uint64 = 2_000_000     // 2ms
	DefaultLatencyTargetWrite   uint64 = 750_000_000    // 750ms
	DefaultLatencyTargetDiscard uint64 = 5_000_000_000  // 5s
	DefaultLatencyTargetOther   uint64 = 0

	AdiosVersion = "adios-go/1"
)

// Knobs holds the runtime-tunable parameters of spec.md §6. Reads of
// globalLatencyWindow and refillBelowRatio are lock-free (atomics);
// per-op limits and targets are small enough that a mutex would be
// overkill, so they're also atomics indexed by OpType.
type Knobs struct {
	globalLatencyWindow atomic.Uint64
	refillBelowRatio    atomic.Uint32

	batchLimit    [numOpTypes]atomic.Uint32
	latencyTarget [numOpTypes]atomic.Uint64

	// asyncDepth is async_depth from spec.md §4.7: the cap depth_updated
	// derives from the host's request pool size. Zero means
	// depth_updated hasn't run yet, in which case LimitDepth leaves
	// hintDepth uncapped.
	asyncDepth atomic.Uint32
}

// NewKnobs returns a Knobs populated with the spec's defaults.
func NewKnobs() *Knobs {
	k := &Knobs{}
	k.globalLatencyWindow.Store(DefaultGlobalLatencyWindow)
	k.refillBelowRatio.Store(DefaultRefillBelowRatio)
	k.batchLimit[OpRead].Store(DefaultBatchLimitRead)
	k.batchLimit[OpWrite].Store(DefaultBatchLimitWrite)
	k.batchLimit[OpDiscard].Store(DefaultBatchLimitDiscard)
	k.batchLimit[OpOther].Store(DefaultBatchLimitOther)
	k.latencyTarget[OpRead].Store(DefaultLatencyTargetRead)
	k.latencyTarget[OpWrite].Store(DefaultLatencyTargetWrite)
	k.latencyTarget[OpDiscard].Store(DefaultLatencyTargetDiscard)
	k.latencyTarget[OpOther].Store(DefaultLatencyTargetOther)
	return k
}

func (k *Knobs) GlobalLatencyWindow() uint64 { return k.globalLatencyWindow.Load() }
func (k *Knobs) SetGlobalLatencyWindow(v uint64) { k.globalLatencyWindow.Store(v) }

func (k *Knobs) RefillBelowRatio() uint32 { return k.refillBelowRatio.Load() }

// SetRefillBelowRatio rejects values outside 0-100, matching the
// "invalid knob value" error kind of spec.md §7.
func (k *Knobs) SetRefillBelowRatio(v uint32) error {
	if v > 100 {
		return fmt.Errorf("bq_refill_below_ratio: %d out of range [0,100]", v)
	}
	k.refillBelowRatio.Store(v)
	return nil
}

func (k *Knobs) BatchLimit(op OpType) uint32 {
	if !op.valid() {
		return 0
	}
	return k.batchLimit[op].Load()
}

// SetBatchLimit rejects zero, matching the "u32 > 0" type in §6's knob
// table.
func (k *Knobs) SetBatchLimit(op OpType, v uint32) error {
	if !op.valid() {
		return fmt.Errorf("batch_limit_%s: unknown op", op)
	}
	if v == 0 {
		return fmt.Errorf("batch_limit_%s: must be > 0", op)
	}
	k.batchLimit[op].Store(v)
	return nil
}

// AsyncDepth returns the current async_depth cap, or 0 if depth_updated
// hasn't run yet.
func (k *Knobs) AsyncDepth() uint32 { return k.asyncDepth.Load() }

func (k *Knobs) setAsyncDepth(v uint32) { k.asyncDepth.Store(v) }

func (k *Knobs) LatencyTarget(op OpType) uint64 {
	if !op.valid() {
		return 0
	}
	return k.latencyTarget[op].Load()
}

// LatencyTargetProfile mirrors the YAML-configured knob profile
// a caller may load from disk; zero-value fields are left at their
// compiled-in defaults by Apply.
type LatencyTargetProfile struct {
	GlobalLatencyWindow uint64 `yaml:"global_latency_window,omitempty"`
	RefillBelowRatio    uint32 `yaml:"bq_refill_below_ratio,omitempty"`
	BatchLimitRead      uint32 `yaml:"batch_limit_read,omitempty"`
	BatchLimitWrite     uint32 `yaml:"batch_limit_write,omitempty"`
	BatchLimitDiscard   uint32 `yaml:"batch_limit_discard,omitempty"`
	LatencyTargetRead    uint64 `yaml:"lat_target_read,omitempty"`
	LatencyTargetWrite   uint64 `yaml:"lat_target_write,omitempty"`
	LatencyTargetDiscard uint64 `yaml:"lat_target_discard,omitempty"`
}

// Apply loads a profile's non-zero fields into k. Writing lat_target_*
// additionally resets the op's learned base, per spec.md §6's note
// that a latency-target change invalidates the learned model.
func (k *Knobs) Apply(p LatencyTargetProfile, models [numOpTypes]*LatencyModel) error {
	if p.GlobalLatencyWindow != 0 {
		k.SetGlobalLatencyWindow(p.GlobalLatencyWindow)
	}
	if p.RefillBelowRatio != 0 {
		if err := k.SetRefillBelowRatio(p.RefillBelowRatio); err != nil {
			return err
		}
	}
	if p.BatchLimitRead != 0 {
		if err := k.SetBatchLimit(OpRead, p.BatchLimitRead); err != nil {
			return err
		}
	}
	if p.BatchLimitWrite != 0 {
		if err := k.SetBatchLimit(OpWrite, p.BatchLimitWrite); err != nil {
			return err
		}
	}
	if p.BatchLimitDiscard != 0 {
		if err := k.SetBatchLimit(OpDiscard, p.BatchLimitDiscard); err != nil {
			return err
		}
	}
	if p.LatencyTargetRead != 0 {
		k.SetLatencyTarget(OpRead, p.LatencyTargetRead, models[OpRead])
	}
	if p.LatencyTargetWrite != 0 {
		k.SetLatencyTarget(OpWrite, p.LatencyTargetWrite, models[OpWrite])
	}
	if p.LatencyTargetDiscard != 0 {
		k.SetLatencyTarget(OpDiscard, p.LatencyTargetDiscard, models[OpDiscard])
	}
	return nil
}

// SetLatencyTarget writes latency_target[op] and resets the op's
// learned base, since the target was baked into every outstanding
// prediction's deadline math.
func (k *Knobs) SetLatencyTarget(op OpType, v uint64, model *LatencyModel) {
	if !op.valid() {
		return
	}
	k.latencyTarget[op].Store(v)
	if model != nil {
		model.ResetBase()
	}
}

// FormatLatModel renders the lat_model_{op} RO knob's text.
func FormatLatModel(m *LatencyModel) string {
	return fmt.Sprintf("base : %d ns\nslope: %d ns/KiB\n", m.Base(), m.Slope())
}

// FormatBatchActualMax renders the batch_actual_max RO knob's text.
func FormatBatchActualMax(bb *BatchBuffer) string {
	return fmt.Sprintf(
		"total  : %d\nread   : %d\nwrite  : %d\ndiscard: %d\n",
		uint64(bb.ActualMax(OpRead))+uint64(bb.ActualMax(OpWrite))+uint64(bb.ActualMax(OpDiscard))+uint64(bb.ActualMax(OpOther)),
		bb.ActualMax(OpRead), bb.ActualMax(OpWrite), bb.ActualMax(OpDiscard),
	)
}
