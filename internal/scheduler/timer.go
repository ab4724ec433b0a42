package scheduler

import (
	"sync"
	"time"
)

// updateTimerCoalesceWindow is how far out complete() arms the timer,
// per spec.md §4.5.
const updateTimerCoalesceWindow = 100 * time.Millisecond

// UpdateTimer is the single coalescing timer of spec.md §4.6: armed
// from completion paths, it fires at most once per coalesce window and
// recomputes every LatencyModel, driving periodic updates under light
// load where sample counts alone wouldn't trigger one.
type UpdateTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	models  [numOpTypes]*LatencyModel
	stopped bool
}

// NewUpdateTimer returns a timer that, once armed, recomputes models.
func NewUpdateTimer(models [numOpTypes]*LatencyModel) *UpdateTimer {
	return &UpdateTimer{models: models}
}

// Arm schedules a fire updateTimerCoalesceWindow from now unless one
// is already pending, matching "coalesced" in spec.md §4.5: repeated
// completions within the window collapse to a single update pass.
func (t *UpdateTimer) Arm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.pending {
		return
	}
	t.pending = true
	t.timer = time.AfterFunc(updateTimerCoalesceWindow, t.fire)
}

func (t *UpdateTimer) fire() {
	t.mu.Lock()
	t.pending = false
	stopped := t.stopped
	t.mu.Unlock()
	if stopped {
		return
	}
	for _, m := range t.models {
		m.Update()
	}
}

// Stop cancels any pending fire and prevents future arming, called
// from exit_sched.
func (t *UpdateTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
}
