package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUpdateTimerArmFiresOnce(t *testing.T) {
	var models [numOpTypes]*LatencyModel
	for i := range models {
		models[i] = NewLatencyModel()
		// Seed a sample directly: Input's cold-start path would set base
		// before the timer fires, and the check below would prove nothing.
		models[i].smallBuckets[20] = latencyBucket{count: 1, sumLatency: 1000}
	}
	timer := NewUpdateTimer(models)

	timer.Arm()
	timer.Arm() // coalesced: second call within the window is a no-op

	assert.Eventually(t, func() bool {
		return models[OpRead].Base() > 0
	}, time.Second, 5*time.Millisecond)
}

func TestUpdateTimerStopPreventsFire(t *testing.T) {
	var models [numOpTypes]*LatencyModel
	for i := range models {
		models[i] = NewLatencyModel()
	}
	timer := NewUpdateTimer(models)

	timer.Stop()
	timer.Arm()

	time.Sleep(150 * time.Millisecond)
	assert.False(t, models[OpRead].Ready())
}
