package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictBelowThresholdIsBase(t *testing.T) {
	m := NewLatencyModel()
	m.base = 1000
	m.slope = 5

	assert.Equal(t, uint64(1000), m.Predict(4096))
	assert.Equal(t, uint64(1000), m.Predict(100))
}

func TestPredictAboveThresholdAddsSlope(t *testing.T) {
	m := NewLatencyModel()
	m.base = 1000
	m.slope = 10

	// 4097 bytes: ceil((4097-4096)/1024) = 1 unit
	assert.Equal(t, uint64(1010), m.Predict(4097))
	// 4096+1024 = 5120 bytes: exactly 1 unit
	assert.Equal(t, uint64(1010), m.Predict(5120))
	// 5121 bytes: 2 units
	assert.Equal(t, uint64(1020), m.Predict(5121))
}

func TestPredictMonotone(t *testing.T) {
	m := NewLatencyModel()
	m.base = 500
	m.slope = 3

	var prev uint64
	for bs := uint32(0); bs < 20000; bs += 37 {
		got := m.Predict(bs)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestBucketIndexRegions(t *testing.T) {
	// m == p lands at the canonical midpoint of the first region.
	assert.Equal(t, 20, bucketIndex(1000, 1000))
	// m == 0: index 0, per spec.md §8's boundary case.
	assert.Equal(t, 0, bucketIndex(0, 1000))
	// far tail: clamp to 63, per spec.md §8's boundary case.
	assert.Equal(t, 63, bucketIndex(1_000_000, 1))
}

func TestInputColdStartBootstraps(t *testing.T) {
	m := NewLatencyModel()
	require.Equal(t, uint64(0), m.Base())

	m.Input(4096, 1000, 0)

	assert.True(t, m.Ready())
	assert.Greater(t, m.Base(), uint64(0))
}

func TestInputLargeDroppedWithoutBaseOrPredLat(t *testing.T) {
	m := NewLatencyModel()
	m.Input(8192, 5000, 1000) // base == 0: dropped

	var total uint64
	for _, b := range m.largeBuckets {
		total += b.count
	}
	assert.Zero(t, total)
}

func TestUpdateRecomputesBaseFromTrimmedMean(t *testing.T) {
	m := NewLatencyModel()
	// The first sample bootstraps base synchronously and zeroes the
	// bucket; feed exactly smallUpdateSampleGate more so the explicit
	// Update() below hits the sample-count gate rather than being a
	// no-op.
	for i := 0; i < smallUpdateSampleGate+1; i++ {
		m.Input(4096, 1000, 0)
	}
	m.Update()

	assert.InDelta(t, 1000, float64(m.Base()), 50)
}

func TestResetZeroesEverything(t *testing.T) {
	m := NewLatencyModel()
	m.Input(4096, 1000, 0)
	require.True(t, m.Ready())

	m.Reset()

	assert.False(t, m.Ready())
	assert.Zero(t, m.Slope())
}

func TestResetBaseOnlyClearsBase(t *testing.T) {
	m := NewLatencyModel()
	m.Input(4096, 1000, 0)
	m.base = 1000
	m.slope = 7

	m.ResetBase()

	assert.Zero(t, m.Base())
	assert.Equal(t, uint64(7), m.Slope())
}

func TestTrimBucketsProportionalCutoff(t *testing.T) {
	var buckets [numBuckets]latencyBucket
	buckets[0] = latencyBucket{count: 80, sumLatency: 80_000}
	buckets[1] = latencyBucket{count: 20, sumLatency: 20_000}

	// 90th percentile of 100 samples: threshold = 90.
	// Bucket 0 fully included (80 < 90); bucket 1 contributes 10/20 = 50%.
	res := trimBuckets(&buckets, 100, 90)

	assert.Equal(t, uint64(80+10), res.count)
	assert.Equal(t, uint64(80_000+10_000), res.sumLatency)
}
