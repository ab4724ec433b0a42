package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLogger records every Printf/Debugf call for assertion in tests.
type fakeLogger struct {
	printfCalls int
	lastFormat  string
}

func (l *fakeLogger) Printf(format string, args ...interface{}) {
	l.printfCalls++
	l.lastFormat = format
}

func (l *fakeLogger) Debugf(format string, args ...interface{}) {}

func TestExitSchedWarnsOnceWhenPriorityQueueNonEmpty(t *testing.T) {
	logger := &fakeLogger{}
	s := New(nil, logger)

	h := &fakeHandle{}
	s.Prepare(h)
	require.NoError(t, s.Insert(h, true))
	require.Equal(t, 1, s.PriorityQueueLen())

	s.ExitSched()
	assert.Equal(t, 1, logger.printfCalls)

	// A second ExitSched (e.g. a test harness calling it defensively)
	// must not log again.
	s.ExitSched()
	assert.Equal(t, 1, logger.printfCalls)
}

func TestExitSchedDoesNotWarnWhenPriorityQueueEmpty(t *testing.T) {
	logger := &fakeLogger{}
	s := New(nil, logger)

	s.ExitSched()
	assert.Equal(t, 0, logger.printfCalls)
}

func TestMergedRequestsWarnsOnceOnMissingMetadata(t *testing.T) {
	logger := &fakeLogger{}
	s := New(nil, logger)

	rq := &fakeHandle{}
	next := &fakeHandle{}

	s.MergedRequests(rq, next)
	assert.Equal(t, 1, logger.printfCalls)

	s.MergedRequests(rq, next)
	assert.Equal(t, 1, logger.printfCalls)
}

func TestBioMergeReturnsFalseWithoutMerger(t *testing.T) {
	s := New(nil, nil)
	assert.False(t, s.BioMerge(&fakeHandle{}))
}

func TestBioMergeFreesRedundantRequest(t *testing.T) {
	victim := &fakeHandle{}
	s := New(&alwaysMerge{redundant: victim}, nil)
	s.Prepare(victim)
	require.NoError(t, s.Insert(victim, false))
	require.True(t, victim.SchedMeta().InIndex())

	h := &fakeHandle{}
	s.Prepare(h)

	assert.True(t, s.BioMerge(h))
	assert.Nil(t, victim.SchedMeta())
}
