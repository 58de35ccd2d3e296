package progress

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPhases = []string{"phase one", "phase two", "phase three", "phase four"}

func TestPipeline_Sample(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	p := New(WithClock(func() time.Time { return start }))
	p.Activate(20*time.Second, 500*time.Millisecond, testPhases, nil)

	testCases := []struct {
		name            string
		at              time.Time
		expectedPercent float64
		expectedPhase   int
		expectedDone    bool
	}{
		{name: "at start", at: start, expectedPercent: 0, expectedPhase: 0, expectedDone: false},
		{name: "quarter", at: start.Add(5 * time.Second), expectedPercent: 25, expectedPhase: 1, expectedDone: false},
		{name: "half", at: start.Add(10 * time.Second), expectedPercent: 50, expectedPhase: 2, expectedDone: false},
		{name: "just before end", at: start.Add(19 * time.Second), expectedPercent: 95, expectedPhase: 3, expectedDone: false},
		{name: "at end", at: start.Add(20 * time.Second), expectedPercent: 100, expectedPhase: 3, expectedDone: true},
		{name: "past end clamps", at: start.Add(time.Minute), expectedPercent: 100, expectedPhase: 3, expectedDone: true},
		{name: "before start clamps", at: start.Add(-time.Second), expectedPercent: 0, expectedPhase: 0, expectedDone: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			snap := p.Sample(tc.at)
			assert.InDelta(t, tc.expectedPercent, snap.PercentComplete, 0.001)
			assert.Equal(t, tc.expectedPhase, snap.ActivePhaseIndex)
			assert.Equal(t, testPhases[tc.expectedPhase], snap.ActivePhase)
			assert.Equal(t, tc.expectedDone, snap.IsComplete)
		})
	}
}

func TestPipeline_SampleMonotonic(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	p := New(WithClock(func() time.Time { return start }))
	p.Activate(10*time.Second, 0, testPhases, nil)

	prev := -1.0
	prevPhase := -1
	for elapsed := time.Duration(0); elapsed <= 12*time.Second; elapsed += 250 * time.Millisecond {
		snap := p.Sample(start.Add(elapsed))
		require.GreaterOrEqual(t, snap.PercentComplete, prev)
		require.GreaterOrEqual(t, snap.ActivePhaseIndex, prevPhase)
		prev = snap.PercentComplete
		prevPhase = snap.ActivePhaseIndex
	}
}

func TestPipeline_SingleShotHasNoPhases(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	p := New(WithClock(func() time.Time { return start }))
	p.Activate(4*time.Second, 0, nil, nil)

	snap := p.Sample(start.Add(2 * time.Second))
	assert.InDelta(t, 50, snap.PercentComplete, 0.001)
	assert.Equal(t, 0, snap.ActivePhaseIndex)
	assert.Empty(t, snap.ActivePhase)
}

func TestPipeline_CompletionFiresOnceAfterSettle(t *testing.T) {
	var mu sync.Mutex
	fired := 0

	p := New()
	p.Activate(20*time.Millisecond, 10*time.Millisecond, testPhases, func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fired == 1
	}, time.Second, 5*time.Millisecond)

	// The timer must not rearm.
	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, fired)
}

func TestPipeline_CancelPreventsCompletion(t *testing.T) {
	var mu sync.Mutex
	fired := 0

	p := New()
	p.Activate(15*time.Millisecond, 5*time.Millisecond, nil, func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})
	p.Cancel()

	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, fired)
}

func TestPipeline_NoCallbackWithoutOnComplete(t *testing.T) {
	p := New()
	p.Activate(5*time.Millisecond, 0, nil, nil)

	// Must not panic once the duration elapses without a callback.
	time.Sleep(30 * time.Millisecond)
	assert.True(t, p.SampleNow().IsComplete)
}
