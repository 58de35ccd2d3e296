// Package progress implements the time-driven progress simulation shared by
// the verification-analysis, payment-processing and promo-claim screens.
package progress

import (
	"log/slog"
	"sync"
	"time"
)

// Snapshot is the result of sampling a running pipeline at a point in time.
type Snapshot struct {
	PercentComplete  float64 `json:"percent_complete"`
	ActivePhaseIndex int     `json:"active_phase_index"`
	ActivePhase      string  `json:"active_phase"`
	IsComplete       bool    `json:"is_complete"`
}

// Pipeline maps elapsed wall-clock time onto a progress percentage and a
// phase label. It is purely derived state: sampling never mutates anything,
// and pausing is not supported — only cancellation and a fresh restart.
type Pipeline struct {
	mu          sync.Mutex
	startedAt   time.Time
	duration    time.Duration
	settleDelay time.Duration
	phases      []string
	now         func() time.Time
	settleTimer *time.Timer
	canceled    bool
	fired       bool
	onComplete  func()
	log         *slog.Logger
}

// Option customizes a Pipeline at construction time.
type Option func(*Pipeline)

// WithClock overrides the wall clock, used by tests to sample
// deterministically without sleeping.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithLogger attaches a structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// New creates an inactive pipeline. Activate starts the clock.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Activate begins timing. The completion callback fires exactly once,
// settleDelay after the full duration has elapsed, unless Cancel is called
// first. Phases must be non-empty for phased pipelines; a single-shot
// pipeline (promo claim) passes a nil slice and ActivePhase stays empty.
func (p *Pipeline) Activate(duration, settleDelay time.Duration, phases []string, onComplete func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startedAt = p.now()
	p.duration = duration
	p.settleDelay = settleDelay
	p.phases = phases
	p.onComplete = onComplete
	p.canceled = false
	p.fired = false

	if onComplete != nil {
		p.settleTimer = time.AfterFunc(duration+settleDelay, p.fireCompletion)
	}

	if p.log != nil {
		p.log.Debug("progress pipeline activated",
			slog.Duration("duration", duration),
			slog.Int("phase_count", len(phases)))
	}
}

// Sample returns the derived progress state at the given instant.
func (p *Pipeline) Sample(at time.Time) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := at.Sub(p.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	snap := Snapshot{
		PercentComplete: 100,
		IsComplete:      elapsed >= p.duration,
	}
	if p.duration > 0 && elapsed < p.duration {
		snap.PercentComplete = float64(elapsed) / float64(p.duration) * 100
	}

	if n := len(p.phases); n > 0 {
		phaseDuration := p.duration / time.Duration(n)
		idx := n - 1
		if phaseDuration > 0 {
			if computed := int(elapsed / phaseDuration); computed < idx {
				idx = computed
			}
		}
		snap.ActivePhaseIndex = idx
		snap.ActivePhase = p.phases[idx]
	}

	return snap
}

// SampleNow samples against the pipeline's own clock.
func (p *Pipeline) SampleNow() Snapshot {
	p.mu.Lock()
	now := p.now()
	p.mu.Unlock()

	return p.Sample(now)
}

// Cancel stops timing and guarantees the completion callback will never
// fire, even if the settle timer has already expired and its goroutine is
// waiting on the mutex.
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.canceled = true
	if p.settleTimer != nil {
		p.settleTimer.Stop()
		p.settleTimer = nil
	}

	if p.log != nil {
		p.log.Debug("progress pipeline canceled")
	}
}

// Phases returns the configured phase labels.
func (p *Pipeline) Phases() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.phases
}

func (p *Pipeline) fireCompletion() {
	p.mu.Lock()
	if p.canceled || p.fired || p.onComplete == nil {
		p.mu.Unlock()
		return
	}
	p.fired = true
	done := p.onComplete
	p.mu.Unlock()

	done()
}
