package pacing

import (
	"context"
	"sync"
	"time"
)

// Number of ticks folded into the rolling spend average.
const avgCount = 30

// tickStats keeps a rolling average of per-tick scheduler spend, mirroring
// the host's frame-time metrics so the allowance reacts to sustained
// overruns instead of single spikes.
type tickStats struct {
	samples [avgCount]time.Duration
	counter uint8
	avg     time.Duration
}

func (s *tickStats) record(spent time.Duration) {
	s.samples[s.counter] = spent
	if s.counter == avgCount-1 {
		var sum time.Duration
		for i := 0; i < avgCount; i++ {
			sum += s.samples[i]
		}
		s.avg = sum / avgCount
	}
	s.counter++
	s.counter %= avgCount
}

// BudgetedAgent holds inline work to a rolling per-tick time allowance and
// suspends whatever would exceed it, trading conversion latency for stable
// frame pacing. The host drives it by calling Tick once per frame.
type BudgetedAgent struct {
	mu      sync.Mutex
	budget  time.Duration
	spent   time.Duration
	stats   tickStats
	workers WorkerSource
	tick    chan struct{}
	state   State
}

var _ Agent = (*BudgetedAgent)(nil)

// NewBudgetedAgent creates a budgeted agent with the given per-tick time
// allowance. A nil workers source disables the RunOnWorker path.
func NewBudgetedAgent(budget time.Duration, workers WorkerSource) *BudgetedAgent {
	return &BudgetedAgent{
		budget:  budget,
		workers: workers,
		tick:    make(chan struct{}),
	}
}

func (a *BudgetedAgent) Name() string { return "budgeted" }

func (a *BudgetedAgent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// remaining is the unspent part of this tick's allowance, shrunk when the
// rolling average shows sustained overruns.
func (a *BudgetedAgent) remaining() time.Duration {
	allowance := a.budget
	if over := a.stats.avg - a.budget; over > 0 {
		allowance -= over
		if allowance < 0 {
			allowance = 0
		}
	}
	return allowance - a.spent
}

// Decide prefers a background worker whenever the unit is eligible and one is
// free, since that never blocks the tick. Inline execution is approved for
// non-critical units unconditionally and for critical units only while their
// cost fits the remaining allowance; everything else suspends.
func (a *BudgetedAgent) Decide(p Prediction) Verdict {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state = Evaluating

	if p.WorkerEligible && a.workers != nil && a.workers.AvailableWorkers() > 0 {
		a.state = Running
		return Verdict{Decision: RunOnWorker}
	}

	rem := a.remaining()
	if rem < 0 {
		rem = 0
	}
	if !p.TimeCritical || p.Cost <= rem {
		a.spent += p.Cost
		a.state = Running
		return Verdict{Decision: RunNow}
	}

	// Reserve what is left of this tick for the pending unit, so the
	// carried-over remainder shrinks every tick and a unit costlier than a
	// whole tick still completes after enough of them.
	a.spent += rem
	a.state = Deferred
	return Verdict{Decision: Suspend, RemainingCost: p.Cost - rem}
}

// Tick advances the agent by one host frame: the spend counter resets, the
// rolling stats absorb the finished tick, and every goroutine parked in
// BreakPoint wakes for its next scheduling point.
func (a *BudgetedAgent) Tick() {
	a.mu.Lock()
	a.stats.record(a.spent)
	a.spent = 0
	a.state = Idle
	wake := a.tick
	a.tick = make(chan struct{})
	a.mu.Unlock()

	close(wake)
}

// BreakPoint parks the caller until the next Tick. Cancelling ctx abandons
// the wait; since callers only reach here between whole units, abandonment
// leaves a consistent prefix of completed work and nothing else.
func (a *BudgetedAgent) BreakPoint(ctx context.Context) error {
	a.mu.Lock()
	a.state = Deferred
	wake := a.tick
	a.mu.Unlock()

	select {
	case <-wake:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
