package pacing

import (
	"context"
	"sync"
)

// UninterruptedAgent never suspends: every unit runs immediately, inline or
// on a worker. It optimizes for minimum conversion latency and accepts the
// tick-time spikes the budgeted agent exists to avoid. Swapping between the
// two changes timing only, never conversion results.
type UninterruptedAgent struct {
	mu      sync.Mutex
	workers WorkerSource
	state   State
}

var _ Agent = (*UninterruptedAgent)(nil)

// NewUninterruptedAgent creates an uninterrupted agent. A nil workers source
// disables the RunOnWorker path and everything runs inline.
func NewUninterruptedAgent(workers WorkerSource) *UninterruptedAgent {
	return &UninterruptedAgent{workers: workers}
}

func (a *UninterruptedAgent) Name() string { return "uninterrupted" }

func (a *UninterruptedAgent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *UninterruptedAgent) Decide(p Prediction) Verdict {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state = Running
	if p.WorkerEligible && a.workers != nil && a.workers.AvailableWorkers() > 0 {
		return Verdict{Decision: RunOnWorker}
	}
	return Verdict{Decision: RunNow}
}

// BreakPoint returns immediately; this agent never issues Suspend, so the
// only wait it honors is an already-cancelled context.
func (a *UninterruptedAgent) BreakPoint(ctx context.Context) error {
	return ctx.Err()
}
