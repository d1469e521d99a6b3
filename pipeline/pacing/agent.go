// Package pacing decides when transcoding work is allowed to run relative to
// the host's frame loop: immediately on the calling goroutine, handed to a
// background worker, or postponed to the next tick.
package pacing

import (
	"context"
	"time"
)

// Decision is the scheduler's answer for one pending unit of work.
type Decision uint8

const (
	// RunNow approves running the unit inline on the calling goroutine.
	RunNow Decision = iota
	// RunOnWorker approves handing the unit to a background worker.
	RunOnWorker
	// Suspend postpones the unit; the caller must wait on BreakPoint and ask
	// again at the next scheduling point.
	Suspend
)

func (d Decision) String() string {
	switch d {
	case RunNow:
		return "run-now"
	case RunOnWorker:
		return "run-on-worker"
	case Suspend:
		return "suspend"
	}
	return "decision(?)"
}

// State is the scheduler's position in its decision cycle, exposed for
// introspection and diagnostics.
type State uint8

const (
	Idle State = iota
	Evaluating
	Deferred
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Evaluating:
		return "evaluating"
	case Deferred:
		return "deferred"
	case Running:
		return "running"
	}
	return "state(?)"
}

// Prediction describes one pending unit of work at a scheduling point. Cost
// is the predicted wall-clock time, derived from a measured throughput
// constant times the input size.
type Prediction struct {
	Cost time.Duration
	// TimeCritical marks units whose inline execution must be held to the
	// tick budget. Non-critical units may run inline regardless.
	TimeCritical bool
	// WorkerEligible marks pure units that touch no host objects and may run
	// off the host goroutine.
	WorkerEligible bool
}

// Verdict is a Decision plus, for Suspend, the predicted cost still
// outstanding. Verdicts are recomputed at every scheduling point and never
// persisted.
type Verdict struct {
	Decision      Decision
	RemainingCost time.Duration
}

// WorkerSource reports background worker capacity; satisfied by jobs.Pool.
type WorkerSource interface {
	AvailableWorkers() int
}

// Agent is a scheduling policy. Implementations must be safe for concurrent
// use: many conversion calls may consult the same agent.
type Agent interface {
	// Decide answers a scheduling point for the described unit of work.
	Decide(p Prediction) Verdict
	// BreakPoint is the cancellable suspension point. A caller holding a
	// Suspend verdict parks here until the next tick (or until ctx is done)
	// and then asks again. Abandoning the wait via ctx leaves no partial
	// output: suspension happens only at whole-unit boundaries.
	BreakPoint(ctx context.Context) error
	// State reports the agent's current position in its decision cycle.
	State() State
	Name() string
}
