// Package transcode applies element codec conversions across whole strided
// buffers, partitioning the element range into independent sub-ranges and
// consulting a pacing agent before any of them run.
package transcode

import (
	"context"
	"encoding/binary"
	"fmt"
	m "math"
	"sync"
	"time"

	"github.com/spaghettifunk/travaso/pipeline/codec"
	"github.com/spaghettifunk/travaso/pipeline/math"
	"github.com/spaghettifunk/travaso/pipeline/mesh"
	"github.com/spaghettifunk/travaso/pipeline/pacing"
)

const (
	// DefaultGrain is the sub-range size in work units; large enough to
	// amortize dispatch overhead, small enough to spread across workers.
	DefaultGrain = 4096

	// DefaultElementCost is the calibrated per-element conversion cost used
	// to predict a job's wall-clock time.
	DefaultElementCost = 25 * time.Nanosecond
)

// Result summarizes one completed job.
type Result struct {
	// Elements converted (destination elements for index jobs).
	Elements int
	// Extents holds converted-position bounds when the job asked for them.
	Extents *math.Extents3D
}

// Transcoder runs ConversionJobs. The zero-value options give a serial,
// default-agent transcoder; hosts wire in their pool and agent once and
// reuse the transcoder across jobs.
type Transcoder struct {
	agent      pacing.Agent
	exec       Executor
	grain      int
	perElement time.Duration
}

type Option func(*Transcoder)

// WithAgent overrides the process default pacing agent for this transcoder.
func WithAgent(a pacing.Agent) Option {
	return func(t *Transcoder) { t.agent = a }
}

// WithExecutor wires in the parallel executor used for RunOnWorker verdicts.
func WithExecutor(e Executor) Option {
	return func(t *Transcoder) { t.exec = e }
}

// WithGrain overrides the sub-range partition size.
func WithGrain(grain int) Option {
	return func(t *Transcoder) { t.grain = grain }
}

// WithElementCost overrides the calibrated per-element cost constant.
func WithElementCost(d time.Duration) Option {
	return func(t *Transcoder) { t.perElement = d }
}

func New(opts ...Option) *Transcoder {
	t := &Transcoder{
		grain:      DefaultGrain,
		perElement: DefaultElementCost,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Run executes one job to completion, honoring the pacing agent's verdicts:
// inline for RunNow, fanned out over the executor for RunOnWorker, parked at
// the agent's break point for Suspend and re-asked next tick. Cancelling ctx
// between scheduling points abandons the job before any of it runs; the
// engine never suspends mid-element.
func (t *Transcoder) Run(ctx context.Context, job Job) (Result, error) {
	if mesh.BoundsChecked {
		if err := job.Validate(); err != nil {
			return Result{}, fmt.Errorf("transcode: %w", err)
		}
	}

	units := job.units()

	agent := t.agent
	if agent == nil {
		agent = pacing.Default()
	}

	var ext *math.Extents3D
	if job.CollectExtents && job.Semantics == mesh.Position && job.Src.Shape == mesh.Vec3 {
		e := math.NewExtents3D()
		ext = &e
	}

	res := Result{Elements: elementsOut(&job)}

	pred := pacing.Prediction{
		Cost:           time.Duration(units) * t.perElement,
		TimeCritical:   job.TimeCritical,
		WorkerEligible: t.exec != nil,
	}

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		verdict := agent.Decide(pred)
		switch verdict.Decision {
		case pacing.RunNow:
			runRange(&job, 0, units, ext)
			res.Extents = ext
			return res, nil

		case pacing.RunOnWorker:
			var mu sync.Mutex
			err := t.exec.ParallelFor(ctx, units, t.grain, func(start, end int) error {
				var local *math.Extents3D
				if ext != nil {
					le := math.NewExtents3D()
					local = &le
				}
				runRange(&job, start, end, local)
				if local != nil {
					mu.Lock()
					ext.Merge(*local)
					mu.Unlock()
				}
				return nil
			})
			if err != nil {
				return Result{}, err
			}
			res.Extents = ext
			return res, nil

		case pacing.Suspend:
			if err := agent.BreakPoint(ctx); err != nil {
				return Result{}, err
			}
			if verdict.RemainingCost > 0 {
				pred.Cost = verdict.RemainingCost
			}
		}
	}
}

func elementsOut(job *Job) int {
	if job.Semantics == mesh.IndexQuad {
		return job.Src.Count / 4 * 6
	}
	return job.Src.Count
}

// runRange converts work units [start, end). Pure element-wise map for
// attribute jobs, primitive reordering for index jobs; no sub-range depends
// on another, so identical bytes come out however the range is split.
func runRange(job *Job, start, end int, ext *math.Extents3D) {
	switch job.Semantics {
	case mesh.Position:
		components := job.Src.Shape.ComponentCount()
		for i := start; i < end; i++ {
			dst := job.Dst.Element(i)
			codec.TransformPosition(dst, job.Src.Element(i), job.Src.ComponentType, components)
			if ext != nil {
				ext.Accumulate(math.Vec3{
					X: m.Float32frombits(binary.LittleEndian.Uint32(dst)),
					Y: m.Float32frombits(binary.LittleEndian.Uint32(dst[4:])),
					Z: m.Float32frombits(binary.LittleEndian.Uint32(dst[8:])),
				})
			}
		}

	case mesh.Normal:
		if job.Normalize {
			for i := start; i < end; i++ {
				codec.TransformNormal(job.Dst.Element(i), job.Src.Element(i), job.Src.ComponentType)
			}
		} else {
			for i := start; i < end; i++ {
				codec.TransformNormalFast(job.Dst.Element(i), job.Src.Element(i), job.Src.ComponentType)
			}
		}

	case mesh.Tangent:
		if job.Normalize {
			for i := start; i < end; i++ {
				codec.TransformTangent(job.Dst.Element(i), job.Src.Element(i), job.Src.ComponentType)
			}
		} else {
			for i := start; i < end; i++ {
				codec.TransformTangentFast(job.Dst.Element(i), job.Src.Element(i), job.Src.ComponentType)
			}
		}

	case mesh.TexCoord:
		for i := start; i < end; i++ {
			codec.TransformTexCoord(job.Dst.Element(i), job.Src.Element(i), job.Src.ComponentType)
		}

	case mesh.SkinWeight:
		for i := start; i < end; i++ {
			codec.CopySkinWeight(job.Dst.Element(i), job.Src.Element(i))
		}

	case mesh.SkinIndex:
		for i := start; i < end; i++ {
			codec.ConvertSkinIndex(job.Dst.Element(i), job.Src.Element(i), job.Src.ComponentType)
		}

	case mesh.Matrix:
		for i := start; i < end; i++ {
			codec.TransformMatrix(job.Dst.Element(i), job.Src.Element(i))
		}

	case mesh.GenericOpaque:
		n := job.Src.TightSize()
		for i := start; i < end; i++ {
			codec.CopyOpaque(job.Dst.Element(i), job.Src.Element(i), n)
		}

	case mesh.IndexTriangle:
		reverseTriangles(job, start, end)

	case mesh.IndexQuad:
		triangulateQuads(job, start, end)
	}
}
