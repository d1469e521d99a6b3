package datauri

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spaghettifunk/travaso/pipeline/jobs"
	"github.com/spaghettifunk/travaso/pipeline/pacing"
)

// Calibrated base64 decode throughputs, in bytes per second. Editor
// processes measure markedly slower than production builds, so the two carry
// distinct constants.
const (
	ProductionDecodeRate = 512 << 20
	EditorDecodeRate     = 128 << 20
)

var (
	ErrMalformedURI = errors.New("malformed data uri")
)

// Resolver decodes data URIs. The zero value is usable: no pool, default
// pacing agent, production decode rate.
type Resolver struct {
	agent pacing.Agent
	pool  *jobs.Pool
	rate  int64
}

type Option func(*Resolver)

// WithAgent overrides the process default pacing agent for this resolver.
func WithAgent(a pacing.Agent) Option {
	return func(r *Resolver) { r.agent = a }
}

// WithPool wires in the worker pool used for RunOnWorker verdicts.
func WithPool(p *jobs.Pool) Option {
	return func(r *Resolver) { r.pool = p }
}

// WithDecodeRate overrides the calibrated decode throughput (bytes/second).
func WithDecodeRate(bytesPerSecond int64) Option {
	return func(r *Resolver) { r.rate = bytesPerSecond }
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{rate: ProductionDecodeRate}
	for _, o := range opts {
		o(r)
	}
	return r
}

// predict converts a payload length to a wall-clock decode estimate.
func (r *Resolver) predict(payloadLen int) time.Duration {
	return time.Duration(int64(payloadLen) * int64(time.Second) / r.rate)
}

// Decode resolves a data URI to its decoded bytes. Malformed input or a
// decode whose output length misses the predicted length returns a nil
// buffer and an error; a partially filled buffer is never returned. The
// pacing agent decides where and when the decode runs; suspension happens
// only between whole decode calls.
func (r *Resolver) Decode(ctx context.Context, uri string) ([]byte, error) {
	desc, ok := TryDescriptor(uri)
	if !ok {
		return nil, ErrMalformedURI
	}
	return r.DecodeDescribed(ctx, uri, desc)
}

// DecodeDescribed is Decode for callers that already probed the descriptor.
func (r *Resolver) DecodeDescribed(ctx context.Context, uri string, desc Descriptor) ([]byte, error) {
	agent := r.agent
	if agent == nil {
		agent = pacing.Default()
	}

	payload := uri[desc.PayloadStart:]

	pred := pacing.Prediction{
		Cost:           r.predict(len(payload)),
		TimeCritical:   true,
		WorkerEligible: r.pool != nil,
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		verdict := agent.Decide(pred)
		switch verdict.Decision {
		case pacing.RunNow:
			return decodePayload(payload, desc.DecodedLength)

		case pacing.RunOnWorker:
			return r.decodeOnPool(ctx, payload, desc.DecodedLength)

		case pacing.Suspend:
			if err := agent.BreakPoint(ctx); err != nil {
				return nil, err
			}
			if verdict.RemainingCost > 0 {
				pred.Cost = verdict.RemainingCost
			}
		}
	}
}

// decodePayload decodes into a buffer pre-sized from the descriptor. Any
// failure invalidates the whole output.
func decodePayload(payload string, decodedLen int) ([]byte, error) {
	buf := make([]byte, decodedLen)
	n, err := base64.StdEncoding.Decode(buf, []byte(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedURI, err.Error())
	}
	if n != decodedLen {
		return nil, fmt.Errorf("%w: decoded %d bytes, expected %d", ErrMalformedURI, n, decodedLen)
	}
	return buf, nil
}

// decodeOnPool runs the decode as a pool task and waits for it, honoring
// ctx. The task itself is not cancellable mid-decode; abandoning the wait
// just discards the result.
func (r *Resolver) decodeOnPool(ctx context.Context, payload string, decodedLen int) ([]byte, error) {
	type outcome struct {
		buf []byte
		err error
	}
	done := make(chan outcome, 1)

	r.pool.Submit(jobs.Task{
		ID: uuid.New(),
		Run: func() error {
			buf, err := decodePayload(payload, decodedLen)
			done <- outcome{buf: buf, err: err}
			return nil
		},
	})

	select {
	case out := <-done:
		return out.buf, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
