package transcode

import "context"

// Executor runs an element-wise map over an index range. The transcoder
// assumes nothing about the executor beyond the ParallelFor contract:
// sub-ranges are independent and may run on any number of goroutines in any
// order. jobs.Pool implements this over its workers; SerialExecutor is the
// single-thread fallback.
type Executor interface {
	ParallelFor(ctx context.Context, n, grain int, fn func(start, end int) error) error
}

// SerialExecutor walks the sub-ranges on the calling goroutine, checking ctx
// between each. It exists as the fallback when no worker pool is wired in
// and as the reference against which parallel output is compared.
type SerialExecutor struct{}

var _ Executor = SerialExecutor{}

func (SerialExecutor) ParallelFor(ctx context.Context, n, grain int, fn func(start, end int) error) error {
	if grain <= 0 {
		grain = n
	}
	for start := 0; start < n; start += grain {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + grain
		if end > n {
			end = n
		}
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}
