package vdf

import (
	"context"

	"github.com/pkg/errors"
)

// ProgressFunc receives the number of completed squarings.
type ProgressFunc func(done, total uint64)

type ChainOptions struct {
	// CheckpointInterval records x^(2^(i*interval)) for the windowed prover;
	// zero records nothing.
	CheckpointInterval uint64
	Progress           ProgressFunc
	ProgressEvery      uint64
}

// Trace is the result of a squaring chain: the output and the checkpoints
// taken along the way.
type Trace struct {
	Iterations  uint64
	Interval    uint64
	Checkpoints []Element
	Output      Element
}

// SquareChain computes x^(2^iterations) by exactly iterations dependent
// squarings. The context is polled before every squaring; on cancellation
// the partial state is discarded.
func SquareChain(
	ctx context.Context,
	x Element,
	iterations uint64,
	opts ChainOptions,
) (*Trace, error) {
	if iterations == 0 {
		return nil, errors.Wrap(ErrInvalidParameter, "square chain: zero iterations")
	}

	trace := &Trace{
		Iterations: iterations,
		Interval:   opts.CheckpointInterval,
	}
	if trace.Interval > 0 {
		trace.Checkpoints = make(
			[]Element,
			0,
			iterations/trace.Interval+1,
		)
		trace.Checkpoints = append(trace.Checkpoints, x)
	}

	done := ctx.Done()
	current := x
	for i := uint64(1); i <= iterations; i++ {
		select {
		case <-done:
			return nil, errors.Wrap(ctx.Err(), "square chain")
		default:
		}

		current = current.Square()

		if trace.Interval > 0 && i%trace.Interval == 0 && i < iterations {
			trace.Checkpoints = append(trace.Checkpoints, current)
		}

		if opts.Progress != nil && opts.ProgressEvery > 0 &&
			(i%opts.ProgressEvery == 0 || i == iterations) {
			opts.Progress(i, iterations)
		}
	}

	trace.Output = current
	return trace, nil
}
