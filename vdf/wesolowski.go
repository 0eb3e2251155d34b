package vdf

import (
	"context"

	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/iqc"
)

// Output is the VDF result y = x^(2^T) together with its proof.
type Output struct {
	Y     Element
	Proof Element
}

// Bytes encodes y || pi, each at the group's fixed element width.
func (o *Output) Bytes() []byte {
	buf := make([]byte, 0, 2*len(o.Y.Bytes()))
	buf = append(buf, o.Y.Bytes()...)
	return append(buf, o.Proof.Bytes()...)
}

// OutputSize is the exact length of an encoded Output for group.
func OutputSize(group Group) int {
	return 2 * group.ElementSize()
}

// OutputSizeFor is OutputSize for a group of the given kind and size,
// without deriving its parameters.
func OutputSizeFor(kind GroupKind, bits int) (int, error) {
	if bits < MinIntSizeBits || bits > MaxIntSizeBits {
		return 0, errors.Wrapf(ErrInvalidParameter, "output size: %d bits", bits)
	}

	switch kind {
	case GroupClass, "":
		return 2 * iqc.FormSize(bits), nil
	case GroupRSA:
		return 2 * ((bits + 7) >> 3), nil
	}

	return 0, errors.Wrapf(ErrInvalidParameter, "output size: group %q", kind)
}

// DecodeOutput splits and decodes y || pi. Any length mismatch or
// non-canonical element yields ErrMalformedProof.
func DecodeOutput(group Group, buf []byte) (*Output, error) {
	size := group.ElementSize()
	if len(buf) != 2*size {
		return nil, errors.Wrapf(
			ErrMalformedProof,
			"decode output: got %d bytes, want %d",
			len(buf),
			2*size,
		)
	}

	y, err := group.Decode(buf[:size])
	if err != nil {
		return nil, errors.Wrap(err, "decode output")
	}

	proof, err := group.Decode(buf[size:])
	if err != nil {
		return nil, errors.Wrap(err, "decode output")
	}

	return &Output{Y: y, Proof: proof}, nil
}

type GenerateOptions struct {
	Strategy      ProofStrategy
	Progress      ProgressFunc
	ProgressEvery uint64

	// zero means MaxPrimeSearch
	primeSearchLimit uint64
}

// Generate runs the squaring chain from x, derives the challenge and builds
// the proof.
func Generate(
	ctx context.Context,
	group Group,
	x Element,
	iterations uint64,
	opts GenerateOptions,
) (*Output, error) {
	chain := ChainOptions{
		Progress:      opts.Progress,
		ProgressEvery: opts.ProgressEvery,
	}
	if opts.Strategy == ProofStrategyWindowed || opts.Strategy == "" {
		chain.CheckpointInterval = CheckpointInterval(iterations)
	}

	trace, err := SquareChain(ctx, x, iterations, chain)
	if err != nil {
		return nil, errors.Wrap(err, "generate")
	}

	limit := opts.primeSearchLimit
	if limit == 0 {
		limit = MaxPrimeSearch
	}

	ell, err := hashPrime(x.Bytes(), trace.Output.Bytes(), iterations, limit)
	if err != nil {
		return nil, errors.Wrap(err, "generate")
	}

	proof, err := Prove(
		ctx,
		group,
		x,
		trace.Output,
		iterations,
		ell,
		trace,
		opts.Strategy,
	)
	if err != nil {
		return nil, errors.Wrap(err, "generate")
	}

	return &Output{Y: trace.Output, Proof: proof}, nil
}

// VerifyOutput decodes buf and verifies it against base x. Malformed input
// is reported as false.
func VerifyOutput(group Group, x Element, buf []byte, iterations uint64) bool {
	out, err := DecodeOutput(group, buf)
	if err != nil {
		return false
	}

	return Verify(x, out.Y, out.Proof, iterations)
}
