//
// Copyright (c) 2019 harmony-one
// Copyright (c) 2023 Quilibrium, Inc.
//
// SPDX-License-Identifier: MIT
//

package vdf

import (
	"context"
	"math"
	"math/big"

	"github.com/pkg/errors"
)

type ProofStrategy string

const (
	// ProofStrategyWindowed evaluates pi from the checkpoints recorded during
	// the squaring chain, costing about T/k group operations.
	ProofStrategyWindowed ProofStrategy = "windowed"
	// ProofStrategyLongDivision derives one quotient bit of 2^T / l per step
	// in a second pass of T squarings. It needs no checkpoints.
	ProofStrategyLongDivision ProofStrategy = "longdivision"
)

func ParseProofStrategy(s string) (ProofStrategy, error) {
	switch ProofStrategy(s) {
	case ProofStrategyWindowed, "":
		return ProofStrategyWindowed, nil
	case ProofStrategyLongDivision:
		return ProofStrategyLongDivision, nil
	}

	return "", errors.Wrapf(ErrInvalidParameter, "unknown proof strategy %q", s)
}

const maxWindowBits = 20

// ApproximateParameters picks the window count l and block size k for T
// iterations, balancing T/k checkpoint multiplications against the l*2^(k+1)
// bucket work, with memory bounded near 10^7 checkpoints.
func ApproximateParameters(iterations uint64) (l int, k int) {
	logMemory := math.Log2(10000000)
	logT := math.Log2(float64(iterations))

	l = 1
	if logT-logMemory > 0 {
		l = int(math.Ceil(math.Pow(2, logMemory-20)))
	}

	// k = W(T*ln2 / 2l) with W(x) ~ ln x - ln ln x + 0.25
	intermediate := float64(iterations) * math.Ln2 / float64(2*l)
	k = 1
	if intermediate > 1 {
		w := math.Log(intermediate) - math.Log(math.Log(intermediate)) + 0.25
		if !math.IsNaN(w) && !math.IsInf(w, 0) {
			k = int(math.Round(w))
		}
	}

	if k < 1 {
		k = 1
	}
	if k > maxWindowBits {
		k = maxWindowBits
	}

	return l, k
}

// CheckpointInterval is the spacing of the checkpoints the windowed prover
// expects for the given iteration count.
func CheckpointInterval(iterations uint64) uint64 {
	l, k := ApproximateParameters(iterations)
	return uint64(k * l)
}

// Prove computes pi = x^(2^T // l) without materializing the exponent. The
// windowed strategy falls back to long division when trace carries no
// matching checkpoints. The result is checked against y before it is
// returned.
func Prove(
	ctx context.Context,
	group Group,
	x, y Element,
	iterations uint64,
	ell *big.Int,
	trace *Trace,
	strategy ProofStrategy,
) (Element, error) {
	if iterations == 0 {
		return nil, errors.Wrap(ErrInvalidParameter, "prove: zero iterations")
	}

	var proof Element
	switch strategy {
	case ProofStrategyWindowed, "":
		l, k := ApproximateParameters(iterations)
		if trace != nil && trace.Interval == uint64(k*l) &&
			uint64(len(trace.Checkpoints)) >= blockCount(iterations, k*l) {
			proof = evalWindowed(group, ell, iterations, k, l, trace.Checkpoints)
			break
		}
		fallthrough
	case ProofStrategyLongDivision:
		var err error
		proof, err = proveLongDivision(ctx, group, x, iterations, ell)
		if err != nil {
			return nil, errors.Wrap(err, "prove")
		}
	default:
		return nil, errors.Wrapf(ErrInvalidParameter, "prove: strategy %q", strategy)
	}

	if !CheckProof(x, y, proof, iterations, ell) {
		return nil, errors.Wrap(ErrProofConstructionFailed, "prove")
	}

	return proof, nil
}

func blockCount(iterations uint64, width int) uint64 {
	w := uint64(width)
	return (iterations + w - 1) / w
}

func proveLongDivision(
	ctx context.Context,
	group Group,
	x Element,
	iterations uint64,
	ell *big.Int,
) (Element, error) {
	done := ctx.Done()
	proof := group.Identity()
	r := big.NewInt(1)

	for i := uint64(0); i < iterations; i++ {
		select {
		case <-done:
			return nil, ctx.Err()
		default:
		}

		// b = 2r // l, r = 2r mod l
		r.Lsh(r, 1)
		proof = proof.Square()
		if r.Cmp(ell) >= 0 {
			r.Sub(r, ell)
			proof = proof.Mul(x)
		}
	}

	return proof, nil
}

// getBlock returns the i-th k-bit digit of 2^T // l, counted from the least
// significant end: (2^k * (2^(T - k(i+1)) mod l)) // l.
func getBlock(i uint64, k int, iterations uint64, ell *big.Int) int {
	e := new(big.Int).SetUint64(iterations - uint64(k)*(i+1))
	p := new(big.Int).Exp(big.NewInt(2), e, ell)
	p.Lsh(p, uint(k))
	return int(p.Quo(p, ell).Int64())
}

// evalWindowed computes x^(2^T // l) from checkpoints[i] = x^(2^(i*k*l)).
// The quotient is split into k-bit digits, and digits sharing a window
// position are bucketed so each checkpoint is multiplied in once.
func evalWindowed(
	group Group,
	ell *big.Int,
	iterations uint64,
	k, l int,
	checkpoints []Element,
) Element {
	k1 := k / 2
	k0 := k - k1
	blocks := blockCount(iterations, k*l)
	identity := group.Identity()

	x := identity
	ys := make([]Element, 1<<k)
	for j := l - 1; j >= 0; j-- {
		for s := 0; s < k; s++ {
			x = x.Square()
		}

		for b := range ys {
			ys[b] = identity
		}

		for i := uint64(0); i < blocks; i++ {
			digit := i*uint64(l) + uint64(j)
			if iterations < uint64(k)*(digit+1) {
				continue
			}

			b := getBlock(digit, k, iterations, ell)
			ys[b] = ys[b].Mul(checkpoints[i])
		}

		// prod_b ys[b]^b with b = b1*2^k0 + b0
		for b1 := 0; b1 < 1<<k1; b1++ {
			z := identity
			for b0 := 0; b0 < 1<<k0; b0++ {
				z = z.Mul(ys[b1<<k0+b0])
			}
			x = x.Mul(z.Exp(big.NewInt(int64(b1 << k0))))
		}

		for b0 := 0; b0 < 1<<k0; b0++ {
			z := identity
			for b1 := 0; b1 < 1<<k1; b1++ {
				z = z.Mul(ys[b1<<k0+b0])
			}
			x = x.Mul(z.Exp(big.NewInt(int64(b0))))
		}
	}

	return x
}
