package vdf

import (
	"context"
)

// IntSizeBits is the discriminant size used by the fixed-width helpers below.
const IntSizeBits = 2048

// SolutionSize is the byte length of a 2048-bit class group y || pi.
const SolutionSize = 516

// WesolowskiSolve solves and proves with the class group VDF for a 32-byte
// challenge. Outputs the concatenated solution and proof (in this order).
func WesolowskiSolve(
	ctx context.Context,
	challenge [32]byte,
	difficulty uint32,
) ([SolutionSize]byte, error) {
	out := [SolutionSize]byte{}

	group, err := DeriveClassGroup(challenge[:], IntSizeBits)
	if err != nil {
		return out, err
	}

	result, err := Generate(
		ctx,
		group,
		group.Generator(),
		uint64(difficulty),
		GenerateOptions{},
	)
	if err != nil {
		return out, err
	}

	copy(out[:], result.Bytes())
	return out, nil
}

// WesolowskiVerify verifies the output of WesolowskiSolve.
func WesolowskiVerify(
	challenge [32]byte,
	difficulty uint32,
	allegedSolution [SolutionSize]byte,
) bool {
	if difficulty == 0 {
		return false
	}

	group, err := DeriveClassGroup(challenge[:], IntSizeBits)
	if err != nil {
		return false
	}

	return VerifyOutput(
		group,
		group.Generator(),
		allegedSolution[:],
		uint64(difficulty),
	)
}
