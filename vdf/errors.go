package vdf

import "github.com/pkg/errors"

var (
	// ErrInvalidParameter is returned when group derivation is asked for an
	// out of range security parameter or an empty seed.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrChallengeDerivationFailed means the hash-to-prime search ran past
	// its candidate cap.
	ErrChallengeDerivationFailed = errors.New("challenge derivation failed")
	// ErrProofConstructionFailed means the proof did not satisfy the
	// verification identity for the supplied output.
	ErrProofConstructionFailed = errors.New("proof construction failed")
	// ErrMalformedProof covers output buffers of the wrong length or with
	// non-canonical group elements. Verification maps it to false.
	ErrMalformedProof = errors.New("malformed proof")
	// ErrGroupArithmetic signals an element that does not belong to the group
	// it was combined with.
	ErrGroupArithmetic = errors.New("group arithmetic failed")
)

const (
	MinIntSizeBits = 128
	MaxIntSizeBits = 4096
)
