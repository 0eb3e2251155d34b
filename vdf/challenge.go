package vdf

import (
	"encoding/binary"
	"math/big"

	"github.com/minio/sha256-simd"
	"github.com/pkg/errors"
)

// minPrimeBits rejects the (negligibly likely) tiny candidates; the windowed
// prover needs the challenge to exceed 2^k for its block size k.
const minPrimeBits = 65

// MaxPrimeSearch caps the number of hash candidates tried by HashPrime.
// Primes of 128 bits have density about 1/89, so the cap is never reached
// for honest inputs.
const MaxPrimeSearch = 1 << 16

var primeTag = []byte("prime")

// HashPrime derives the Fiat-Shamir challenge prime from the transcript:
// sha256("prime" || j || x || y || T) truncated to 128 bits, for the first
// counter j that yields a prime of at least 65 bits. Every public input is
// bound, so a proof cannot be replayed for another base, output or
// iteration count.
func HashPrime(x, y []byte, iterations uint64) (*big.Int, error) {
	return hashPrime(x, y, iterations, MaxPrimeSearch)
}

func hashPrime(x, y []byte, iterations, limit uint64) (*big.Int, error) {
	s := make([]byte, 0, len(primeTag)+8+len(x)+len(y)+8)
	z := new(big.Int)

	for j := uint64(0); j < limit; j++ {
		s = s[:0]
		s = append(s, primeTag...)
		s = binary.BigEndian.AppendUint64(s, j)
		s = append(s, x...)
		s = append(s, y...)
		s = binary.BigEndian.AppendUint64(s, iterations)

		checksum := sha256.Sum256(s)
		z.SetBytes(checksum[:16])

		if z.BitLen() >= minPrimeBits && z.ProbablyPrime(1) {
			return z, nil
		}
	}

	return nil, errors.Wrap(ErrChallengeDerivationFailed, "hash prime")
}
