package vdf

import (
	"math/big"
)

var bigTwo = big.NewInt(2)

// CheckProof tests pi^l * x^r == y with r = 2^T mod l. It trusts ell; use
// Verify to bind the challenge to the transcript.
func CheckProof(x, y, proof Element, iterations uint64, ell *big.Int) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if r != ErrGroupArithmetic {
				panic(r)
			}
			ok = false
		}
	}()

	if x == nil || y == nil || proof == nil || ell == nil || ell.Sign() <= 0 {
		return false
	}

	r := new(big.Int).Exp(bigTwo, new(big.Int).SetUint64(iterations), ell)

	return proof.Exp(ell).Mul(x.Exp(r)).Equal(y)
}

// Verify re-derives the challenge prime from (x, y, T) and checks the proof.
// Its cost depends on log T only.
func Verify(x, y, proof Element, iterations uint64) bool {
	return verify(x, y, proof, iterations, MaxPrimeSearch)
}

func verify(x, y, proof Element, iterations, primeSearchLimit uint64) bool {
	if x == nil || y == nil || proof == nil || iterations == 0 {
		return false
	}

	ell, err := hashPrime(x.Bytes(), y.Bytes(), iterations, primeSearchLimit)
	if err != nil {
		return false
	}

	return CheckProof(x, y, proof, iterations, ell)
}
