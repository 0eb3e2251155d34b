//
// Copyright (c) 2019 harmony-one
// Copyright (c) 2023 Quilibrium, Inc.
//
// SPDX-License-Identifier: MIT
//

package iqc

import (
	"bytes"
	"encoding/binary"
	"math/big"
	"sync"

	"github.com/minio/sha256-simd"
)

type sieveEntry struct {
	p int64
	q int64
}

// m = 8*3*5*7*11*13; candidates are stepped by m so they stay in a residue
// class that is 7 mod 8 and coprime to the small primes.
const m = 8 * 3 * 5 * 7 * 11 * 13

const sieveSize = 1 << 16

var (
	tablesOnce sync.Once
	residues   []int64
	sieveInfo  []sieveEntry
)

func initTables() {
	tablesOnce.Do(func() {
		for x := int64(7); x < m; x += 8 {
			if x%3 != 0 && x%5 != 0 && x%7 != 0 && x%11 != 0 && x%13 != 0 {
				residues = append(residues, x)
			}
		}

		composite := make([]bool, sieveSize)
		bigM := big.NewInt(m)
		for p := 2; p < sieveSize; p++ {
			if composite[p] {
				continue
			}
			for i := p * p; i < sieveSize; i += p {
				composite[i] = true
			}
			if m%p == 0 {
				continue
			}

			q := new(big.Int).ModInverse(bigM, big.NewInt(int64(p)))
			sieveInfo = append(sieveInfo, sieveEntry{p: int64(p), q: q.Int64()})
		}
	})
}

// EntropyFromSeed expands seed into byteCount bytes with SHA-256 in counter
// mode: sha256(seed || uint16 counter), blocks concatenated.
func EntropyFromSeed(seed []byte, byteCount uint32) []byte {
	buffer := bytes.Buffer{}
	bufferSize := uint32(0)

	extra := uint16(0)
	block := make([]byte, len(seed)+2)
	copy(block, seed)
	for bufferSize <= byteCount {
		binary.BigEndian.PutUint16(block[len(seed):], extra)
		moreEntropy := sha256.Sum256(block)
		buffer.Write(moreEntropy[:])
		bufferSize += sha256.Size
		extra++
	}

	return buffer.Bytes()[:byteCount]
}

// CreateDiscriminant returns -p for a prime p of exactly length bits with
// p = 7 mod 8, derived deterministically from seed.
func CreateDiscriminant(seed []byte, length uint32) *big.Int {
	initTables()

	extra := length & 7
	byteCount := ((length + 7) >> 3) + 2
	entropy := EntropyFromSeed(seed, byteCount)

	n := new(big.Int).SetBytes(entropy[:len(entropy)-2])
	n.Rsh(n, uint((8-extra)&7))
	n.SetBit(n, int(length-1), 1)
	n.Sub(n, new(big.Int).Mod(n, big.NewInt(m)))

	residue := residues[int(binary.BigEndian.Uint16(entropy[len(entropy)-2:]))%len(residues)]
	n.Add(n, big.NewInt(residue))

	step := new(big.Int).Mul(big.NewInt(m), big.NewInt(sieveSize))
	t := new(big.Int)
	bp := new(big.Int)
	for {
		sieve := make([]bool, sieveSize)
		negN := new(big.Int).Neg(n)

		for _, v := range sieveInfo {
			// i = -n * m^-1 (mod p), so that n + m*i = 0 (mod p)
			bp.SetInt64(v.p)
			i := (new(big.Int).Mod(negN, bp).Int64() * v.q) % v.p

			for i < sieveSize {
				sieve[i] = true
				i += v.p
			}
		}

		for i, composite := range sieve {
			if composite {
				continue
			}

			t.Mul(big.NewInt(m), big.NewInt(int64(i)))
			t.Add(t, n)
			if t.ProbablyPrime(1) {
				return new(big.Int).Neg(t)
			}
		}

		n.Add(n, step)
	}
}
