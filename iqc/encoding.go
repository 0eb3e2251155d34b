//
// Copyright (c) 2019 harmony-one
//
// SPDX-License-Identifier: MIT
//

package iqc

import (
	"math/big"

	"github.com/pkg/errors"
)

var (
	ErrInvalidLength = errors.New("invalid form encoding length")
	ErrInvalidForm   = errors.New("invalid form")
)

// IntSize is the byte width of one coefficient for a discriminant of the
// given bit size, including one byte of room for the sign.
func IntSize(bits int) int {
	return (bits + 16) >> 4
}

// FormSize is the byte width of a serialized form (a || b).
func FormSize(bits int) int {
	return 2 * IntSize(bits)
}

// Serialize encodes the reduced form as two's complement a || b, each
// sign-extended to IntSize(bits).
func (f *Form) Serialize(bits int) []byte {
	r := f.Reduced()
	intSize := IntSize(bits)

	buf := make([]byte, intSize*2)
	copy(buf[:intSize], signBitFill(encodeTwosComplement(r.a), intSize))
	copy(buf[intSize:], signBitFill(encodeTwosComplement(r.b), intSize))

	return buf
}

// Deserialize is the inverse of Serialize. It accepts only canonical
// encodings: the decoded (a, b) must belong to discriminant and already be
// reduced, so every class has exactly one accepted byte string.
func Deserialize(buf []byte, discriminant *big.Int, bits int) (*Form, error) {
	intSize := IntSize(bits)
	if len(buf) != intSize*2 {
		return nil, errors.Wrap(ErrInvalidLength, "deserialize")
	}

	a := decodeTwosComplement(buf[:intSize])
	b := decodeTwosComplement(buf[intSize:])
	if a.Sign() <= 0 {
		return nil, errors.Wrap(ErrInvalidForm, "deserialize")
	}

	f, ok := NewFormFromAbDiscriminant(a, b, discriminant)
	if !ok || !f.IsReduced() {
		return nil, errors.Wrap(ErrInvalidForm, "deserialize")
	}

	return f, nil
}

func decodeTwosComplement(bytes []byte) *big.Int {
	if len(bytes) == 0 {
		return new(big.Int)
	}

	if bytes[0]&0x80 == 0 {
		return new(big.Int).SetBytes(bytes)
	}

	inverted := make([]byte, len(bytes))
	for i := range bytes {
		inverted[i] = bytes[i] ^ 0xff
	}

	n := new(big.Int).SetBytes(inverted)
	return n.Sub(n.Neg(n), bigOne)
}

func encodeTwosComplement(n *big.Int) []byte {
	if n.Sign() > 0 {
		bytes := n.Bytes()
		if bytes[0]&0x80 == 0 {
			return bytes
		}

		// positive value with the top bit set needs a leading zero
		buf := make([]byte, len(bytes)+1)
		copy(buf[1:], bytes)
		return buf
	}

	if n.Sign() < 0 {
		// invert |n| - 1, padding with 0xff when the top bit is clear
		nMinus1 := new(big.Int).Neg(n)
		nMinus1.Sub(nMinus1, bigOne)
		bytes := nMinus1.Bytes()
		if len(bytes) == 0 {
			return []byte{0xff}
		}

		for i := range bytes {
			bytes[i] ^= 0xff
		}
		if bytes[0]&0x80 != 0 {
			return bytes
		}

		buf := make([]byte, len(bytes)+1)
		buf[0] = 0xff
		copy(buf[1:], bytes)
		return buf
	}

	return []byte{0x00}
}

func signBitFill(bytes []byte, targetLen int) []byte {
	if len(bytes) >= targetLen {
		return bytes[len(bytes)-targetLen:]
	}

	buf := make([]byte, targetLen)
	offset := targetLen - len(bytes)
	if bytes[0]&0x80 != 0 {
		for i := 0; i < offset; i++ {
			buf[i] = 0xff
		}
	}
	copy(buf[offset:], bytes)

	return buf
}
