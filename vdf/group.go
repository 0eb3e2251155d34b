package vdf

import (
	"math/big"

	"github.com/pkg/errors"
)

type GroupKind string

const (
	// GroupClass is the class group of an imaginary quadratic order with a
	// seed-derived prime discriminant. Its order is unknown to everyone, so
	// no trusted setup is involved.
	GroupClass GroupKind = "classgroup"
	// GroupRSA is (Z/NZ)* modulo {1, -1} for an odd modulus N.
	GroupRSA GroupKind = "rsa"
)

func ParseGroupKind(s string) (GroupKind, error) {
	switch GroupKind(s) {
	case GroupClass, "":
		return GroupClass, nil
	case GroupRSA:
		return GroupRSA, nil
	}

	return "", errors.Wrapf(ErrInvalidParameter, "unknown group %q", s)
}

// Group holds immutable group parameters (the modulus and the base element).
// Implementations are safe for concurrent use.
type Group interface {
	Kind() GroupKind
	// Bits is the security parameter the group was derived for.
	Bits() int
	Generator() Element
	Identity() Element
	// ElementSize is the fixed byte width of Element.Bytes.
	ElementSize() int
	// Decode parses a canonical element encoding, rejecting anything that is
	// not exactly what Bytes would produce for some group element.
	Decode(buf []byte) (Element, error)
}

// Element is an immutable group element. Operations on elements of
// different groups panic with ErrGroupArithmetic.
type Element interface {
	Square() Element
	Mul(other Element) Element
	// Exp raises the element to a non-negative exponent.
	Exp(e *big.Int) Element
	Equal(other Element) bool
	Bytes() []byte
}

// Derive builds the group parameters of the given kind from seed and bits.
func Derive(kind GroupKind, seed []byte, bits int) (Group, error) {
	switch kind {
	case GroupClass, "":
		return DeriveClassGroup(seed, bits)
	case GroupRSA:
		return DeriveRSAGroup(seed, bits)
	}

	return nil, errors.Wrapf(ErrInvalidParameter, "unknown group %q", kind)
}

func validateParameters(seed []byte, bits int) error {
	if len(seed) == 0 {
		return errors.Wrap(ErrInvalidParameter, "empty seed")
	}

	if bits < MinIntSizeBits || bits > MaxIntSizeBits {
		return errors.Wrapf(
			ErrInvalidParameter,
			"bit size %d outside [%d, %d]",
			bits,
			MinIntSizeBits,
			MaxIntSizeBits,
		)
	}

	return nil
}
