package vdf

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/iqc"
)

const maxGeneratorAttempts = 64

var (
	modulusTag   = []byte("modulus")
	generatorTag = []byte("generator")
)

// RSAGroup is (Z/NZ)* / {1, -1}. Elements are represented by the smaller of
// x and N - x, which removes the order-two element -1 and with it the
// trivial (y, pi) -> (-y, -pi) malleability.
//
// A modulus derived from a seed is a random odd integer whose factorization
// nobody chose, but it is not guaranteed to be hard to factor; callers that
// need the full delay guarantee should pass an audited modulus to
// NewRSAGroup.
type RSAGroup struct {
	n         *big.Int
	half      *big.Int
	bits      int
	generator *rsaElement
	identity  *rsaElement
}

func DeriveRSAGroup(seed []byte, bits int) (*RSAGroup, error) {
	if err := validateParameters(seed, bits); err != nil {
		return nil, errors.Wrap(err, "derive rsa group")
	}

	byteCount := (bits + 7) >> 3
	entropy := iqc.EntropyFromSeed(
		append(append([]byte{}, modulusTag...), seed...),
		uint32(byteCount),
	)

	n := new(big.Int).SetBytes(entropy)
	n.Rsh(n, uint((8-bits&7)&7))
	n.SetBit(n, bits-1, 1)
	n.SetBit(n, 0, 1)

	g, err := NewRSAGroup(n, seed)
	return g, errors.Wrap(err, "derive rsa group")
}

// NewRSAGroup uses the given modulus and derives the base element from seed.
func NewRSAGroup(n *big.Int, seed []byte) (*RSAGroup, error) {
	if len(seed) == 0 {
		return nil, errors.Wrap(ErrInvalidParameter, "empty seed")
	}

	if n.Sign() <= 0 || n.Bit(0) == 0 {
		return nil, errors.Wrap(ErrInvalidParameter, "modulus must be odd")
	}

	bits := n.BitLen()
	if bits < MinIntSizeBits || bits > MaxIntSizeBits {
		return nil, errors.Wrapf(ErrInvalidParameter, "modulus has %d bits", bits)
	}

	g := &RSAGroup{
		n:    new(big.Int).Set(n),
		half: new(big.Int).Rsh(n, 1),
		bits: bits,
	}
	g.identity = &rsaElement{group: g, x: big.NewInt(1)}

	generator, err := g.deriveGenerator(seed)
	if err != nil {
		return nil, err
	}
	g.generator = generator

	return g, nil
}

// deriveGenerator hashes seed into [2, N-1] and retries on draws that are
// not units or that collapse to the identity.
func (g *RSAGroup) deriveGenerator(seed []byte) (*rsaElement, error) {
	span := new(big.Int).Sub(g.n, big.NewInt(3))
	if span.Sign() <= 0 {
		return nil, errors.Wrap(ErrInvalidParameter, "modulus too small")
	}

	input := make([]byte, 0, len(generatorTag)+4+len(seed))
	for attempt := uint32(0); attempt < maxGeneratorAttempts; attempt++ {
		input = input[:0]
		input = append(input, generatorTag...)
		input = binary.BigEndian.AppendUint32(input, attempt)
		input = append(input, seed...)

		entropy := iqc.EntropyFromSeed(input, uint32(g.ElementSize()+8))
		x := new(big.Int).SetBytes(entropy)
		x.Mod(x, span)
		x.Add(x, big.NewInt(2))

		if gcd(x, g.n).Cmp(big.NewInt(1)) != 0 {
			continue
		}

		e := g.canonical(x)
		if e.x.Cmp(big.NewInt(1)) == 0 {
			continue
		}

		return e, nil
	}

	return nil, errors.Wrap(ErrInvalidParameter, "could not derive generator")
}

func (g *RSAGroup) Modulus() *big.Int {
	return new(big.Int).Set(g.n)
}

func (g *RSAGroup) Kind() GroupKind { return GroupRSA }
func (g *RSAGroup) Bits() int { return g.bits }
func (g *RSAGroup) Generator() Element { return g.generator }
func (g *RSAGroup) Identity() Element { return g.identity }
func (g *RSAGroup) ElementSize() int { return (g.bits + 7) >> 3 }

func (g *RSAGroup) Decode(buf []byte) (Element, error) {
	if len(buf) != g.ElementSize() {
		return nil, errors.Wrap(ErrMalformedProof, "invalid element length")
	}

	x := new(big.Int).SetBytes(buf)
	if x.Sign() == 0 || x.Cmp(g.half) > 0 {
		return nil, errors.Wrap(ErrMalformedProof, "element not canonical")
	}

	if gcd(x, g.n).Cmp(big.NewInt(1)) != 0 {
		return nil, errors.Wrap(ErrMalformedProof, "element not a unit")
	}

	return &rsaElement{group: g, x: x}, nil
}

func (g *RSAGroup) canonical(x *big.Int) *rsaElement {
	if x.Cmp(g.half) > 0 {
		x = new(big.Int).Sub(g.n, x)
	}

	return &rsaElement{group: g, x: x}
}

type rsaElement struct {
	group *RSAGroup
	x     *big.Int
}

func (e *rsaElement) peer(other Element) *rsaElement {
	o, ok := other.(*rsaElement)
	if !ok || o.group.n.Cmp(e.group.n) != 0 {
		panic(ErrGroupArithmetic)
	}

	return o
}

func (e *rsaElement) Square() Element {
	z := new(big.Int).Mul(e.x, e.x)
	return e.group.canonical(z.Mod(z, e.group.n))
}

func (e *rsaElement) Mul(other Element) Element {
	z := new(big.Int).Mul(e.x, e.peer(other).x)
	return e.group.canonical(z.Mod(z, e.group.n))
}

func (e *rsaElement) Exp(n *big.Int) Element {
	return e.group.canonical(new(big.Int).Exp(e.x, n, e.group.n))
}

func (e *rsaElement) Equal(other Element) bool {
	o, ok := other.(*rsaElement)
	if !ok {
		return false
	}

	return e.group.n.Cmp(o.group.n) == 0 && e.x.Cmp(o.x) == 0
}

func (e *rsaElement) Bytes() []byte {
	return e.x.FillBytes(make([]byte, e.group.ElementSize()))
}

func gcd(a, b *big.Int) *big.Int {
	return new(big.Int).GCD(nil, nil, a, b)
}
