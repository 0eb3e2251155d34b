package vdf

import (
	"math/big"

	"github.com/pkg/errors"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/iqc"
)

type ClassGroup struct {
	discriminant *big.Int
	bits         int
	generator    *classElement
	identity     *classElement
}

// DeriveClassGroup creates the discriminant from seed and uses the form
// (2, 1, (1-D)/8) as the base element.
func DeriveClassGroup(seed []byte, bits int) (*ClassGroup, error) {
	if err := validateParameters(seed, bits); err != nil {
		return nil, errors.Wrap(err, "derive class group")
	}

	d := iqc.CreateDiscriminant(seed, uint32(bits))
	g, err := NewClassGroup(d, bits)
	return g, errors.Wrap(err, "derive class group")
}

// NewClassGroup wraps an existing discriminant D. -D must be a prime that is
// 7 mod 8.
func NewClassGroup(discriminant *big.Int, bits int) (*ClassGroup, error) {
	if discriminant.Sign() >= 0 {
		return nil, errors.Wrap(ErrInvalidParameter, "discriminant must be negative")
	}

	if new(big.Int).Mod(discriminant, big.NewInt(8)).Int64() != 1 {
		return nil, errors.Wrap(ErrInvalidParameter, "discriminant must be 1 mod 8")
	}

	if !new(big.Int).Neg(discriminant).ProbablyPrime(1) {
		return nil, errors.Wrap(ErrInvalidParameter, "discriminant must be prime")
	}

	return newClassGroup(discriminant, bits), nil
}

func newClassGroup(discriminant *big.Int, bits int) *ClassGroup {
	g := &ClassGroup{
		discriminant: new(big.Int).Set(discriminant),
		bits:         bits,
	}
	g.generator = &classElement{group: g, form: iqc.Generator(g.discriminant)}
	g.identity = &classElement{group: g, form: iqc.Identity(g.discriminant)}

	return g
}

func (g *ClassGroup) Discriminant() *big.Int {
	return new(big.Int).Set(g.discriminant)
}

func (g *ClassGroup) Kind() GroupKind { return GroupClass }
func (g *ClassGroup) Bits() int { return g.bits }
func (g *ClassGroup) Generator() Element { return g.generator }
func (g *ClassGroup) Identity() Element { return g.identity }
func (g *ClassGroup) ElementSize() int { return iqc.FormSize(g.bits) }

func (g *ClassGroup) Decode(buf []byte) (Element, error) {
	f, err := iqc.Deserialize(buf, g.discriminant, g.bits)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedProof, err.Error())
	}

	return &classElement{group: g, form: f}, nil
}

type classElement struct {
	group *ClassGroup
	form  *iqc.Form
}

func (e *classElement) wrap(f *iqc.Form) *classElement {
	if f == nil {
		panic(ErrGroupArithmetic)
	}

	return &classElement{group: e.group, form: f}
}

func (e *classElement) peer(other Element) *classElement {
	o, ok := other.(*classElement)
	if !ok || o.group.discriminant.Cmp(e.group.discriminant) != 0 {
		panic(ErrGroupArithmetic)
	}

	return o
}

func (e *classElement) Square() Element {
	return e.wrap(e.form.Square())
}

func (e *classElement) Mul(other Element) Element {
	return e.wrap(e.form.Multiply(e.peer(other).form))
}

func (e *classElement) Exp(n *big.Int) Element {
	return e.wrap(e.form.Pow(n))
}

func (e *classElement) Equal(other Element) bool {
	o, ok := other.(*classElement)
	if !ok {
		return false
	}

	return e.form.Equal(o.form)
}

func (e *classElement) Bytes() []byte {
	return e.form.Serialize(e.group.bits)
}
