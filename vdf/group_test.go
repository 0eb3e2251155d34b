package vdf

import (
	"context"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"source.quilibrium.com/quilibrium/monorepo/wesolowski/iqc"
)

func TestDeriveRejectsParameters(t *testing.T) {
	for _, kind := range []GroupKind{GroupClass, GroupRSA} {
		_, err := Derive(kind, []byte("seed"), 127)
		assert.True(t, errors.Is(err, ErrInvalidParameter), kind)

		_, err = Derive(kind, []byte("seed"), 4097)
		assert.True(t, errors.Is(err, ErrInvalidParameter), kind)

		_, err = Derive(kind, nil, 256)
		assert.True(t, errors.Is(err, ErrInvalidParameter), kind)
	}

	_, err := Derive("ecc", []byte("seed"), 256)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestParseGroupKind(t *testing.T) {
	kind, err := ParseGroupKind("")
	require.NoError(t, err)
	assert.Equal(t, GroupClass, kind)

	kind, err = ParseGroupKind("rsa")
	require.NoError(t, err)
	assert.Equal(t, GroupRSA, kind)

	_, err = ParseGroupKind("RSA")
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestDeriveClassGroup(t *testing.T) {
	g, err := DeriveClassGroup([]byte("class"), 256)
	require.NoError(t, err)

	d := g.Discriminant()
	assert.Equal(t, -1, d.Sign())
	assert.Equal(t, 256, new(big.Int).Neg(d).BitLen())
	assert.Equal(t, GroupClass, g.Kind())
	assert.Equal(t, 256, g.Bits())
	assert.Equal(t, 34, g.ElementSize())
	assert.False(t, g.Generator().Equal(g.Identity()))

	other, err := DeriveClassGroup([]byte("clasS"), 256)
	require.NoError(t, err)
	assert.NotEqual(t, 0, d.Cmp(other.Discriminant()))

	again, err := DeriveClassGroup([]byte("class"), 256)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Cmp(again.Discriminant()))
	assert.Equal(t, g.Generator().Bytes(), again.Generator().Bytes())
}

func TestNewClassGroupRejectsDiscriminant(t *testing.T) {
	_, err := NewClassGroup(big.NewInt(23), 128)
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	// -19 is 5 mod 8
	_, err = NewClassGroup(big.NewInt(-19), 128)
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	// -87 is 1 mod 8 but 87 = 3 * 29
	_, err = NewClassGroup(big.NewInt(-87), 128)
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	g, err := NewClassGroup(big.NewInt(-23), 128)
	require.NoError(t, err)
	assert.Equal(t, int64(-23), g.Discriminant().Int64())
}

func TestGenerateFromAmbiguousForm(t *testing.T) {
	g := newClassGroup(big.NewInt(-87), 128)

	f, ok := iqc.NewFormFromAbDiscriminant(big.NewInt(3), big.NewInt(3), big.NewInt(-87))
	require.True(t, ok)

	x, err := g.Decode(f.Serialize(128))
	require.NoError(t, err)

	for _, strategy := range []ProofStrategy{ProofStrategyWindowed, ProofStrategyLongDivision} {
		out, err := Generate(context.Background(), g, x, 10, GenerateOptions{
			Strategy: strategy,
		})
		require.NoError(t, err, strategy)
		assert.True(t, out.Y.Equal(g.Identity()), strategy)
		assert.True(t, Verify(x, out.Y, out.Proof, 10), strategy)
	}
}

func TestDeriveRSAGroup(t *testing.T) {
	g, err := DeriveRSAGroup([]byte("rsa"), 256)
	require.NoError(t, err)

	n := g.Modulus()
	assert.Equal(t, 256, n.BitLen())
	assert.Equal(t, uint(1), n.Bit(0))
	assert.Equal(t, 32, g.ElementSize())

	x := new(big.Int).SetBytes(g.Generator().Bytes())
	assert.True(t, x.Cmp(big.NewInt(1)) > 0)
	assert.True(t, x.Cmp(new(big.Int).Rsh(n, 1)) <= 0)
	assert.Equal(t, int64(1), gcd(x, n).Int64())

	other, err := DeriveRSAGroup([]byte("rsb"), 256)
	require.NoError(t, err)
	assert.NotEqual(t, 0, n.Cmp(other.Modulus()))
}

func TestNewRSAGroupRejectsModulus(t *testing.T) {
	even := new(big.Int).Lsh(big.NewInt(1), 200)
	_, err := NewRSAGroup(even, []byte("seed"))
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	_, err = NewRSAGroup(big.NewInt(1000003), []byte("seed"))
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	odd := new(big.Int).Add(even, big.NewInt(1))
	_, err = NewRSAGroup(odd, nil)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestRSADecodeCanonical(t *testing.T) {
	g, err := DeriveRSAGroup([]byte("canonical"), 256)
	require.NoError(t, err)

	y := g.Generator().Exp(big.NewInt(65537))
	back, err := g.Decode(y.Bytes())
	require.NoError(t, err)
	assert.True(t, back.Equal(y))

	// N - y names the same element but is not the canonical encoding
	neg := new(big.Int).Sub(g.Modulus(), new(big.Int).SetBytes(y.Bytes()))
	_, err = g.Decode(neg.FillBytes(make([]byte, g.ElementSize())))
	assert.True(t, errors.Is(err, ErrMalformedProof))

	_, err = g.Decode(make([]byte, g.ElementSize()))
	assert.True(t, errors.Is(err, ErrMalformedProof))

	_, err = g.Decode(y.Bytes()[1:])
	assert.True(t, errors.Is(err, ErrMalformedProof))
}

func TestMixedGroupsPanic(t *testing.T) {
	a, err := DeriveClassGroup([]byte("a"), 128)
	require.NoError(t, err)
	b, err := DeriveClassGroup([]byte("b"), 128)
	require.NoError(t, err)

	assert.PanicsWithValue(t, ErrGroupArithmetic, func() {
		a.Generator().Mul(b.Generator())
	})
	assert.False(t, a.Generator().Equal(b.Generator()))
}
