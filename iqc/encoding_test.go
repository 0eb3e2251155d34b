package iqc

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwosComplementRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 127, 128, -128, -129, 255, 256, -32768, 1 << 40, -(1 << 40)}

	for _, v := range values {
		n := big.NewInt(v)
		enc := signBitFill(encodeTwosComplement(n), 9)
		require.Len(t, enc, 9)
		assert.Equal(t, v, decodeTwosComplement(enc).Int64(), "value %d", v)
	}
}

func TestIntSize(t *testing.T) {
	assert.Equal(t, 129, IntSize(2048))
	assert.Equal(t, 258, FormSize(2048))
	assert.Equal(t, 9, IntSize(128))
	assert.Equal(t, 257, IntSize(4096))
}

func TestSerializeRoundTrip(t *testing.T) {
	d := CreateDiscriminant([]byte("serialize"), 256)
	x := Generator(d)

	for i := 0; i < 20; i++ {
		buf := x.Serialize(256)
		require.Len(t, buf, FormSize(256))

		back, err := Deserialize(buf, d, 256)
		require.NoError(t, err)
		assert.True(t, back.Equal(x))
		assert.Equal(t, buf, back.Serialize(256))

		x = x.Square()
	}
}

func TestDeserializeRejects(t *testing.T) {
	d := CreateDiscriminant([]byte("reject"), 256)
	g := Generator(d).Pow(big.NewInt(99991))
	size := IntSize(256)

	_, err := Deserialize(g.Serialize(256)[1:], d, 256)
	assert.True(t, errors.Is(err, ErrInvalidLength))

	// equivalent but non-reduced (a, b + 2a)
	b := new(big.Int).Add(g.B(), new(big.Int).Lsh(g.A(), 1))
	buf := make([]byte, 2*size)
	copy(buf[:size], signBitFill(encodeTwosComplement(g.A()), size))
	copy(buf[size:], signBitFill(encodeTwosComplement(b), size))
	_, err = Deserialize(buf, d, 256)
	assert.True(t, errors.Is(err, ErrInvalidForm))

	// zero a
	_, err = Deserialize(make([]byte, 2*size), d, 256)
	assert.True(t, errors.Is(err, ErrInvalidForm))

	// even b cannot satisfy b^2 - 4ac = D for odd D
	bad := g.Serialize(256)
	bad[2*size-1] ^= 0x01
	_, err = Deserialize(bad, d, 256)
	assert.Error(t, err)
}
