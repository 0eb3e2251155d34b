//
// Copyright (c) 2019 harmony-one
// Copyright (c) 2023 Quilibrium, Inc.
//
// SPDX-License-Identifier: MIT
//

// Package iqc implements arithmetic on binary quadratic forms of negative
// discriminant, i.e. the class group of an imaginary quadratic order.
package iqc

import (
	"math/big"
)

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
	bigTwo  = big.NewInt(2)
	bigFour = big.NewInt(4)
)

// Form is the binary quadratic form a*x^2 + b*x*y + c*y^2. Forms are treated
// as immutable values: every operation returns a fresh Form.
type Form struct {
	a *big.Int
	b *big.Int
	c *big.Int
	d *big.Int
}

// NewFormFromAbDiscriminant derives c = (b^2 - D) / 4a. The second return
// value reports whether the division was exact, i.e. whether (a, b) belongs
// to the discriminant at all.
func NewFormFromAbDiscriminant(a, b, discriminant *big.Int) (*Form, bool) {
	z := new(big.Int).Mul(b, b)
	z.Sub(z, discriminant)

	fourA := new(big.Int).Mul(a, bigFour)
	if fourA.Sign() == 0 {
		return nil, false
	}

	c, r := new(big.Int).QuoRem(z, fourA, new(big.Int))
	if r.Sign() != 0 {
		return nil, false
	}

	return &Form{a: a, b: b, c: c, d: discriminant}, true
}

// Generator returns the form (2, 1, (1-D)/8), which exists whenever
// D = 1 mod 8.
func Generator(discriminant *big.Int) *Form {
	f, ok := NewFormFromAbDiscriminant(big.NewInt(2), big.NewInt(1), discriminant)
	if !ok {
		return nil
	}

	return f.Reduced()
}

// Identity returns the principal form (1, 1, (1-D)/4).
func Identity(discriminant *big.Int) *Form {
	f, _ := NewFormFromAbDiscriminant(big.NewInt(1), big.NewInt(1), discriminant)
	return f
}

func (f *Form) A() *big.Int { return new(big.Int).Set(f.a) }
func (f *Form) B() *big.Int { return new(big.Int).Set(f.b) }
func (f *Form) C() *big.Int { return new(big.Int).Set(f.c) }

func (f *Form) Discriminant() *big.Int {
	if f.d != nil {
		return f.d
	}

	// b^2 - 4ac
	d := new(big.Int).Mul(f.b, f.b)
	ac := new(big.Int).Mul(f.a, f.c)
	ac.Mul(ac, bigFour)

	return d.Sub(d, ac)
}

func (f *Form) Identity() *Form {
	return Identity(f.Discriminant())
}

// IsNormalized reports -a < b <= a.
func (f *Form) IsNormalized() bool {
	negA := new(big.Int).Neg(f.a)
	return f.b.Cmp(negA) > 0 && f.b.Cmp(f.a) <= 0
}

// IsReduced reports whether the form is the unique reduced representative of
// its class.
func (f *Form) IsReduced() bool {
	if f.a.Sign() <= 0 || !f.IsNormalized() {
		return false
	}

	switch f.a.Cmp(f.c) {
	case 1:
		return false
	case 0:
		return f.b.Sign() >= 0
	}

	return true
}

func (f *Form) Normalized() *Form {
	if f.IsNormalized() {
		return f
	}

	a := f.a
	b := new(big.Int).Set(f.b)
	c := new(big.Int).Set(f.c)

	// r = (a - b) // 2a
	r := new(big.Int).Sub(a, b)
	r = FloorDivision(r, new(big.Int).Mul(a, bigTwo))

	// c = a*r*r + b*r + c, using the old b
	ar := new(big.Int).Mul(a, r)
	c.Add(c, new(big.Int).Mul(ar, r))
	c.Add(c, new(big.Int).Mul(b, r))

	// b = b + 2*r*a
	b.Add(b, ar.Mul(ar, bigTwo))

	return &Form{a: a, b: b, c: c, d: f.d}
}

func (f *Form) Reduced() *Form {
	g := f.Normalized()
	a := new(big.Int).Set(g.a)
	b := new(big.Int).Set(g.b)
	c := new(big.Int).Set(g.c)

	s := new(big.Int)
	twoC := new(big.Int)
	tmp := new(big.Int)
	for a.Cmp(c) > 0 || (a.Cmp(c) == 0 && b.Sign() < 0) {
		// s = (c + b) // 2c
		twoC.Add(c, c)
		s = FloorDivision(tmp.Add(c, b), twoC)

		// a, b, c = c, -b + 2*s*c, c*s*s - b*s + a
		oldA := a
		oldB := new(big.Int).Set(b)
		a = new(big.Int).Set(c)

		b.Neg(b)
		b.Add(b, new(big.Int).Mul(twoC, s))

		nc := new(big.Int).Mul(c, s)
		nc.Mul(nc, s)
		nc.Sub(nc, oldB.Mul(oldB, s))
		nc.Add(nc, oldA)
		c = nc
	}

	return (&Form{a: a, b: b, c: c, d: f.d}).Normalized()
}

// Multiply composes two forms of the same discriminant and returns the
// reduced result.
func (f *Form) Multiply(other *Form) *Form {
	x := f.Reduced()
	y := other.Reduced()

	// g = (b2 + b1) // 2, h = (b2 - b1) // 2
	g := FloorDivision(new(big.Int).Add(x.b, y.b), bigTwo)
	h := FloorDivision(new(big.Int).Sub(y.b, x.b), bigTwo)

	// w = gcd(a1, a2, g)
	w := gcd(x.a, gcd(y.a, g))

	j := new(big.Int).Set(w)
	s := FloorDivision(x.a, w)
	t := FloorDivision(y.a, w)
	u := FloorDivision(g, w)

	// k_temp, constant_factor = solve_mod(t*u, h*u + s*c1, s*t)
	hu := new(big.Int).Mul(h, u)
	sc := new(big.Int).Mul(s, x.c)
	st := new(big.Int).Mul(s, t)
	tu := new(big.Int).Mul(t, u)
	kTemp, constantFactor, ok := SolveMod(tu, new(big.Int).Add(hu, sc), st)
	if !ok {
		return nil
	}

	// n, _ = solve_mod(t*constant_factor, h - t*k_temp, s)
	n, _, ok := SolveMod(
		new(big.Int).Mul(t, constantFactor),
		new(big.Int).Sub(h, new(big.Int).Mul(t, kTemp)),
		s,
	)
	if !ok {
		return nil
	}

	// k = k_temp + constant_factor*n
	k := new(big.Int).Add(kTemp, new(big.Int).Mul(constantFactor, n))

	// l = (t*k - h) // s
	l := FloorDivision(new(big.Int).Sub(new(big.Int).Mul(t, k), h), s)

	// m = (t*u*k - h*u - s*c1) // (s*t)
	m := new(big.Int).Mul(tu, k)
	m.Sub(m, hu)
	m.Sub(m, sc)
	m = FloorDivision(m, st)

	// With r = 0 the Shanks terms collapse to:
	// a3 = s*t, b3 = j*u - (k*t + l*s), c3 = k*l - j*m
	a3 := st
	b3 := new(big.Int).Mul(j, u)
	b3.Sub(b3, new(big.Int).Mul(k, t))
	b3.Sub(b3, new(big.Int).Mul(l, s))
	c3 := new(big.Int).Mul(k, l)
	c3.Sub(c3, new(big.Int).Mul(j, m))

	return (&Form{a: a3, b: b3, c: c3, d: x.d}).Reduced()
}

// Square uses the dedicated doubling formula: solve b*mu = c (mod a), then
// (a^2, b - 2*a*mu, mu^2 - (b*mu - c)/a). Forms where gcd(a, b) does not
// divide c, which only exist for composite discriminants, go through the
// general composition instead.
func (f *Form) Square() *Form {
	mu, _, ok := SolveMod(f.b, f.c, f.a)
	if !ok {
		return f.Multiply(f)
	}

	A := new(big.Int).Mul(f.a, f.a)

	amu := new(big.Int).Mul(f.a, mu)
	B := new(big.Int).Sub(f.b, amu.Lsh(amu, 1))

	m := new(big.Int).Mul(f.b, mu)
	m.Sub(m, f.c)
	m = FloorDivision(m, f.a)
	C := new(big.Int).Mul(mu, mu)
	C.Sub(C, m)

	return (&Form{a: A, b: B, c: C, d: f.d}).Reduced()
}

// Pow raises the form to a non-negative exponent by square-and-multiply.
func (f *Form) Pow(n *big.Int) *Form {
	x := f.Reduced()
	prod := f.Identity()

	for i := 0; i < n.BitLen(); i++ {
		if n.Bit(i) == 1 {
			prod = prod.Multiply(x)
			if prod == nil {
				return nil
			}
		}
		if i+1 < n.BitLen() {
			x = x.Square()
			if x == nil {
				return nil
			}
		}
	}

	return prod
}

func (f *Form) Equal(other *Form) bool {
	if other == nil {
		return false
	}

	g := f.Reduced()
	o := other.Reduced()

	return g.a.Cmp(o.a) == 0 && g.b.Cmp(o.b) == 0 && g.c.Cmp(o.c) == 0
}

// FloorDivision returns floor(x / y), rounding toward negative infinity for
// every sign combination.
func FloorDivision(x, y *big.Int) *big.Int {
	var r big.Int
	q, _ := new(big.Int).QuoRem(x, y, &r)

	if (r.Sign() == 1 && y.Sign() == -1) || (r.Sign() == -1 && y.Sign() == 1) {
		q.Sub(q, bigOne)
	}

	return q
}

func gcd(a, b *big.Int) *big.Int {
	return new(big.Int).GCD(nil, nil, a, b)
}

// SolveMod solves a*x = b (mod m) for x. It returns s, t such that every
// solution is s + k*t for integer k.
func SolveMod(a, b, m *big.Int) (s, t *big.Int, solvable bool) {
	d := new(big.Int)
	g := new(big.Int).GCD(d, nil, a, m)
	if g.Sign() == 0 {
		return nil, nil, false
	}

	q, r := new(big.Int).DivMod(b, g, new(big.Int))
	if r.Cmp(bigZero) != 0 {
		return nil, nil, false
	}

	q.Mul(q, d)
	s = q.Mod(q, m)
	t = FloorDivision(m, g)

	return s, t, true
}
