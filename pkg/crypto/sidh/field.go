package sidh

import (
	"crypto/subtle"
	"math/big"
)

// FieldElem is a residue in GF(P), P = 2^372*3^239 - 1 (SIDHp751). Elements
// are boxed *big.Int rather than hand-unrolled fixed-width limb arrays, the
// same large-prime field-arithmetic shape as this codebase's other curve
// packages (bn254_fp.go's fp type); correctness of the reduction is
// delegated to math/big and every operation re-normalizes into [0, P).
type FieldElem struct {
	v *big.Int
}

// NewFieldElem reduces x modulo P and returns the resulting element.
func NewFieldElem(x *big.Int) FieldElem {
	return FieldElem{v: new(big.Int).Mod(x, P)}
}

// FieldZero and FieldOne are the additive and multiplicative identities.
func FieldZero() FieldElem { return FieldElem{v: big.NewInt(0)} }
func FieldOne() FieldElem  { return FieldElem{v: big.NewInt(1)} }

func (a FieldElem) Add(b FieldElem) FieldElem {
	return NewFieldElem(new(big.Int).Add(a.v, b.v))
}

func (a FieldElem) Sub(b FieldElem) FieldElem {
	return NewFieldElem(new(big.Int).Sub(a.v, b.v))
}

func (a FieldElem) Neg() FieldElem {
	return NewFieldElem(new(big.Int).Neg(a.v))
}

func (a FieldElem) Mul(b FieldElem) FieldElem {
	return NewFieldElem(new(big.Int).Mul(a.v, b.v))
}

func (a FieldElem) Sqr() FieldElem {
	return a.Mul(a)
}

// Inv returns a^-1 mod P via Fermat's little theorem. P is prime, so this
// never fails for a != 0; callers are responsible for rejecting zero where
// that matters (e.g. before a batched-inversion submission).
func (a FieldElem) Inv() FieldElem {
	exp := new(big.Int).Sub(P, big.NewInt(2))
	return FieldElem{v: new(big.Int).Exp(a.v, exp, P)}
}

func (a FieldElem) IsZero() bool {
	return a.v.Sign() == 0
}

func (a FieldElem) Equal(b FieldElem) bool {
	return subtle.ConstantTimeCompare(a.Bytes(), b.Bytes()) == 1
}

// Bytes encodes a as PBytes little-endian bytes (12 64-bit limbs, limb 0
// first), matching the Scalar6 convention used for order-OB scalars.
func (a FieldElem) Bytes() []byte {
	b := a.v.Bytes()
	out := make([]byte, PBytes)
	copy(out[PBytes-len(b):], b)
	return reverseBytes(out)
}

// FieldFromBytes decodes PBytes little-endian bytes into a FieldElem.
func FieldFromBytes(b []byte) FieldElem {
	if len(b) != PBytes {
		panic("sidh: FieldFromBytes: wrong length")
	}
	return NewFieldElem(new(big.Int).SetBytes(reverseBytes(b)))
}

// IsQR reports whether a is a nonzero quadratic residue mod P, via Euler's
// criterion. P is odd, so (P-1)/2 is exact.
func (a FieldElem) IsQR() bool {
	if a.IsZero() {
		return false
	}
	exp := new(big.Int).Rsh(new(big.Int).Sub(P, big.NewInt(1)), 1)
	r := new(big.Int).Exp(a.v, exp, P)
	return r.Cmp(big.NewInt(1)) == 0
}

// Sqrt computes a square root of a mod P using the P = 3 (mod 4) shortcut:
// sqrt(a) = a^((P+1)/4). SIDHp751's p satisfies p = 3 (mod 4) (oA*oB is
// divisible by 4, so p = oA*oB-1 = 3 mod 4), so this always applies when a
// is a QR.
func (a FieldElem) Sqrt() FieldElem {
	exp := new(big.Int).Rsh(new(big.Int).Add(P, big.NewInt(1)), 2)
	return FieldElem{v: new(big.Int).Exp(a.v, exp, P)}
}

// Fp2Elem represents A0 + A1*i in GF(P^2) = GF(P)[i]/(i^2+1), the same
// {a0, a1} shape as this codebase's bn254_fp2.go.
type Fp2Elem struct {
	A0, A1 FieldElem
}

func Fp2Zero() Fp2Elem { return Fp2Elem{FieldZero(), FieldZero()} }
func Fp2One() Fp2Elem  { return Fp2Elem{FieldOne(), FieldZero()} }

func (a Fp2Elem) Add(b Fp2Elem) Fp2Elem {
	return Fp2Elem{a.A0.Add(b.A0), a.A1.Add(b.A1)}
}

func (a Fp2Elem) Sub(b Fp2Elem) Fp2Elem {
	return Fp2Elem{a.A0.Sub(b.A0), a.A1.Sub(b.A1)}
}

func (a Fp2Elem) Neg() Fp2Elem {
	return Fp2Elem{a.A0.Neg(), a.A1.Neg()}
}

// Mul computes (a0+a1 i)(b0+b1 i) = (a0 b0 - a1 b1) + (a0 b1 + a1 b0) i using
// the Karatsuba-style three-multiplication trick from bn254_fp2.go.
func (a Fp2Elem) Mul(b Fp2Elem) Fp2Elem {
	t0 := a.A0.Mul(b.A0)
	t1 := a.A1.Mul(b.A1)
	t2 := a.A0.Add(a.A1).Mul(b.A0.Add(b.A1))
	return Fp2Elem{t0.Sub(t1), t2.Sub(t0).Sub(t1)}
}

func (a Fp2Elem) Sqr() Fp2Elem {
	return a.Mul(a)
}

// Conj returns the GF(P^2)/GF(P) conjugate a0 - a1*i.
func (a Fp2Elem) Conj() Fp2Elem {
	return Fp2Elem{a.A0, a.A1.Neg()}
}

// Norm returns a0^2 + a1^2 = a * conj(a), an element of the base field.
func (a Fp2Elem) Norm() FieldElem {
	return a.A0.Sqr().Add(a.A1.Sqr())
}

// Inv returns a^-1 via conj(a) / norm(a).
func (a Fp2Elem) Inv() Fp2Elem {
	nInv := a.Norm().Inv()
	c := a.Conj()
	return Fp2Elem{c.A0.Mul(nInv), c.A1.Mul(nInv)}
}

func (a Fp2Elem) IsZero() bool {
	return a.A0.IsZero() && a.A1.IsZero()
}

func (a Fp2Elem) Equal(b Fp2Elem) bool {
	return a.A0.Equal(b.A0) && a.A1.Equal(b.A1)
}

// Bytes encodes a as 2*PBytes bytes, A0 followed by A1.
func (a Fp2Elem) Bytes() []byte {
	out := make([]byte, 2*PBytes)
	copy(out[:PBytes], a.A0.Bytes())
	copy(out[PBytes:], a.A1.Bytes())
	return out
}

// Fp2FromBytes decodes 2*PBytes bytes into an Fp2Elem.
func Fp2FromBytes(b []byte) Fp2Elem {
	if len(b) != 2*PBytes {
		panic("sidh: Fp2FromBytes: wrong length")
	}
	return Fp2Elem{FieldFromBytes(b[:PBytes]), FieldFromBytes(b[PBytes:])}
}

// Sqrt computes a square root of a in GF(P^2) using the standard complex
// method for P = 3 (mod 4): write a = a0 + a1*i, n = norm(a), t0 =
// n^((P+1)/4). a is a square exactly when t0^2 == n; the root's real part
// x0 is then a square root of (a0+t0)/2 or, if that is not a quadratic
// residue, of (a0-t0)/2, and its imaginary part is a1/(2*x0). When x0 comes
// out zero, a is a real non-residue and its root is purely imaginary,
// sqrt(-a0)*i. The boolean is false when a has no square root.
func (a Fp2Elem) Sqrt() (Fp2Elem, bool) {
	if a.IsZero() {
		return Fp2Zero(), true
	}
	n := a.Norm()
	t0 := n.Sqrt()
	if !t0.Sqr().Equal(n) {
		return Fp2Elem{}, false
	}
	two := NewFieldElem(big.NewInt(2))
	cand1 := a.A0.Add(t0).Mul(two.Inv())
	var x0 FieldElem
	if cand1.IsQR() || cand1.IsZero() {
		x0 = cand1.Sqrt()
	} else {
		cand2 := a.A0.Sub(t0).Mul(two.Inv())
		x0 = cand2.Sqrt()
	}
	if x0.IsZero() {
		root := Fp2Elem{FieldZero(), a.A0.Neg().Sqrt()}
		if !root.Sqr().Equal(a) {
			return Fp2Elem{}, false
		}
		return root, true
	}
	x1 := a.A1.Mul(x0.Mul(two).Inv())
	root := Fp2Elem{x0, x1}
	if !root.Sqr().Equal(a) {
		return Fp2Elem{}, false
	}
	return root, true
}
