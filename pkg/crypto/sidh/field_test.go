package sidh

import (
	"math/big"
	"testing"
)

func TestFieldAddSubInverse(t *testing.T) {
	a := NewFieldElem(big.NewInt(123456789))
	b := NewFieldElem(big.NewInt(987654321))
	if !a.Add(b).Sub(b).Equal(a) {
		t.Fatal("(a+b)-b != a")
	}
}

func TestFieldMulInv(t *testing.T) {
	a := NewFieldElem(big.NewInt(42))
	inv := a.Inv()
	if !a.Mul(inv).Equal(FieldOne()) {
		t.Fatal("a * a^-1 != 1")
	}
}

func TestFieldBytesRoundTrip(t *testing.T) {
	a := NewFieldElem(big.NewInt(0).SetBytes([]byte("a reasonably long test value 12345")))
	b := FieldFromBytes(a.Bytes())
	if !a.Equal(b) {
		t.Fatal("FieldFromBytes(a.Bytes()) != a")
	}
}

func TestFieldFromBytesWrongLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("FieldFromBytes did not panic on wrong-length input")
		}
	}()
	FieldFromBytes(make([]byte, PBytes-1))
}

func TestFieldIsQRAndSqrt(t *testing.T) {
	a := NewFieldElem(big.NewInt(4))
	sq := a.Mul(a)
	if !sq.IsQR() {
		t.Fatal("a square should be a quadratic residue")
	}
	root := sq.Sqrt()
	if !root.Mul(root).Equal(sq) {
		t.Fatal("Sqrt(a^2)^2 != a^2")
	}
}

func TestFieldZeroIsNotQR(t *testing.T) {
	if FieldZero().IsQR() {
		t.Fatal("zero should not be reported as a quadratic residue")
	}
}

func TestFp2AddSubMulInverse(t *testing.T) {
	a := Fp2Elem{NewFieldElem(big.NewInt(11)), NewFieldElem(big.NewInt(22))}
	b := Fp2Elem{NewFieldElem(big.NewInt(33)), NewFieldElem(big.NewInt(44))}
	sum := a.Add(b)
	if !sum.Sub(b).Equal(a) {
		t.Fatal("(a+b)-b != a in Fp2")
	}
	inv := a.Inv()
	if !a.Mul(inv).Equal(Fp2One()) {
		t.Fatal("a * a^-1 != 1 in Fp2")
	}
}

func TestFp2ConjNorm(t *testing.T) {
	a := Fp2Elem{NewFieldElem(big.NewInt(5)), NewFieldElem(big.NewInt(7))}
	got := a.Mul(a.Conj())
	want := Fp2Elem{a.Norm(), FieldZero()}
	if !got.Equal(want) {
		t.Fatal("a * conj(a) != norm(a)")
	}
}

func TestFp2BytesRoundTrip(t *testing.T) {
	a := Fp2Elem{NewFieldElem(big.NewInt(998877)), NewFieldElem(big.NewInt(112233))}
	b := Fp2FromBytes(a.Bytes())
	if !a.Equal(b) {
		t.Fatal("Fp2FromBytes(a.Bytes()) != a")
	}
}

func TestFp2SqrtOfSquareSucceeds(t *testing.T) {
	a := Fp2Elem{NewFieldElem(big.NewInt(3)), NewFieldElem(big.NewInt(9))}
	sq := a.Sqr()
	root, ok := sq.Sqrt()
	if !ok {
		t.Fatal("Sqrt of a genuine square reported false")
	}
	if !root.Sqr().Equal(sq) {
		t.Fatal("Sqrt(a^2)^2 != a^2 in Fp2")
	}
}

func TestFp2SqrtZero(t *testing.T) {
	root, ok := Fp2Zero().Sqrt()
	if !ok || !root.IsZero() {
		t.Fatal("Sqrt(0) should succeed and return 0")
	}
}

func TestScalarBytesRoundTrip(t *testing.T) {
	s := ScalarFromBigInt(big.NewInt(123456789))
	got := ScalarFromBytes(s.Bytes())
	if got.BigInt().Cmp(s.BigInt()) != 0 {
		t.Fatal("ScalarFromBytes(s.Bytes()) != s")
	}
}

func TestScalarFromBigIntReducesModOB(t *testing.T) {
	huge := new(big.Int).Mul(OB, big.NewInt(7))
	huge.Add(huge, big.NewInt(11))
	s := ScalarFromBigInt(huge)
	if s.BigInt().Cmp(big.NewInt(11)) != 0 {
		t.Fatalf("got %s, want 11", s.BigInt())
	}
}
