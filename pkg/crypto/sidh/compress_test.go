package sidh

import (
	"errors"
	"math/big"
	"testing"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	A := Fp2Elem{NewFieldElem(big.NewInt(12)), NewFieldElem(big.NewInt(34))}
	x := encodePoint(big.NewInt(999), big.NewInt(1001), A)

	t1, bit1, err := Compress(x)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	y := Decompress(t1, bit1, A).Affine()
	t2, bit2, err := Compress(y)
	if err != nil {
		t.Fatalf("Compress (round 2): %v", err)
	}

	if t1.BigInt().Cmp(t2.BigInt()) != 0 || bit1 != bit2 {
		t.Fatal("Compress is not idempotent through Decompress")
	}
}

func TestCompressRejectsBothScalarsDivisibleByThree(t *testing.T) {
	A := Fp2Elem{NewFieldElem(big.NewInt(1)), NewFieldElem(big.NewInt(2))}
	// a=42, b=3: both divisible by 3, so the point cannot have full order.
	x := encodePoint(big.NewInt(42), big.NewInt(3), A)
	_, _, err := Compress(x)
	if !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("Compress(degenerate point) = %v, want ErrInvalidOrder", err)
	}
}

func TestCompressBitZeroWhenAIsInvertible(t *testing.T) {
	A := Fp2Elem{NewFieldElem(big.NewInt(1)), NewFieldElem(big.NewInt(2))}
	x := encodePoint(big.NewInt(1), big.NewInt(42), A)
	_, bit, err := Compress(x)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if bit != 0 {
		t.Fatalf("got bit %d, want 0 for a == 1 (mod 3 invertible)", bit)
	}
}

func TestCompressBitOneWhenOnlyBIsInvertible(t *testing.T) {
	A := Fp2Elem{NewFieldElem(big.NewInt(1)), NewFieldElem(big.NewInt(2))}
	x := encodePoint(big.NewInt(42), big.NewInt(1), A)
	_, bit, err := Compress(x)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if bit != 1 {
		t.Fatalf("got bit %d, want 1 for a divisible by 3 and b == 1", bit)
	}
}

func TestSharedSecretAgreesAcrossCompressedAndUncompressed(t *testing.T) {
	A := Fp2Elem{NewFieldElem(big.NewInt(55)), NewFieldElem(big.NewInt(66))}
	x := encodePoint(big.NewInt(321), big.NewInt(655), A)

	direct := SharedSecret(x)

	t1, bit1, err := Compress(x)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	y := Decompress(t1, bit1, A).Affine()
	viaCompression := SharedSecret(y)

	if direct != viaCompression {
		t.Fatal("SharedSecret disagrees between the direct and decompressed forms")
	}
}

func TestSharedSecretDiffersForDifferentPoints(t *testing.T) {
	A := Fp2Elem{NewFieldElem(big.NewInt(1)), NewFieldElem(big.NewInt(1))}
	x1 := encodePoint(big.NewInt(1), big.NewInt(2), A)
	x2 := encodePoint(big.NewInt(3), big.NewInt(4), A)
	if SharedSecret(x1) == SharedSecret(x2) {
		t.Fatal("SharedSecret collided for two distinct points")
	}
}

func TestMulModOBMatchesPlainModArithmetic(t *testing.T) {
	a := big.NewInt(123456789)
	b := big.NewInt(987654321)
	got := MulModOB(a, b)
	want := new(big.Int).Mod(new(big.Int).Mul(a, b), OB)
	if got.Cmp(want) != 0 {
		t.Fatalf("MulModOB(a,b) = %s, want %s", got, want)
	}
}

func TestMulModOBWithLargeOperands(t *testing.T) {
	a := new(big.Int).Sub(OB, big.NewInt(1))
	b := new(big.Int).Sub(OB, big.NewInt(2))
	got := MulModOB(a, b)
	want := new(big.Int).Mod(new(big.Int).Mul(a, b), OB)
	if got.Cmp(want) != 0 {
		t.Fatalf("MulModOB(a,b) = %s, want %s", got, want)
	}
}
