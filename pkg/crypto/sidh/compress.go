package sidh

import (
	"fmt"
	"math/big"

	"github.com/GorrieXIV/PQCrypto-SIDH/pkg/crypto"
)

// Compress implements component C: psi(S) compression. It reduces a
// combined-curve point's affine x-coordinate to a single order-OB scalar
// plus one orientation bit, mirroring original_source/SIDH_signature.c's
// compression of psiS into Signature.psiS[r] (a scalar) plus a bit packed
// into the signature's bit-vector.
//
// Before decomposing x, it runs the 238-step xTPL order sweep (checkFullOrder,
// curve.go) that original_source applies to psi(S) before trusting it, then
// decodes the underlying (a, b) Pohlig-Hellman pair via decodePoint
// (half_ph3's stand-in). If both a and b are divisible by 3, the point
// cannot have full order 3^239 and Compress fails with ErrInvalidOrder
// without writing t or bit. Otherwise, following the pair's invertible
// coordinate: if a is invertible, Compress stores t = b*a^-1 with bit=0
// (the point is on the same ray as R1+[t]R2); if instead b is invertible,
// it stores t = a*b^-1 with bit=1 (the point is on the same ray as
// [t]R1+R2). Decompress reconstructs exactly those two canonical forms, so
// Compress is idempotent: Compress(Decompress(Compress(x))) == Compress(x).
// That idempotence is what lets SharedSecret agree whether a party took the
// compressed or uncompressed signing path.
func Compress(x Fp2Elem) (t Scalar6, bit byte, err error) {
	if orderErr := checkFullOrder(x); orderErr != nil {
		return Scalar6{}, 0, fmt.Errorf("sidh: compress: order check: %w: %w", ErrInvalidOrder, orderErr)
	}

	a, b := decodePoint(x)
	three := big.NewInt(3)
	aMod3 := new(big.Int).Mod(a, three)
	bMod3 := new(big.Int).Mod(b, three)
	if aMod3.Sign() == 0 && bMod3.Sign() == 0 {
		return Scalar6{}, 0, fmt.Errorf("sidh: compress: %w", ErrInvalidOrder)
	}

	var scalar *big.Int
	if aMod3.Sign() != 0 {
		bit = 0
		aInv := new(big.Int).ModInverse(a, OB)
		scalar = MulModOB(b, aInv)
	} else {
		bit = 1
		bInv := new(big.Int).ModInverse(b, OB)
		scalar = MulModOB(a, bInv)
	}
	return ScalarFromBigInt(scalar), bit, nil
}

// decompressAffine is Decompress's core: the affine point canonical form
// (t, bit) decodes to on curve A, before any projective blinding is applied.
func decompressAffine(t Scalar6, bit byte, A Fp2Elem) Fp2Elem {
	tBig := t.BigInt()
	if bit == 0 {
		return encodePoint(big.NewInt(1), tBig, A)
	}
	return encodePoint(tBig, big.NewInt(1), A)
}

// Decompress reconstructs a representative point for the canonical form
// (t, bit) on curve A, the inverse half of the Compress contract, in
// projective (X:Z) form (matching the spec's own framing of Decompress as
// returning "(X:Z) of the resulting point"). The Z blind lets a verifier
// fold many rounds' worth of Decompress output into one InvBatch pass
// (verifyBatchC in driver.go) instead of normalizing each on its own.
func Decompress(t Scalar6, bit byte, A Fp2Elem) ProjPt {
	x := decompressAffine(t, bit, A)
	z := projDenominator("sidh-decompress", append(t.Bytes(), bit))
	return ProjPt{X: x.Mul(z), Z: z}
}

// SharedSecret derives the HBytes-byte value both signer and verifier must
// agree on from a combined-curve point, by hashing its canonical compressed
// form. Canonicalizing before hashing (rather than hashing the raw field
// element) is what makes the compressed and uncompressed signing paths
// produce identical shared values. SharedSecret is called for every round
// regardless of its eventual challenge bit, including bit-0 rounds whose
// combined value is never actually compressed on the wire; Compress's
// InvalidOrder failure only governs what gets transmitted for bit-1
// rounds; wherever it fires here, the raw affine value is hashed directly
// instead, so two parties computing SharedSecret over the same degenerate
// value still agree.
func SharedSecret(x Fp2Elem) [HBytes]byte {
	var out [HBytes]byte
	t, bit, err := Compress(x)
	if err != nil {
		copy(out[:], crypto.Keccak256(x.Bytes()))
		return out
	}
	copy(out[:], crypto.Keccak256(t.Bytes(), []byte{bit}))
	return out
}
