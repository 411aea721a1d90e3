// Package sidh implements the round/batching/compression core of a
// Fiat-Shamir signature scheme over SIDHp751 isogeny problems
// (Yoo-Azarderakhsh-Jalali-Jao-Soukharev). Field and curve arithmetic
// (xDBL/xTPL) and the isogeny-layer stand-ins (3-torsion basis generation
// and Pohlig-Hellman decomposition over a deterministic embedding, with no
// Velu's formulas) live in field.go and curve.go as a self-contained
// collaborator; this package owns the round dispatch, the batched-inversion
// coordinator, psi(S) compression, and the sign/verify drivers built on top
// of it.
package sidh

import "math/big"

// NRounds is the number of parallel zero-knowledge rounds folded into the
// Fiat-Shamir challenge. SIDHp751 at the targeted security level requires
// 248 rounds so that a cheating prover's success probability (1/2 per round)
// is bounded by 2^-248.
const NRounds = 248

// HBytes is the digest size of the Keccak hash used throughout: round
// commitments (Com2) and the challenge hash.
const HBytes = 32

// eA, eB are the exponents defining SIDHp751's order split: oA = 2^eA,
// oB = 3^eB, p = oA*oB - 1.
const (
	eA = 372
	eB = 239

	// PBytes is the wire size of one GF(p) element (12 64-bit limbs).
	PBytes = 96
	// OBytes is the wire size of one mod-OB scalar (6 64-bit limbs).
	OBytes = 48
)

// OA, OB, P are the SIDHp751 order split and prime: OA = 2^372, OB = 3^239,
// P = OA*OB - 1.
var (
	OA = new(big.Int).Lsh(big.NewInt(1), eA)
	OB = computeOB()
	P  = computeP()
)

func computeOB() *big.Int {
	ob := big.NewInt(1)
	three := big.NewInt(3)
	for i := 0; i < eB; i++ {
		ob.Mul(ob, three)
	}
	return ob
}

func computeP() *big.Int {
	p := new(big.Int).Mul(OA, OB)
	return p.Sub(p, big.NewInt(1))
}

// Montgomery-domain constants for arithmetic modulo OB, consumed by
// montorder.go's REDC routine: MontR is the Montgomery radix 2^384 (one
// limb wider than OB's 379 bits), RSquaredModOB = MontR^2 mod OB, and
// NegOBInvModR = -OB^-1 mod MontR. Derived from OB at init time rather than
// hardcoded, since OB itself is only pinned down by eB above.
var (
	MontR         = new(big.Int).Lsh(big.NewInt(1), montShift)
	RSquaredModOB = computeRSquaredModOB()
	NegOBInvModR  = computeNegOBInvModR()
)

func computeRSquaredModOB() *big.Int {
	rSquared := new(big.Int).Mul(MontR, MontR)
	return new(big.Int).Mod(rSquared, OB)
}

func computeNegOBInvModR() *big.Int {
	obInv := new(big.Int).ModInverse(OB, MontR)
	return new(big.Int).Sub(MontR, obInv)
}

// Scalar6 is the 384-bit (48-byte, six 64-bit-limb) wire representation of
// a private key, a round randomizer rand[r], or a compressed response
// scalar. Limb 0 holds the least significant 64 bits.
type Scalar6 [6]uint64

// Bytes encodes s as 48 little-endian bytes (limb 0 first).
func (s Scalar6) Bytes() []byte {
	out := make([]byte, OBytes)
	for i, limb := range s {
		for j := 0; j < 8; j++ {
			out[i*8+j] = byte(limb >> (8 * j))
		}
	}
	return out
}

// ScalarFromBytes decodes 48 little-endian bytes into a Scalar6. b must be
// exactly OBytes long; validate lengths at package boundaries before
// calling this.
func ScalarFromBytes(b []byte) Scalar6 {
	if len(b) != OBytes {
		panic("sidh: ScalarFromBytes: wrong length")
	}
	var s Scalar6
	for i := range s {
		for j := 0; j < 8; j++ {
			s[i] |= uint64(b[i*8+j]) << (8 * j)
		}
	}
	return s
}

// BigInt returns s as a *big.Int.
func (s Scalar6) BigInt() *big.Int {
	return new(big.Int).SetBytes(reverseBytes(s.Bytes()))
}

// ScalarFromBigInt reduces x modulo OB and encodes the result as a Scalar6.
func ScalarFromBigInt(x *big.Int) Scalar6 {
	r := new(big.Int).Mod(x, OB)
	b := r.Bytes()
	padded := make([]byte, OBytes)
	copy(padded[OBytes-len(b):], b)
	return ScalarFromBytes(reverseBytes(padded))
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
