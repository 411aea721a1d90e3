// montorder.go implements Montgomery multiplication modulo OB = 3^239, the
// order used throughout compression and response scalars. Grounded on
// original_source/SIDH_signature.c's to_mont/from_mont/mp_mont_mul path for
// order-3^239 scalar arithmetic, reduced here to the one operation this
// package actually needs (a single multiply-mod-OB per Compress call)
// rather than a full modular-exponentiation ladder.
package sidh

import "math/big"

// montShift is MontR's bit length minus one; MontR = 2^384 is a power of
// two, so Montgomery reduction's division by MontR is a plain right shift.
const montShift = 384

// montReduce computes t*R^-1 mod OB via Montgomery's REDC algorithm, given
// 0 <= t < OB*MontR.
func montReduce(t *big.Int) *big.Int {
	m := new(big.Int).Mod(t, MontR)
	m.Mul(m, NegOBInvModR)
	m.Mod(m, MontR)
	u := new(big.Int).Mul(m, OB)
	u.Add(u, t)
	u.Rsh(u, montShift)
	if u.Cmp(OB) >= 0 {
		u.Sub(u, OB)
	}
	return u
}

// toMontOB maps an ordinary residue mod OB into Montgomery form (x*R mod OB).
func toMontOB(x *big.Int) *big.Int {
	t := new(big.Int).Mul(new(big.Int).Mod(x, OB), RSquaredModOB)
	return montReduce(t)
}

// fromMontOB maps a Montgomery-form residue back to ordinary form.
func fromMontOB(x *big.Int) *big.Int {
	return montReduce(x)
}

// MulModOB computes a*b mod OB by routing the multiplication through
// Montgomery form, matching the representation original_source keeps
// order-OB scalars in throughout its signing loop instead of reducing with
// a general-purpose division on every multiply.
func MulModOB(a, b *big.Int) *big.Int {
	aM := toMontOB(a)
	bM := toMontOB(b)
	t := new(big.Int).Mul(aM, bM)
	return fromMontOB(montReduce(t))
}
