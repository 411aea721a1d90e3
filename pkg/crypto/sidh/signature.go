// signature.go defines the wire types for a complete signature and the
// key-pair generation entry point, grounded on original_source/kex.c's
// isogeny_keygen, exposed here as GenerateKeyPair.
package sidh

import (
	"crypto/rand"
	"fmt"

	"github.com/GorrieXIV/PQCrypto-SIDH/pkg/crypto"
)

// PrivateKey holds the long-term secret isogeny degree, a scalar mod OB.
type PrivateKey struct {
	SK Scalar6
}

// PublicKey holds the Montgomery curve coefficient reached by the private
// key's isogeny.
type PublicKey struct {
	A Fp2Elem
}

// GenerateKeyPair produces a fresh private/public key pair, sampling SK
// uniformly from [0, OB) via crypto/rand.
func GenerateKeyPair() (*PrivateKey, *PublicKey, error) {
	skBig, err := rand.Int(rand.Reader, OB)
	if err != nil {
		return nil, nil, fmt.Errorf("sidh: GenerateKeyPair: %w", err)
	}
	sk := ScalarFromBigInt(skBig)
	pub := KeyGenerationB(sk)
	return &PrivateKey{SK: sk}, &PublicKey{A: pub}, nil
}

// Signature is the complete N_ROUNDS-round Fiat-Shamir transcript. Com1 and
// Com2 are always revealed (the round commitments the challenge hash is
// derived from); for each round, exactly one of Rand or (PsiS, PsiBit) is
// meaningful, selected by that round's challenge bit (recomputed from Com1
// and Com2, never stored on the wire).
type Signature struct {
	Com1   [NRounds]Fp2Elem
	Com2   [NRounds][HBytes]byte
	Rand   [NRounds]Scalar6 // meaningful where ChallengeBit(r) == 0
	PsiS   [NRounds]Scalar6 // meaningful where ChallengeBit(r) == 1
	PsiBit [NRounds]byte    // orientation bit accompanying PsiS
}

// ChallengeBits derives the N_ROUNDS Fiat-Shamir challenge bits by hashing
// every round's commitments together into one digest, then reading one bit
// per round from it.
func (s *Signature) ChallengeBits() []byte {
	return challengeBits(s.Com1[:], s.Com2[:])
}

func challengeBits(com1 []Fp2Elem, com2 [][HBytes]byte) []byte {
	h := crypto.NewIncrementalHasher()
	for r := 0; r < len(com1); r++ {
		h.Write(com1[r].Bytes())
		h.Write(com2[r][:])
	}
	return h.SumBytes()
}

// challengeBitAt extracts round r's single challenge bit from a challenge
// digest; NRounds=248 fits within one 32-byte (256-bit) Keccak digest.
func challengeBitAt(digest []byte, r int) byte {
	return (digest[r/8] >> uint(r%8)) & 1
}

// MarshalBinary encodes the signature. The leading byte records the
// caller's compressed flag, and it is the only byte the flag changes:
// bit==1 responses are always written in compressed form (PsiS scalar plus
// PsiBit), since Signature holds no uncompressed psi(S) point.
// original_source/ has no such byte because its test harness always knows
// which mode it ran.
func (s *Signature) MarshalBinary(compressed bool) ([]byte, error) {
	digest := s.ChallengeBits()
	out := make([]byte, 0, 1+NRounds*(2*PBytes+HBytes+OBytes+1))
	if compressed {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	for r := 0; r < NRounds; r++ {
		out = append(out, s.Com1[r].Bytes()...)
		out = append(out, s.Com2[r][:]...)
	}
	for r := 0; r < NRounds; r++ {
		if challengeBitAt(digest, r) == 0 {
			out = append(out, s.Rand[r].Bytes()...)
			continue
		}
		out = append(out, s.PsiS[r].Bytes()...)
		out = append(out, s.PsiBit[r])
	}
	return out, nil
}

// UnmarshalBinary decodes a signature produced by MarshalBinary. It
// reconstructs challenge bits from the decoded commitments before reading
// the per-round responses, so it never needs the bit vector on the wire.
func (s *Signature) UnmarshalBinary(data []byte) (compressed bool, err error) {
	if len(data) < 1 {
		return false, fmt.Errorf("sidh: unmarshal: %w", ErrInvalidParameter)
	}
	compressed = data[0] == 1
	off := 1

	for r := 0; r < NRounds; r++ {
		if off+2*PBytes+HBytes > len(data) {
			return false, fmt.Errorf("sidh: unmarshal: commitment %d: %w", r, ErrInvalidParameter)
		}
		s.Com1[r] = Fp2FromBytes(data[off : off+2*PBytes])
		off += 2 * PBytes
		copy(s.Com2[r][:], data[off:off+HBytes])
		off += HBytes
	}

	digest := s.ChallengeBits()
	for r := 0; r < NRounds; r++ {
		if challengeBitAt(digest, r) == 0 {
			if off+OBytes > len(data) {
				return false, fmt.Errorf("sidh: unmarshal: response %d: %w", r, ErrInvalidParameter)
			}
			s.Rand[r] = ScalarFromBytes(data[off : off+OBytes])
			if s.Rand[r].BigInt().Cmp(OB) >= 0 {
				return false, fmt.Errorf("sidh: unmarshal: response %d: %w", r, ErrInvalidOrder)
			}
			off += OBytes
			continue
		}
		if off+OBytes+1 > len(data) {
			return false, fmt.Errorf("sidh: unmarshal: response %d: %w", r, ErrInvalidParameter)
		}
		s.PsiS[r] = ScalarFromBytes(data[off : off+OBytes])
		if s.PsiS[r].BigInt().Cmp(OB) >= 0 {
			return false, fmt.Errorf("sidh: unmarshal: response %d: %w", r, ErrInvalidOrder)
		}
		off += OBytes
		s.PsiBit[r] = data[off]
		off++
	}
	if off != len(data) {
		return false, fmt.Errorf("sidh: unmarshal: trailing data: %w", ErrInvalidParameter)
	}
	return compressed, nil
}
