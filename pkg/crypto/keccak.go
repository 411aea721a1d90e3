// Package crypto provides the hashing primitives shared by the sidh
// package: every Fiat-Shamir challenge, round commitment, and response
// derivation in this module is built on the Keccak-256 helpers of this
// package (this file and keccak_extended.go).
package crypto

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Hash is a 32-byte Keccak digest.
type Hash [32]byte

// HexToHash parses a hex string (with or without a leading "0x") into a Hash.
// It panics on malformed input; it exists for test fixtures and constants,
// not for parsing untrusted data.
func HexToHash(s string) Hash {
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	var h Hash
	copy(h[32-len(b):], b)
	return h
}

// BytesToHash right-aligns b into a Hash, truncating from the left if b is
// longer than 32 bytes.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	copy(h[32-len(b):], b)
	return h
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// Keccak256 calculates the Keccak-256 hash of the given data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash calculates Keccak-256 and returns it as a Hash.
func Keccak256Hash(data ...[]byte) Hash {
	return BytesToHash(Keccak256(data...))
}
