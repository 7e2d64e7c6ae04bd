package project

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a fixed 256-bit content hash.
type Digest [32]byte

// HashBytes hashes raw content.
func HashBytes(data []byte) Digest {
	return sha256.Sum256(data)
}

// Combine builds a derived key: H(content || part1 || part2 ...). Parts are
// hashed in the order given.
func Combine(content Digest, parts ...[]byte) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}
