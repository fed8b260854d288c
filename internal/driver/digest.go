package driver

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a SHA-256 sum.
type Digest [sha256.Size]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

func (d Digest) IsZero() bool { return d == Digest{} }

func digestBytes(b []byte) Digest {
	return Digest(sha256.Sum256(b))
}

// combineDigest: H(first || rest...). Порядок частей значим.
func combineDigest(first Digest, rest ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(first[:])
	for _, d := range rest {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// CacheKey identifies the output of compiling src with the given compiler
// fingerprint and options. Flags that change the produced artifacts take
// part in the key.
func CacheKey(src []byte, fingerprint string, keepIR bool) Digest {
	flags := "asm"
	if keepIR {
		flags = "asm+ir"
	}
	return combineDigest(digestBytes(src), digestBytes([]byte(fingerprint)), digestBytes([]byte(flags)))
}
