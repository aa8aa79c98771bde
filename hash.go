package merklesync

import (
	"encoding/hex"

	"github.com/aweris/merklesync/internal/fpcache"
	"github.com/cockroachdb/errors"
	"github.com/minio/sha256-simd"
)

// shortLen is the number of hex characters shown by Fingerprint.Short.
const shortLen = 16

// Fingerprint is the SHA-256 of a record's content, or of two child
// fingerprints for internal nodes.
type Fingerprint [32]byte

// String returns the full hex encoding.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Short returns a truncated hex label for display. Never compare labels.
func (f Fingerprint) Short() string {
	return f.String()[:shortLen]
}

// IsZero reports whether f is the all-zero sentinel fingerprint.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// Hasher computes fingerprints, optionally memoizing content digests.
// The zero value and a nil *Hasher hash without a cache.
type Hasher struct {
	cache *fpcache.Cache
}

// NewHasher returns a Hasher that remembers up to cacheSize contents.
func NewHasher(cacheSize int) (*Hasher, error) {
	cache, err := fpcache.New(cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create fingerprint cache")
	}
	return &Hasher{cache: cache}, nil
}

// Sum fingerprints record content. Empty content is rejected: a record
// must always carry content.
func (h *Hasher) Sum(content string) (Fingerprint, error) {
	if content == "" {
		return Fingerprint{}, ErrMissingContent
	}

	var c *fpcache.Cache
	if h != nil {
		c = h.cache
	}
	if d, ok := c.Get(content); ok {
		return Fingerprint(d), nil
	}

	d := sha256.Sum256([]byte(content))
	c.Add(content, d)
	return Fingerprint(d), nil
}

// Combine fingerprints an internal node: H(left ++ right).
func (h *Hasher) Combine(left, right Fingerprint) Fingerprint {
	var buf [64]byte
	copy(buf[:32], left[:])
	copy(buf[32:], right[:])
	return Fingerprint(sha256.Sum256(buf[:]))
}

// Hash fingerprints content without caching.
func Hash(content string) (Fingerprint, error) {
	return (*Hasher)(nil).Sum(content)
}
