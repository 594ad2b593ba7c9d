package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// DigestCell lazily computes and caches the SHA-256 digest of a document.
// The first caller pays the computation cost under an exclusive lock; every
// later caller reads the cached value under a shared lock. This is the
// explicit cache-cell form of the compute-once pattern, rather than ad hoc
// mutable state on the owning object.
type DigestCell struct {
	mu       sync.RWMutex
	data     []byte
	digest   string
	computed bool
}

// NewDigestCell creates a cell over the given document bytes. The cell
// references the slice; callers must not mutate it afterwards.
func NewDigestCell(data []byte) *DigestCell {
	return &DigestCell{data: data}
}

// Digest returns the hex-encoded SHA-256 of the document, computing it at
// most once.
func (c *DigestCell) Digest() string {
	c.mu.RLock()
	if c.computed {
		d := c.digest
		c.mu.RUnlock()
		return d
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.computed {
		sum := sha256.Sum256(c.data)
		c.digest = hex.EncodeToString(sum[:])
		c.computed = true
		c.data = nil
	}
	return c.digest
}

// Computed reports whether the digest has been computed yet.
func (c *DigestCell) Computed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.computed
}
