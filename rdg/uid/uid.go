// Package uid defines the process-wide resource identifier used as a cache key throughout
// the render dependency graph: resource infos, devirtualized physical resources, and cached
// samplers/shaders/meshes are all addressed by a UID.
package uid

import (
	"hash/fnv"
	"sync/atomic"
)

// UID is a process-wide 64-bit resource identifier. Runtime UIDs come from a monotonically
// increasing counter; string-derived UIDs come from a stable hash of the input string, so the
// same name always produces the same UID across runs.
type UID uint64

// counter backs Next. It starts at 1,000,000,000, leaving the range below it to well-known
// ids; string-derived ids are full 64-bit hashes and may fall anywhere in the UID space.
var counter atomic.Uint64

func init() {
	counter.Store(1_000_000_000)
}

// Next returns a fresh runtime UID. Safe for concurrent use.
func Next() UID {
	return UID(counter.Add(1))
}

// FromString derives a stable UID from a name, used for pass identifiers, named virtual
// resources (salted with the owning pass's id), and file-path-keyed texture loads. Plain
// FNV-1a is adequate here: this is a cache key, not a security boundary, and no example in
// the retrieval pack pulls in a dedicated non-cryptographic string-hashing dependency.
func FromString(s string) UID {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return UID(h.Sum64())
}

// Combine salts a base UID with a secondary string, used to derive a resource's id from its
// owning pass's identifier hash plus its local name (and, for buffer consume entries, a byte
// offset) so two passes may reuse the same local resource name without colliding.
func Combine(base UID, salt string) UID {
	h := fnv.New64a()
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(base >> (8 * i))
	}
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(salt))
	return UID(h.Sum64())
}
