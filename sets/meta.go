package sets

import (
	"sync"
	"time"
)

// MetaRecord pairs a decoded MetaValue with the userKey it describes, the
// unit ops.go passes around once a meta lookup has resolved.
type MetaRecord struct {
	UserKey []byte
	Value   *MetaValue
}

// versionAllocator hands out strictly increasing versions, one per process.
// A version is a timestamp (nanoseconds since epoch) nudged forward when the
// clock hasn't advanced since the last call, so two back-to-back SADDs never
// collide even if the wall clock is coarse or steps backwards while the
// process runs. The last-issued value is held in memory only: after a
// restart allocation starts again from the wall clock, and versions already
// stored on disk are not consulted.
type versionAllocator struct {
	mu   sync.Mutex
	last uint64
}

// InitialMetaValue allocates the next version from now and builds the
// MetaValue a freshly-created (or just-overwritten) Set key should get:
// Type Set, the new version, no TTL, zero members. Callers fill in Count
// once they know how many members will actually be written.
func (a *versionAllocator) InitialMetaValue(now time.Time) *MetaValue {
	return &MetaValue{
		Type:    TypeSet,
		Version: a.next(now),
		Etime:   0,
		Count:   0,
	}
}

func (a *versionAllocator) next(now time.Time) uint64 {
	candidate := uint64(now.UnixNano())
	a.mu.Lock()
	defer a.mu.Unlock()
	if candidate <= a.last {
		candidate = a.last + 1
	}
	a.last = candidate
	return candidate
}

// globalVersions is shared by every MetaRecord construction in this package;
// a single counter per process is what makes the monotonicity guarantee
// hold across concurrent SADD/RENAME/SMOVE calls touching different keys.
var globalVersions versionAllocator

// NextVersion allocates a new monotonic version stamped from now.
func NextVersion(now time.Time) uint64 {
	return globalVersions.next(now)
}

// NewMetaValue is the package-level entry point ops.go uses when a command
// needs a brand new Set meta record (first SADD to a key, RENAME's
// destination, SMOVE creating a fresh destination set, and so on).
func NewMetaValue(now time.Time) *MetaValue {
	return globalVersions.InitialMetaValue(now)
}

// versionCounterSnapshot exposes the allocator's last-issued value, used
// only by tests asserting monotonicity across goroutines.
func versionCounterSnapshot() uint64 {
	globalVersions.mu.Lock()
	defer globalVersions.mu.Unlock()
	return globalVersions.last
}
