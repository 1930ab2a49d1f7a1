package sets

import (
	"bytes"
	"sort"
	"sync"
)

// LockManager grants per-userKey critical sections so concurrent commands
// touching the same key (SADD racing SPOP, RENAME racing SADD) observe a
// consistent meta-record-then-members sequence. Keys are hashed into a
// fixed number of shards, each guarded by its own mutex, so unrelated keys
// essentially never contend.
type LockManager struct {
	shards []sync.Mutex
}

const lockShardCount = 256

// NewLockManager builds a manager with a fixed shard count; callers never
// need to size it to their keyspace.
func NewLockManager() *LockManager {
	return &LockManager{shards: make([]sync.Mutex, lockShardCount)}
}

func (m *LockManager) shardFor(key []byte) *sync.Mutex {
	h := fnv32(key)
	return &m.shards[h%uint32(len(m.shards))]
}

func fnv32(data []byte) uint32 {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)
	h := uint32(offset32)
	for _, b := range data {
		h ^= uint32(b)
		h *= prime32
	}
	return h
}

// Unlocker releases every shard a Lock/LockMany call acquired.
type Unlocker func()

// Lock acquires the shard for a single key and returns a function that
// releases it.
func (m *LockManager) Lock(key []byte) Unlocker {
	mu := m.shardFor(key)
	mu.Lock()
	return func() { mu.Unlock() }
}

// LockMany acquires the shards for every key in keys, always in a fixed
// global order (by shard index, tie-broken by the key bytes themselves) so
// that two goroutines locking overlapping key sets can never deadlock by
// acquiring their shards in opposite orders. Duplicate keys (including two
// different keys that hash to the same shard) are deduplicated to a single
// acquisition per shard.
func (m *LockManager) LockMany(keys [][]byte) Unlocker {
	type entry struct {
		idx uint32
		key []byte
	}
	entries := make([]entry, len(keys))
	for i, k := range keys {
		entries[i] = entry{idx: fnv32(k) % uint32(len(m.shards)), key: k}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].idx != entries[j].idx {
			return entries[i].idx < entries[j].idx
		}
		return bytes.Compare(entries[i].key, entries[j].key) < 0
	})

	seen := make(map[uint32]bool, len(entries))
	var locked []*sync.Mutex
	for _, e := range entries {
		if seen[e.idx] {
			continue
		}
		seen[e.idx] = true
		mu := &m.shards[e.idx]
		mu.Lock()
		locked = append(locked, mu)
	}
	return func() {
		for _, mu := range locked {
			mu.Unlock()
		}
	}
}
