package storage

import "time"

// ColumnFamily names one of the engine's independently-ordered keyspaces.
type ColumnFamily string

// IterOptions bounds an iterator. UpperBound, if non-nil, is exclusive: the
// iterator stops being Valid once it reaches a key >= UpperBound. Callers
// that want a prefix scan pass the lexicographic successor of the prefix.
type IterOptions struct {
	UpperBound []byte
}

// Iterator is a forward cursor over one column family, ordered
// lexicographically by key.
type Iterator interface {
	// Seek positions the iterator at the first key >= target.
	Seek(target []byte)
	Next()
	Valid() bool
	Key() []byte
	Value() []byte
	Close()
}

// Reader is the read-only subset of Store that both a live Engine and a
// point-in-time Snapshot satisfy, so Set operations can be written once
// against whichever view they were handed.
type Reader interface {
	Get(cf ColumnFamily, key []byte) ([]byte, error)
	NewIterator(cf ColumnFamily, opts IterOptions) Iterator
}

// Store is the contract spec §6 names as "Store interface consumed": atomic
// multi-column-family write batches, consistent read snapshots,
// prefix-ordered iteration, per-key point reads, and durable writes.
type Store interface {
	Reader
	NewWriteBatch() *WriteBatch
	GetSnapshot() *Snapshot
	GetCurrentTime() time.Time
}
