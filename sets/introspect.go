package sets

import (
	storage "github.com/pikiwidb/storage"
)

// KeyInfo is one row of an introspection scan: a live Set key and its
// current cardinality.
type KeyInfo struct {
	Key   []byte
	Count int32
}

// ScanSets walks META_CF under a snapshot and returns every live Set key
// (skipping stale and non-Set entries), up to limit rows starting after
// startAfter (nil to start from the beginning).
func (s *Sets) ScanSets(startAfter []byte, limit int) ([]KeyInfo, error) {
	now := s.store.GetCurrentTime()
	snap := s.store.GetSnapshot()
	defer snap.Release()

	it := snap.NewIterator(MetaCF, storage.IterOptions{})
	defer it.Close()

	seekFrom := []byte{}
	if startAfter != nil {
		seekFrom = append(EncodeMetaKey(startAfter), 0x00)
	}

	var out []KeyInfo
	for it.Seek(seekFrom); it.Valid(); it.Next() {
		if limit > 0 && len(out) >= limit {
			break
		}
		raw := it.Value()
		_, ok, err := ExpectedMetaValue(TypeSet, raw)
		if err != nil || !ok {
			continue
		}
		mv, err := DecodeMetaValue(raw)
		if err != nil {
			continue
		}
		if IsStale(mv, now) || mv.Count == 0 {
			continue
		}
		key := DecodeMetaKey(it.Key())
		out = append(out, KeyInfo{Key: append([]byte(nil), key...), Count: mv.Count})
	}
	return out, nil
}

// ScanSetsKeyNum returns the number of live Set keys currently in the store
// and the number of stale ones (expired metas not yet compacted away, and
// emptied metas, which compaction keeps unless they also carry an elapsed
// TTL), for operator capacity planning. It is a full META_CF scan, not the
// hot path.
func (s *Sets) ScanSetsKeyNum() (total int64, expired int64, err error) {
	now := s.store.GetCurrentTime()
	snap := s.store.GetSnapshot()
	defer snap.Release()

	it := snap.NewIterator(MetaCF, storage.IterOptions{})
	defer it.Close()

	for it.Seek(nil); it.Valid(); it.Next() {
		raw := it.Value()
		_, ok, decErr := ExpectedMetaValue(TypeSet, raw)
		if decErr != nil || !ok {
			continue
		}
		mv, decErr := DecodeMetaValue(raw)
		if decErr != nil {
			continue
		}
		if IsStale(mv, now) || mv.Count == 0 {
			expired++
			continue
		}
		total++
	}
	return total, expired, nil
}
