package sets

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/cockroachdb/errors"

	storage "github.com/pikiwidb/storage"
)

// Sets is the Set Operations Core: the entry point for every Set command,
// bound to one engine, one lock manager, one statistics store, and one
// scan-cursor store.
type Sets struct {
	store storage.Store
	locks *LockManager
	stats *StatsStore
	scans *ScanCursorStore
}

// NewSets builds a Sets core over store. stats may be a fresh *StatsStore or
// one shared with other data-type layers in the same process.
func NewSets(store storage.Store, stats *StatsStore) *Sets {
	return &Sets{
		store: store,
		locks: NewLockManager(),
		stats: stats,
		scans: NewScanCursorStore(store),
	}
}

// readMetaFrom reads and validates the Set meta record for key via reader.
// It returns (nil, nil) when the key is absent or stale ("treated as
// absent" per the common preconditions), and a *WrongTypeError when a
// live, non-Set meta record exists for key.
func (s *Sets) readMetaFrom(reader storage.Reader, now time.Time, key []byte) (*MetaValue, error) {
	raw, err := reader.Get(MetaCF, EncodeMetaKey(key))
	if errors.Is(err, storage.ErrNoRecord) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "sets: read meta")
	}
	actual, ok, err := ExpectedMetaValue(TypeSet, raw)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Only the etime is read from a foreign-type meta: an expired one is
		// treated as absent like any other stale meta.
		if len(raw) >= metaValueFixedSize && IsStale(&MetaValue{Etime: binary.BigEndian.Uint64(raw[10:18])}, now) {
			return nil, nil
		}
		return nil, NewWrongTypeError(key, TypeSet, actual)
	}
	mv, err := DecodeMetaValue(raw)
	if err != nil {
		return nil, err
	}
	if IsStale(mv, now) || mv.Count == 0 {
		return nil, nil
	}
	return mv, nil
}

func (s *Sets) readMeta(now time.Time, key []byte) (*MetaValue, error) {
	return s.readMetaFrom(s.store, now, key)
}

// withSnapshot opens a point-in-time Snapshot, hands it to fn, and releases
// it on every return path, so read-only multi-key ops don't each repeat
// their own open/defer-release pair.
func withSnapshot[T any](s *Sets, fn func(storage.Reader) (T, error)) (T, error) {
	snap := s.store.GetSnapshot()
	defer snap.Release()
	return fn(snap)
}

func (s *Sets) iterateLiveMembers(reader storage.Reader, key []byte, version uint64) ([][]byte, error) {
	it := reader.NewIterator(SetsDataCF, storage.IterOptions{UpperBound: SeekUpperBound(key, version)})
	defer it.Close()

	var out [][]byte
	for it.Seek(SeekKey(key, version)); it.Valid(); it.Next() {
		member := DecodeMemberKey(it.Key(), len(key))
		out = append(out, append([]byte(nil), member...))
	}
	return out, nil
}

func dedupeMembers(members [][]byte) [][]byte {
	seen := make(map[string]bool, len(members))
	out := make([][]byte, 0, len(members))
	for _, m := range members {
		k := string(m)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, m)
	}
	return out
}

// checkCount applies delta to current and fails with ErrOverflow if the
// result would leave the i32 range, per the count-overflow guard every
// mutator in §4.3 is required to run before staging any write.
func checkCount(current int32, delta int64) (int32, error) {
	next := int64(current) + delta
	if next < 0 || next > math.MaxInt32 {
		return 0, ErrOverflow
	}
	return int32(next), nil
}

func memberExists(reader storage.Reader, key []byte, version uint64, member []byte) (bool, error) {
	_, err := reader.Get(SetsDataCF, EncodeMemberKey(key, version, member))
	if errors.Is(err, storage.ErrNoRecord) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "sets: read member")
	}
	return true, nil
}

// SAdd inserts members into key's Set, creating it if absent or stale, and
// returns the count of members that were newly inserted.
func (s *Sets) SAdd(key []byte, members [][]byte) (int, error) {
	unlock := s.locks.Lock(key)
	defer unlock()

	now := s.store.GetCurrentTime()
	unique := dedupeMembers(members)

	mv, err := s.readMeta(now, key)
	if err != nil {
		return 0, err
	}

	wb := s.store.NewWriteBatch()

	if mv == nil {
		newMV := NewMetaValue(now)
		for _, m := range unique {
			if err := wb.Put(SetsDataCF, EncodeMemberKey(key, newMV.Version, m), []byte{}); err != nil {
				return 0, err
			}
		}
		count, err := checkCount(0, int64(len(unique)))
		if err != nil {
			return 0, err
		}
		newMV.Count = count
		if err := wb.Put(MetaCF, EncodeMetaKey(key), EncodeMetaValue(newMV)); err != nil {
			return 0, err
		}
		if err := wb.Commit(); err != nil {
			return 0, err
		}
		s.stats.RecordTouch(key)
		return len(unique), nil
	}

	var inserted int
	for _, m := range unique {
		exists, err := memberExists(s.store, key, mv.Version, m)
		if err != nil {
			return 0, err
		}
		if exists {
			continue
		}
		if err := wb.Put(SetsDataCF, EncodeMemberKey(key, mv.Version, m), []byte{}); err != nil {
			return 0, err
		}
		inserted++
	}
	if inserted == 0 {
		return 0, nil
	}
	newCount, err := checkCount(mv.Count, int64(inserted))
	if err != nil {
		return 0, err
	}
	mv.Count = newCount
	if err := wb.Put(MetaCF, EncodeMetaKey(key), EncodeMetaValue(mv)); err != nil {
		return 0, err
	}
	if err := wb.Commit(); err != nil {
		return 0, err
	}
	s.stats.RecordTouch(key)
	return inserted, nil
}

// SCard returns the live member count for key, 0 if absent or stale.
func (s *Sets) SCard(key []byte) (int32, error) {
	now := s.store.GetCurrentTime()
	mv, err := s.readMeta(now, key)
	if err != nil {
		return 0, err
	}
	if mv == nil {
		return 0, nil
	}
	return mv.Count, nil
}

// SIsMember reports whether member is a live member of key.
func (s *Sets) SIsMember(key, member []byte) (bool, error) {
	now := s.store.GetCurrentTime()
	mv, err := s.readMeta(now, key)
	if err != nil {
		return false, err
	}
	if mv == nil {
		return false, nil
	}
	return memberExists(s.store, key, mv.Version, member)
}

// SMembers returns every live member of key under a point-in-time snapshot.
func (s *Sets) SMembers(key []byte) ([][]byte, error) {
	now := s.store.GetCurrentTime()
	mv, err := s.readMeta(now, key)
	if err != nil {
		return nil, err
	}
	if mv == nil {
		return nil, nil
	}
	return withSnapshot(s, func(r storage.Reader) ([][]byte, error) {
		return s.iterateLiveMembers(r, key, mv.Version)
	})
}

// ttlSeconds converts a MetaValue's etime to Redis TTL-reply units: -1 for
// no expiration, -2 for already expired, else whole seconds remaining.
func ttlSeconds(mv *MetaValue, now time.Time) int64 {
	if mv.Etime == 0 {
		return -1
	}
	remaining := int64(mv.Etime) - now.UnixNano()
	if remaining <= 0 {
		return -2
	}
	return remaining / int64(time.Second)
}

// SMembersWithTTL returns key's live members alongside its TTL reply.
func (s *Sets) SMembersWithTTL(key []byte) ([][]byte, int64, error) {
	now := s.store.GetCurrentTime()
	mv, err := s.readMeta(now, key)
	if err != nil {
		return nil, 0, err
	}
	if mv == nil {
		return nil, -2, nil
	}
	members, err := withSnapshot(s, func(r storage.Reader) ([][]byte, error) {
		return s.iterateLiveMembers(r, key, mv.Version)
	})
	if err != nil {
		return nil, 0, err
	}
	return members, ttlSeconds(mv, now), nil
}

// SRem removes members from key, returning the count actually removed.
func (s *Sets) SRem(key []byte, members [][]byte) (int, error) {
	unlock := s.locks.Lock(key)
	defer unlock()

	now := s.store.GetCurrentTime()
	mv, err := s.readMeta(now, key)
	if err != nil {
		return 0, err
	}
	if mv == nil {
		return 0, nil
	}

	wb := s.store.NewWriteBatch()
	var removed int
	for _, m := range dedupeMembers(members) {
		exists, err := memberExists(s.store, key, mv.Version, m)
		if err != nil {
			return 0, err
		}
		if !exists {
			continue
		}
		if err := wb.Delete(SetsDataCF, EncodeMemberKey(key, mv.Version, m)); err != nil {
			return 0, err
		}
		removed++
	}
	if removed == 0 {
		return 0, nil
	}
	newCount, err := checkCount(mv.Count, -int64(removed))
	if err != nil {
		return 0, err
	}
	mv.Count = newCount
	if err := wb.Put(MetaCF, EncodeMetaKey(key), EncodeMetaValue(mv)); err != nil {
		return 0, err
	}
	if err := wb.Commit(); err != nil {
		return 0, err
	}
	if newCount == 0 {
		s.stats.Forget(key)
	} else {
		s.stats.RecordTouch(key)
	}
	return removed, nil
}

func drawDistinctIndices(r *rand.Rand, count, n int) []int {
	if n >= count {
		idx := make([]int, count)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	picked := make(map[int]bool, n)
	result := make([]int, 0, n)
	for len(result) < n {
		i := r.Intn(count)
		if !picked[i] {
			picked[i] = true
			result = append(result, i)
		}
	}
	return result
}

// SPop removes and returns up to n random members from key. If n >= the
// current count, the whole Set is destroyed (meta and members both
// deleted) and every member is returned.
func (s *Sets) SPop(key []byte, n int) ([][]byte, error) {
	unlock := s.locks.Lock(key)
	defer unlock()

	now := s.store.GetCurrentTime()
	mv, err := s.readMeta(now, key)
	if err != nil {
		return nil, err
	}
	if mv == nil {
		return nil, nil
	}

	all, err := s.iterateLiveMembers(s.store, key, mv.Version)
	if err != nil {
		return nil, err
	}

	wb := s.store.NewWriteBatch()

	if int(mv.Count) <= n {
		for _, m := range all {
			if err := wb.Delete(SetsDataCF, EncodeMemberKey(key, mv.Version, m)); err != nil {
				return nil, err
			}
		}
		if err := wb.Delete(MetaCF, EncodeMetaKey(key)); err != nil {
			return nil, err
		}
		if err := wb.Commit(); err != nil {
			return nil, err
		}
		s.stats.RecordSPOP(key, len(all))
		s.stats.Forget(key)
		return all, nil
	}

	r := rand.New(rand.NewSource(now.UnixNano()))
	indices := drawDistinctIndices(r, len(all), n)
	sort.Ints(indices)
	wanted := make(map[int]bool, len(indices))
	for _, i := range indices {
		wanted[i] = true
	}

	var popped [][]byte
	for i, m := range all {
		if !wanted[i] {
			continue
		}
		if err := wb.Delete(SetsDataCF, EncodeMemberKey(key, mv.Version, m)); err != nil {
			return nil, err
		}
		popped = append(popped, m)
	}
	newCount, err := checkCount(mv.Count, -int64(len(popped)))
	if err != nil {
		return nil, err
	}
	mv.Count = newCount
	if err := wb.Put(MetaCF, EncodeMetaKey(key), EncodeMetaValue(mv)); err != nil {
		return nil, err
	}
	if err := wb.Commit(); err != nil {
		return nil, err
	}
	s.stats.RecordSPOP(key, len(popped))
	s.stats.RecordTouch(key)
	return popped, nil
}

// SRandMember returns random members without removing them. cnt > 0 returns
// up to cnt distinct members; cnt < 0 returns exactly |cnt| members,
// allowing repeats; cnt == 0 returns nothing.
func (s *Sets) SRandMember(key []byte, cnt int) ([][]byte, error) {
	if cnt == 0 {
		return nil, nil
	}
	now := s.store.GetCurrentTime()
	mv, err := s.readMeta(now, key)
	if err != nil {
		return nil, err
	}
	if mv == nil {
		return nil, nil
	}

	all, err := withSnapshot(s, func(r storage.Reader) ([][]byte, error) {
		return s.iterateLiveMembers(r, key, mv.Version)
	})
	if err != nil {
		return nil, err
	}
	count := len(all)
	if count == 0 {
		return nil, nil
	}

	r := rand.New(rand.NewSource(now.UnixNano()))
	var positions []int
	if cnt > 0 {
		k := cnt
		if k > count {
			k = count
		}
		positions = drawDistinctIndices(r, count, k)
	} else {
		k := -cnt
		positions = make([]int, k)
		for i := range positions {
			positions[i] = r.Intn(count)
		}
	}
	sort.Ints(positions)

	result := make([][]byte, len(positions))
	for i, pos := range positions {
		result[i] = all[pos]
	}
	r.Shuffle(len(result), func(i, j int) { result[i], result[j] = result[j], result[i] })
	return result, nil
}

// SMove moves member from src to dst, returning whether it was present in
// src. When src and dst are the same key the operation degrades to a
// membership test: the member is removed then immediately re-added within
// the same batch, so the net effect is no mutation, matching Redis' own
// SMOVE-onto-self behavior.
func (s *Sets) SMove(src, dst, member []byte) (bool, error) {
	unlock := s.locks.LockMany([][]byte{src, dst})
	defer unlock()

	now := s.store.GetCurrentTime()
	srcMV, err := s.readMeta(now, src)
	if err != nil {
		return false, err
	}
	if srcMV == nil {
		return false, nil
	}

	exists, err := memberExists(s.store, src, srcMV.Version, member)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	sameKey := bytes.Equal(src, dst)

	wb := s.store.NewWriteBatch()
	if err := wb.Delete(SetsDataCF, EncodeMemberKey(src, srcMV.Version, member)); err != nil {
		return false, err
	}
	newSrcCount, err := checkCount(srcMV.Count, -1)
	if err != nil {
		return false, err
	}
	srcMV.Count = newSrcCount

	var dstMV *MetaValue
	if sameKey {
		dstMV = srcMV
	} else {
		dstMV, err = s.readMeta(now, dst)
		if err != nil {
			return false, err
		}
	}

	if dstMV == nil {
		newMV := NewMetaValue(now)
		if err := wb.Put(SetsDataCF, EncodeMemberKey(dst, newMV.Version, member), []byte{}); err != nil {
			return false, err
		}
		newMV.Count = 1
		dstMV = newMV
	} else {
		var alreadyMember bool
		if sameKey {
			alreadyMember = false // just removed above, within the same uncommitted batch
		} else {
			alreadyMember, err = memberExists(s.store, dst, dstMV.Version, member)
			if err != nil {
				return false, err
			}
		}
		if !alreadyMember {
			if err := wb.Put(SetsDataCF, EncodeMemberKey(dst, dstMV.Version, member), []byte{}); err != nil {
				return false, err
			}
			newDstCount, err := checkCount(dstMV.Count, 1)
			if err != nil {
				return false, err
			}
			dstMV.Count = newDstCount
		}
	}

	if err := wb.Put(MetaCF, EncodeMetaKey(src), EncodeMetaValue(srcMV)); err != nil {
		return false, err
	}
	if !sameKey {
		if err := wb.Put(MetaCF, EncodeMetaKey(dst), EncodeMetaValue(dstMV)); err != nil {
			return false, err
		}
	}
	if err := wb.Commit(); err != nil {
		return false, err
	}
	s.stats.RecordTouch(src)
	s.stats.RecordTouch(dst)
	return true, nil
}

func (s *Sets) resolveVersions(reader storage.Reader, now time.Time, keys [][]byte) ([]*MetaValue, error) {
	result := make([]*MetaValue, len(keys))
	for i, k := range keys {
		mv, err := s.readMetaFrom(reader, now, k)
		if err != nil {
			return nil, err
		}
		result[i] = mv
	}
	return result, nil
}

func (s *Sets) diffMembers(reader storage.Reader, now time.Time, keys [][]byte) ([][]byte, error) {
	metas, err := s.resolveVersions(reader, now, keys)
	if err != nil {
		return nil, err
	}
	if metas[0] == nil {
		return nil, nil
	}
	others := metas[1:]
	otherKeys := keys[1:]

	it := reader.NewIterator(SetsDataCF, storage.IterOptions{UpperBound: SeekUpperBound(keys[0], metas[0].Version)})
	defer it.Close()

	var out [][]byte
	for it.Seek(SeekKey(keys[0], metas[0].Version)); it.Valid(); it.Next() {
		member := DecodeMemberKey(it.Key(), len(keys[0]))
		present := false
		for i, mv := range others {
			if mv == nil {
				continue
			}
			exists, err := memberExists(reader, otherKeys[i], mv.Version, member)
			if err != nil {
				return nil, err
			}
			if exists {
				present = true
				break
			}
		}
		if !present {
			out = append(out, append([]byte(nil), member...))
		}
	}
	return out, nil
}

func (s *Sets) interMembers(reader storage.Reader, now time.Time, keys [][]byte) ([][]byte, error) {
	metas, err := s.resolveVersions(reader, now, keys)
	if err != nil {
		return nil, err
	}
	for _, mv := range metas {
		if mv == nil {
			return nil, nil
		}
	}

	it := reader.NewIterator(SetsDataCF, storage.IterOptions{UpperBound: SeekUpperBound(keys[0], metas[0].Version)})
	defer it.Close()

	var out [][]byte
	for it.Seek(SeekKey(keys[0], metas[0].Version)); it.Valid(); it.Next() {
		member := DecodeMemberKey(it.Key(), len(keys[0]))
		presentInAll := true
		for i := 1; i < len(keys); i++ {
			exists, err := memberExists(reader, keys[i], metas[i].Version, member)
			if err != nil {
				return nil, err
			}
			if !exists {
				presentInAll = false
				break
			}
		}
		if presentInAll {
			out = append(out, append([]byte(nil), member...))
		}
	}
	return out, nil
}

func (s *Sets) unionMembers(reader storage.Reader, now time.Time, keys [][]byte) ([][]byte, error) {
	seen := make(map[string]bool)
	var out [][]byte
	for _, k := range keys {
		mv, err := s.readMetaFrom(reader, now, k)
		if err != nil {
			return nil, err
		}
		if mv == nil {
			continue
		}
		members, err := s.iterateLiveMembers(reader, k, mv.Version)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			ms := string(m)
			if seen[ms] {
				continue
			}
			seen[ms] = true
			out = append(out, m)
		}
	}
	return out, nil
}

// SDiff returns the members of keys[0] not present in any of keys[1:].
func (s *Sets) SDiff(keys [][]byte) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, ErrCorruptedInput
	}
	now := s.store.GetCurrentTime()
	return withSnapshot(s, func(r storage.Reader) ([][]byte, error) {
		return s.diffMembers(r, now, keys)
	})
}

// SInter returns the members common to every key in keys.
func (s *Sets) SInter(keys [][]byte) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, ErrCorruptedInput
	}
	now := s.store.GetCurrentTime()
	return withSnapshot(s, func(r storage.Reader) ([][]byte, error) {
		return s.interMembers(r, now, keys)
	})
}

// SUnion returns the members present in any key in keys, each exactly once.
func (s *Sets) SUnion(keys [][]byte) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, ErrCorruptedInput
	}
	now := s.store.GetCurrentTime()
	return withSnapshot(s, func(r storage.Reader) ([][]byte, error) {
		return s.unionMembers(r, now, keys)
	})
}

type setCompute func(reader storage.Reader, now time.Time, keys [][]byte) ([][]byte, error)

func (s *Sets) storeResult(dst []byte, keys [][]byte, compute setCompute) (int32, error) {
	if len(keys) == 0 {
		return 0, ErrCorruptedInput
	}
	unlock := s.locks.Lock(dst)
	defer unlock()

	now := s.store.GetCurrentTime()

	// Validate dst's current type without acting on it: a live non-Set
	// meta at dst must fail WRONGTYPE rather than be silently overwritten.
	if _, err := s.readMeta(now, dst); err != nil {
		return 0, err
	}

	members, err := withSnapshot(s, func(r storage.Reader) ([][]byte, error) {
		return compute(r, now, keys)
	})
	if err != nil {
		return 0, err
	}

	wb := s.store.NewWriteBatch()
	newMV := NewMetaValue(now)
	for _, m := range members {
		if err := wb.Put(SetsDataCF, EncodeMemberKey(dst, newMV.Version, m), []byte{}); err != nil {
			return 0, err
		}
	}
	count, err := checkCount(0, int64(len(members)))
	if err != nil {
		return 0, err
	}
	newMV.Count = count
	if err := wb.Put(MetaCF, EncodeMetaKey(dst), EncodeMetaValue(newMV)); err != nil {
		return 0, err
	}
	if err := wb.Commit(); err != nil {
		return 0, err
	}
	s.stats.RecordTouch(dst)
	return count, nil
}

// SDiffStore computes SDiff(keys) and stores it as dst's new Set.
func (s *Sets) SDiffStore(dst []byte, keys [][]byte) (int32, error) {
	return s.storeResult(dst, keys, s.diffMembers)
}

// SInterStore computes SInter(keys) and stores it as dst's new Set.
func (s *Sets) SInterStore(dst []byte, keys [][]byte) (int32, error) {
	return s.storeResult(dst, keys, s.interMembers)
}

// SUnionStore computes SUnion(keys) and stores it as dst's new Set.
func (s *Sets) SUnionStore(dst []byte, keys [][]byte) (int32, error) {
	return s.storeResult(dst, keys, s.unionMembers)
}

// SScan walks key's members in stored order starting from cursor, returning
// up to count matches of pattern and the cursor to resume from (0 if the
// scan reached the end).
func (s *Sets) SScan(key []byte, cursor uint64, pattern string, count int) ([][]byte, uint64, error) {
	if count <= 0 {
		count = 10
	}
	now := s.store.GetCurrentTime()
	mv, err := s.readMeta(now, key)
	if err != nil {
		return nil, 0, err
	}
	if mv == nil {
		return nil, 0, nil
	}

	type scanPage struct {
		out        [][]byte
		nextMember []byte
		steps      int
		hasMore    bool
	}

	page, err := withSnapshot(s, func(r storage.Reader) (scanPage, error) {
		var startMember []byte
		if resume, ok := s.scans.Lookup(TypeSet, key, pattern, cursor); ok {
			startMember = resume
		} else if literal, ok := tailWildcardPrefix(pattern); ok {
			startMember = []byte(literal)
		}

		seek := SeekKey(key, mv.Version)
		if len(startMember) > 0 {
			seek = EncodeMemberKey(key, mv.Version, startMember)
		}

		upper := SeekUpperBound(key, mv.Version)
		var tailPrefix []byte
		if literal, ok := tailWildcardPrefix(pattern); ok {
			tailPrefix = []byte(literal)
			boundedUpper := append(append([]byte(nil), tailPrefix...), 0xFF)
			candidate := EncodeMemberKey(key, mv.Version, boundedUpper)
			if bytes.Compare(candidate, upper) < 0 {
				upper = candidate
			}
		}

		it := r.NewIterator(SetsDataCF, storage.IterOptions{UpperBound: upper})
		defer it.Close()

		var p scanPage
		for it.Seek(seek); it.Valid(); it.Next() {
			member := DecodeMemberKey(it.Key(), len(key))
			if p.steps >= count {
				p.hasMore = true
				p.nextMember = append([]byte(nil), member...)
				break
			}
			p.steps++
			if tailPrefix != nil && !bytes.HasPrefix(member, tailPrefix) {
				continue
			}
			if GlobMatch(pattern, string(member)) {
				p.out = append(p.out, append([]byte(nil), member...))
			}
		}
		return p, nil
	})
	if err != nil {
		return nil, 0, err
	}

	if !page.hasMore {
		return page.out, 0, nil
	}
	nextCursor := NextCursor(cursor, page.steps)
	wb := s.store.NewWriteBatch()
	if err := s.scans.Save(wb, TypeSet, key, pattern, nextCursor, page.nextMember); err != nil {
		return nil, 0, err
	}
	if err := wb.Commit(); err != nil {
		return nil, 0, err
	}
	return page.out, nextCursor, nil
}

// Expire sets key's TTL to ttlSeconds from now (non-positive means expire
// immediately). Returns false if key has no live Set meta record.
func (s *Sets) Expire(key []byte, ttlSeconds int64) (bool, error) {
	unlock := s.locks.Lock(key)
	defer unlock()

	now := s.store.GetCurrentTime()
	mv, err := s.readMeta(now, key)
	if err != nil {
		return false, err
	}
	if mv == nil {
		return false, nil
	}

	if ttlSeconds <= 0 {
		mv.Etime = uint64(now.UnixNano())
	} else {
		mv.Etime = uint64(now.Add(time.Duration(ttlSeconds) * time.Second).UnixNano())
	}

	wb := s.store.NewWriteBatch()
	if err := wb.Put(MetaCF, EncodeMetaKey(key), EncodeMetaValue(mv)); err != nil {
		return false, err
	}
	if err := wb.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// TTL reports key's remaining lifetime in the Redis TTL-reply convention:
// -2 absent, -1 no expiration, else whole seconds remaining.
func (s *Sets) TTL(key []byte) (int64, error) {
	now := s.store.GetCurrentTime()
	mv, err := s.readMeta(now, key)
	if err != nil {
		return 0, err
	}
	if mv == nil {
		return -2, nil
	}
	return ttlSeconds(mv, now), nil
}

// renameImpl copies key's members to newkey under a fresh version and
// logically deletes key, reporting whether the rename happened.
func (s *Sets) renameImpl(key, newkey []byte, nx bool) (bool, error) {
	unlock := s.locks.LockMany([][]byte{key, newkey})
	defer unlock()

	now := s.store.GetCurrentTime()
	srcMV, err := s.readMeta(now, key)
	if err != nil {
		return false, err
	}
	if srcMV == nil {
		return false, ErrNotFound
	}

	if nx {
		dstMV, err := s.readMeta(now, newkey)
		existsLive := dstMV != nil
		if err != nil {
			if !IsWrongType(err) {
				return false, err
			}
			existsLive = true
		}
		if existsLive {
			return false, nil
		}
	}

	members, err := s.iterateLiveMembers(s.store, key, srcMV.Version)
	if err != nil {
		return false, err
	}

	wb := s.store.NewWriteBatch()
	newMV := NewMetaValue(now)
	newMV.Etime = srcMV.Etime
	for _, m := range members {
		if err := wb.Put(SetsDataCF, EncodeMemberKey(newkey, newMV.Version, m), []byte{}); err != nil {
			return false, err
		}
	}
	count, err := checkCount(0, int64(len(members)))
	if err != nil {
		return false, err
	}
	newMV.Count = count
	if err := wb.Put(MetaCF, EncodeMetaKey(newkey), EncodeMetaValue(newMV)); err != nil {
		return false, err
	}

	// Logically delete the source: a fresh version with count 0. The old
	// member records become unreachable garbage under the stale version,
	// reclaimed later by the compaction filter.
	deletedMV := NewMetaValue(now)
	deletedMV.Count = 0
	if err := wb.Put(MetaCF, EncodeMetaKey(key), EncodeMetaValue(deletedMV)); err != nil {
		return false, err
	}

	if err := wb.Commit(); err != nil {
		return false, err
	}
	s.stats.Forget(key)
	s.stats.RecordTouch(newkey)
	return true, nil
}

// Rename moves key's entire Set to newkey, overwriting whatever was there.
func (s *Sets) Rename(key, newkey []byte) error {
	_, err := s.renameImpl(key, newkey, false)
	return err
}

// RenameNX renames key to newkey only if newkey has no live value,
// reporting whether the rename happened.
func (s *Sets) RenameNX(key, newkey []byte) (bool, error) {
	return s.renameImpl(key, newkey, true)
}
