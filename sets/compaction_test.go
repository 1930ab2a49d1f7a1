package sets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	storage "github.com/pikiwidb/storage"
)

func TestCompactionFilter_DropsExpiredMetaPastGrace(t *testing.T) {
	_, e := newTestSets(t)
	now := e.GetCurrentTime()
	filter := NewCompactionFilter(e, func() time.Time { return now.Add(2 * time.Hour) }, time.Hour)

	mv := &MetaValue{Type: TypeSet, Version: 1, Etime: uint64(now.UnixNano()), Count: 1}
	assert.True(t, filter.Filter(MetaCF, EncodeMetaKey([]byte("k")), EncodeMetaValue(mv)))
}

func TestCompactionFilter_KeepsFreshMeta(t *testing.T) {
	_, e := newTestSets(t)
	now := e.GetCurrentTime()
	filter := NewCompactionFilter(e, func() time.Time { return now }, time.Hour)

	mv := &MetaValue{Type: TypeSet, Version: 1, Etime: 0, Count: 1}
	assert.False(t, filter.Filter(MetaCF, EncodeMetaKey([]byte("k")), EncodeMetaValue(mv)))
}

func TestCompactionFilter_DropsMemberWithNoMeta(t *testing.T) {
	_, e := newTestSets(t)
	filter := NewCompactionFilter(e, e.GetCurrentTime, time.Hour)

	memberKey := EncodeMemberKey([]byte("orphan"), 1, []byte("m"))
	assert.True(t, filter.Filter(SetsDataCF, memberKey, []byte{}))
}

func TestCompactionFilter_DropsMemberUnderStaleVersion(t *testing.T) {
	s, e := newTestSets(t)
	_, err := s.SAdd([]byte("k"), byteSlices("m1"))
	assert.Nil(t, err)

	mv, err := s.readMeta(e.GetCurrentTime(), []byte("k"))
	assert.Nil(t, err)
	staleVersion := mv.Version - 1

	filter := NewCompactionFilter(e, e.GetCurrentTime, time.Hour)
	staleMemberKey := EncodeMemberKey([]byte("k"), staleVersion, []byte("ghost"))
	assert.True(t, filter.Filter(SetsDataCF, staleMemberKey, []byte{}))

	liveMemberKey := EncodeMemberKey([]byte("k"), mv.Version, []byte("m1"))
	assert.False(t, filter.Filter(SetsDataCF, liveMemberKey, []byte{}))
}

// enginePtr indirects CompactionFilter's reader to an *storage.Engine that
// doesn't exist yet at the time the filter must be handed to storage.Open.
type enginePtr struct{ e *storage.Engine }

func (p *enginePtr) Get(cf storage.ColumnFamily, key []byte) ([]byte, error) {
	return p.e.Get(cf, key)
}

func (p *enginePtr) NewIterator(cf storage.ColumnFamily, opts storage.IterOptions) storage.Iterator {
	return p.e.NewIterator(cf, opts)
}

func TestEngineCompactDropsGarbageViaSetsFilter(t *testing.T) {
	now := time.Unix(1700000000, 0)
	dir := t.TempDir()

	ptr := &enginePtr{}
	filter := NewCompactionFilter(ptr, func() time.Time { return now }, time.Hour)

	e, err := storage.Open(dir,
		storage.WithColumnFamilies(ColumnFamilies()...),
		storage.WithClock(func() time.Time { return now }),
		storage.WithCompactionFilter(filter),
	)
	assert.Nil(t, err)
	defer func() { _ = e.Close() }()
	ptr.e = e

	s := NewSets(e, NewStatsStore(nil))
	_, err = s.SAdd([]byte("k"), byteSlices("m1", "m2"))
	assert.Nil(t, err)
	oldMeta, err := s.readMeta(now, []byte("k"))
	assert.Nil(t, err)
	oldMemberKey := EncodeMemberKey([]byte("k"), oldMeta.Version, []byte("m1"))

	assert.Nil(t, s.Rename([]byte("k"), []byte("k2")))

	// The old version's member records are now orphaned garbage: k's meta
	// moved on to a fresh, empty version.
	_, err = e.Get(SetsDataCF, oldMemberKey)
	assert.Nil(t, err, "garbage member should still exist before compaction")

	assert.Nil(t, e.Compact(MetaCF))
	assert.Nil(t, e.Compact(SetsDataCF))

	_, err = e.Get(SetsDataCF, oldMemberKey)
	assert.ErrorIs(t, err, storage.ErrNoRecord)

	members, err := s.SMembers([]byte("k2"))
	assert.Nil(t, err)
	assert.ElementsMatch(t, []string{"m1", "m2"}, sortedStrings(members))
}
