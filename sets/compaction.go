package sets

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/cockroachdb/errors"

	storage "github.com/pikiwidb/storage"
)

// CompactionFilter implements storage.CompactionFilter for META_CF and
// SETS_DATA_CF, dropping stale-version member records and expired metas
// during background compaction. It is read-only: every decision is made
// from a point read against the live store and the bytes the compactor
// handed it, and is deterministic given the same (cf, key, value, now).
type CompactionFilter struct {
	reader storage.Reader
	now    func() time.Time
	grace  time.Duration
}

// NewCompactionFilter binds a filter to reader for meta lookups against
// SETS_DATA_CF entries. grace is how long past expiry an already-expired
// meta record is still kept around before compaction drops it, giving
// slow readers a window to observe "stale" rather than "gone".
func NewCompactionFilter(reader storage.Reader, now func() time.Time, grace time.Duration) *CompactionFilter {
	return &CompactionFilter{reader: reader, now: now, grace: grace}
}

// Filter implements storage.CompactionFilter.
func (f *CompactionFilter) Filter(cf storage.ColumnFamily, key, value []byte) bool {
	switch cf {
	case MetaCF:
		return f.filterMeta(value)
	case SetsDataCF:
		return f.filterMember(key)
	default:
		return false
	}
}

func (f *CompactionFilter) filterMeta(value []byte) bool {
	mv, err := DecodeMetaValue(value)
	if err != nil {
		return false
	}
	if mv.Etime == 0 {
		return false
	}
	now := f.now()
	if mv.Etime > uint64(now.UnixNano()) {
		return false
	}
	elapsed := now.UnixNano() - int64(mv.Etime)
	return elapsed >= int64(f.grace)
}

// splitMemberKey decodes a raw SETS_DATA_CF key into its userKey, version,
// and member components. It assumes userKey itself contains no 0x00 byte,
// the same assumption EncodeMemberKey's single-byte separator relies on.
func splitMemberKey(raw []byte) (userKey []byte, version uint64, ok bool) {
	idx := bytes.IndexByte(raw, 0x00)
	if idx < 0 || idx+9 > len(raw) {
		return nil, 0, false
	}
	return raw[:idx], binary.BigEndian.Uint64(raw[idx+1 : idx+9]), true
}

func (f *CompactionFilter) filterMember(key []byte) bool {
	userKey, version, ok := splitMemberKey(key)
	if !ok {
		return false
	}
	raw, err := f.reader.Get(MetaCF, EncodeMetaKey(userKey))
	if errors.Is(err, storage.ErrNoRecord) {
		return true
	}
	if err != nil {
		return false
	}
	mv, err := DecodeMetaValue(raw)
	if err != nil {
		return false
	}
	if mv.Version > version {
		return true
	}
	if mv.Version == version && (IsStale(mv, f.now()) || mv.Count == 0) {
		return true
	}
	return false
}
