package sets

import (
	"encoding/binary"

	storage "github.com/pikiwidb/storage"
)

// ScanCursorStore persists SSCAN resume points in ScanCF, keyed by
// (type, key, pattern, cursor) so a client can page through a large Set
// across independent requests without holding any server-side state open
// between calls.
type ScanCursorStore struct {
	engine storage.Reader
}

// NewScanCursorStore wraps an engine reader; writes go through a caller
// supplied *storage.WriteBatch instead, keeping ScanCursorStore itself
// read-oriented and batch-commit agnostic.
func NewScanCursorStore(engine storage.Reader) *ScanCursorStore {
	return &ScanCursorStore{engine: engine}
}

func scanCursorKey(typeTag TypeTag, key []byte, pattern string, cursor uint64) []byte {
	buf := make([]byte, 0, 1+len(key)+1+len(pattern)+1+8)
	buf = append(buf, byte(typeTag))
	buf = append(buf, key...)
	buf = append(buf, 0x00)
	buf = append(buf, pattern...)
	buf = append(buf, 0x00)
	var cursorBuf [8]byte
	binary.BigEndian.PutUint64(cursorBuf[:], cursor)
	buf = append(buf, cursorBuf[:]...)
	return buf
}

// Lookup returns the resume point (the MemberKey suffix to seek from) for
// the given scan identity, or (nil, false) if cursor 0 or no entry exists.
func (s *ScanCursorStore) Lookup(typeTag TypeTag, key []byte, pattern string, cursor uint64) ([]byte, bool) {
	if cursor == 0 {
		return nil, false
	}
	raw, err := s.engine.Get(ScanCF, scanCursorKey(typeTag, key, pattern, cursor))
	if err != nil {
		return nil, false
	}
	resumePoint := make([]byte, len(raw))
	copy(resumePoint, raw)
	return resumePoint, true
}

// Save stages the mapping (typeTag, key, pattern, nextCursor) -> resumePoint
// into wb; the caller commits it as part of the same batch as the SSCAN's
// other effects (there are none today, but this keeps the write path
// consistent with every other mutation in this package).
func (s *ScanCursorStore) Save(wb *storage.WriteBatch, typeTag TypeTag, key []byte, pattern string, nextCursor uint64, resumePoint []byte) error {
	return wb.Put(ScanCF, scanCursorKey(typeTag, key, pattern, nextCursor), resumePoint)
}

// NextCursor derives the next opaque cursor value from how many entries the
// current page advanced by. Redis clients treat cursors as opaque; we use
// cursor+step so distinct pages of the same scan never collide.
func NextCursor(cursor uint64, step int) uint64 {
	return cursor + uint64(step)
}
