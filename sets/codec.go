package sets

import (
	"encoding/binary"
	"time"

	"github.com/cockroachdb/errors"
)

// metaKeyTerminator and memberKeySeparator are both the smallest possible
// byte value (0x00). Appending one immediately after a variable-length
// UserKey is the standard trick for keeping a composite ordered key
// lexicographically consistent with the raw UserKey: for any two distinct
// UserKeys A and B, encode(A) < encode(B) iff A < B, including when one is a
// byte-for-byte prefix of the other (spec §4.1 requires exactly this
// ordering property for MetaKey, and that all members of one version sort
// contiguously and separately from every other userkey's members).
const (
	metaKeyTerminator  byte = 0x00
	memberKeySeparator byte = 0x00
)

// metaValueReserved is the MetaValue format-version byte (spec §4.1: "may be
// expressed via the reserved byte"). 0 is the only format this package
// emits or accepts.
const metaValueReserved byte = 0x00

const (
	metaValueSetPayloadSize = 4 // int32 count, little-endian
	metaValueFixedSize      = 1 + 1 + 8 + 8
)

// EncodeMetaKey builds the META_CF key for userKey. See the package-level
// comment on metaKeyTerminator for why ordering holds.
func EncodeMetaKey(userKey []byte) []byte {
	buf := make([]byte, len(userKey)+1)
	copy(buf, userKey)
	buf[len(userKey)] = metaKeyTerminator
	return buf
}

// DecodeMetaKey strips the terminator byte, returning the original userKey.
func DecodeMetaKey(raw []byte) []byte {
	if len(raw) == 0 {
		return nil
	}
	return raw[:len(raw)-1]
}

// MetaValue is the decoded form of a META_CF value: type tag, version,
// expiry, and (for Sets) the live member count.
type MetaValue struct {
	Type    TypeTag
	Version uint64
	Etime   uint64 // unix nanoseconds; 0 means no expiration
	Count   int32
}

// EncodeMetaValue lays out type_tag(1B) | reserved(1B) | version(8B BE) |
// etime(8B BE) | count(4B LE), exactly as spec §4.1 specifies.
func EncodeMetaValue(mv *MetaValue) []byte {
	buf := make([]byte, metaValueFixedSize+metaValueSetPayloadSize)
	buf[0] = byte(mv.Type)
	buf[1] = metaValueReserved
	binary.BigEndian.PutUint64(buf[2:10], mv.Version)
	binary.BigEndian.PutUint64(buf[10:18], mv.Etime)
	binary.LittleEndian.PutUint32(buf[18:22], uint32(mv.Count))
	return buf
}

// DecodeMetaValue fully parses a META_CF value.
func DecodeMetaValue(raw []byte) (*MetaValue, error) {
	if len(raw) < metaValueFixedSize+metaValueSetPayloadSize {
		return nil, errors.New("sets: truncated meta value")
	}
	return &MetaValue{
		Type:    TypeTag(raw[0]),
		Version: binary.BigEndian.Uint64(raw[2:10]),
		Etime:   binary.BigEndian.Uint64(raw[10:18]),
		Count:   int32(binary.LittleEndian.Uint32(raw[18:22])),
	}, nil
}

// ExpectedMetaValue decodes only the type tag, per spec §4.1: "MUST NOT
// fully parse on mismatch." Returns the actual type and whether it matches.
func ExpectedMetaValue(expected TypeTag, raw []byte) (actual TypeTag, ok bool, err error) {
	if len(raw) < 1 {
		return 0, false, errors.New("sets: empty meta value")
	}
	actual = TypeTag(raw[0])
	return actual, actual == expected, nil
}

// IsStale reports whether mv should be treated as absent: its TTL has
// elapsed. Callers additionally treat Count == 0 as stale (spec §4.3); that
// check lives at the call site since it isn't part of the encoded value's
// own freshness.
func IsStale(mv *MetaValue, now time.Time) bool {
	return mv.Etime != 0 && mv.Etime <= uint64(now.UnixNano())
}

// EncodeMemberKey builds the SETS_DATA_CF key for one member of userKey at
// version: userKey | separator | version(8B BE) | member.
func EncodeMemberKey(userKey []byte, version uint64, member []byte) []byte {
	buf := make([]byte, len(userKey)+1+8+len(member))
	n := copy(buf, userKey)
	buf[n] = memberKeySeparator
	n++
	binary.BigEndian.PutUint64(buf[n:n+8], version)
	n += 8
	copy(buf[n:], member)
	return buf
}

// SeekKey is the common prefix of every member of userKey at version; a
// forward iterator seeked here and bounded by SeekUpperBound enumerates
// exactly that version's members, in member-byte order.
func SeekKey(userKey []byte, version uint64) []byte {
	buf := make([]byte, len(userKey)+1+8)
	n := copy(buf, userKey)
	buf[n] = memberKeySeparator
	n++
	binary.BigEndian.PutUint64(buf[n:n+8], version)
	return buf
}

// SeekUpperBound returns the lexicographic successor of SeekKey(userKey,
// version), suitable as storage.IterOptions.UpperBound to stop a prefix scan
// exactly at the end of this version's members.
func SeekUpperBound(userKey []byte, version uint64) []byte {
	bound := SeekKey(userKey, version)
	for i := len(bound) - 1; i >= 0; i-- {
		if bound[i] < 0xFF {
			bound[i]++
			return bound[:i+1]
		}
	}
	return nil
}

// DecodeMemberKey extracts the member bytes from a raw SETS_DATA_CF key,
// given the length of the userKey that produced it (the caller always knows
// this: it is iterating a SeekKey it built itself).
func DecodeMemberKey(raw []byte, userKeyLen int) []byte {
	const headerLen = 1 + 8
	return raw[userKeyLen+headerLen:]
}
