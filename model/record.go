package model

import "encoding/binary"

// MaxHeaderSize is the maximum size in bytes of a marshaled RecordHeader:
// crc(4) + isDelete(1) + keySize(varint) + valueSize(varint).
const MaxHeaderSize = 4 + 1 + binary.MaxVarintLen64*2

// Record is a single WAL entry: a key/value pair, or a tombstone when
// IsDelete is set. The engine package tags which column family a Record
// belongs to by folding it into Key (see wal.go).
type Record struct {
	Crc       uint32
	KeySize   uint32
	ValueSize uint32
	Key       []byte
	Value     []byte
	IsDelete  bool
}

// RecordHeader is the fixed-size prefix of a marshaled Record, read first so
// the variable-length key/value payload can be sized before reading it.
type RecordHeader struct {
	Crc       uint32
	IsDelete  bool
	KeySize   int64
	ValueSize int64
}

// RecordPos locates a Record inside the WAL: which file, what offset, how
// large. The engine's live state lives in in-memory column families;
// RecordPos is what a recovery pass would replay from to rebuild them.
type RecordPos struct {
	Fid    uint32
	Size   uint32
	Offset int64
}
