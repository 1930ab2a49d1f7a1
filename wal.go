package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pikiwidb/storage/codec"
	"github.com/pikiwidb/storage/model"
	"github.com/pikiwidb/storage/utils"
)

// The WAL is a sequence of append-only data files, one keyspace multiplexed
// across every column family by folding the CF name into the WAL record's
// key (encodeWALKey/decodeWALKey); the in-memory per-CF btrees are the real
// index, so the log only needs to support linear replay on Open, not lookup.

const dataFileSuffix = ".wal"

func dataFileName(fid uint32) string {
	return fmt.Sprintf("%09d%s", fid, dataFileSuffix)
}

func fidFromDataFileName(name string) (uint32, bool) {
	if !strings.HasSuffix(name, dataFileSuffix) {
		return 0, false
	}
	base := strings.TrimSuffix(name, dataFileSuffix)
	n, err := strconv.ParseUint(base, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// encodeWALKey tags a column-family key so a single append log can multiplex
// every CF: len(cf) varint | cf bytes | key.
func encodeWALKey(cf ColumnFamily, key []byte) []byte {
	cfBytes := []byte(cf)
	buf := make([]byte, binary.MaxVarintLen64+len(cfBytes)+len(key))
	n := binary.PutUvarint(buf, uint64(len(cfBytes)))
	n += copy(buf[n:], cfBytes)
	n += copy(buf[n:], key)
	return buf[:n]
}

func decodeWALKey(buf []byte) (ColumnFamily, []byte) {
	cfLen, n := binary.Uvarint(buf)
	cf := ColumnFamily(buf[n : n+int(cfLen)])
	key := buf[n+int(cfLen):]
	return cf, key
}

// appendRecord marshals rec through c and writes it to df, returning where it
// landed so a recovery pass (or, in a fuller implementation, a hint file)
// could locate it again.
func appendRecord(df *model.DataFile, c codec.Codec, rec *model.Record) (*model.RecordPos, error) {
	body, bodySize, err := c.MarshalRecord(rec)
	if err != nil {
		return nil, wrapStoreFailure(err, "marshal WAL record")
	}

	header := &model.RecordHeader{
		Crc:       utils.GenerateCrc(body),
		IsDelete:  rec.IsDelete,
		KeySize:   int64(len(rec.Key)),
		ValueSize: int64(len(rec.Value)),
	}
	headerBytes, headerSize, err := c.MarshalRecordHeader(header)
	if err != nil {
		return nil, wrapStoreFailure(err, "marshal WAL header")
	}

	pos := &model.RecordPos{Fid: df.Fid, Offset: df.WriteOffset}

	if err := df.Write(headerBytes[:headerSize]); err != nil {
		return nil, wrapStoreFailure(err, "append WAL header")
	}
	if err := df.Write(body[:bodySize]); err != nil {
		return nil, wrapStoreFailure(err, "append WAL body")
	}

	pos.Size = uint32(headerSize + bodySize)
	return pos, nil
}

// readAllRecords replays every record in df from the start, invoking fn for
// each. Used on Open to rebuild the in-memory column families from disk.
func readAllRecords(df *model.DataFile, c codec.Codec, fn func(rec *model.Record) error) error {
	var offset int64
	for {
		headerBytes, err := df.ReadRecordHeader(offset)
		if err != nil {
			return wrapStoreFailure(err, "read WAL header")
		}
		if len(headerBytes) == 0 {
			return nil
		}

		header := &model.RecordHeader{}
		headerSize, err := c.UnmarshalRecordHeader(headerBytes, header)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return wrapStoreFailure(err, "decode WAL header")
		}

		bodySize := header.KeySize + header.ValueSize
		if bodySize == 0 && header.KeySize == 0 {
			return nil
		}

		body, err := df.ReadRecord(offset+headerSize, bodySize)
		if err != nil {
			return wrapStoreFailure(err, "read WAL body")
		}
		if !utils.CheckCrc(header.Crc, body) {
			return wrapStoreFailure(ErrDataFileCorrupted, "WAL checksum mismatch")
		}

		rec := &model.Record{IsDelete: header.IsDelete}
		if err := c.UnmarshalRecord(body, header, rec); err != nil {
			return wrapStoreFailure(err, "decode WAL record")
		}

		if err := fn(rec); err != nil {
			return err
		}

		offset += headerSize + bodySize
	}
}

func dataFileGlobPattern(dirPath string) string {
	return filepath.Join(dirPath, "*"+dataFileSuffix)
}
