package storage

import (
	"path/filepath"
	"time"

	"github.com/pikiwidb/storage/codec"
	"github.com/pikiwidb/storage/fio"
)

type options struct {
	dirPath          string
	dataFileSize     int64
	columnFamilies   []ColumnFamily
	maxBatchNum      int
	syncWrites       bool
	compactionFilter CompactionFilter
	clock            func() time.Time

	ioManagerCreator func(path string) (fio.IOManager, error)
	codec            codec.Codec
}

// Option configures an Engine at Open time via the functional-options
// pattern.
type Option func(*options)

func defaultOptions(dirPath string) *options {
	return &options{
		dirPath:      dirPath,
		dataFileSize: 256 * 1024 * 1024,
		maxBatchNum:  10000,
		clock:        time.Now,
		codec:        codec.NewCodecImpl(),
		ioManagerCreator: func(path string) (fio.IOManager, error) {
			return fio.NewFIleIO(path)
		},
	}
}

// WithColumnFamilies registers the column families Open should create. The
// Set layer passes META_CF, SETS_DATA_CF and SCAN_CF (see sets.ColumnFamilies).
func WithColumnFamilies(cfs ...ColumnFamily) Option {
	return func(o *options) { o.columnFamilies = cfs }
}

func WithDataFileSize(size int64) Option {
	return func(o *options) { o.dataFileSize = size }
}

func WithMaxBatchNum(n int) Option {
	return func(o *options) { o.maxBatchNum = n }
}

// WithSyncWrites forces an fsync of the WAL's active file on every batch
// commit. Off by default.
func WithSyncWrites(sync bool) Option {
	return func(o *options) { o.syncWrites = sync }
}

func WithIOManagerCreator(fn func(path string) (fio.IOManager, error)) Option {
	return func(o *options) { o.ioManagerCreator = fn }
}

func WithCodec(c codec.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithCompactionFilter installs the filter Compact/CompactAll invoke per
// spec §4.5. Without one, Compact is a no-op.
func WithCompactionFilter(f CompactionFilter) Option {
	return func(o *options) { o.compactionFilter = f }
}

// WithClock overrides GetCurrentTime, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

func (o *options) dataFilePath(fid uint32) string {
	return filepath.Join(o.dirPath, dataFileName(fid))
}
