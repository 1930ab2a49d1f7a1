package storage

import "github.com/cockroachdb/errors"

var (
	// ErrNoRecord is returned by Get when the key is absent from the
	// column family. Callers compare against it with errors.Is.
	ErrNoRecord = errors.New("storage: no record")

	ErrEmptyKey           = errors.New("storage: empty key")
	ErrUnknownColumnFamily = errors.New("storage: unknown column family")
	ErrExceedMaxBatchNum  = errors.New("storage: write batch exceeds max entry count")
	ErrSnapshotReleased   = errors.New("storage: snapshot already released")
	ErrDirIsUsing         = errors.New("storage: data directory is locked by another process")
	ErrDataFileCorrupted  = errors.New("storage: WAL data file may be corrupted")
)

// wrapStoreFailure tags an underlying I/O or codec failure as a store
// failure per spec §7 (StoreFailure propagates unchanged to the caller; only
// the message gains context, errors.Is(err, cause) still matches).
func wrapStoreFailure(err error, context string) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "storage: %s", context)
}
