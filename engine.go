package storage

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/btree"

	"github.com/pikiwidb/storage/model"
)

// Engine is the reference Store implementation: an ordered, multi-column-
// family, snapshot-capable key-value engine backed by an append-only WAL and
// in-memory btrees. It plays the role spec §6 assigns to an external LSM
// store (RocksDB/Pebble in the shipped server).
type Engine struct {
	mu sync.Mutex

	opts *options
	lock *flock.Flock

	trees map[ColumnFamily]*btree.BTree

	activeFile *model.DataFile
	olderFiles map[uint32]*model.DataFile

	batchSeq uint64
}

// Open creates or reopens an Engine rooted at dirPath, replaying its WAL to
// rebuild every registered column family.
func Open(dirPath string, opts ...Option) (*Engine, error) {
	o := defaultOptions(dirPath)
	for _, opt := range opts {
		opt(o)
	}

	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return nil, wrapStoreFailure(err, "create data directory")
	}

	dirLock := flock.New(filepath.Join(dirPath, "flock"))
	locked, err := dirLock.TryLock()
	if err != nil {
		return nil, wrapStoreFailure(err, "acquire directory lock")
	}
	if !locked {
		return nil, ErrDirIsUsing
	}

	e := &Engine{
		opts:       o,
		lock:       dirLock,
		trees:      make(map[ColumnFamily]*btree.BTree, len(o.columnFamilies)),
		olderFiles: make(map[uint32]*model.DataFile),
	}
	for _, cf := range o.columnFamilies {
		e.trees[cf] = newColumnFamilyTree()
	}

	if err := e.loadDataFiles(); err != nil {
		_ = dirLock.Unlock()
		return nil, err
	}
	if err := e.replay(); err != nil {
		_ = dirLock.Unlock()
		return nil, err
	}
	if e.activeFile == nil {
		if err := e.rotateActiveFile(); err != nil {
			_ = dirLock.Unlock()
			return nil, err
		}
	}

	return e, nil
}

// Close syncs and releases the engine's resources.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activeFile != nil {
		if err := e.activeFile.Sync(); err != nil {
			return wrapStoreFailure(err, "sync active WAL file")
		}
		if err := e.activeFile.IoManager.Close(); err != nil {
			return wrapStoreFailure(err, "close active WAL file")
		}
	}
	for _, f := range e.olderFiles {
		if err := f.IoManager.Close(); err != nil {
			return wrapStoreFailure(err, "close WAL file")
		}
	}
	return e.lock.Unlock()
}

// Get performs a point read against the live column family.
func (e *Engine) Get(cf ColumnFamily, key []byte) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tree, ok := e.trees[cf]
	if !ok {
		return nil, ErrUnknownColumnFamily
	}
	value, ok := treeGet(tree, key)
	if !ok {
		return nil, ErrNoRecord
	}
	return value, nil
}

// NewIterator returns a cursor over a clone of the live tree, so a caller
// iterating does not need to hold the engine lock for the duration.
func (e *Engine) NewIterator(cf ColumnFamily, opts IterOptions) Iterator {
	e.mu.Lock()
	tree, ok := e.trees[cf]
	if !ok {
		e.mu.Unlock()
		return newTreeIterator(newColumnFamilyTree(), opts)
	}
	snap := tree.Clone()
	e.mu.Unlock()
	return newTreeIterator(snap, opts)
}

// GetCurrentTime is the engine's injectable wall clock.
func (e *Engine) GetCurrentTime() time.Time {
	return e.opts.clock()
}

// CommitSeq returns the number of write batches committed so far, for
// operator introspection and tests that want to assert a batch landed.
func (e *Engine) CommitSeq() uint64 {
	return atomic.LoadUint64(&e.batchSeq)
}

func (e *Engine) rotateActiveFile() error {
	var fid uint32
	if e.activeFile != nil {
		fid = e.activeFile.Fid + 1
		e.olderFiles[e.activeFile.Fid] = e.activeFile
	}

	ioManager, err := e.opts.ioManagerCreator(e.opts.dataFilePath(fid))
	if err != nil {
		return wrapStoreFailure(err, "create WAL file")
	}
	e.activeFile = model.OpenDataFile(fid, ioManager)
	return nil
}

func (e *Engine) loadDataFiles() error {
	entries, err := os.ReadDir(e.opts.dirPath)
	if err != nil {
		return wrapStoreFailure(err, "list data directory")
	}

	var fids []uint32
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fid, ok := fidFromDataFileName(entry.Name())
		if !ok {
			continue
		}
		fids = append(fids, fid)
	}
	sort.Slice(fids, func(i, j int) bool { return fids[i] < fids[j] })

	for _, fid := range fids {
		ioManager, err := e.opts.ioManagerCreator(e.opts.dataFilePath(fid))
		if err != nil {
			return wrapStoreFailure(err, "open WAL file")
		}
		df := model.OpenDataFile(fid, ioManager)
		size, err := ioManager.Size()
		if err != nil {
			return wrapStoreFailure(err, "stat WAL file")
		}
		df.WriteOffset = size

		if fid == lastOf(fids) {
			e.activeFile = df
		} else {
			e.olderFiles[fid] = df
		}
	}
	return nil
}

func lastOf(fids []uint32) uint32 {
	if len(fids) == 0 {
		return 0
	}
	return fids[len(fids)-1]
}

// replay rebuilds every column family's in-memory tree from the WAL, in file
// and offset order, applying puts and deletes as it goes.
func (e *Engine) replay() error {
	files := make([]*model.DataFile, 0, len(e.olderFiles)+1)
	for _, f := range e.olderFiles {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Fid < files[j].Fid })
	if e.activeFile != nil {
		files = append(files, e.activeFile)
	}

	for _, df := range files {
		err := readAllRecords(df, e.opts.codec, func(rec *model.Record) error {
			cf, key := decodeWALKey(rec.Key)
			tree, ok := e.trees[cf]
			if !ok {
				return nil
			}
			if rec.IsDelete {
				treeDelete(tree, key)
			} else {
				treePut(tree, key, rec.Value)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
