package storage

import (
	"sync"
	"sync/atomic"

	"github.com/pikiwidb/storage/model"
)

// WriteBatch accumulates Put/Delete mutations across column families and
// applies them atomically on Commit, the way spec §4.7 requires: every
// mutating Set operation stages its writes here and commits exactly once.
type WriteBatch struct {
	mu sync.Mutex

	engine  *Engine
	pending map[ColumnFamily]map[string]*pendingWrite
	count   int
}

type pendingWrite struct {
	value    []byte
	isDelete bool
}

// NewWriteBatch returns an empty batch bound to this engine.
func (e *Engine) NewWriteBatch() *WriteBatch {
	return &WriteBatch{
		engine:  e,
		pending: make(map[ColumnFamily]map[string]*pendingWrite),
	}
}

func (wb *WriteBatch) stage(cf ColumnFamily, key []byte, w *pendingWrite) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}

	wb.mu.Lock()
	defer wb.mu.Unlock()

	m, ok := wb.pending[cf]
	if !ok {
		m = make(map[string]*pendingWrite)
		wb.pending[cf] = m
	}
	if _, exists := m[string(key)]; !exists {
		if wb.count >= wb.engine.opts.maxBatchNum {
			return ErrExceedMaxBatchNum
		}
		wb.count++
	}
	m[string(key)] = w
	return nil
}

// Put stages a key/value write in the given column family.
func (wb *WriteBatch) Put(cf ColumnFamily, key, value []byte) error {
	return wb.stage(cf, key, &pendingWrite{value: value})
}

// Delete stages a tombstone. Deleting a key the batch hasn't otherwise
// touched is staged unconditionally — Commit is the only place existence is
// authoritative, matching how the engine's point reads work under a lock.
func (wb *WriteBatch) Delete(cf ColumnFamily, key []byte) error {
	return wb.stage(cf, key, &pendingWrite{isDelete: true})
}

// Commit applies every staged write under the engine lock: each write is
// first appended to the WAL as its own record, then all of them are applied
// to the in-memory column families. The WAL has no batch framing, so a crash
// partway through the appends leaves a prefix of the batch on disk, and
// replay on the next Open applies that prefix.
func (wb *WriteBatch) Commit() error {
	wb.mu.Lock()
	defer wb.mu.Unlock()

	if wb.count == 0 {
		return nil
	}

	e := wb.engine
	e.mu.Lock()
	defer e.mu.Unlock()

	atomic.AddUint64(&e.batchSeq, 1)

	type applied struct {
		cf  ColumnFamily
		key []byte
		w   *pendingWrite
	}
	all := make([]applied, 0, wb.count)

	for cf, writes := range wb.pending {
		for key, w := range writes {
			rec := &model.Record{
				Key:      encodeWALKey(cf, []byte(key)),
				Value:    w.value,
				IsDelete: w.isDelete,
			}
			if err := e.appendRecordLocked(rec); err != nil {
				return err
			}
			all = append(all, applied{cf: cf, key: []byte(key), w: w})
		}
	}

	if e.opts.syncWrites {
		if err := e.activeFile.Sync(); err != nil {
			return wrapStoreFailure(err, "sync WAL on commit")
		}
	}

	for _, a := range all {
		tree, ok := e.trees[a.cf]
		if !ok {
			continue
		}
		if a.w.isDelete {
			treeDelete(tree, a.key)
		} else {
			treePut(tree, a.key, a.w.value)
		}
	}

	wb.pending = make(map[ColumnFamily]map[string]*pendingWrite)
	wb.count = 0
	return nil
}

// appendRecordLocked writes rec to the active WAL file, rotating to a new
// file first if the active one would exceed its configured size. Caller
// holds e.mu.
func (e *Engine) appendRecordLocked(rec *model.Record) error {
	if e.activeFile == nil {
		if err := e.rotateActiveFile(); err != nil {
			return err
		}
	}

	estimatedSize := int64(len(rec.Key) + len(rec.Value) + model.MaxHeaderSize)
	if e.activeFile.WriteOffset+estimatedSize > e.opts.dataFileSize {
		if err := e.activeFile.Sync(); err != nil {
			return wrapStoreFailure(err, "sync WAL file before rotation")
		}
		if err := e.rotateActiveFile(); err != nil {
			return err
		}
	}

	_, err := appendRecord(e.activeFile, e.opts.codec, rec)
	return err
}
