package storage

import (
	"sync"

	"github.com/google/btree"
)

// Snapshot is a consistent, point-in-time read view across every column
// family, obtained via google/btree's copy-on-write Clone(). It never
// observes writes committed after GetSnapshot returned, and never blocks
// them either — the defining property spec §5 requires of readers.
type Snapshot struct {
	engine *Engine

	once     sync.Once
	released bool
	trees    map[ColumnFamily]*btree.BTree
}

// GetSnapshot opens a new Snapshot. Callers must Release it on every exit
// path (see sets.withSnapshot for the scoped-guard wrapper spec §4.6 asks
// for).
func (e *Engine) GetSnapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	trees := make(map[ColumnFamily]*btree.BTree, len(e.trees))
	for cf, tree := range e.trees {
		trees[cf] = tree.Clone()
	}
	return &Snapshot{engine: e, trees: trees}
}

func (s *Snapshot) Get(cf ColumnFamily, key []byte) ([]byte, error) {
	if s.released {
		return nil, ErrSnapshotReleased
	}
	tree, ok := s.trees[cf]
	if !ok {
		return nil, ErrUnknownColumnFamily
	}
	value, ok := treeGet(tree, key)
	if !ok {
		return nil, ErrNoRecord
	}
	return value, nil
}

func (s *Snapshot) NewIterator(cf ColumnFamily, opts IterOptions) Iterator {
	tree, ok := s.trees[cf]
	if !ok {
		tree = newColumnFamilyTree()
	}
	return newTreeIterator(tree, opts)
}

// Release drops the snapshot's reference to its cloned trees. Safe to call
// more than once.
func (s *Snapshot) Release() {
	s.once.Do(func() {
		s.released = true
		s.trees = nil
	})
}
