package storage

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/google/btree"
)

// CompactionFilter is invoked by Compact for every live entry in a column
// family. Filter must be read-only with respect to the store and
// deterministic on equal inputs (spec §4.5): returning true drops the entry.
type CompactionFilter interface {
	Filter(cf ColumnFamily, key, value []byte) bool
}

// Compact applies the engine's configured CompactionFilter to one column
// family, dropping every entry the filter rejects. It is synchronous and
// manual — the reference engine has no background compaction scheduler —
// but the filter itself is exactly the hook a RocksDB/Pebble-backed deployment
// would invoke during real background compaction.
func (e *Engine) Compact(cf ColumnFamily) error {
	if e.opts.compactionFilter == nil {
		return nil
	}

	e.mu.Lock()
	tree, ok := e.trees[cf]
	if !ok {
		e.mu.Unlock()
		return ErrUnknownColumnFamily
	}
	snap := tree.Clone()
	e.mu.Unlock()

	var toDrop [][]byte
	snap.Ascend(func(item btree.Item) bool {
		kv := item.(*kvItem)
		if e.opts.compactionFilter.Filter(cf, kv.key, kv.value) {
			toDrop = append(toDrop, kv.key)
		}
		return true
	})
	if len(toDrop) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	live, ok := e.trees[cf]
	if !ok {
		return ErrUnknownColumnFamily
	}
	for _, key := range toDrop {
		treeDelete(live, key)
	}
	return nil
}

// CompactAll sweeps every registered column family concurrently, stopping at
// the first error. Fanning compaction out per-CF this way is safe because
// each CF is an independently-ordered keyspace with its own tree.
func (e *Engine) CompactAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for cf := range e.trees {
		cf := cf
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return e.Compact(cf)
		})
	}
	return g.Wait()
}
