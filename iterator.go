package storage

import (
	"bytes"

	"github.com/google/btree"
)

// treeIterator walks a frozen or live btree snapshot in ascending key order.
// It collects entries lazily from a Seek point rather than materializing the
// whole tree, and respects an upper bound, matching the prefix-seek pattern
// the Set layer relies on.
type treeIterator struct {
	tree  *btree.BTree
	upper []byte

	items []*kvItem
	idx   int
}

func newTreeIterator(tree *btree.BTree, opts IterOptions) *treeIterator {
	return &treeIterator{tree: tree, upper: opts.UpperBound}
}

func (it *treeIterator) Seek(target []byte) {
	it.items = it.items[:0]
	it.idx = 0

	it.tree.AscendGreaterOrEqual(&kvItem{key: target}, func(item btree.Item) bool {
		kv := item.(*kvItem)
		if it.upper != nil && bytes.Compare(kv.key, it.upper) >= 0 {
			return false
		}
		it.items = append(it.items, kv)
		return true
	})
}

func (it *treeIterator) Next() {
	it.idx++
}

func (it *treeIterator) Valid() bool {
	return it.idx < len(it.items)
}

func (it *treeIterator) Key() []byte {
	return it.items[it.idx].key
}

func (it *treeIterator) Value() []byte {
	return it.items[it.idx].value
}

func (it *treeIterator) Close() {
	it.items = nil
}
