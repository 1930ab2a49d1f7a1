package storage

import (
	"bytes"

	"github.com/google/btree"
)

const btreeDegree = 32

// kvItem implements btree.Item over raw byte-string keys, ordering entries
// lexicographically the way the codec's key encodings require. It stores the
// value directly rather than a file position, since this engine keeps live
// values in memory.
type kvItem struct {
	key   []byte
	value []byte
}

func (i *kvItem) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(*kvItem).key) < 0
}

// newColumnFamilyTree returns an empty ordered tree for one column family.
func newColumnFamilyTree() *btree.BTree {
	return btree.New(btreeDegree)
}

func treeGet(tree *btree.BTree, key []byte) ([]byte, bool) {
	found := tree.Get(&kvItem{key: key})
	if found == nil {
		return nil, false
	}
	return found.(*kvItem).value, true
}

func treePut(tree *btree.BTree, key, value []byte) {
	tree.ReplaceOrInsert(&kvItem{key: key, value: value})
}

func treeDelete(tree *btree.BTree, key []byte) {
	tree.Delete(&kvItem{key: key})
}
