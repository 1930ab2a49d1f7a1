package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanCursorStore_LookupMissingReturnsNotOk(t *testing.T) {
	_, e := newTestSets(t)
	store := NewScanCursorStore(e)
	_, ok := store.Lookup(TypeSet, []byte("k"), "*", 5)
	assert.False(t, ok)
}

func TestScanCursorStore_LookupZeroCursorAlwaysMisses(t *testing.T) {
	_, e := newTestSets(t)
	store := NewScanCursorStore(e)

	wb := e.NewWriteBatch()
	assert.Nil(t, store.Save(wb, TypeSet, []byte("k"), "*", 0, []byte("resume")))
	assert.Nil(t, wb.Commit())

	_, ok := store.Lookup(TypeSet, []byte("k"), "*", 0)
	assert.False(t, ok)
}

func TestScanCursorStore_SaveThenLookup(t *testing.T) {
	_, e := newTestSets(t)
	store := NewScanCursorStore(e)

	wb := e.NewWriteBatch()
	assert.Nil(t, store.Save(wb, TypeSet, []byte("k"), "a*", 7, []byte("alpha")))
	assert.Nil(t, wb.Commit())

	resume, ok := store.Lookup(TypeSet, []byte("k"), "a*", 7)
	assert.True(t, ok)
	assert.Equal(t, "alpha", string(resume))

	_, ok = store.Lookup(TypeSet, []byte("k"), "b*", 7)
	assert.False(t, ok)
}

func TestNextCursorAdvancesByStep(t *testing.T) {
	assert.Equal(t, uint64(13), NextCursor(10, 3))
}
