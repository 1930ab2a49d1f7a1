package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testCF ColumnFamily = "test"

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := Open(t.TempDir(), WithColumnFamilies(testCF))
	assert.Nil(t, err)
	assert.NotNil(t, e)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestEngine_PutGet(t *testing.T) {
	e := openTestEngine(t)

	wb := e.NewWriteBatch()
	assert.Nil(t, wb.Put(testCF, []byte("key"), []byte("value")))
	assert.Nil(t, wb.Commit())

	value, err := e.Get(testCF, []byte("key"))
	assert.Nil(t, err)
	assert.Equal(t, "value", string(value))
}

func TestEngine_GetMissing(t *testing.T) {
	e := openTestEngine(t)

	_, err := e.Get(testCF, []byte("absent"))
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestEngine_Delete(t *testing.T) {
	e := openTestEngine(t)

	wb := e.NewWriteBatch()
	assert.Nil(t, wb.Put(testCF, []byte("key"), []byte("value")))
	assert.Nil(t, wb.Commit())

	wb = e.NewWriteBatch()
	assert.Nil(t, wb.Delete(testCF, []byte("key")))
	assert.Nil(t, wb.Commit())

	_, err := e.Get(testCF, []byte("key"))
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestEngine_IteratorOrderedWithUpperBound(t *testing.T) {
	e := openTestEngine(t)

	wb := e.NewWriteBatch()
	for _, k := range []string{"a1", "a2", "a3", "b1"} {
		assert.Nil(t, wb.Put(testCF, []byte(k), []byte(k)))
	}
	assert.Nil(t, wb.Commit())

	it := e.NewIterator(testCF, IterOptions{UpperBound: []byte("b")})
	defer it.Close()

	var got []string
	for it.Seek([]byte("a")); it.Valid(); it.Next() {
		got = append(got, string(it.Key()))
	}
	assert.Equal(t, []string{"a1", "a2", "a3"}, got)
}

func TestEngine_SnapshotIsolatedFromLaterWrites(t *testing.T) {
	e := openTestEngine(t)

	wb := e.NewWriteBatch()
	assert.Nil(t, wb.Put(testCF, []byte("key"), []byte("v1")))
	assert.Nil(t, wb.Commit())

	snap := e.GetSnapshot()
	defer snap.Release()

	wb = e.NewWriteBatch()
	assert.Nil(t, wb.Put(testCF, []byte("key"), []byte("v2")))
	assert.Nil(t, wb.Commit())

	snapValue, err := snap.Get(testCF, []byte("key"))
	assert.Nil(t, err)
	assert.Equal(t, "v1", string(snapValue))

	liveValue, err := e.Get(testCF, []byte("key"))
	assert.Nil(t, err)
	assert.Equal(t, "v2", string(liveValue))
}

func TestEngine_ReopenReplaysWAL(t *testing.T) {
	dir := t.TempDir()

	e, err := Open(dir, WithColumnFamilies(testCF))
	assert.Nil(t, err)

	wb := e.NewWriteBatch()
	assert.Nil(t, wb.Put(testCF, []byte("key1"), []byte("value1")))
	assert.Nil(t, wb.Put(testCF, []byte("key2"), []byte("value2")))
	assert.Nil(t, wb.Commit())

	wb = e.NewWriteBatch()
	assert.Nil(t, wb.Delete(testCF, []byte("key1")))
	assert.Nil(t, wb.Commit())

	assert.Nil(t, e.Close())

	reopened, err := Open(dir, WithColumnFamilies(testCF))
	assert.Nil(t, err)
	defer func() { _ = reopened.Close() }()

	_, err = reopened.Get(testCF, []byte("key1"))
	assert.ErrorIs(t, err, ErrNoRecord)

	value, err := reopened.Get(testCF, []byte("key2"))
	assert.Nil(t, err)
	assert.Equal(t, "value2", string(value))
}

func TestEngine_SecondOpenOnSameDirFails(t *testing.T) {
	dir := t.TempDir()

	e, err := Open(dir, WithColumnFamilies(testCF))
	assert.Nil(t, err)
	defer func() { _ = e.Close() }()

	_, err = Open(dir, WithColumnFamilies(testCF))
	assert.ErrorIs(t, err, ErrDirIsUsing)
}
