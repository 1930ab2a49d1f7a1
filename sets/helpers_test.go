package sets

import (
	"sort"
	"testing"

	storage "github.com/pikiwidb/storage"
)

func newTestSets(t *testing.T) (*Sets, storage.Store) {
	t.Helper()
	e, err := storage.Open(t.TempDir(), storage.WithColumnFamilies(ColumnFamilies()...))
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return NewSets(e, NewStatsStore(nil)), e
}

func byteSlices(strs ...string) [][]byte {
	out := make([][]byte, len(strs))
	for i, s := range strs {
		out[i] = []byte(s)
	}
	return out
}

func sortedStrings(members [][]byte) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = string(m)
	}
	sort.Strings(out)
	return out
}
