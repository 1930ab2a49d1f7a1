package sets

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestStatsStore_RecordTouchAndHotness(t *testing.T) {
	s := NewStatsStore(prometheus.NewRegistry())
	key := []byte("k")

	assert.Equal(t, uint64(0), s.Hotness(key))
	s.RecordTouch(key)
	s.RecordTouch(key)
	assert.Equal(t, uint64(2), s.Hotness(key))
}

func TestStatsStore_ForgetRemovesEntry(t *testing.T) {
	s := NewStatsStore(prometheus.NewRegistry())
	key := []byte("k")
	s.RecordTouch(key)
	s.Forget(key)
	assert.Equal(t, uint64(0), s.Hotness(key))
}

func TestStatsStore_RecordSPOPDoesNotPanicWithNilRegistry(t *testing.T) {
	s := NewStatsStore(nil)
	s.RecordSPOP([]byte("k"), 3)
}
