package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanSetsListsLiveKeysOnly(t *testing.T) {
	s, _ := newTestSets(t)

	_, err := s.SAdd([]byte("alpha"), byteSlices("a"))
	assert.Nil(t, err)
	_, err = s.SAdd([]byte("beta"), byteSlices("b"))
	assert.Nil(t, err)
	_, err = s.SAdd([]byte("gamma"), byteSlices("g1", "g2"))
	assert.Nil(t, err)

	// Empty out gamma entirely: it should stop showing up as live.
	_, err = s.SRem([]byte("gamma"), byteSlices("g1", "g2"))
	assert.Nil(t, err)

	infos, err := s.ScanSets(nil, 0)
	assert.Nil(t, err)

	var keys []string
	for _, info := range infos {
		keys = append(keys, string(info.Key))
	}
	assert.ElementsMatch(t, []string{"alpha", "beta"}, keys)
}

func TestScanSetsKeyNum(t *testing.T) {
	s, _ := newTestSets(t)

	total, expired, err := s.ScanSetsKeyNum()
	assert.Nil(t, err)
	assert.Equal(t, int64(0), total)
	assert.Equal(t, int64(0), expired)

	_, err = s.SAdd([]byte("k1"), byteSlices("a"))
	assert.Nil(t, err)
	_, err = s.SAdd([]byte("k2"), byteSlices("b"))
	assert.Nil(t, err)

	total, expired, err = s.ScanSetsKeyNum()
	assert.Nil(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(0), expired)
}

func TestScanSetsKeyNumCountsExpired(t *testing.T) {
	s, _ := newTestSets(t)

	_, err := s.SAdd([]byte("live"), byteSlices("a"))
	assert.Nil(t, err)
	_, err = s.SAdd([]byte("gone"), byteSlices("b"))
	assert.Nil(t, err)

	// Emptying "gone" leaves a Count: 0 meta behind (with no TTL the
	// compaction filter keeps it), which ScanSetsKeyNum should count as
	// expired rather than live.
	_, err = s.SRem([]byte("gone"), byteSlices("b"))
	assert.Nil(t, err)

	total, expired, err := s.ScanSetsKeyNum()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(1), expired)
}

func TestScanSetsRespectsLimit(t *testing.T) {
	s, _ := newTestSets(t)
	for _, k := range []string{"a", "b", "c"} {
		_, err := s.SAdd([]byte(k), byteSlices("m"))
		assert.Nil(t, err)
	}

	infos, err := s.ScanSets(nil, 2)
	assert.Nil(t, err)
	assert.Len(t, infos, 2)
}
