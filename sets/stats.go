package sets

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// keyStats is the per-UserKey counter bundle the statistics store tracks.
type keyStats struct {
	hotness      uint64 // incremented on every read or write touching the key
	spopRequests uint64 // SPOP calls served for this key
	spopDrawn    uint64 // total members drawn across those calls
}

const statsShardCount = 64

// StatsStore is a sharded in-memory map from UserKey to counters, with
// aggregate totals exported as Prometheus metrics for operator dashboards.
// The map has no size cap: an entry stays until Forget removes it. Nothing
// else in this package reads the per-key counters; Hotness is the only
// accessor.
type StatsStore struct {
	shards [statsShardCount]statsShard

	hotKeyTouches   prometheus.Counter
	spopCallsTotal  prometheus.Counter
	spopMembersDraw prometheus.Counter
	trackedKeys     prometheus.GaugeFunc
}

type statsShard struct {
	mu   sync.Mutex
	data map[string]*keyStats
}

// NewStatsStore builds a store and registers its Prometheus collectors
// against reg. Passing nil is valid and simply skips registration, which
// test code relies on to avoid duplicate-registration panics.
func NewStatsStore(reg prometheus.Registerer) *StatsStore {
	s := &StatsStore{
		hotKeyTouches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pikiwidb",
			Subsystem: "sets",
			Name:      "key_touches_total",
			Help:      "Number of read/write touches recorded against Set keys.",
		}),
		spopCallsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pikiwidb",
			Subsystem: "sets",
			Name:      "spop_calls_total",
			Help:      "Number of SPOP calls served.",
		}),
		spopMembersDraw: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pikiwidb",
			Subsystem: "sets",
			Name:      "spop_members_drawn_total",
			Help:      "Total members drawn across all SPOP calls.",
		}),
	}
	for i := range s.shards {
		s.shards[i].data = make(map[string]*keyStats)
	}
	s.trackedKeys = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "pikiwidb",
		Subsystem: "sets",
		Name:      "tracked_keys",
		Help:      "Number of Set keys with live statistics entries.",
	}, s.countTracked)

	if reg != nil {
		reg.MustRegister(s.hotKeyTouches, s.spopCallsTotal, s.spopMembersDraw, s.trackedKeys)
	}
	return s
}

func (s *StatsStore) shardFor(key []byte) *statsShard {
	return &s.shards[fnv32(key)%statsShardCount]
}

func (s *StatsStore) entry(shard *statsShard, key []byte) *keyStats {
	if e, ok := shard.data[string(key)]; ok {
		return e
	}
	e := &keyStats{}
	shard.data[string(key)] = e
	return e
}

// RecordTouch marks key as accessed, incrementing the count Hotness reports.
func (s *StatsStore) RecordTouch(key []byte) {
	shard := s.shardFor(key)
	shard.mu.Lock()
	s.entry(shard, key).hotness++
	shard.mu.Unlock()
	s.hotKeyTouches.Inc()
}

// RecordSPOP records one SPOP call against key that drew n members.
func (s *StatsStore) RecordSPOP(key []byte, n int) {
	shard := s.shardFor(key)
	shard.mu.Lock()
	e := s.entry(shard, key)
	e.spopRequests++
	e.spopDrawn += uint64(n)
	shard.mu.Unlock()
	s.spopCallsTotal.Inc()
	s.spopMembersDraw.Add(float64(n))
}

// Hotness returns the recorded touch count for key, 0 if untracked.
func (s *StatsStore) Hotness(key []byte) uint64 {
	shard := s.shardFor(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if e, ok := shard.data[string(key)]; ok {
		return e.hotness
	}
	return 0
}

// Forget drops key's statistics entry entirely, called once a key is
// logically destroyed (SPOP-to-empty, version bump, DEL).
func (s *StatsStore) Forget(key []byte) {
	shard := s.shardFor(key)
	shard.mu.Lock()
	delete(shard.data, string(key))
	shard.mu.Unlock()
}

func (s *StatsStore) countTracked() float64 {
	var total int
	for i := range s.shards {
		s.shards[i].mu.Lock()
		total += len(s.shards[i].data)
		s.shards[i].mu.Unlock()
	}
	return float64(total)
}
