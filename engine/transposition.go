package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Flag tells how a cached score relates to the true value of the position.
type Flag uint8

const (
	Exact Flag = iota
	LowerBound
	UpperBound
)

func (f Flag) String() string {
	switch f {
	case LowerBound:
		return "lower"
	case UpperBound:
		return "upper"
	default:
		return "exact"
	}
}

// ReplacementPolicy decides whether a store may evict an occupied slot.
type ReplacementPolicy uint8

const (
	// AlwaysReplace overwrites unconditionally.
	AlwaysReplace ReplacementPolicy = iota
	// DepthPreferred keeps a deeper entry for a different position.
	DepthPreferred
)

// ParsePolicy maps the config names "always" and "depth" to a policy.
func ParsePolicy(s string) (ReplacementPolicy, error) {
	switch s {
	case "", "always":
		return AlwaysReplace, nil
	case "depth":
		return DepthPreferred, nil
	}
	return AlwaysReplace, fmt.Errorf("unknown replacement policy %q", s)
}

// DefaultTTSize is the table size in MB used when none is configured.
const DefaultTTSize = 64

// TransEntry is a cached search result. It is only trusted for requests
// whose remaining depth is at most Depth.
type TransEntry struct {
	Depth int
	Flag  Flag
	Score int32
}

type ttSlot struct {
	hash  uint64
	entry TransEntry
	used  bool
}

// TransTable is a fixed-size hash table shared by every searcher of a game.
// Each Get and Put holds the lock for that call only.
type TransTable struct {
	mu     sync.Mutex
	slots  []ttSlot
	mask   uint64
	used   int
	policy ReplacementPolicy

	probes     atomic.Uint64
	hits       atomic.Uint64
	stores     atomic.Uint64
	overwrites atomic.Uint64
}

// TTStats is a snapshot of table counters.
type TTStats struct {
	Probes     uint64
	Hits       uint64
	Stores     uint64
	Overwrites uint64
	Used       int
	Capacity   int
}

// NewTransTable allocates a table of roughly sizeMB megabytes, rounded down
// to a power-of-two slot count.
func NewTransTable(sizeMB int, policy ReplacementPolicy) *TransTable {
	if sizeMB <= 0 {
		sizeMB = DefaultTTSize
	}
	slotSize := uint64(unsafe.Sizeof(ttSlot{}))
	count := uint64(sizeMB) * 1024 * 1024 / slotSize
	n := uint64(1)
	for n*2 <= count {
		n *= 2
	}
	return &TransTable{
		slots:  make([]ttSlot, n),
		mask:   n - 1,
		policy: policy,
	}
}

// Get returns the entry stored for hash, if any.
func (tt *TransTable) Get(hash uint64) (TransEntry, bool) {
	tt.probes.Add(1)
	tt.mu.Lock()
	defer tt.mu.Unlock()
	s := &tt.slots[hash&tt.mask]
	if !s.used || s.hash != hash {
		return TransEntry{}, false
	}
	tt.hits.Add(1)
	return s.entry, true
}

// Put records entry for hash. Scores in the mate band are not cached since
// their distance is relative to the ply at which they were found.
func (tt *TransTable) Put(hash uint64, entry TransEntry) {
	if isMateScore(entry.Score) {
		return
	}
	tt.mu.Lock()
	defer tt.mu.Unlock()
	s := &tt.slots[hash&tt.mask]
	switch {
	case !s.used:
		tt.used++
	case s.hash != hash:
		if tt.policy == DepthPreferred && s.entry.Depth > entry.Depth {
			return
		}
		tt.overwrites.Add(1)
	}
	*s = ttSlot{hash: hash, entry: entry, used: true}
	tt.stores.Add(1)
}

// Clear drops every entry and resets the counters.
func (tt *TransTable) Clear() {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	clear(tt.slots)
	tt.used = 0
	tt.probes.Store(0)
	tt.hits.Store(0)
	tt.stores.Store(0)
	tt.overwrites.Store(0)
}

// Len returns the number of occupied slots.
func (tt *TransTable) Len() int {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return tt.used
}

// Capacity returns the number of slots.
func (tt *TransTable) Capacity() int { return len(tt.slots) }

func (tt *TransTable) Stats() TTStats {
	return TTStats{
		Probes:     tt.probes.Load(),
		Hits:       tt.hits.Load(),
		Stores:     tt.stores.Load(),
		Overwrites: tt.overwrites.Load(),
		Used:       tt.Len(),
		Capacity:   tt.Capacity(),
	}
}

func (tt *TransTable) forEach(fn func(hash uint64, e TransEntry)) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	for i := range tt.slots {
		if tt.slots[i].used {
			fn(tt.slots[i].hash, tt.slots[i].entry)
		}
	}
}
