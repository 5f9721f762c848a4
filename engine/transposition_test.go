package engine

import (
	"math/bits"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestTransTableCapacity(t *testing.T) {
	for _, mb := range []int{1, 3, 16} {
		tt := NewTransTable(mb, AlwaysReplace)
		c := tt.Capacity()
		if c == 0 || bits.OnesCount(uint(c)) != 1 {
			t.Fatalf("%d MB: capacity %d is not a power of two", mb, c)
		}
	}
	if NewTransTable(0, AlwaysReplace).Capacity() != NewTransTable(DefaultTTSize, AlwaysReplace).Capacity() {
		t.Fatalf("zero size should fall back to the default")
	}
}

func TestTransTableGetPut(t *testing.T) {
	tt := NewTransTable(1, AlwaysReplace)
	if _, ok := tt.Get(42); ok {
		t.Fatalf("empty table hit")
	}
	want := TransEntry{Depth: 3, Flag: LowerBound, Score: 120}
	tt.Put(42, want)
	got, ok := tt.Get(42)
	if !ok || got != want {
		t.Fatalf("Get: got %+v %v want %+v", got, ok, want)
	}

	// Same slot, different key.
	collide := uint64(42 + tt.Capacity())
	if _, ok := tt.Get(collide); ok {
		t.Fatalf("colliding key matched")
	}
	if tt.Len() != 1 {
		t.Fatalf("Len: got %d want 1", tt.Len())
	}
}

func TestTransTableSkipsMateScores(t *testing.T) {
	tt := NewTransTable(1, AlwaysReplace)
	tt.Put(1, TransEntry{Depth: 2, Flag: Exact, Score: MateScore - 3})
	tt.Put(2, TransEntry{Depth: 2, Flag: Exact, Score: -(MateScore - 5)})
	tt.Put(3, TransEntry{Depth: 2, Flag: Exact, Score: MateThreshold})
	if _, ok := tt.Get(1); ok {
		t.Fatalf("winning mate score cached")
	}
	if _, ok := tt.Get(2); ok {
		t.Fatalf("losing mate score cached")
	}
	if _, ok := tt.Get(3); !ok {
		t.Fatalf("score at the threshold should be cached")
	}
}

func TestTransTableReplacementPolicies(t *testing.T) {
	cases := []struct {
		policy ReplacementPolicy
		keep   bool
	}{
		{AlwaysReplace, false},
		{DepthPreferred, true},
	}
	for _, tc := range cases {
		tt := NewTransTable(1, tc.policy)
		a := uint64(7)
		b := a + uint64(tt.Capacity())
		tt.Put(a, TransEntry{Depth: 6, Flag: Exact, Score: 10})
		tt.Put(b, TransEntry{Depth: 2, Flag: Exact, Score: 20})

		_, hasA := tt.Get(a)
		_, hasB := tt.Get(b)
		if hasA != tc.keep || hasB == tc.keep {
			t.Fatalf("policy %d: deep entry kept=%v shallow stored=%v", tc.policy, hasA, hasB)
		}

		// Same key always refreshes.
		tt.Put(a, TransEntry{Depth: 1, Flag: UpperBound, Score: -4})
		tt.Put(a, TransEntry{Depth: 1, Flag: UpperBound, Score: -5})
		if e, ok := tt.Get(a); !ok || e.Score != -5 {
			t.Fatalf("policy %d: same-key update lost: %+v %v", tc.policy, e, ok)
		}
	}
}

func TestTransTableClearAndStats(t *testing.T) {
	tt := NewTransTable(1, AlwaysReplace)
	tt.Put(1, TransEntry{Depth: 1, Score: 1})
	tt.Put(1+uint64(tt.Capacity()), TransEntry{Depth: 1, Score: 2})
	tt.Get(1)
	tt.Get(1 + uint64(tt.Capacity()))

	st := tt.Stats()
	if st.Stores != 2 || st.Overwrites != 1 || st.Probes != 2 || st.Hits != 1 || st.Used != 1 {
		t.Fatalf("stats: %+v", st)
	}

	tt.Clear()
	if tt.Len() != 0 {
		t.Fatalf("Len after Clear: %d", tt.Len())
	}
	if _, ok := tt.Get(1 + uint64(tt.Capacity())); ok {
		t.Fatalf("entry survived Clear")
	}
	if st := tt.Stats(); st.Stores != 0 || st.Overwrites != 0 {
		t.Fatalf("counters survived Clear: %+v", st)
	}
}

// Entries written concurrently must never be torn: each entry's fields are
// derived from its key.
func TestTransTableConcurrent(t *testing.T) {
	tt := NewTransTable(1, AlwaysReplace)
	const workers = 8
	const perWorker = 20000

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < perWorker; i++ {
				key := uint64(w*perWorker+i) * 0x9E3779B97F4A7C15
				tt.Put(key, entryFor(key))
				if e, ok := tt.Get(key ^ 0xFF); ok && e != entryFor(key^0xFF) {
					t.Errorf("torn entry for %x: %+v", key^0xFF, e)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	tt.forEach(func(hash uint64, e TransEntry) {
		if e != entryFor(hash) {
			t.Fatalf("entry for %x: got %+v want %+v", hash, e, entryFor(hash))
		}
	})
	if tt.Len() == 0 || tt.Len() > tt.Capacity() {
		t.Fatalf("Len %d out of range", tt.Len())
	}
}

func entryFor(key uint64) TransEntry {
	return TransEntry{
		Depth: int(key % 17),
		Flag:  Flag(key % 3),
		Score: int32(key%2000) - 1000,
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]ReplacementPolicy{"": AlwaysReplace, "always": AlwaysReplace, "depth": DepthPreferred} {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %v %v want %v", in, got, err, want)
		}
	}
	if _, err := ParsePolicy("lru"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func BenchmarkTransTablePutGet(b *testing.B) {
	tt := NewTransTable(16, AlwaysReplace)
	b.RunParallel(func(pb *testing.PB) {
		key := uint64(1)
		for pb.Next() {
			key = key*6364136223846793005 + 1442695040888963407
			tt.Put(key, TransEntry{Depth: 4, Score: 12})
			tt.Get(key)
		}
	})
}
