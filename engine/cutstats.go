package engine

import (
	"sync"

	"github.com/rs/zerolog"
)

// CutStatistics collects node and cutoff counts for one searcher.
type CutStatistics struct {
	Nodes        uint64
	Leaves       uint64
	TTCutoffs    uint64
	TTNarrowings uint64
	BetaCutoffs  uint64
	MateRoots    uint64
}

func (c *CutStatistics) add(o CutStatistics) {
	c.Nodes += o.Nodes
	c.Leaves += o.Leaves
	c.TTCutoffs += o.TTCutoffs
	c.TTNarrowings += o.TTNarrowings
	c.BetaCutoffs += o.BetaCutoffs
	c.MateRoots += o.MateRoots
}

func (c CutStatistics) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("nodes", c.Nodes).
		Uint64("leaves", c.Leaves).
		Uint64("tt-cutoffs", c.TTCutoffs).
		Uint64("tt-narrowings", c.TTNarrowings).
		Uint64("beta-cutoffs", c.BetaCutoffs).
		Uint64("mate-roots", c.MateRoots)
}

// cutTotals accumulates statistics from helpers as they finish.
type cutTotals struct {
	mu    sync.Mutex
	stats CutStatistics
}

func (t *cutTotals) add(s CutStatistics) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.add(s)
}

func (t *cutTotals) snapshot() CutStatistics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}
