package engine

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"chess-mtdf/board"
)

// Result is the outcome of one search.
type Result struct {
	Move board.Move
	// Score is white-relative.
	Score int32
	// Depth is the last fully searched depth; 0 if none finished.
	Depth int
	// Ranked holds the root moves of the last finished depth, best first,
	// scored for the side to move.
	Ranked []MoveEval
	Nodes  uint64
}

// Engine runs searches against one transposition table, normally for the
// whole of a game. Helper goroutines outlive Search; call Wait to drain them.
type Engine struct {
	cfg     Config
	table   *TransTable
	helpers errgroup.Group
	totals  cutTotals
}

// New returns an engine using table, or a fresh table sized by cfg if table
// is nil.
func New(cfg Config, table *TransTable) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if table == nil {
		policy, _ := ParsePolicy(cfg.TTPolicy)
		table = NewTransTable(cfg.TTSizeMB, policy)
	}
	return &Engine{cfg: cfg, table: table}, nil
}

func (e *Engine) Table() *TransTable { return e.table }

func (e *Engine) Config() Config { return e.cfg }

// Wait blocks until every helper spawned so far has returned. It must not
// run concurrently with Search.
func (e *Engine) Wait() error { return e.helpers.Wait() }

// HelperStats returns the combined statistics of finished helpers.
func (e *Engine) HelperStats() CutStatistics { return e.totals.snapshot() }

// Search returns the best move for pos using the default configuration and
// the given table, which may be nil.
func Search(ctx context.Context, pos board.Position, depth int, table *TransTable) (board.Move, error) {
	e, err := New(DefaultConfig(), table)
	if err != nil {
		return board.NoMove, err
	}
	res, err := e.Search(ctx, pos, depth)
	return res.Move, err
}

func (e *Engine) newSearcher(stop *atomic.Bool, thread int, logger zerolog.Logger) *searcher {
	return &searcher{
		tt:      e.table,
		stop:    stop,
		eval:    NewEvaluator(e.cfg.EvalJitter, e.cfg.Seed+int64(thread)),
		ordered: e.cfg.MoveOrdering,
		log:     logger.With().Int("thread", thread).Logger(),
	}
}

// Search deepens from the configured start depth up to depth, running an
// MTD(f) search per depth while helper goroutines warm the shared table.
// Cancelling ctx stops the search; the best move of the last finished depth
// is returned, or the first root move if none finished.
func (e *Engine) Search(ctx context.Context, pos board.Position, depth int) (Result, error) {
	if depth < 1 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidDepth, depth)
	}
	moves, status := pos.MovesAndStatus()
	if status != board.Normal {
		return Result{}, fmt.Errorf("%w: %v", ErrTerminalPosition, status)
	}

	logger := log.With().Str("search", uuid.NewString()).Logger()
	stop := new(atomic.Bool)
	defer stop.Store(true)
	release := context.AfterFunc(ctx, func() { stop.Store(true) })
	defer release()

	startTime := time.Now()
	driver := e.newSearcher(stop, 0, logger)
	res := Result{Move: moves[0]}
	var guess int32

	logger.Info().
		Str("fen", pos.FEN()).
		Int("depth", depth).
		Int("helpers", e.cfg.Helpers).
		Msg("deepening-iteratively")

	for d := Clamp(e.cfg.StartDepth, 1, depth); d <= depth; d++ {
		e.spawnHelpers(pos, d, moves, stop, logger)

		ranked := driver.mtdf(pos, guess, d, moves)
		if stop.Load() {
			if res.Depth == 0 && len(ranked) > 0 {
				res.Move = ranked[0].Move
			}
			logger.Info().Int("depth", d).Msg("search-stopped")
			break
		}
		if len(ranked) == 0 {
			break
		}

		guess = ranked[0].Score
		res.Move = ranked[0].Move
		res.Score = whiteRelative(pos, guess)
		res.Depth = d
		res.Ranked = ranked

		logger.Info().
			Int("depth", d).
			Int32("score", guess).
			Str("move", res.Move.String()).
			Dur("elapsed", time.Since(startTime)).
			Msg("best-val")

		if guess > MateThreshold {
			break
		}
		moves = nextOrder(ranked, moves)
	}

	res.Nodes = driver.stats.Nodes
	logger.Info().
		Object("stats", driver.stats).
		Uint64("tt-hits", e.table.Stats().Hits).
		Int("tt-used", e.table.Len()).
		Dur("elapsed", time.Since(startTime)).
		Msg("search-done")
	return res, nil
}

// spawnHelpers starts full-window searches over shuffled copies of moves.
// Their scores are discarded; they only fill the table.
func (e *Engine) spawnHelpers(pos board.Position, depth int, moves []board.Move, stop *atomic.Bool, logger zerolog.Logger) {
	for t := 1; t <= e.cfg.Helpers; t++ {
		shuffled := slices.Clone(moves)
		frand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		h := e.newSearcher(stop, t, logger)
		e.helpers.Go(func() error {
			h.log.Debug().Int("depth", depth).Msg("helper-starting")
			h.searchRoot(pos, -Infinity, Infinity, depth, shuffled)
			e.totals.add(h.stats)
			h.log.Debug().Uint64("nodes", h.stats.Nodes).Bool("stopped", stop.Load()).Msg("helper-done")
			return nil
		})
	}
}

// nextOrder puts the ranked moves first, best first, followed by the moves
// a cutoff kept from being searched, in their previous order.
func nextOrder(ranked []MoveEval, prev []board.Move) []board.Move {
	order := lo.Map(ranked, func(me MoveEval, _ int) board.Move { return me.Move })
	rest := lo.Filter(prev, func(m board.Move, _ int) bool { return !lo.Contains(order, m) })
	return append(order, rest...)
}

func whiteRelative(pos board.Position, score int32) int32 {
	if pos.SideToMove() == board.Black {
		return -score
	}
	return score
}
