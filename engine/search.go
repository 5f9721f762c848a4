package engine

import (
	"errors"
	"sort"
	"sync/atomic"

	"github.com/rs/zerolog"

	"chess-mtdf/board"
)

var (
	ErrTerminalPosition = errors.New("no legal moves in root position")
	ErrInvalidDepth     = errors.New("search depth must be at least 1")
)

// MoveEval is a root move with its score from the side to move's view.
type MoveEval struct {
	Move  board.Move
	Score int32
}

// searcher is the per-goroutine search state. The table and stop flag are
// shared; everything else is owned by one goroutine.
type searcher struct {
	tt      *TransTable
	stop    *atomic.Bool
	eval    *Evaluator
	ordered bool
	stats   CutStatistics
	log     zerolog.Logger
}

func (s *searcher) stopped() bool {
	return s.stop != nil && s.stop.Load()
}

// negamax is a fail-soft alpha-beta search. The result is relative to the
// side to move and mate scores carry their distance in plies from the root.
func (s *searcher) negamax(pos board.Position, depth, ply int, alpha, beta int32) int32 {
	s.stats.Nodes++

	moves, status := pos.MovesAndStatus()
	switch status {
	case board.Checkmate:
		return -(MateScore - int32(ply))
	case board.Stalemate:
		return StalemateScore - int32(ply)
	}

	/*
		TRANSPOSITION TABLE LOOKUP
		Bounds narrow the window; an exact hit or an emptied window ends the node.
	*/
	hash := pos.Hash()
	if s.tt != nil {
		if entry, ok := s.tt.Get(hash); ok && entry.Depth >= depth {
			switch entry.Flag {
			case Exact:
				s.stats.TTCutoffs++
				return entry.Score
			case LowerBound:
				alpha = max(alpha, entry.Score)
			case UpperBound:
				beta = min(beta, entry.Score)
			}
			if alpha >= beta {
				s.stats.TTCutoffs++
				return entry.Score
			}
			s.stats.TTNarrowings++
		}
	}

	if depth == 0 {
		s.stats.Leaves++
		score := s.eval.Evaluate(pos)
		if pos.SideToMove() == board.Black {
			return -score
		}
		return score
	}

	// Flags are judged against the window actually searched.
	windowAlpha := alpha
	best := -Infinity
	searched := 0

	var list moveList
	if s.ordered {
		list = scoreMovesList(pos, moves)
	}
	for i := range moves {
		if s.stopped() {
			break
		}
		m := moves[i]
		if s.ordered {
			orderNextMove(i, &list)
			m = list.moves[i].move
		}

		score := -s.negamax(pos.Apply(m), depth-1, ply+1, -beta, -alpha)
		searched++
		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			s.stats.BetaCutoffs++
			break
		}
	}

	if s.stopped() {
		// Partial results are never cached.
		if searched == 0 {
			return windowAlpha
		}
		return best
	}

	if s.tt != nil {
		flag := Exact
		if best <= windowAlpha {
			flag = UpperBound
		} else if best >= beta {
			flag = LowerBound
		}
		s.tt.Put(hash, TransEntry{Depth: depth, Flag: flag, Score: best})
	}
	return best
}

// searchRoot scores root moves in the given order and returns the searched
// ones sorted best first. A move that mates on the spot is found before any
// windowed search and is returned alone with MateScore.
func (s *searcher) searchRoot(pos board.Position, alpha, beta int32, depth int, moves []board.Move) []MoveEval {
	children := make([]board.Position, len(moves))
	for i, m := range moves {
		children[i] = pos.Apply(m)
		if children[i].Status() == board.Checkmate {
			s.stats.MateRoots++
			return []MoveEval{{Move: m, Score: MateScore}}
		}
	}

	ranked := make([]MoveEval, 0, len(moves))
	for i, m := range moves {
		if s.stopped() {
			break
		}
		score := -s.negamax(children[i], depth-1, 1, -beta, -alpha)
		ranked = append(ranked, MoveEval{Move: m, Score: score})
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			s.stats.BetaCutoffs++
			break
		}
	}
	sortMoveEvals(ranked)
	return ranked
}

func sortMoveEvals(evals []MoveEval) {
	sort.SliceStable(evals, func(i, j int) bool { return evals[i].Score > evals[j].Score })
}
