package engine

import (
	"chess-mtdf/board"
)

// mtdf converges on the minimax value of pos with a series of null-window
// root searches starting from guess. It returns the ranking of the last
// probe that proved a lower bound, which has the best move on top. Mate
// scores are narrowed like any other so a shorter mate is never hidden behind
// a longer one; only a mate on the spot ends the search early.
func (s *searcher) mtdf(pos board.Position, guess int32, depth int, moves []board.Move) []MoveEval {
	lower, upper := -Infinity, Infinity
	var best, last []MoveEval

	for lower < upper {
		beta := guess
		if guess == lower {
			beta = guess + 1
		}

		ranked := s.searchRoot(pos, beta-1, beta, depth, moves)
		if s.stopped() || len(ranked) == 0 {
			break
		}
		last = ranked
		guess = ranked[0].Score

		s.log.Debug().
			Int("depth", depth).
			Int32("beta", beta).
			Int32("score", guess).
			Str("move", ranked[0].Move.String()).
			Msg("mtdf-probe")

		if guess < beta {
			if guess >= upper {
				s.log.Debug().Int32("lower", lower).Int32("upper", upper).Msg("mtdf-stalled")
				break
			}
			upper = guess
			continue
		}

		if guess <= lower {
			s.log.Debug().Int32("lower", lower).Int32("upper", upper).Msg("mtdf-stalled")
			break
		}
		lower = guess
		best = ranked
		if guess == MateScore {
			return ranked
		}
	}

	if best == nil {
		return last
	}
	return best
}
