package engine

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Score bounds in centipawns.
const (
	MateScore      int32 = 10000
	StalemateScore int32 = 1000
	// MateThreshold separates forced wins from ordinary scores. Anything
	// beyond it is never cached.
	MateThreshold int32 = 9000
	Infinity      int32 = 30000
)

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

func min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Clamp restricts f to the inclusive range [low, high].
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

func isMateScore(score int32) bool { return abs(score) > MateThreshold }

// ScoreString renders a score as "cp N" or, inside the mate band, "mate N"
// with N in full moves (negative when being mated).
func ScoreString(score int32) string {
	if !isMateScore(score) {
		return fmt.Sprintf("cp %d", score)
	}
	plies := max(MateScore-abs(score), 1)
	mateIn := (plies + 1) / 2
	if score < 0 {
		mateIn = -mateIn
	}
	return fmt.Sprintf("mate %d", mateIn)
}
