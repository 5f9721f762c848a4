package engine

import (
	"math/bits"
	"math/rand"

	"chess-mtdf/board"
)

// Material weights in centipawns. The king carries no material value; both
// kings are always on the board.
const (
	PawnValue   int32 = 100
	KnightValue int32 = 300
	BishopValue int32 = 320
	RookValue   int32 = 500
	QueenValue  int32 = 1200
)

const (
	// MobilityWeight is the bonus per legal move.
	MobilityWeight int32 = 10
	// MobilityMaterialLimit disables the mobility term while the combined
	// material of both sides is at or above it.
	MobilityMaterialLimit int32 = 6400

	// A side is in the endgame once it has at most EndgameQueenLimit queens,
	// or a queen with no rooks and at most EndgameMinorLimit minor pieces.
	EndgameQueenLimit = 0
	EndgameMinorLimit = 1
)

var pieceValue = [7]int32{
	board.Pawn:   PawnValue,
	board.Knight: KnightValue,
	board.Bishop: BishopValue,
	board.Rook:   RookValue,
	board.Queen:  QueenValue,
}

// Evaluator scores leaf positions. The zero value is deterministic; a
// positive Jitter adds uniform noise in [-Jitter, Jitter] drawn from a seeded
// source, which breaks ties between equal moves.
type Evaluator struct {
	Jitter int32
	rng    *rand.Rand
}

// NewEvaluator returns an evaluator whose jitter is drawn from seed.
func NewEvaluator(jitter int32, seed int64) *Evaluator {
	e := &Evaluator{Jitter: jitter}
	if jitter > 0 {
		e.rng = rand.New(rand.NewSource(seed))
	}
	return e
}

// Evaluate returns the deterministic white-relative score of pos.
func Evaluate(pos board.Position) int32 {
	var e Evaluator
	return e.Evaluate(pos)
}

// Evaluate returns the white-relative score of pos in centipawns.
func (e *Evaluator) Evaluate(pos board.Position) int32 {
	white := pos.Bitboards(board.White)
	black := pos.Bitboards(board.Black)

	whiteMaterial := countMaterial(&white)
	blackMaterial := countMaterial(&black)
	endgame := isEndgame(pos)

	score := whiteMaterial - blackMaterial
	score += countPieceTables(&white, false, endgame) - countPieceTables(&black, true, endgame)

	if whiteMaterial+blackMaterial < MobilityMaterialLimit {
		score += mobility(pos)
	}

	if e.Jitter > 0 && e.rng != nil {
		score += int32(e.rng.Int63n(int64(2*e.Jitter+1))) - e.Jitter
	}
	return score
}

func countMaterial(bb *board.Bitboards) int32 {
	return int32(bits.OnesCount64(bb.Pawns))*PawnValue +
		int32(bits.OnesCount64(bb.Knights))*KnightValue +
		int32(bits.OnesCount64(bb.Bishops))*BishopValue +
		int32(bits.OnesCount64(bb.Rooks))*RookValue +
		int32(bits.OnesCount64(bb.Queens))*QueenValue
}

func countPieceTables(bb *board.Bitboards, flip bool, endgame bool) (score int32) {
	sets := [...]struct {
		piece board.Piece
		occ   uint64
	}{
		{board.Pawn, bb.Pawns},
		{board.Knight, bb.Knights},
		{board.Bishop, bb.Bishops},
		{board.Rook, bb.Rooks},
		{board.Queen, bb.Queens},
	}
	for _, s := range sets {
		table := &PSQT[s.piece]
		for occ := s.occ; occ != 0; occ &= occ - 1 {
			score += table[square(bits.TrailingZeros64(occ), flip)]
		}
	}

	king := &kingMiddlegamePSQT
	if endgame {
		king = &kingEndgamePSQT
	}
	for occ := bb.Kings; occ != 0; occ &= occ - 1 {
		score += king[square(bits.TrailingZeros64(occ), flip)]
	}
	return score
}

func square(sq int, flip bool) int {
	if flip {
		return FlipView[sq]
	}
	return sq
}

func isEndgame(pos board.Position) bool {
	for _, c := range []board.Color{board.White, board.Black} {
		if pos.Count(c, board.Queen) <= EndgameQueenLimit {
			continue
		}
		minors := pos.Count(c, board.Knight) + pos.Count(c, board.Bishop)
		if pos.Count(c, board.Rook) == 0 && minors <= EndgameMinorLimit {
			continue
		}
		return false
	}
	return true
}

// mobility returns the white-relative legal move difference. The side not to
// move is counted after a null move; nothing is counted while in check.
func mobility(pos board.Position) int32 {
	passed, ok := pos.NullMove()
	if !ok {
		return 0
	}
	own := int32(len(pos.LegalMoves()))
	other := int32(len(passed.LegalMoves()))
	diff := (own - other) * MobilityWeight
	if pos.SideToMove() == board.Black {
		return -diff
	}
	return diff
}
