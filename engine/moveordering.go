package engine

import (
	"chess-mtdf/board"
)

type move struct {
	move  board.Move
	score uint16
}

type moveList struct {
	moves []move
}

// Most Valuable Victim - Least Valuable Aggressor; used to score & sort captures
var mvvLva = [7][7]uint16{
	{0, 0, 0, 0, 0, 0, 0},
	{0, 14, 13, 12, 11, 10, 0}, // victim Pawn
	{0, 24, 23, 22, 21, 20, 0}, // victim Knight
	{0, 34, 33, 32, 31, 30, 0}, // victim Bishop
	{0, 44, 43, 42, 41, 40, 0}, // victim Rook
	{0, 54, 53, 52, 51, 50, 0}, // victim Queen
	{0, 0, 0, 0, 0, 0, 0},      // victim King
}

// Promotions go first, then captures by MVV-LVA. Quiet moves keep their
// generation order.
const (
	promotionOffset uint16 = 2000
	captureOffset   uint16 = 1000
)

func scoreMovesList(pos board.Position, moves []board.Move) (movesList moveList) {
	us := pos.SideToMove()
	movesList.moves = make([]move, len(moves))
	for i, m := range moves {
		var eval uint16
		captured, owner, occupied := pos.PieceAt(m.To())
		isCapture := occupied && owner != us

		if promote := m.Promotion(); promote != board.NoPiece {
			eval = promotionOffset + uint16(pieceValue[promote]/10)
		} else if isCapture {
			attacker, _, _ := pos.PieceAt(m.From())
			eval = captureOffset + mvvLva[captured][attacker]
		}

		movesList.moves[i].move = m
		movesList.moves[i].score = eval
	}
	return movesList
}

// Ordering the moves one at a time, at index given
func orderNextMove(currIndex int, moves *moveList) {
	bestIndex := currIndex
	bestScore := moves.moves[bestIndex].score

	for index := bestIndex + 1; index < len(moves.moves); index++ {
		if moves.moves[index].score > bestScore {
			bestIndex = index
			bestScore = moves.moves[index].score
		}
	}

	moves.moves[currIndex], moves.moves[bestIndex] = moves.moves[bestIndex], moves.moves[currIndex]
}
