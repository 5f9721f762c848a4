package board

import (
	"math/bits"
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

// Color is the side owning a piece or the side to move.
type Color uint8

const (
	White Color = 0
	Black Color = 1
)

// Other returns the opposing side.
func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Piece is a colorless piece type. Values match dragontoothmg.
type Piece uint8

const (
	NoPiece Piece = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Status is the terminal state of a position for the side to move.
type Status uint8

const (
	Normal Status = iota
	Checkmate
	Stalemate
)

func (s Status) String() string {
	switch s {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	default:
		return "normal"
	}
}

// Bitboards holds the per-piece occupancy of one side (a1 = bit 0).
type Bitboards = dragontoothmg.Bitboards

// Move is a single legal move in coordinate form.
type Move dragontoothmg.Move

// NoMove is the zero move; it is never legal.
const NoMove Move = 0

func (m Move) dragon() dragontoothmg.Move { return dragontoothmg.Move(m) }

// From returns the origin square index.
func (m Move) From() uint8 {
	dm := m.dragon()
	return dm.From()
}

// To returns the destination square index.
func (m Move) To() uint8 {
	dm := m.dragon()
	return dm.To()
}

// Promotion returns the piece promoted to, or NoPiece.
func (m Move) Promotion() Piece {
	dm := m.dragon()
	return Piece(dm.Promote())
}

// String renders the move in long algebraic form, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	dm := m.dragon()
	return dm.String()
}

// Position is an immutable chess position. Applying a move returns a new
// value; the receiver is never modified.
type Position struct {
	b dragontoothmg.Board
	// key is XORed into the board hash; it carries the side flips of null
	// moves, which dragontoothmg cannot record itself.
	key uint64
	// ep is set when an en passant square may be present.
	ep bool
}

// sideKey is the Zobrist difference between White and Black to move.
var sideKey = func() uint64 {
	w := dragontoothmg.ParseFen("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	b := dragontoothmg.ParseFen("4k3/8/8/8/8/8/8/4K3 b - - 0 1")
	return w.Hash() ^ b.Hash()
}()

func fromFields(fields []string) Position {
	return Position{b: dragontoothmg.ParseFen(strings.Join(fields, " ")), ep: fields[3] != "-"}
}

// Startpos returns the standard initial position.
func Startpos() Position {
	return Position{b: dragontoothmg.ParseFen(StartFEN)}
}

// Apply plays m and returns the resulting position. m must be legal.
func (p Position) Apply(m Move) Position {
	dm := m.dragon()
	from, to := dm.From(), dm.To()
	pawns := p.b.White.Pawns | p.b.Black.Pawns
	double := pawns&(uint64(1)<<from) != 0 && (to-from == 16 || from-to == 16)

	next := p.b
	next.Apply(dm)
	return Position{b: next, key: p.key, ep: double}
}

// LegalMoves enumerates the legal moves for the side to move.
func (p Position) LegalMoves() []Move {
	moves, _ := p.MovesAndStatus()
	return moves
}

// MovesAndStatus enumerates the legal moves and classifies the position in
// a single generation pass.
func (p Position) MovesAndStatus() ([]Move, Status) {
	generated := p.b.GenerateLegalMoves()
	if len(generated) == 0 {
		if p.b.OurKingInCheck() {
			return nil, Checkmate
		}
		return nil, Stalemate
	}
	moves := make([]Move, len(generated))
	for i, m := range generated {
		moves[i] = Move(m)
	}
	return moves, Normal
}

// Status reports whether the side to move is mated, stalemated or neither.
func (p Position) Status() Status {
	_, status := p.MovesAndStatus()
	return status
}

// SideToMove reports which side plays next.
func (p Position) SideToMove() Color {
	if p.b.Wtomove {
		return White
	}
	return Black
}

// InCheck reports whether the side to move is in check.
func (p Position) InCheck() bool { return p.b.OurKingInCheck() }

// Hash returns the Zobrist key of the position.
func (p Position) Hash() uint64 { return p.b.Hash() ^ p.key }

// Bitboards returns the piece bitboards of the given side.
func (p Position) Bitboards(c Color) Bitboards {
	if c == White {
		return p.b.White
	}
	return p.b.Black
}

// PieceAt returns the piece on sq and its owner. ok is false for an empty
// square.
func (p Position) PieceAt(sq uint8) (piece Piece, owner Color, ok bool) {
	mask := uint64(1) << sq
	if p.b.White.All&mask != 0 {
		return pieceOn(&p.b.White, mask), White, true
	}
	if p.b.Black.All&mask != 0 {
		return pieceOn(&p.b.Black, mask), Black, true
	}
	return NoPiece, White, false
}

func pieceOn(bb *Bitboards, mask uint64) Piece {
	switch {
	case bb.Pawns&mask != 0:
		return Pawn
	case bb.Knights&mask != 0:
		return Knight
	case bb.Bishops&mask != 0:
		return Bishop
	case bb.Rooks&mask != 0:
		return Rook
	case bb.Queens&mask != 0:
		return Queen
	case bb.Kings&mask != 0:
		return King
	}
	return NoPiece
}

// Count returns how many pieces of type pt the side c has.
func (p Position) Count(c Color, pt Piece) int {
	bb := p.Bitboards(c)
	switch pt {
	case Pawn:
		return bits.OnesCount64(bb.Pawns)
	case Knight:
		return bits.OnesCount64(bb.Knights)
	case Bishop:
		return bits.OnesCount64(bb.Bishops)
	case Rook:
		return bits.OnesCount64(bb.Rooks)
	case Queen:
		return bits.OnesCount64(bb.Queens)
	case King:
		return bits.OnesCount64(bb.Kings)
	}
	return 0
}

// NullMove passes the turn to the opponent. It returns false when the side
// to move is in check, since passing would leave the king capturable.
// The en passant square is cleared.
func (p Position) NullMove() (Position, bool) {
	if p.b.OurKingInCheck() {
		return Position{}, false
	}
	if !p.ep {
		next := p.b
		next.Wtomove = !next.Wtomove
		return Position{b: next, key: p.key ^ sideKey}, true
	}

	// dragontoothmg keeps the en passant square private, so clear it
	// through FEN. This only happens right after a double pawn push.
	fields := strings.Fields(p.b.ToFen())
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	fields[3] = "-"
	return fromFields(fields), true
}

// FEN renders the position in Forsyth-Edwards notation.
func (p Position) FEN() string { return p.b.ToFen() }

func (p Position) String() string { return p.FEN() }

// Equal reports whether two positions share the same Zobrist key.
func (p Position) Equal(o Position) bool { return p.Hash() == o.Hash() }

// ParseMove finds the legal move whose long algebraic form is s.
func (p Position) ParseMove(s string) (Move, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, m := range p.LegalMoves() {
		if m.String() == want {
			return m, nil
		}
	}
	return NoMove, illegalMove(want, p)
}
