package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrInvalidFEN  = errors.New("invalid FEN")
	ErrIllegalMove = errors.New("illegal move")
)

func illegalMove(s string, p Position) error {
	return fmt.Errorf("%w: %q in %s", ErrIllegalMove, s, p.FEN())
}

// ParseFEN parses a position. The halfmove and fullmove fields may be
// omitted, in which case "0 1" is assumed.
func ParseFEN(fen string) (pos Position, err error) {
	fields := strings.Fields(fen)
	if err := validateFields(fields); err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	if len(fields) == 4 {
		fields = append(fields, "0", "1")
	}
	defer func() {
		if r := recover(); r != nil {
			pos = Position{}
			err = fmt.Errorf("%w: %v", ErrInvalidFEN, r)
		}
	}()
	return fromFields(fields), nil
}

// MustParseFEN is like ParseFEN but panics on error.
func MustParseFEN(fen string) Position {
	p, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return p
}

func validateFields(fields []string) error {
	if len(fields) != 4 && len(fields) != 6 {
		return fmt.Errorf("expected 4 or 6 fields, got %d", len(fields))
	}
	if err := validatePlacement(fields[0]); err != nil {
		return err
	}
	if fields[1] != "w" && fields[1] != "b" {
		return fmt.Errorf("bad side to move %q", fields[1])
	}
	if err := validateCastling(fields[2]); err != nil {
		return err
	}
	if err := validateEnPassant(fields[3]); err != nil {
		return err
	}
	if len(fields) == 6 {
		if n, err := strconv.Atoi(fields[4]); err != nil || n < 0 {
			return fmt.Errorf("bad halfmove clock %q", fields[4])
		}
		if n, err := strconv.Atoi(fields[5]); err != nil || n < 0 {
			return fmt.Errorf("bad fullmove number %q", fields[5])
		}
	}
	return nil
}

func validatePlacement(placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("expected 8 ranks, got %d", len(ranks))
	}
	kings := map[rune]int{}
	for i, rank := range ranks {
		width := 0
		for _, ch := range rank {
			switch {
			case ch >= '1' && ch <= '8':
				width += int(ch - '0')
			case strings.ContainsRune("pnbrqkPNBRQK", ch):
				width++
				if ch == 'k' || ch == 'K' {
					kings[ch]++
				}
			default:
				return fmt.Errorf("bad piece %q on rank %d", ch, 8-i)
			}
		}
		if width != 8 {
			return fmt.Errorf("rank %d has %d squares", 8-i, width)
		}
	}
	if kings['K'] != 1 || kings['k'] != 1 {
		return fmt.Errorf("need exactly one king per side, got %d white and %d black", kings['K'], kings['k'])
	}
	return nil
}

func validateCastling(castling string) error {
	if castling == "-" {
		return nil
	}
	seen := map[rune]bool{}
	for _, ch := range castling {
		if !strings.ContainsRune("KQkq", ch) || seen[ch] {
			return fmt.Errorf("bad castling rights %q", castling)
		}
		seen[ch] = true
	}
	return nil
}

func validateEnPassant(ep string) error {
	if ep == "-" {
		return nil
	}
	if len(ep) != 2 || ep[0] < 'a' || ep[0] > 'h' || (ep[1] != '3' && ep[1] != '6') {
		return fmt.Errorf("bad en passant square %q", ep)
	}
	return nil
}

// Mirror returns the colour-flipped position: ranks reversed, piece colours
// swapped and the other side to move. Evaluations of p and p.Mirror() are
// negatives of each other.
func (p Position) Mirror() Position {
	fields := strings.Fields(p.FEN())
	ranks := strings.Split(fields[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	fields[0] = swapCase(strings.Join(ranks, "/"))

	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}

	if fields[2] != "-" {
		c := swapCase(fields[2])
		// keep canonical KQkq order
		var sb strings.Builder
		for _, r := range "KQkq" {
			if strings.ContainsRune(c, r) {
				sb.WriteRune(r)
			}
		}
		fields[2] = sb.String()
	}

	if fields[3] != "-" {
		rank := byte('3')
		if fields[3][1] == '3' {
			rank = '6'
		}
		fields[3] = string([]byte{fields[3][0], rank})
	}
	return fromFields(fields)
}

func swapCase(s string) string {
	out := []byte(s)
	for i, c := range out {
		switch {
		case c >= 'a' && c <= 'z':
			out[i] = c - 'a' + 'A'
		case c >= 'A' && c <= 'Z':
			out[i] = c - 'A' + 'a'
		}
	}
	return string(out)
}
