package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"chess-mtdf/board"
	"chess-mtdf/engine"
)

var errQuit = errors.New("player quit")

// game drives a single game. Each engine-controlled side owns an engine and
// therefore its own transposition table for the whole game.
type game struct {
	pos      board.Position
	engines  [2]*engine.Engine
	depth    int
	movetime time.Duration
	maxPlies int
	out      io.Writer
}

// outcome of a finished or abandoned game.
type outcome struct {
	Status board.Status
	// Loser is the side to move at the end; meaningful for checkmate only.
	Loser board.Color
	Plies int
}

func (o outcome) String() string {
	switch o.Status {
	case board.Checkmate:
		return fmt.Sprintf("checkmate, %v wins", o.Loser.Other())
	case board.Stalemate:
		return "stalemate"
	default:
		return fmt.Sprintf("stopped after %d plies", o.Plies)
	}
}

func (g *game) engineMove(ctx context.Context) (board.Move, error) {
	side := g.pos.SideToMove()
	if g.movetime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.movetime)
		defer cancel()
	}
	res, err := g.engines[side].Search(ctx, g.pos, g.depth)
	if err != nil {
		return board.NoMove, fmt.Errorf("%v search: %w", side, err)
	}
	log.Debug().
		Str("side", side.String()).
		Str("move", res.Move.String()).
		Int32("score", res.Score).
		Int("depth", res.Depth).
		Uint64("nodes", res.Nodes).
		Msg("engine-move")
	return res.Move, nil
}

// play alternates moves until the game ends, maxPlies is reached or ctx is
// done. Sides without an engine read moves from in.
func (g *game) play(ctx context.Context, in io.Reader) (outcome, error) {
	var scanner *bufio.Scanner
	if in != nil {
		scanner = bufio.NewScanner(in)
	}

	plies := 0
	for {
		if status := g.pos.Status(); status != board.Normal {
			return outcome{Status: status, Loser: g.pos.SideToMove(), Plies: plies}, nil
		}
		if (g.maxPlies > 0 && plies >= g.maxPlies) || ctx.Err() != nil {
			return outcome{Status: board.Normal, Plies: plies}, nil
		}

		side := g.pos.SideToMove()
		var m board.Move
		var err error
		if g.engines[side] != nil {
			m, err = g.engineMove(ctx)
		} else {
			m, err = g.readMove(scanner)
		}
		if errors.Is(err, errQuit) {
			return outcome{Status: board.Normal, Plies: plies}, nil
		}
		if err != nil {
			return outcome{Plies: plies}, err
		}

		g.pos = g.pos.Apply(m)
		plies++
		fmt.Fprintf(g.out, "%d. %v %v\n", plies, side, m)
	}
}

func (g *game) readMove(scanner *bufio.Scanner) (board.Move, error) {
	if scanner == nil {
		return board.NoMove, errors.New("no input for human side")
	}
	for {
		fmt.Fprintf(g.out, "%v to move> ", g.pos.SideToMove())
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return board.NoMove, err
			}
			return board.NoMove, errQuit
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit":
			return board.NoMove, errQuit
		case "fen":
			fmt.Fprintln(g.out, g.pos.FEN())
			continue
		case "moves":
			moves := g.pos.LegalMoves()
			names := make([]string, len(moves))
			for i, m := range moves {
				names[i] = m.String()
			}
			fmt.Fprintln(g.out, strings.Join(names, " "))
			continue
		}
		m, err := g.pos.ParseMove(line)
		if err != nil {
			fmt.Fprintf(g.out, "%v\n", err)
			continue
		}
		return m, nil
	}
}
