package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chess-mtdf/board"
	"chess-mtdf/engine"
)

func main() {
	mode := flag.String("mode", "self", "self (engine vs engine) or human")
	human := flag.String("human", "white", "side the human plays in human mode")
	depth := flag.Int("depth", 7, "search depth in plies")
	fen := flag.String("fen", board.StartFEN, "starting position")
	configFlag := flag.String("config", "", "JSON engine config file")
	movetime := flag.Duration("movetime", 0, "time limit per engine move (0 = depth only)")
	maxPlies := flag.Int("max-plies", 300, "stop the game after this many plies (0 = no limit)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg := engine.DefaultConfig()
	if *configFlag != "" {
		var err error
		if cfg, err = engine.LoadConfig(*configFlag); err != nil {
			log.Fatal().Err(err).Msg("loading config")
		}
	}

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		log.Fatal().Err(err).Msg("parsing position")
	}

	g := &game{pos: pos, depth: *depth, movetime: *movetime, maxPlies: *maxPlies, out: os.Stdout}
	switch *mode {
	case "self":
		for _, side := range []board.Color{board.White, board.Black} {
			if g.engines[side], err = engine.New(cfg, nil); err != nil {
				log.Fatal().Err(err).Msg("creating engine")
			}
		}
	case "human":
		engineSide := board.Black
		if *human == "black" {
			engineSide = board.White
		} else if *human != "white" {
			log.Fatal().Str("human", *human).Msg("-human must be white or black")
		}
		if g.engines[engineSide], err = engine.New(cfg, nil); err != nil {
			log.Fatal().Err(err).Msg("creating engine")
		}
	default:
		log.Fatal().Str("mode", *mode).Msg("unknown mode")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := g.play(ctx, os.Stdin)
	if err != nil {
		log.Fatal().Err(err).Msg("game aborted")
	}
	fmt.Println(res)
	fmt.Println(g.pos.FEN())
}
