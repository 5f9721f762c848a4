package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chess-mtdf/board"
	"chess-mtdf/engine"
)

func main() {
	// --- Flags ---
	depthFlag := flag.Int("depth", 6, "search depth in plies")
	repeatFlag := flag.Int("repeat", 1, "number of searches to run")
	fenFlag := flag.String("fen", "", "FEN to search (empty = startpos)")
	configFlag := flag.String("config", "", "JSON engine config file")
	helpersFlag := flag.Int("helpers", -1, "helper goroutines (overrides config when >= 0)")
	ttFlag := flag.Int("tt", 0, "transposition table size in MB (overrides config when > 0)")
	movetimeFlag := flag.Duration("movetime", 0, "stop each search after this long (0 = no limit)")
	freshFlag := flag.Bool("fresh", false, "clear the table between repeats")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile := flag.String("memprofile", "", "write memory profile (heap) to file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *depthFlag <= 0 {
		log.Fatal().Int("depth", *depthFlag).Msg("depth must be positive")
	}

	cfg := engine.DefaultConfig()
	if *configFlag != "" {
		var err error
		if cfg, err = engine.LoadConfig(*configFlag); err != nil {
			log.Fatal().Err(err).Msg("loading config")
		}
	}
	if *helpersFlag >= 0 {
		cfg.Helpers = *helpersFlag
	}
	if *ttFlag > 0 {
		cfg.TTSizeMB = *ttFlag
	}

	fen := board.StartFEN
	if *fenFlag != "" {
		fen = *fenFlag
	}
	pos, err := board.ParseFEN(fen)
	if err != nil {
		log.Fatal().Err(err).Msg("parsing position")
	}

	eng, err := engine.New(cfg, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("creating engine")
	}

	// --- Optional CPU profiling setup ---
	if *cpuProfile != "" {
		cpuFile, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}()
	}

	fmt.Printf("search: fen=%q depth=%d repeat=%d helpers=%d tt=%dMB\n", fen, *depthFlag, *repeatFlag, cfg.Helpers, cfg.TTSizeMB)

	startAll := time.Now()
	for i := 0; i < *repeatFlag; i++ {
		if *freshFlag {
			eng.Table().Clear()
		}

		ctx := context.Background()
		cancel := context.CancelFunc(func() {})
		if *movetimeFlag > 0 {
			ctx, cancel = context.WithTimeout(ctx, *movetimeFlag)
		}

		iterStart := time.Now()
		res, err := eng.Search(ctx, pos, *depthFlag)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("search failed")
		}
		iterElapsed := time.Since(iterStart)

		fmt.Printf("iteration %d: bestmove %v  score %s  depth %d  nodes %d  time=%v\n",
			i+1, res.Move, engine.ScoreString(res.Score), res.Depth, res.Nodes, iterElapsed)
		if *verbose {
			for _, me := range res.Ranked {
				fmt.Printf("  %v %s\n", me.Move, engine.ScoreString(me.Score))
			}
		}
	}
	totalElapsed := time.Since(startAll)

	if err := eng.Wait(); err != nil {
		log.Fatal().Err(err).Msg("helpers failed")
	}
	st := eng.Table().Stats()
	fmt.Printf("total time: %v  tt used %d/%d  probes %d  hits %d  overwrites %d\n",
		totalElapsed, st.Used, st.Capacity, st.Probes, st.Hits, st.Overwrites)
	log.Info().Object("helpers", eng.HelperStats()).Msg("helper-stats")

	// --- Optional heap profile at the end ---
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create memory profile")
		}
		defer f.Close()

		runtime.GC() // get up-to-date heap info
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not write memory profile")
		}
	}
}
