package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chess-mtdf/board"
)

func main() {
	fen := flag.String("fen", board.StartFEN, "FEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth (required)")
	divide := flag.Bool("divide", false, "Print per-move node counts at root")
	repeat := flag.Int("repeat", 1, "Repeat perft N times and report aggregate (for steadier timings)")
	label := flag.String("label", "", "Optional label prefix for one-line output")
	cpuProf := flag.String("cpuprofile", "", "Write CPU profile to file during run")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *depth <= 0 {
		log.Fatal().Int("depth", *depth).Msg("-depth must be > 0")
	}

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		log.Fatal().Err(err).Msg("parsing position")
	}

	if *divide {
		div := board.PerftDivide(pos, *depth)
		type kv struct {
			m board.Move
			n uint64
		}
		arr := make([]kv, 0, len(div))
		var sum uint64
		for m, n := range div {
			arr = append(arr, kv{m, n})
			sum += n
		}
		sort.Slice(arr, func(i, j int) bool { return arr[i].m.String() < arr[j].m.String() })
		for _, x := range arr {
			fmt.Printf("%s: %d\n", x.m, x.n)
		}
		fmt.Printf("Total: %d\n", sum)
		return
	}

	if *cpuProf != "" {
		f, err := os.Create(*cpuProf)
		if err != nil {
			log.Fatal().Err(err).Msg("creating cpuprofile")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("start cpu profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	var totalNodes uint64
	start := time.Now()
	for i := 0; i < *repeat; i++ {
		totalNodes += board.Perft(pos, *depth)
	}
	elapsed := time.Since(start)
	nps := float64(totalNodes) / elapsed.Seconds()

	// Single line: Depth Nodes Time NPS
	fmt.Printf("%s \t%d \t\t%d \t\t%s \t%.0f\n", *label, *depth, totalNodes, elapsed, nps)
}
