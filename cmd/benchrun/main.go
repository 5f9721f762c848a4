package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// run executes a command and prints its combined output. Returns exit code.
func run(name string, args ...string) int {
	cmd := exec.Command(name, args...)
	cmd.Env = os.Environ()
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	fmt.Print(out.String())
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	log.Error().Err(err).Str("cmd", name).Msg("run-failed")
	return 1
}

func main() {
	// Usage: go run ./cmd/benchrun
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	fmt.Println("Columns: BENCHMARK  N  ns/op  B/op  allocs/op")
	code := run("go", "test", "./board", "./engine", "-run", "^$", "-bench", ".", "-benchmem", "-benchtime=1s")
	if code != 0 {
		os.Exit(code)
	}

	fmt.Println("\nPerft Performance:")
	fmt.Println("TEST \t\tDepth \t\tNodes \t\tTime \tNPS")
	for _, d := range []string{"3", "4", "5"} {
		run("go", "run", "./cmd/perft", "-depth", d, "-label", "Initial")
	}
	_ = run("go", "run", "./cmd/perft", "-fen",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"-depth", "3", "-label", "Kiwipete")

	fmt.Println("\nSearch:")
	_ = run("go", "run", "./cmd/search", "-depth", "6", "-repeat", "2")
	os.Exit(0)
}
