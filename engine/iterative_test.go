package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"chess-mtdf/board"
)

func testConfig(helpers int) Config {
	cfg := DefaultConfig()
	cfg.Helpers = helpers
	cfg.TTSizeMB = 16
	return cfg
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := e.Wait(); err != nil {
			t.Errorf("Wait: %v", err)
		}
	})
	return e
}

func TestSearchFixtures(t *testing.T) {
	cases := []struct {
		fen   string
		depth int
		want  []string
		slow  bool
	}{
		{"4k3/2np1p2/4p1Pn/2q5/2P4P/5b2/2r2R2/6K1 b - - 0 34", 6, []string{"c5f2"}, false},
		{"2R2rk1/4pppp/8/8/8/8/6K1/2R5 w - - 0 1", 6, []string{"c8f8"}, false},
		{"kbK5/pp6/1P6/8/8/8/8/R7 w - -", 6, []string{"a1a6"}, false},
		{"1k5r/pP3ppp/3p2b1/1BN1n3/1Q2P3/P1B5/KP3P1P/7q w - - 1 0", 7, []string{"c5a6"}, true},
		{"rnbqkb1r/pppp1ppp/5n2/4P3/5p2/2N5/PPPP2PP/R1BQKBNR b KQkq - 0 4", 8, []string{"f6g8", "d8e7"}, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.fen, func(t *testing.T) {
			if tc.slow && testing.Short() {
				t.Skip("deep fixture")
			}
			pos, err := board.ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			e := newTestEngine(t, testConfig(DefaultConfig().Helpers))
			res, err := e.Search(context.Background(), pos, tc.depth)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			got := res.Move.String()
			for _, w := range tc.want {
				if got == w {
					return
				}
			}
			t.Fatalf("best move: got %s want one of %v (score %d, depth %d)", got, tc.want, res.Score, res.Depth)
		})
	}
}

func TestSearchPrefersMateInOne(t *testing.T) {
	pos := board.MustParseFEN("7k/8/6K1/8/8/8/8/5Q2 w - - 0 1")
	for depth := 3; depth <= 5; depth++ {
		e := newTestEngine(t, testConfig(0))
		res, err := e.Search(context.Background(), pos, depth)
		if err != nil {
			t.Fatalf("depth %d: Search: %v", depth, err)
		}
		if res.Move.String() != "f1f8" || res.Score != MateScore {
			t.Fatalf("depth %d: got %v %s want f1f8 mate 1", depth, res.Move, ScoreString(res.Score))
		}
	}
}

func TestSearchStopsOnForcedMate(t *testing.T) {
	pos := board.MustParseFEN("2R2rk1/4pppp/8/8/8/8/6K1/2R5 w - - 0 1")
	e := newTestEngine(t, testConfig(0))
	res, err := e.Search(context.Background(), pos, 12)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Score <= MateThreshold {
		t.Fatalf("score: got %d want a forced win", res.Score)
	}
	if res.Depth != DefaultConfig().StartDepth {
		t.Fatalf("depth: got %d want an early return at %d", res.Depth, DefaultConfig().StartDepth)
	}
}

func TestSearchScoreIsWhiteRelative(t *testing.T) {
	// Black mates on the spot; the reported score favours Black.
	pos := board.MustParseFEN("6k1/8/8/8/8/8/r4PPP/6K1 b - - 0 1")
	e := newTestEngine(t, testConfig(0))
	res, err := e.Search(context.Background(), pos, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Score != -MateScore {
		t.Fatalf("score: got %d want %d", res.Score, -MateScore)
	}
	if got := res.Move.String(); got != "a2a1" {
		t.Fatalf("best move: got %s want a2a1", got)
	}
}

func TestWarmTableAgreesWithCold(t *testing.T) {
	pos := board.MustParseFEN("4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 1")
	cfg := testConfig(0)
	cfg.StartDepth = 3

	cold := newTestEngine(t, cfg)
	first, err := cold.Search(context.Background(), pos, 3)
	if err != nil {
		t.Fatalf("cold search: %v", err)
	}
	if cold.Table().Len() == 0 {
		t.Fatalf("cold search left the table empty")
	}

	warm, err := cold.Search(context.Background(), pos, 3)
	if err != nil {
		t.Fatalf("warm search: %v", err)
	}
	if first.Move != warm.Move {
		t.Fatalf("warm table changed the move: %s vs %s", first.Move, warm.Move)
	}
	if first.Move.String() != "d2d5" {
		t.Fatalf("best move: got %s want d2d5", first.Move)
	}
}

func TestHelpersShareTable(t *testing.T) {
	pos := board.MustParseFEN("4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 1")
	cfg := testConfig(4)
	e := newTestEngine(t, cfg)
	res, err := e.Search(context.Background(), pos, 4)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Move.String() != "d2d5" {
		t.Fatalf("best move: got %s want d2d5", res.Move)
	}
	if err := e.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if e.Table().Len() == 0 {
		t.Fatalf("table is empty after search")
	}
}

func TestSearchErrors(t *testing.T) {
	if _, err := Search(context.Background(), board.Startpos(), 0, nil); !errors.Is(err, ErrInvalidDepth) {
		t.Fatalf("depth 0: got %v want ErrInvalidDepth", err)
	}
	mated := board.MustParseFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if _, err := Search(context.Background(), mated, 3, nil); !errors.Is(err, ErrTerminalPosition) {
		t.Fatalf("checkmate: got %v want ErrTerminalPosition", err)
	}
	stalemate := board.MustParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if _, err := Search(context.Background(), stalemate, 3, nil); !errors.Is(err, ErrTerminalPosition) {
		t.Fatalf("stalemate: got %v want ErrTerminalPosition", err)
	}
}

func TestSearchCancelled(t *testing.T) {
	pos := board.Startpos()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestEngine(t, testConfig(2))
	done := make(chan struct{})
	var res Result
	var err error
	go func() {
		defer close(done)
		res, err = e.Search(ctx, pos, 30)
	}()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatalf("cancelled search did not return")
	}
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if _, perr := pos.ParseMove(res.Move.String()); perr != nil {
		t.Fatalf("returned move %s is not legal: %v", res.Move, perr)
	}
}

func TestSearchDeadline(t *testing.T) {
	pos := board.MustParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	e := newTestEngine(t, testConfig(2))
	start := time.Now()
	res, err := e.Search(ctx, pos, 40)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 20*time.Second {
		t.Fatalf("deadline ignored: search ran %v", elapsed)
	}
	if _, perr := pos.ParseMove(res.Move.String()); perr != nil {
		t.Fatalf("returned move %s is not legal: %v", res.Move, perr)
	}
}

func TestNextOrder(t *testing.T) {
	prev := []board.Move{10, 11, 12, 13, 14}
	ranked := []MoveEval{{Move: 13, Score: 50}, {Move: 11, Score: 20}}
	got := nextOrder(ranked, prev)
	want := []board.Move{13, 11, 10, 12, 14}
	if len(got) != len(want) {
		t.Fatalf("len: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order[%d]: got %d want %d", i, got[i], want[i])
		}
	}
}

func TestScoreString(t *testing.T) {
	cases := map[int32]string{
		0:                "cp 0",
		-250:             "cp -250",
		MateScore:        "mate 1",
		MateScore - 1:    "mate 1",
		MateScore - 3:    "mate 2",
		-(MateScore - 2): "mate -1",
		-(MateScore - 4): "mate -2",
	}
	for score, want := range cases {
		if got := ScoreString(score); got != want {
			t.Fatalf("%d: got %q want %q", score, got, want)
		}
	}
}
