package bot

import (
	"context"
	"ctchen222/reversi/internal/game"
	"math"
	"strings"
	"testing"
)

func boardFrom(t *testing.T, rows ...string) *game.Board {
	t.Helper()
	b, err := game.DecodeBoard(strings.Join(rows, ""))
	if err != nil {
		t.Fatalf("DecodeBoard() error = %v", err)
	}
	return b
}

// swapColors mirrors a position so the other side holds every disc.
func swapColors(t *testing.T, b *game.Board) *game.Board {
	t.Helper()
	enc := []byte(b.Encode())
	for i, c := range enc {
		switch c {
		case 'B':
			enc[i] = 'W'
		case 'W':
			enc[i] = 'B'
		}
	}
	swapped, err := game.DecodeBoard(string(enc))
	if err != nil {
		t.Fatalf("DecodeBoard() error = %v", err)
	}
	return swapped
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want int
	}{
		{
			name: "white corner against black interior",
			rows: []string{
				"W.......",
				"........",
				"........",
				"...B....",
				"........",
				"........",
				"........",
				"........",
			},
			want: 10,
		},
		{
			name: "edges and corners for black",
			rows: []string{
				"........",
				"........",
				"........",
				"........",
				"........",
				"........",
				"........",
				"B..B...W",
			},
			want: 11 - (11 + 3),
		},
		{
			name: "empty board",
			rows: []string{
				"........", "........", "........", "........",
				"........", "........", "........", "........",
			},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(boardFrom(t, tt.rows...)); got != tt.want {
				t.Errorf("Evaluate() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEvaluate_IgnoresMarkers(t *testing.T) {
	b := game.NewBoard()
	before := Evaluate(b)
	b.ComputeLegalMoves(game.Black)

	if got := Evaluate(b); got != before {
		t.Errorf("Evaluate() with markers = %d, want %d", got, before)
	}
}

func TestSelectMove_NoLegalMove(t *testing.T) {
	b := boardFrom(t,
		"WBBBBBBB",
		"BB......",
		"B.B.....",
		"B..B....",
		"B...B...",
		"B....B..",
		"B.....B.",
		"B......B",
	)

	for _, depth := range []int{1, 3, 5} {
		if got := SelectMove(b, game.White, depth); got != game.NoMove {
			t.Errorf("SelectMove(depth=%d) = %v, want NoMove", depth, got)
		}
	}
}

func TestSelectMove_TiesKeepEnumerationOrder(t *testing.T) {
	// Every opening move flips one interior disc, so all score the same.
	tests := []struct {
		color game.Color
		want  game.Move
	}{
		{game.Black, game.Move{X: 3, Y: 2}},
		{game.White, game.Move{X: 4, Y: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.color.String(), func(t *testing.T) {
			if got := SelectMove(game.NewBoard(), tt.color, 1); got != tt.want {
				t.Errorf("SelectMove() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectMove_PrefersCornerForEitherColor(t *testing.T) {
	b := boardFrom(t,
		"........",
		"........",
		"........",
		"...BW...",
		"........",
		"........",
		"........",
		".....BW.",
	)
	want := game.Move{X: 7, Y: 7}

	if got := SelectMove(b, game.Black, 1); got != want {
		t.Errorf("SelectMove(Black) = %v, want %v", got, want)
	}
	if got := SelectMove(swapColors(t, b), game.White, 1); got != want {
		t.Errorf("SelectMove(White) = %v, want %v", got, want)
	}
}

func TestSelectMove_Deterministic(t *testing.T) {
	b := game.NewBoard()
	b.ComputeLegalMoves(game.Black)
	b.ApplyMove(2, 3, game.Black)

	first := SelectMove(b, game.White, 4)
	for i := 0; i < 3; i++ {
		if got := SelectMove(b, game.White, 4); got != first {
			t.Fatalf("call %d: SelectMove() = %v, want %v", i, got, first)
		}
	}
}

func TestSelectMove_LeavesBoardUntouched(t *testing.T) {
	b := game.NewBoard()
	b.ComputeLegalMoves(game.Black)
	before := *b

	SelectMove(b, game.White, 3)

	if *b != before {
		t.Errorf("SelectMove changed the live board:\n%s\nwant\n%s", b, &before)
	}
}

// plainMinimax is minimax without pruning.
func plainMinimax(b *game.Board, depth int, toMove game.Color) int {
	if depth <= 0 || b.ComputeLegalMoves(toMove) == 0 {
		return Evaluate(b)
	}
	best := math.MaxInt
	if toMove == game.White {
		best = math.MinInt
	}
	for _, m := range b.LegalMoves() {
		child := b.Clone()
		child.ApplyMove(m.X, m.Y, toMove)
		v := plainMinimax(child, depth-1, toMove.Opponent())
		if toMove == game.White {
			best = max(best, v)
		} else {
			best = min(best, v)
		}
	}
	return best
}

func TestMinimax_PruningKeepsValue(t *testing.T) {
	b := game.NewBoard()
	color := game.Black
	for ply := 0; ply < 8; ply++ {
		for _, depth := range []int{1, 2, 3, 4} {
			pruned := &search{}
			got := pruned.minimax(b.Clone(), depth, color, math.MinInt, math.MaxInt)
			want := plainMinimax(b.Clone(), depth, color)
			if got != want {
				t.Fatalf("ply %d depth %d: minimax = %d, want %d\n%s", ply, depth, got, want, b)
			}
		}

		m := SelectMove(b, color, 2)
		if m.IsNone() {
			break
		}
		b.ComputeLegalMoves(color)
		b.ApplyMove(m.X, m.Y, color)
		color = color.Opponent()
	}
}

func TestMinimax_LeafWhenSideCannotMove(t *testing.T) {
	b := boardFrom(t,
		"WBBBBBBB",
		"BB......",
		"B.B.....",
		"B..B....",
		"B...B...",
		"B....B..",
		"B.....B.",
		"B......B",
	)
	s := &search{}

	got := s.minimax(b, 5, game.White, math.MinInt, math.MaxInt)

	if want := Evaluate(b); got != want {
		t.Errorf("minimax() = %d, want static evaluation %d", got, want)
	}
	if s.nodes != 1 {
		t.Errorf("visited %d nodes, want 1", s.nodes)
	}
}

func TestEngine(t *testing.T) {
	b := game.NewBoard()
	e := NewEngine(Easy)

	if got, want := e.NextMove(context.Background(), b, game.Black), SelectMove(b, game.Black, Easy.Depth()); got != want {
		t.Errorf("NextMove() = %v, want %v", got, want)
	}

	e.SetDifficulty(Hard)
	if got := e.Difficulty(); got != Hard {
		t.Errorf("Difficulty() = %v, want %v", got, Hard)
	}
}

func TestDifficulty(t *testing.T) {
	tests := []struct {
		in    string
		want  Difficulty
		depth int
	}{
		{"easy", Easy, 3},
		{"Medium", Medium, 5},
		{"HARD", Hard, 7},
		{"", Medium, 5},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDifficulty(tt.in)
			if err != nil {
				t.Fatalf("ParseDifficulty() error = %v", err)
			}
			if got != tt.want || got.Depth() != tt.depth {
				t.Errorf("ParseDifficulty(%q) = %v (depth %d), want %v (depth %d)", tt.in, got, got.Depth(), tt.want, tt.depth)
			}
		})
	}

	if _, err := ParseDifficulty("insane"); err == nil {
		t.Error("ParseDifficulty(insane) returned no error")
	}
}

func TestEvaluate_SnapshotRestore(t *testing.T) {
	// Given: a game several plies in
	g := game.NewGame(game.Settings{})
	for _, m := range []game.Move{{X: 2, Y: 3}, {X: 2, Y: 2}, {X: 3, Y: 2}, {X: 4, Y: 2}} {
		if err := g.Play(m.X, m.Y); err != nil {
			t.Fatalf("Play(%d,%d) error = %v", m.X, m.Y, err)
		}
	}

	// When: it is dumped and restored
	restored, err := game.Restore(g.Snapshot())
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	// Then: both positions evaluate the same
	before, after := g.Board(), restored.Board()
	if got, want := Evaluate(&after), Evaluate(&before); got != want {
		t.Errorf("Evaluate() after restore = %d, want %d", got, want)
	}
}
