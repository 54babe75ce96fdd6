package game

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// boardFrom builds a board from eight row strings using B, W and '.'.
func boardFrom(t *testing.T, rows ...string) *Board {
	t.Helper()
	b, err := DecodeBoard(strings.Join(rows, ""))
	if err != nil {
		t.Fatalf("DecodeBoard() error = %v", err)
	}
	return b
}

func TestInitialize(t *testing.T) {
	b := NewBoard()

	seeds := []struct {
		x, y int
		want Cell
	}{
		{3, 3, CellWhite},
		{4, 3, CellBlack},
		{3, 4, CellBlack},
		{4, 4, CellWhite},
	}
	for _, s := range seeds {
		if got := b.At(s.x, s.y); got != s.want {
			t.Errorf("At(%d,%d) = %v, want %v", s.x, s.y, got, s.want)
		}
	}

	black, white := b.Score()
	if black != 2 || white != 2 {
		t.Errorf("Score() = %d,%d, want 2,2", black, white)
	}
}

func TestComputeLegalMoves_InitialPosition(t *testing.T) {
	tests := []struct {
		name  string
		color Color
		want  []Move
	}{
		{
			name:  "Black to move",
			color: Black,
			want:  []Move{{3, 2}, {2, 3}, {5, 4}, {4, 5}},
		},
		{
			name:  "White to move",
			color: White,
			want:  []Move{{4, 2}, {5, 3}, {2, 4}, {3, 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard()
			if n := b.ComputeLegalMoves(tt.color); n != len(tt.want) {
				t.Errorf("ComputeLegalMoves() = %d, want %d", n, len(tt.want))
			}
			if got := b.LegalMoves(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LegalMoves() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeLegalMoves_ClearsStaleMarkers(t *testing.T) {
	b := NewBoard()
	b.ComputeLegalMoves(Black)

	// White has no disc at all, so every Black marker must disappear.
	b.Set(3, 3, CellBlack)
	b.Set(4, 4, CellBlack)
	if n := b.ComputeLegalMoves(White); n != 0 {
		t.Fatalf("ComputeLegalMoves(White) = %d, want 0", n)
	}
	if moves := b.LegalMoves(); len(moves) != 0 {
		t.Errorf("stale markers survived: %v", moves)
	}
}

func TestComputeLegalMoves_Idempotent(t *testing.T) {
	b := NewBoard()
	b.ComputeLegalMoves(Black)
	b.ApplyMove(2, 3, Black)

	b.ComputeLegalMoves(White)
	first := *b
	b.ComputeLegalMoves(White)

	if *b != first {
		t.Errorf("second ComputeLegalMoves changed the board:\n%s\nwant:\n%s", b, &first)
	}
}

func TestComputeLegalMoves_BoxedIn(t *testing.T) {
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

	if n := b.ComputeLegalMoves(White); n != 0 {
		t.Errorf("ComputeLegalMoves(White) = %d, want 0\n%s", n, b)
	}
	if b.CanMove(White) {
		t.Error("CanMove(White) = true, want false")
	}
}

func TestApplyMove_SingleFlip(t *testing.T) {
	b := NewBoard()
	b.ComputeLegalMoves(Black)

	if flipped := b.ApplyMove(2, 3, Black); flipped != 1 {
		t.Errorf("ApplyMove() flipped %d, want 1", flipped)
	}

	for _, m := range []Move{{2, 3}, {3, 3}, {4, 3}, {3, 4}} {
		if got := b.At(m.X, m.Y); got != CellBlack {
			t.Errorf("At%v = %v, want black", m, got)
		}
	}
	if got := b.At(4, 4); got != CellWhite {
		t.Errorf("At(4,4) = %v, want white", got)
	}
	if black, white := b.Score(); black != 4 || white != 1 {
		t.Errorf("Score() = %d,%d, want 4,1", black, white)
	}
}

func TestApplyMove_OnlyAnchoredRuns(t *testing.T) {
	b := boardFrom(t,
		".BBW....",
		"BB......",
		"B.B.....",
		"........",
		"........",
		"........",
		"........",
		"........",
	)
	b.ComputeLegalMoves(White)

	if flipped := b.ApplyMove(0, 0, White); flipped != 2 {
		t.Fatalf("ApplyMove() flipped %d, want 2\n%s", flipped, b)
	}

	tests := []struct {
		name string
		x, y int
		want Cell
	}{
		{"anchored run first disc", 1, 0, CellWhite},
		{"anchored run second disc", 2, 0, CellWhite},
		{"run ending on empty square", 0, 1, CellBlack},
		{"run ending on empty square tail", 0, 2, CellBlack},
		{"diagonal run ending on empty square", 1, 1, CellBlack},
		{"diagonal run tail", 2, 2, CellBlack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.At(tt.x, tt.y); got != tt.want {
				t.Errorf("At(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestApplyMove_RunOffTheEdgeIsNotFlipped(t *testing.T) {
	b := boardFrom(t,
		"........",
		"........",
		"........",
		"........",
		"........",
		"W.......",
		"B.......",
		".BBBBBBB",
	)
	b.ComputeLegalMoves(White)

	if flipped := b.ApplyMove(0, 7, White); flipped != 1 {
		t.Fatalf("ApplyMove() flipped %d, want 1\n%s", flipped, b)
	}
	if got := b.At(0, 6); got != CellWhite {
		t.Errorf("At(0,6) = %v, want white", got)
	}
	for x := 1; x < Size; x++ {
		if got := b.At(x, 7); got != CellBlack {
			t.Errorf("At(%d,7) = %v, want black", x, got)
		}
	}
}

func TestApplyMove_DoesNotTouchOtherMarkers(t *testing.T) {
	b := NewBoard()
	b.ComputeLegalMoves(Black)
	b.ApplyMove(2, 3, Black)

	for _, m := range []Move{{3, 2}, {5, 4}, {4, 5}} {
		if !b.IsLegal(m.X, m.Y) {
			t.Errorf("marker at %v was cleared by ApplyMove", m)
		}
	}
}

func TestApplyMove_PanicsOnUnmarkedSquare(t *testing.T) {
	b := NewBoard()
	b.ComputeLegalMoves(Black)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("ApplyMove() on an unmarked square did not panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrIllegalMove) {
			t.Errorf("panic value = %v, want ErrIllegalMove", r)
		}
	}()
	b.ApplyMove(0, 0, Black)
}

func TestEveryMarkerFlipsSomething(t *testing.T) {
	b := NewBoard()
	color := Black

	for ply := 0; ply < 30; ply++ {
		if b.ComputeLegalMoves(color) == 0 {
			color = color.Opponent()
			if b.ComputeLegalMoves(color) == 0 {
				break
			}
		}
		moves := b.LegalMoves()
		for _, m := range moves {
			scratch := b.Clone()
			before := scratch.Count(color)
			if flipped := scratch.ApplyMove(m.X, m.Y, color); flipped < 1 {
				t.Fatalf("ply %d: %s at %v flipped nothing\n%s", ply, color, m, b)
			}
			if after := scratch.Count(color); after < before+2 {
				t.Fatalf("ply %d: %s at %v gained %d discs", ply, color, m, after-before)
			}
		}

		// Walk a deterministic line through the middle of the move list.
		m := moves[len(moves)/2]
		b.ApplyMove(m.X, m.Y, color)
		color = color.Opponent()
	}
}

func TestEncodeDecode(t *testing.T) {
	b := NewBoard()
	b.ComputeLegalMoves(Black)

	encoded := b.Encode()
	if len(encoded) != EncodedLen {
		t.Fatalf("len(Encode()) = %d, want %d", len(encoded), EncodedLen)
	}
	if strings.ContainsAny(encoded, "*") {
		t.Errorf("Encode() leaked markers: %s", encoded)
	}

	decoded, err := DecodeBoard(encoded)
	if err != nil {
		t.Fatalf("DecodeBoard() error = %v", err)
	}
	b.ClearMarkers()
	if *decoded != *b {
		t.Errorf("DecodeBoard(Encode()) =\n%s\nwant\n%s", decoded, b)
	}

	if _, err := DecodeBoard(encoded[:63]); err == nil {
		t.Error("DecodeBoard() accepted a 63-character board")
	}
}
