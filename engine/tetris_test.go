package engine

import (
	"reflect"
	"testing"
)

// pieceOf builds an arbitrary piece for board setups. Tests drive
// lockAndMerge directly so scoring paths don't depend on RNG draws.
func pieceOf(shape [][]int, x, y int) *Piece {
	return &Piece{Shape: shape, Color: "#FFFFFF", X: x, Y: y}
}

func fillRow(t *Tetris, y int, gap int) {
	for x := 0; x < BoardWidth; x++ {
		if x == gap {
			continue
		}
		t.board[y][x] = 1
	}
}

func TestDeterminism(t *testing.T) {
	inputs := []Input{
		Tick, Left, Tick, Rotate, Right, Right, Tick, HardDrop,
		Left, Left, Rotate, Tick, Tick, SoftDrop, HardDrop,
		Rotate, Rotate, Right, Tick, HardDrop,
	}

	a := NewTetris(42)
	b := NewTetris(42)

	for i := 0; i < 50; i++ {
		for _, in := range inputs {
			snapA := a.Advance(in)
			snapB := b.Advance(in)
			if !reflect.DeepEqual(snapA, snapB) {
				t.Fatalf("engines diverged at iteration %d input %d: %+v vs %+v", i, in, snapA, snapB)
			}
		}
	}
	if a.Over() != b.Over() {
		t.Fatalf("game-over state diverged: %v vs %v", a.Over(), b.Over())
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := NewTetris(1)
	b := NewTetris(2)

	same := true
	for i := 0; i < 20 && same; i++ {
		if !reflect.DeepEqual(a.Advance(HardDrop).Board, b.Advance(HardDrop).Board) {
			same = false
		}
	}
	if same {
		t.Fatal("different seeds produced identical piece sequences")
	}
}

func TestLineClearScoring(t *testing.T) {
	cases := []struct {
		lines  int
		points int
	}{
		{1, 100},
		{2, 300},
		{3, 500},
		{4, 800},
	}

	for _, tc := range cases {
		eng := NewTetris(7)
		for y := BoardHeight - tc.lines; y < BoardHeight; y++ {
			fillRow(eng, y, 0)
		}
		shape := make([][]int, tc.lines)
		for i := range shape {
			shape[i] = []int{1}
		}
		eng.current = pieceOf(shape, 0, BoardHeight-tc.lines)
		eng.lockAndMerge()

		if eng.score != tc.points {
			t.Fatalf("clearing %d lines at level 1: score = %d, want %d", tc.lines, eng.score, tc.points)
		}
		for x := 0; x < BoardWidth; x++ {
			if eng.board[BoardHeight-1][x] != 0 {
				t.Fatalf("clearing %d lines: bottom row not empty after gravity", tc.lines)
			}
		}
	}
}

func TestBackToBackTetris(t *testing.T) {
	eng := NewTetris(7)

	clearFour := func() {
		for y := BoardHeight - 4; y < BoardHeight; y++ {
			fillRow(eng, y, 0)
		}
		eng.current = pieceOf([][]int{{1}, {1}, {1}, {1}}, 0, BoardHeight-4)
		eng.lockAndMerge()
	}

	clearFour()
	if eng.score != 800 {
		t.Fatalf("first Tetris: score = %d, want 800", eng.score)
	}

	clearFour()
	// 800 + 1200×1 — level was still 1 when the bonus applied.
	if eng.score != 2000 {
		t.Fatalf("back-to-back Tetris: score = %d, want 2000", eng.score)
	}
	if eng.level != 2 {
		t.Fatalf("level after 2000 points = %d, want 2", eng.level)
	}
}

func TestSingleClearResetsBackToBack(t *testing.T) {
	eng := NewTetris(7)
	eng.lastTetris = true

	fillRow(eng, BoardHeight-1, 0)
	eng.current = pieceOf([][]int{{1}}, 0, BoardHeight-1)
	eng.lockAndMerge()

	if eng.lastTetris {
		t.Fatal("single clear should reset the back-to-back flag")
	}
	if eng.score != 100 {
		t.Fatalf("single clear score = %d, want 100", eng.score)
	}
}

func TestLevelUpThreshold(t *testing.T) {
	eng := NewTetris(7)
	eng.score = 999

	fillRow(eng, BoardHeight-1, 0)
	eng.current = pieceOf([][]int{{1}}, 0, BoardHeight-1)
	eng.lockAndMerge()

	if eng.score != 1099 {
		t.Fatalf("score = %d, want 1099", eng.score)
	}
	if eng.level != 2 {
		t.Fatalf("level = %d, want 2 once score exceeds 1000", eng.level)
	}
}

func TestGameOverBoundary(t *testing.T) {
	eng := NewTetris(7)
	eng.current = pieceOf([][]int{{1}}, 4, 0)
	eng.lockAndMerge()

	if !eng.Over() {
		t.Fatal("locking a cell at y=0 must end the game")
	}

	before := eng.Snapshot()
	eng.MoveDown()
	eng.MoveHorizontal(1)
	eng.RotatePiece()
	eng.Drop()
	after := eng.Snapshot()

	if !reflect.DeepEqual(before, after) {
		t.Fatal("inputs after game over mutated the board")
	}
	if eng.Current() != nil {
		t.Fatal("Current should be nil after game over")
	}
}

func TestSpawnBlockedEndsGame(t *testing.T) {
	eng := NewTetris(7)
	// Choke the spawn area: top rows blocked except the last column,
	// so no row is complete but every centered spawn overlaps.
	for y := 0; y < 4; y++ {
		fillRow(eng, y, BoardWidth-1)
	}
	eng.current = pieceOf([][]int{{1}}, 0, BoardHeight-1)
	eng.lockAndMerge()

	if !eng.Over() {
		t.Fatal("blocked spawn position must end the game")
	}
}

func TestHardDropPoints(t *testing.T) {
	eng := NewTetris(7)
	eng.current = pieceOf([][]int{{1, 1}, {1, 1}}, 4, 0)
	eng.next = pieceOf([][]int{{1}}, 4, 0)
	eng.Drop()

	// From y=0 an O piece falls 18 rows: 2 points per cell.
	if eng.score != 36 {
		t.Fatalf("hard drop score = %d, want 36", eng.score)
	}
	if eng.board[BoardHeight-1][4] != 1 || eng.board[BoardHeight-2][5] != 1 {
		t.Fatal("hard drop did not lock the piece at the bottom")
	}
}

func TestRotationWallKick(t *testing.T) {
	eng := NewTetris(7)
	eng.current = pieceOf([][]int{{1}, {1}, {1}, {1}}, 8, 5)
	eng.RotatePiece()

	if len(eng.current.Shape) != 1 || len(eng.current.Shape[0]) != 4 {
		t.Fatalf("rotation rejected, shape = %v", eng.current.Shape)
	}
	// Only the -2 kick fits a horizontal I starting from column 8.
	if eng.current.X != 6 {
		t.Fatalf("wall kick landed at x=%d, want 6", eng.current.X)
	}
}

func TestRotationRejectedWhenNoKickFits(t *testing.T) {
	eng := NewTetris(7)
	// Wall off everything except the rightmost column.
	for y := 0; y < BoardHeight; y++ {
		for x := 0; x < BoardWidth-1; x++ {
			eng.board[y][x] = 1
		}
	}
	eng.current = pieceOf([][]int{{1}, {1}, {1}, {1}}, 9, 5)
	before := eng.current
	eng.RotatePiece()

	if eng.current != before {
		t.Fatal("rotation should be rejected when no kick offset fits")
	}
}

func TestInvalidHorizontalMoveIgnored(t *testing.T) {
	eng := NewTetris(7)
	eng.current = pieceOf([][]int{{1}}, 0, 5)
	eng.MoveHorizontal(-1)
	if eng.current.X != 0 {
		t.Fatalf("move through the wall: x=%d, want 0", eng.current.X)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	eng := NewTetris(7)
	snap := eng.Snapshot()
	snap.Board[10][3] = 1
	if eng.board[10][3] != 0 {
		t.Fatal("snapshot shares backing storage with the live board")
	}
}
