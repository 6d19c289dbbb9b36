package engine

import "math/rand"

const (
	BoardWidth  = 10
	BoardHeight = 20
)

// Line clear base points, indexed by cleared line count. A second
// consecutive 4-line clear pays 1200 instead of 800.
var clearPoints = [5]int{0, 100, 300, 500, 800}

const backToBackTetrisPoints = 1200

// Piece is a falling tetromino. X/Y is the top-left offset of the
// shape matrix on the board; Y can be negative right after spawn.
type Piece struct {
	Shape [][]int `json:"shape"`
	Color string  `json:"color"`
	X     int     `json:"x"`
	Y     int     `json:"y"`
}

type tetromino struct {
	shape [][]int
	color string
}

var tetrominoes = []tetromino{
	{shape: [][]int{{1, 1, 1, 1}}, color: "#FF61DC"},                 // I
	{shape: [][]int{{1, 0, 0}, {1, 1, 1}}, color: "#1FCFF1"},         // J
	{shape: [][]int{{0, 0, 1}, {1, 1, 1}}, color: "#7B61FF"},         // L
	{shape: [][]int{{1, 1}, {1, 1}}, color: "#FFEB3B"},               // O
	{shape: [][]int{{0, 1, 1}, {1, 1, 0}}, color: "#4CAF50"},         // S
	{shape: [][]int{{0, 1, 0}, {1, 1, 1}}, color: "#9C27B0"},         // T
	{shape: [][]int{{1, 1, 0}, {0, 1, 1}}, color: "#FF4D4D"},         // Z
}

// Tetris is the deterministic single-player core. Same seed + same
// input sequence = same board/score/level sequence, which is what makes
// wagered outcomes reproducible. No I/O, not safe for concurrent use —
// each player owns exactly one instance.
type Tetris struct {
	board      [][]int
	current    *Piece
	next       *Piece
	score      int
	level      int
	lastTetris bool
	over       bool
	rng        *rand.Rand
}

// NewTetris creates an engine with a fixed RNG seed. The first piece is
// already spawned and the preview piece pre-drawn.
func NewTetris(seed int64) *Tetris {
	t := &Tetris{
		board: emptyBoard(),
		level: 1,
		rng:   rand.New(rand.NewSource(seed)),
	}
	t.current = t.draw()
	t.next = t.draw()
	return t
}

func emptyBoard() [][]int {
	board := make([][]int, BoardHeight)
	for y := range board {
		board[y] = make([]int, BoardWidth)
	}
	return board
}

// draw picks uniformly from the 7 tetrominoes, horizontally centered at
// the top of the board.
func (t *Tetris) draw() *Piece {
	tet := tetrominoes[t.rng.Intn(len(tetrominoes))]
	shape := make([][]int, len(tet.shape))
	for i, row := range tet.shape {
		shape[i] = append([]int(nil), row...)
	}
	return &Piece{
		Shape: shape,
		Color: tet.color,
		X:     BoardWidth/2 - len(shape[0])/2,
		Y:     0,
	}
}

// Advance applies one input and returns the resulting snapshot.
func (t *Tetris) Advance(in Input) Snapshot {
	switch in {
	case Tick, SoftDrop:
		t.MoveDown()
	case Left:
		t.MoveHorizontal(-1)
	case Right:
		t.MoveHorizontal(1)
	case Rotate:
		t.RotatePiece()
	case HardDrop:
		t.Drop()
	}
	return t.Snapshot()
}

// isValidMove reports whether piece fits at offset (x, y): inside the
// side walls and floor, and only over empty cells. Rows above the board
// top count as empty so a freshly spawned piece may overlap them.
func (t *Tetris) isValidMove(piece *Piece, x, y int) bool {
	for row := range piece.Shape {
		for col := range piece.Shape[row] {
			if piece.Shape[row][col] == 0 {
				continue
			}
			newX := x + col
			newY := y + row
			if newX < 0 || newX >= BoardWidth || newY >= BoardHeight {
				return false
			}
			if newY >= 0 && t.board[newY][newX] != 0 {
				return false
			}
		}
	}
	return true
}

// MoveDown advances the piece one row; if it cannot move it locks into
// the board instead. Returns true while the piece is still falling.
func (t *Tetris) MoveDown() bool {
	if t.over {
		return false
	}
	if t.isValidMove(t.current, t.current.X, t.current.Y+1) {
		t.current.Y++
		return true
	}
	t.lockAndMerge()
	return false
}

// MoveHorizontal shifts the piece one column (-1 left, +1 right).
// Blocked moves are silently ignored.
func (t *Tetris) MoveHorizontal(dir int) {
	if t.over {
		return
	}
	if t.isValidMove(t.current, t.current.X+dir, t.current.Y) {
		t.current.X += dir
	}
}

// RotatePiece rotates clockwise with a wall-kick search: the first
// column offset in [0, -1, +1, -2, +2] that fits wins, otherwise the
// rotation is rejected and the piece is unchanged.
func (t *Tetris) RotatePiece() {
	if t.over {
		return
	}
	rows := len(t.current.Shape)
	cols := len(t.current.Shape[0])
	rotated := make([][]int, cols)
	for i := 0; i < cols; i++ {
		rotated[i] = make([]int, rows)
		for j := 0; j < rows; j++ {
			rotated[i][j] = t.current.Shape[rows-1-j][i]
		}
	}
	candidate := &Piece{Shape: rotated, Color: t.current.Color, Y: t.current.Y}
	for _, offset := range []int{0, -1, 1, -2, 2} {
		if t.isValidMove(candidate, t.current.X+offset, t.current.Y) {
			candidate.X = t.current.X + offset
			t.current = candidate
			return
		}
	}
}

// Drop hard-drops the piece: maximum valid distance in one call,
// 2 points per cell dropped, then an immediate lock.
func (t *Tetris) Drop() {
	if t.over {
		return
	}
	distance := 0
	for t.isValidMove(t.current, t.current.X, t.current.Y+distance+1) {
		distance++
	}
	t.score += distance * 2
	t.current.Y += distance
	t.lockAndMerge()
}

// lockAndMerge writes the piece into the board, clears filled rows,
// applies scoring and spawns the next piece. Topping out (a locked cell
// at y <= 0, or a blocked spawn) ends the game.
func (t *Tetris) lockAndMerge() {
	pieceAtTop := false
	for row := range t.current.Shape {
		for col := range t.current.Shape[row] {
			if t.current.Shape[row][col] == 0 {
				continue
			}
			boardY := t.current.Y + row
			if boardY <= 0 {
				pieceAtTop = true
			}
			if boardY >= 0 && boardY < BoardHeight {
				t.board[boardY][t.current.X+col] = 1
			}
		}
	}
	if pieceAtTop {
		t.over = true
		return
	}

	var cleared []int
	for y := BoardHeight - 1; y >= 0; y-- {
		full := true
		for x := 0; x < BoardWidth; x++ {
			if t.board[y][x] == 0 {
				full = false
				break
			}
		}
		if full {
			cleared = append(cleared, y)
		}
	}

	if len(cleared) > 0 {
		points := 0
		if len(cleared) == 4 {
			points = clearPoints[4]
			if t.lastTetris {
				points = backToBackTetrisPoints
			}
			t.lastTetris = true
		} else {
			points = clearPoints[len(cleared)]
			t.lastTetris = false
		}
		t.score += points * t.level
		if t.score > t.level*1000 {
			t.level++
		}
		t.removeRows(cleared)
	}

	t.current = t.next
	t.next = t.draw()
	if !t.isValidMove(t.current, t.current.X, t.current.Y) {
		t.over = true
	}
}

// removeRows deletes the given rows and prepends an equal number of
// empty rows at the top.
func (t *Tetris) removeRows(rows []int) {
	drop := make(map[int]bool, len(rows))
	for _, y := range rows {
		drop[y] = true
	}
	kept := make([][]int, 0, BoardHeight)
	for y := 0; y < BoardHeight; y++ {
		if !drop[y] {
			kept = append(kept, t.board[y])
		}
	}
	board := make([][]int, 0, BoardHeight)
	for i := 0; i < len(rows); i++ {
		board = append(board, make([]int, BoardWidth))
	}
	t.board = append(board, kept...)
}

// Over reports whether the game has topped out. After that no input
// mutates the board.
func (t *Tetris) Over() bool { return t.over }

// Score returns the current cumulative score.
func (t *Tetris) Score() int { return t.score }

// Level returns the current level (drives client-side drop speed).
func (t *Tetris) Level() int { return t.level }

// Current returns the falling piece, nil once the game is over.
func (t *Tetris) Current() *Piece {
	if t.over {
		return nil
	}
	return t.current
}

// Next returns the preview piece.
func (t *Tetris) Next() *Piece { return t.next }

// Snapshot returns a deep copy of the broadcastable state.
func (t *Tetris) Snapshot() Snapshot {
	board := make([][]int, BoardHeight)
	for y := range t.board {
		board[y] = append([]int(nil), t.board[y]...)
	}
	return Snapshot{Board: board, Score: t.score, Level: t.level}
}
