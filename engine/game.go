// Package engine contains the playable game cores. Every mode exposes
// the same capability surface so the match lifecycle and client sync
// layer never depend on a concrete game.
package engine

// Input is a single player action fed into a game step.
type Input int

const (
	Tick Input = iota // gravity step
	Left
	Right
	Rotate
	SoftDrop
	HardDrop
)

// Snapshot is the serialized per-player game state broadcast to the
// opponent. Board is row-major, 1 = filled cell.
type Snapshot struct {
	Board [][]int `json:"board"`
	Score int     `json:"score"`
	Level int     `json:"level"`
}

// Game is implemented per game mode. Advance applies one input and
// returns the resulting snapshot; invalid inputs are ignored, never
// errors. Once Over reports true, Advance is a no-op and Score is the
// final authoritative score fed into the match lifecycle.
type Game interface {
	Advance(in Input) Snapshot
	Over() bool
	Score() int
}
