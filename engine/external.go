package engine

// External wraps a game mode whose loop runs outside this package
// (temple-runner, street-fighter). It is non-authoritative: the loop
// reports score updates and a final score, and that is all the match
// lifecycle ever sees.
type External struct {
	score int
	level int
	over  bool
}

func NewExternal() *External {
	return &External{level: 1}
}

// Report records the latest score from the external loop. Scores are
// monotonic; lower reports are ignored.
func (e *External) Report(score int) {
	if e.over || score < e.score {
		return
	}
	e.score = score
}

// Finish marks the run complete with its final score.
func (e *External) Finish(score int) {
	if e.over {
		return
	}
	e.Report(score)
	e.over = true
}

// Advance satisfies Game; external modes ignore relayed inputs.
func (e *External) Advance(Input) Snapshot {
	return Snapshot{Score: e.score, Level: e.level}
}

func (e *External) Over() bool { return e.over }

func (e *External) Score() int { return e.score }
