package services

import (
	"errors"
	"time"

	"arcade-match-system/models"
)

// Both the HTTP handlers and the relay funnel every match mutation
// through these transition functions, so the two paths can never
// produce divergent state.

var (
	// ErrMatchConflict signals a lifecycle no-op: joining a non-waiting
	// match, self-join, or finishing an already completed match.
	ErrMatchConflict = errors.New("match state conflict")

	// ErrNotParticipant signals a score reported by a user who occupies
	// neither player slot.
	ErrNotParticipant = errors.New("user is not a match participant")
)

// applyJoin seats joinerID as player 2 and starts the match. Only legal
// on a waiting match, and the creator cannot join their own match.
func applyJoin(m *models.Match, joinerID string, now time.Time) error {
	if m.Status != models.MatchStatusWaiting {
		return ErrMatchConflict
	}
	if joinerID == m.Player1ID {
		return ErrMatchConflict
	}
	m.Player2ID = &joinerID
	m.Status = models.MatchStatusInProgress
	m.StartTime = &now
	return nil
}

// applyScore stores score under the caller's slot. Idempotent per
// participant: last write wins, nothing accumulates.
func applyScore(m *models.Match, userID string, score int) error {
	switch {
	case m.Player1ID == userID:
		m.Player1Score = &score
	case m.Player2ID != nil && *m.Player2ID == userID:
		m.Player2Score = &score
	default:
		return ErrNotParticipant
	}
	return nil
}

// applyFinish completes the match. The winner is whichever player has
// the strictly greater score; a tie leaves winner_id null.
func applyFinish(m *models.Match, now time.Time) error {
	if m.Status == models.MatchStatusCompleted || m.Status == models.MatchStatusExpired {
		return ErrMatchConflict
	}
	m.Status = models.MatchStatusCompleted
	m.EndTime = &now
	m.WinnerID = resolveWinner(m)
	return nil
}

// resolveWinner returns the id of the strictly higher scorer. Nil on a
// tie or while either score is missing.
func resolveWinner(m *models.Match) *string {
	if !m.BothScored() {
		return nil
	}
	if *m.Player1Score > *m.Player2Score {
		p1 := m.Player1ID
		return &p1
	}
	if *m.Player2Score > *m.Player1Score {
		return m.Player2ID
	}
	return nil
}

// applyForfeit completes an abandoned match under the "forfeit" policy:
// the lone participant with a recorded score wins outright.
func applyForfeit(m *models.Match, now time.Time) error {
	if err := applyFinish(m, now); err != nil {
		return err
	}
	if m.WinnerID != nil || m.BothScored() {
		return nil
	}
	if m.Player1Score != nil {
		p1 := m.Player1ID
		m.WinnerID = &p1
	} else if m.Player2Score != nil {
		m.WinnerID = m.Player2ID
	}
	return nil
}
