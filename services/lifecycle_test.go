package services

import (
	"testing"
	"time"

	"arcade-match-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitingMatch() *models.Match {
	return &models.Match{
		ID:        "m1",
		Player1ID: "alice",
		BetAmount: "100",
		BetType:   models.BetTypeXP,
		GameType:  models.GameTypeTetris,
		Status:    models.MatchStatusWaiting,
	}
}

func TestApplyJoin(t *testing.T) {
	now := time.Now()

	t.Run("seats player two and starts the match", func(t *testing.T) {
		m := waitingMatch()
		require.NoError(t, applyJoin(m, "bob", now))

		assert.Equal(t, models.MatchStatusInProgress, m.Status)
		require.NotNil(t, m.Player2ID)
		assert.Equal(t, "bob", *m.Player2ID)
		require.NotNil(t, m.StartTime)
	})

	t.Run("creator cannot join own match", func(t *testing.T) {
		m := waitingMatch()
		assert.ErrorIs(t, applyJoin(m, "alice", now), ErrMatchConflict)
		assert.Equal(t, models.MatchStatusWaiting, m.Status)
		assert.Nil(t, m.Player2ID)
	})

	t.Run("second joiner is rejected, first seat unchanged", func(t *testing.T) {
		m := waitingMatch()
		require.NoError(t, applyJoin(m, "bob", now))
		assert.ErrorIs(t, applyJoin(m, "carol", now), ErrMatchConflict)
		assert.Equal(t, "bob", *m.Player2ID)
	})
}

func TestInProgressInvariant(t *testing.T) {
	m := waitingMatch()
	require.NoError(t, applyJoin(m, "bob", time.Now()))

	// in_progress ⇒ both players seated and a start time recorded
	assert.Equal(t, models.MatchStatusInProgress, m.Status)
	assert.NotEmpty(t, m.Player1ID)
	assert.NotNil(t, m.Player2ID)
	assert.NotNil(t, m.StartTime)
}

func TestApplyScore(t *testing.T) {
	m := waitingMatch()
	require.NoError(t, applyJoin(m, "bob", time.Now()))

	require.NoError(t, applyScore(m, "alice", 500))
	require.NoError(t, applyScore(m, "bob", 300))
	assert.Equal(t, 500, *m.Player1Score)
	assert.Equal(t, 300, *m.Player2Score)

	// Last write wins — nothing accumulates.
	require.NoError(t, applyScore(m, "alice", 450))
	assert.Equal(t, 450, *m.Player1Score)

	assert.ErrorIs(t, applyScore(m, "mallory", 9000), ErrNotParticipant)
	assert.Equal(t, 450, *m.Player1Score)
	assert.Equal(t, 300, *m.Player2Score)
}

func TestApplyFinish(t *testing.T) {
	now := time.Now()

	scored := func(p1, p2 int) *models.Match {
		m := waitingMatch()
		require.NoError(t, applyJoin(m, "bob", now))
		require.NoError(t, applyScore(m, "alice", p1))
		require.NoError(t, applyScore(m, "bob", p2))
		return m
	}

	t.Run("higher scorer wins", func(t *testing.T) {
		m := scored(500, 300)
		require.NoError(t, applyFinish(m, now))
		assert.Equal(t, models.MatchStatusCompleted, m.Status)
		require.NotNil(t, m.EndTime)
		require.NotNil(t, m.WinnerID)
		assert.Equal(t, "alice", *m.WinnerID)
	})

	t.Run("winner resolution is commutative", func(t *testing.T) {
		m := waitingMatch()
		require.NoError(t, applyJoin(m, "bob", now))
		require.NoError(t, applyScore(m, "bob", 300))
		require.NoError(t, applyScore(m, "alice", 500))
		require.NoError(t, applyFinish(m, now))
		assert.Equal(t, "alice", *m.WinnerID)
	})

	t.Run("tie leaves winner null", func(t *testing.T) {
		m := scored(400, 400)
		require.NoError(t, applyFinish(m, now))
		assert.Equal(t, models.MatchStatusCompleted, m.Status)
		assert.Nil(t, m.WinnerID)
	})

	t.Run("missing score leaves winner null", func(t *testing.T) {
		m := waitingMatch()
		require.NoError(t, applyJoin(m, "bob", now))
		require.NoError(t, applyScore(m, "alice", 500))
		require.NoError(t, applyFinish(m, now))
		assert.Nil(t, m.WinnerID)
	})

	t.Run("finishing a completed match is a conflict no-op", func(t *testing.T) {
		m := scored(500, 300)
		require.NoError(t, applyFinish(m, now))
		assert.ErrorIs(t, applyFinish(m, now), ErrMatchConflict)
	})
}

func TestApplyForfeit(t *testing.T) {
	now := time.Now()

	m := waitingMatch()
	require.NoError(t, applyJoin(m, "bob", now))
	require.NoError(t, applyScore(m, "bob", 300))
	require.NoError(t, applyForfeit(m, now))

	assert.Equal(t, models.MatchStatusCompleted, m.Status)
	require.NotNil(t, m.WinnerID)
	assert.Equal(t, "bob", *m.WinnerID)

	// With both scores, forfeit defers to normal resolution.
	m2 := waitingMatch()
	require.NoError(t, applyJoin(m2, "bob", now))
	require.NoError(t, applyScore(m2, "alice", 500))
	require.NoError(t, applyScore(m2, "bob", 300))
	require.NoError(t, applyForfeit(m2, now))
	assert.Equal(t, "alice", *m2.WinnerID)
}
