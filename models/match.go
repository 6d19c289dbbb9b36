package models

import "time"

// Match lifecycle states. A match is a terminal record — it is never
// deleted, only moved forward through these states.
const (
	MatchStatusWaiting    = "waiting"
	MatchStatusInProgress = "in_progress"
	MatchStatusCompleted  = "completed"
	MatchStatusExpired    = "expired" // waiting match nobody joined in time
)

// Bet settlement currencies
const (
	BetTypeXP     = "xp"
	BetTypeCrypto = "crypto"
)

// Supported game modes. Only tetris is server-verifiable; the other two
// run their own loops client-side and just report a final score.
const (
	GameTypeTetris        = "tetris"
	GameTypeTempleRunner  = "temple-runner"
	GameTypeStreetFighter = "street-fighter"
)

// Match records a single wagered or practice game session between one
// or two players.
type Match struct {
	ID        string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Player1ID string  `gorm:"index;not null" json:"player1_id"`
	Player2ID *string `gorm:"index" json:"player2_id,omitempty"` // nil until someone joins

	// Economic terms
	BetAmount  string `gorm:"not null" json:"bet_amount"`
	BetType    string `gorm:"type:varchar(16);not null;default:'xp';check:bet_type IN ('xp','crypto')" json:"bet_type"`
	IsPractice bool   `gorm:"default:false" json:"is_practice"`

	GameType  string `gorm:"type:varchar(32);not null;default:'tetris'" json:"game_type"`
	TimeLimit *int   `json:"time_limit,omitempty"` // minutes, nil = unlimited

	// Lifecycle
	Status    string     `gorm:"type:varchar(16);not null;index" json:"status"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`

	// Outcome
	Player1Score *int    `json:"player1_score,omitempty"`
	Player2Score *int    `json:"player2_score,omitempty"`
	WinnerID     *string `json:"winner_id,omitempty"` // nil on tie

	Timestamps
}

// HasPlayer reports whether userID occupies either player slot.
func (m *Match) HasPlayer(userID string) bool {
	return m.Player1ID == userID || (m.Player2ID != nil && *m.Player2ID == userID)
}

// BothScored reports whether both participants have a recorded score.
func (m *Match) BothScored() bool {
	return m.Player1Score != nil && m.Player2Score != nil
}
