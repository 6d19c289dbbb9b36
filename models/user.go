package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the wallet-authenticated platform account. Identity itself is
// verified upstream (gateway/wallet provider); we only key off the
// wallet address.
type User struct {
	ID            string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	WalletAddress string  `gorm:"uniqueIndex;not null" json:"wallet_address"`
	Username      *string `gorm:"index" json:"username,omitempty"`
	ProfileSlug   *string `gorm:"uniqueIndex" json:"profile_slug,omitempty"` // SEO profile pages
	AvatarURL     *string `json:"avatar_url,omitempty"`

	// Arcade stats — score only moves on wagered (non-practice) games
	Score       int64 `gorm:"default:0;index" json:"score"`
	XP          int64 `gorm:"default:0" json:"xp"`
	GamesPlayed int64 `gorm:"default:0" json:"games_played"`
	GamesWon    int64 `gorm:"default:0" json:"games_won"`

	LastDailyReward *time.Time `json:"last_daily_reward,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
