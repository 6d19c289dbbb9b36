package models

// Creator application review states
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

// CreatorApplication is a request from a player to publish their own
// game mode on the platform.
type CreatorApplication struct {
	ID            string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID        string `gorm:"index;not null" json:"user_id"`
	Name          string `gorm:"not null" json:"name"`
	Email         string `gorm:"not null" json:"email"`
	WalletAddress string `gorm:"not null" json:"wallet_address"`

	ExperienceLevel       string `gorm:"type:varchar(16);not null;check:experience_level IN ('beginner','intermediate','advanced')" json:"experience_level"`
	GameDevBackground     string `gorm:"type:text;not null" json:"game_dev_background"`
	ProjectProposal       string `gorm:"type:text;not null" json:"project_proposal"`
	PortfolioLinks        string `gorm:"type:text" json:"portfolio_links,omitempty"`
	PreferredTechnologies string `gorm:"type:text" json:"preferred_technologies,omitempty"`

	Status string `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`

	Timestamps
}
