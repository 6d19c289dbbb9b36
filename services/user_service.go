package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"arcade-match-system/models"
	"arcade-match-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// profileSlug derives the SEO profile path segment. Falls back to a
// wallet prefix when no username was supplied.
func profileSlug(username *string, walletAddress string) string {
	if username != nil && strings.TrimSpace(*username) != "" {
		// NFC first so composed and decomposed usernames slug identically.
		return slug.Make(norm.NFC.String(*username))
	}
	short := walletAddress
	if len(short) > 10 {
		short = short[:10]
	}
	return slug.Make("player-" + short)
}

// AuthenticateWallet upserts the account for a wallet address. The
// wallet signature itself is verified upstream — by the time this runs
// the gateway has already authenticated the caller.
func (s *UserService) AuthenticateWallet(c *fiber.Ctx) error {
	var input struct {
		WalletAddress string  `json:"wallet_address"`
		Username      *string `json:"username"`
		AvatarURL     *string `json:"avatar_url"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.WalletAddress == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "wallet_address is required"})
	}

	var user models.User
	err := s.DB.Where("wallet_address = ?", input.WalletAddress).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pslug := profileSlug(input.Username, input.WalletAddress)
		user = models.User{
			ID:            uuid.NewString(),
			WalletAddress: input.WalletAddress,
			Username:      input.Username,
			ProfileSlug:   &pslug,
			AvatarURL:     input.AvatarURL,
		}
		if err := s.DB.Create(&user).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create user"})
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(user)
}

// GetUser returns a single account by id.
func (s *UserService) GetUser(c *fiber.Ctx) error {
	var user models.User
	if err := s.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(user)
}

// UpdateXP credits XP after a game. Wagered (non-practice) games also
// move the leaderboard score: 10 points per XP.
func (s *UserService) UpdateXP(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var input struct {
		XP         int64 `json:"xp"`
		IsPractice bool  `json:"is_practice"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.XP < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "xp must be non-negative"})
	}

	var user models.User
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		user.XP += input.XP
		user.GamesPlayed++
		if !input.IsPractice {
			user.Score += input.XP * 10
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update XP"})
	}
	return c.JSON(user)
}

// GetLeaderboard returns the top 10 accounts by wagered score.
func (s *UserService) GetLeaderboard(c *fiber.Ctx) error {
	var users []models.User
	if err := s.DB.Where("score > 0").Order("score DESC").Limit(10).Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch leaderboard"})
	}
	return c.JSON(users)
}

// UploadAvatar stores a new avatar on R2 and saves its public URL.
func (s *UserService) UploadAvatar(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	avatarFile, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
	}
	if avatarFile.Size > 5*1024*1024 { // 5MB
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar too large (max 5MB)"})
	}

	ext := filepath.Ext(avatarFile.Filename)
	if ext == "" {
		ext = ".png"
	}
	avatarKey := "avatars/" + uuid.NewString() + ext
	var avatarURL string
	if utils.R2Enabled() {
		avatarURL, err = utils.UploadFileToR2(avatarFile, avatarKey)
	} else {
		err = utils.SaveFile(avatarFile, utils.GetUploadPath(avatarKey))
		avatarURL = "/uploads/" + avatarKey
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload avatar"})
	}

	if err := s.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("avatar_url", avatarURL).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save avatar"})
	}
	return c.JSON(fiber.Map{"avatar_url": avatarURL})
}

// ===== Creator applications =====

// CreateCreatorApplication submits a new application for the caller.
func (s *UserService) CreateCreatorApplication(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var input struct {
		Name                  string `json:"name"`
		Email                 string `json:"email"`
		WalletAddress         string `json:"wallet_address"`
		ExperienceLevel       string `json:"experience_level"`
		GameDevBackground     string `json:"game_dev_background"`
		ProjectProposal       string `json:"project_proposal"`
		PortfolioLinks        string `json:"portfolio_links"`
		PreferredTechnologies string `json:"preferred_technologies"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.Name == "" || input.Email == "" || input.ProjectProposal == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name, email and project_proposal are required"})
	}
	switch input.ExperienceLevel {
	case "beginner", "intermediate", "advanced":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("invalid experience_level %q (use: beginner, intermediate, advanced)", input.ExperienceLevel),
		})
	}

	application := &models.CreatorApplication{
		ID:                    uuid.NewString(),
		UserID:                userID,
		Name:                  input.Name,
		Email:                 input.Email,
		WalletAddress:         input.WalletAddress,
		ExperienceLevel:       input.ExperienceLevel,
		GameDevBackground:     input.GameDevBackground,
		ProjectProposal:       input.ProjectProposal,
		PortfolioLinks:        input.PortfolioLinks,
		PreferredTechnologies: input.PreferredTechnologies,
		Status:                models.ApplicationStatusPending,
	}
	if err := s.DB.Create(application).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to submit application"})
	}
	return c.Status(fiber.StatusCreated).JSON(application)
}

// GetCreatorApplication returns one application, owner-scoped.
func (s *UserService) GetCreatorApplication(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var application models.CreatorApplication
	if err := s.DB.First(&application, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "application not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if application.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not your application"})
	}
	return c.JSON(application)
}

// ListCreatorApplications returns all applications for the caller.
func (s *UserService) ListCreatorApplications(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var applications []models.CreatorApplication
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&applications).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch applications"})
	}
	return c.JSON(applications)
}
