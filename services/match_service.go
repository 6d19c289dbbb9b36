package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"arcade-match-system/models"
	"arcade-match-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MatchService struct {
	DB *gorm.DB
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{DB: db}
}

// waitingTTL is how long an unjoined match stays open for joiners.
func waitingTTL() time.Duration {
	minutes, err := strconv.Atoi(os.Getenv("MATCH_WAITING_TTL_MIN"))
	if err != nil || minutes <= 0 {
		minutes = 30
	}
	return time.Duration(minutes) * time.Minute
}

// ===== Lifecycle API (shared by HTTP handlers and the relay) =====

// GetMatch loads a match by id.
func (s *MatchService) GetMatch(id string) (*models.Match, error) {
	var match models.Match
	if err := s.DB.First(&match, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

// Join seats joinerID into a waiting match. Conflicts (non-waiting
// match, self-join) return ErrMatchConflict with the record unchanged.
func (s *MatchService) Join(matchID, joinerID string) (*models.Match, error) {
	var match models.Match
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&match, "id = ?", matchID).Error; err != nil {
			return err
		}
		if err := applyJoin(&match, joinerID, time.Now()); err != nil {
			return err
		}
		return tx.Save(&match).Error
	})
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// RecordScore stores score under the caller's player slot (last write
// wins).
func (s *MatchService) RecordScore(matchID, userID string, score int) (*models.Match, error) {
	var match models.Match
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&match, "id = ?", matchID).Error; err != nil {
			return err
		}
		if err := applyScore(&match, userID, score); err != nil {
			return err
		}
		return tx.Save(&match).Error
	})
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// Finish completes the match and resolves the winner. Already-terminal
// matches return ErrMatchConflict untouched.
func (s *MatchService) Finish(matchID string) (*models.Match, error) {
	var match models.Match
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&match, "id = ?", matchID).Error; err != nil {
			return err
		}
		if err := applyFinish(&match, time.Now()); err != nil {
			return err
		}
		if err := tx.Save(&match).Error; err != nil {
			return err
		}
		if match.WinnerID != nil && !match.IsPractice {
			if err := tx.Model(&models.User{}).
				Where("id = ?", *match.WinnerID).
				UpdateColumn("games_won", gorm.Expr("games_won + 1")).Error; err != nil {
				// Stats are best-effort; the match result itself stands.
				log.Printf("⚠️  failed to bump games_won for %s: %v", *match.WinnerID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	go notifyMatchResult(&match)
	return &match, nil
}

// notifyMatchResult posts the final record to the settlement webhook
// (bet payout lives in another service). Fire-and-forget: a missing or
// failing webhook never blocks match completion.
func notifyMatchResult(match *models.Match) {
	webhookURL := os.Getenv("MATCH_RESULT_WEBHOOK_URL")
	if webhookURL == "" || match.IsPractice {
		return
	}
	payload, err := json.Marshal(match)
	if err != nil {
		return
	}
	resp, err := utils.HTTPClient.Post(webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("⚠️  match result webhook failed for %s: %v", match.ID, err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Printf("⚠️  match result webhook returned %d for %s", resp.StatusCode, match.ID)
	}
}

// ===== HTTP handlers =====

// CreateMatch opens a new waiting match for the authenticated user.
func (s *MatchService) CreateMatch(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var input struct {
		BetAmount  string `json:"bet_amount"`
		BetType    string `json:"bet_type"`
		GameType   string `json:"game_type"`
		IsPractice bool   `json:"is_practice"`
		TimeLimit  *int   `json:"time_limit"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if input.BetType == "" {
		input.BetType = models.BetTypeXP
	}
	if input.BetType != models.BetTypeXP && input.BetType != models.BetTypeCrypto {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid bet_type (use: xp, crypto)"})
	}
	switch input.GameType {
	case "":
		input.GameType = models.GameTypeTetris
	case models.GameTypeTetris, models.GameTypeTempleRunner, models.GameTypeStreetFighter:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported game_type"})
	}

	expiresAt := time.Now().Add(waitingTTL())
	match := &models.Match{
		ID:         uuid.NewString(),
		Player1ID:  userID,
		BetAmount:  input.BetAmount,
		BetType:    input.BetType,
		GameType:   input.GameType,
		IsPractice: input.IsPractice,
		TimeLimit:  input.TimeLimit,
		Status:     models.MatchStatusWaiting,
		ExpiresAt:  &expiresAt,
	}
	if err := s.DB.Create(match).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create match"})
	}
	return c.Status(fiber.StatusCreated).JSON(match)
}

// GetActiveMatches lists matches still waiting for an opponent.
func (s *MatchService) GetActiveMatches(c *fiber.Ctx) error {
	var matches []models.Match
	if err := s.DB.Where("status = ?", models.MatchStatusWaiting).
		Order("created_at ASC").Find(&matches).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch matches"})
	}
	return c.JSON(matches)
}

// GetMatchByID returns a single match.
func (s *MatchService) GetMatchByID(c *fiber.Ctx) error {
	match, err := s.GetMatch(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "match not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(match)
}

// JoinMatch seats the authenticated user as player 2.
func (s *MatchService) JoinMatch(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	match, err := s.Join(c.Params("id"), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "match not found"})
		}
		if errors.Is(err, ErrMatchConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "match is not open for joining"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to join match"})
	}
	return c.JSON(match)
}

// FinishMatch records the caller's final score and completes the match.
// This is the HTTP fallback for game modes that do not report gameOver
// over the relay.
func (s *MatchService) FinishMatch(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	matchID := c.Params("id")

	var input struct {
		Score int `json:"score"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if _, err := s.RecordScore(matchID, userID, input.Score); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "match not found"})
		}
		if errors.Is(err, ErrNotParticipant) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not a participant of this match"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record score"})
	}

	match, err := s.Finish(matchID)
	if err != nil {
		if errors.Is(err, ErrMatchConflict) {
			// Already terminal — report the current record as a no-op.
			match, err = s.GetMatch(matchID)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
			}
			return c.JSON(match)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to finish match"})
	}
	return c.JSON(match)
}
