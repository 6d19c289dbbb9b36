package workers

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"arcade-match-system/models"

	"gorm.io/gorm"
)

// MatchExpiryWorker sweeps waiting matches nobody joined. Expired
// matches become terminal records — never deleted, so wager history
// stays auditable.
type MatchExpiryWorker struct {
	DB         *gorm.DB
	WaitingTTL time.Duration
}

func NewMatchExpiryWorker(db *gorm.DB) *MatchExpiryWorker {
	minutes, err := strconv.Atoi(os.Getenv("MATCH_WAITING_TTL_MIN"))
	if err != nil || minutes <= 0 {
		minutes = 30
	}
	return &MatchExpiryWorker{
		DB:         db,
		WaitingTTL: time.Duration(minutes) * time.Minute,
	}
}

// ExpireOnce marks stale waiting matches as expired. A match is stale
// once its explicit expires_at passes, or its age exceeds the TTL when
// no expires_at was set.
func (w *MatchExpiryWorker) ExpireOnce(ctx context.Context) (int64, error) {
	now := time.Now()
	cutoff := now.Add(-w.WaitingTTL)

	result := w.DB.WithContext(ctx).Model(&models.Match{}).
		Where("status = ?", models.MatchStatusWaiting).
		Where("(expires_at IS NOT NULL AND expires_at <= ?) OR (expires_at IS NULL AND created_at <= ?)", now, cutoff).
		Updates(map[string]interface{}{
			"status":   models.MatchStatusExpired,
			"end_time": now,
		})
	return result.RowsAffected, result.Error
}

// PollExpiredMatches runs the sweep on an interval until ctx is done.
func PollExpiredMatches(ctx context.Context, w *MatchExpiryWorker, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("🧹 Match expiry worker started (TTL %s, every %s)", w.WaitingTTL, interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Match expiry worker stopping...")
			return
		case <-ticker.C:
			expired, err := w.ExpireOnce(ctx)
			if err != nil {
				log.Printf("⚠️  Match expiry sweep failed: %v", err)
				continue
			}
			if expired > 0 {
				log.Printf("🧹 Expired %d stale waiting matches", expired)
			}
		}
	}
}
