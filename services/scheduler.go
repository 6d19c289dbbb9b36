// services/scheduler.go
package services

import (
	"log"
	"os"
	"time"

	"arcade-match-system/models"

	"github.com/go-co-op/gocron/v2"
)

// Abandon policies control what happens to an in_progress match whose
// time limit passed with one side gone.
const (
	AbandonPolicyWait    = "wait"    // leave running, opponent may play on
	AbandonPolicyTimeout = "timeout" // complete with whatever scores exist
	AbandonPolicyForfeit = "forfeit" // lone scorer wins outright
)

func abandonPolicy() string {
	switch p := os.Getenv("MATCH_ABANDON_POLICY"); p {
	case AbandonPolicyTimeout, AbandonPolicyForfeit:
		return p
	default:
		return AbandonPolicyWait
	}
}

// StartMatchScheduler runs the time-limit sweep every minute.
func (s *MatchService) StartMatchScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			policy := abandonPolicy()
			if policy == AbandonPolicyWait {
				return
			}

			var matches []models.Match
			now := time.Now()
			err := s.DB.Where("status = ? AND time_limit IS NOT NULL", models.MatchStatusInProgress).
				Find(&matches).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, m := range matches {
				if m.StartTime == nil || m.TimeLimit == nil {
					continue
				}
				deadline := m.StartTime.Add(time.Duration(*m.TimeLimit) * time.Minute)
				if now.Before(deadline) {
					continue
				}

				var applyErr error
				if policy == AbandonPolicyForfeit {
					applyErr = applyForfeit(&m, now)
				} else {
					applyErr = applyFinish(&m, now)
				}
				if applyErr != nil {
					continue
				}
				if err := s.DB.Save(&m).Error; err != nil {
					log.Printf("[Scheduler] Failed to close match %s: %v", m.ID, err)
				} else {
					log.Printf("⏱️  Closed timed-out match %s (policy=%s)", m.ID, policy)
				}
			}
		}),
	)
}
