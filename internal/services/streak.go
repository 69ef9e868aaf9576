package services

import (
	"context"
	"fmt"
	"time"

	"github.com/spinspot/server/internal/database"
	"github.com/spinspot/server/internal/logger"
	"github.com/spinspot/server/internal/models"
	"github.com/spinspot/server/pkg/firebase"
)

// streakMilestone is how many consecutive days earn a congratulation push.
const streakMilestone = 7

// StreakService maintains the per-user daily activity streak. Callers run it
// through BestEffort; a failed streak update never blocks the primary flow.
type StreakService struct {
	db *database.DB
}

// NewStreakService creates a new StreakService.
func NewStreakService(db *database.DB) *StreakService {
	return &StreakService{db: db}
}

// RecordActivity bumps the user's streak for today. A second activity on the
// same day is a no-op; a gap of more than one day resets the streak to 1.
func (s *StreakService) RecordActivity(ctx context.Context, userID uint) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return fmt.Errorf("streak user lookup: %w", err)
	}

	now := time.Now()
	streak := 1
	if user.LastSpinAt != nil {
		last := *user.LastSpinAt
		if sameDay(last, now) {
			return nil
		}
		if sameDay(last.AddDate(0, 0, 1), now) {
			streak = user.StreakCount + 1
		}
	}

	updates := map[string]interface{}{
		"streak_count": streak,
		"last_spin_at": now,
	}
	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return fmt.Errorf("streak update: %w", err)
	}

	if streak > 0 && streak%streakMilestone == 0 {
		s.sendMilestonePush(ctx, userID, streak)
	}

	return nil
}

// sendMilestonePush congratulates the user on their devices. Failures are
// logged only; milestone pushes are not worth surfacing.
func (s *StreakService) sendMilestonePush(ctx context.Context, userID uint, streak int) {
	log := logger.GetLogger("streak")

	fcm := firebase.GetFCMService()
	if !fcm.IsInitialized() {
		return
	}

	var devices []models.PushDevice
	if err := s.db.WithContext(ctx).Where("user_id = ? AND is_active = ?", userID, true).Find(&devices).Error; err != nil {
		log.Warnf("failed to load devices for user %d: %v", userID, err)
		return
	}
	if len(devices) == 0 {
		return
	}

	tokens := make([]string, 0, len(devices))
	for _, device := range devices {
		tokens = append(tokens, device.Token)
	}

	title := "Streak milestone!"
	body := fmt.Sprintf("You've spun the wheel %d days in a row. Keep it going!", streak)
	data := map[string]string{"type": "streak_milestone"}

	result := fcm.SendPushMultiple(ctx, tokens, title, body, data)
	log.Infof("milestone push - success: %d, failure: %d", result.SuccessCount, result.FailureCount)

	if len(result.FailedTokens) > 0 {
		s.db.WithContext(ctx).Model(&models.PushDevice{}).
			Where("token IN ?", result.FailedTokens).
			Update("is_active", false)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
