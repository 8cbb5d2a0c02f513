// services/progression_service.go - Event Fan-Out for Student Activity
package services

import (
	"errors"
	"log"
	"time"
	"xavilearn/models"

	"gorm.io/gorm"
)

// ProgressionService turns raw student events into engine updates: evidence
// approval bumps counters, streak and coins, applies experience, and fans the
// event out to achievement evaluation and mission progress.
type ProgressionService struct {
	db           *gorm.DB
	levels       *LevelService
	achievements *AchievementService
	missions     *MissionService
}

func NewProgressionService(db *gorm.DB, levels *LevelService, achievements *AchievementService, missions *MissionService) *ProgressionService {
	return &ProgressionService{db: db, levels: levels, achievements: achievements, missions: missions}
}

// ApprovalResult summarizes everything one evidence approval triggered.
type ApprovalResult struct {
	LevelInfo            *LevelInfo           `json:"level_info"`
	CoinsEarned          int                  `json:"coins_earned"`
	CurrentStreak        int                  `json:"current_streak"`
	UnlockedAchievements []models.Achievement `json:"unlocked_achievements"`
	CompletedMissions    []models.Mission     `json:"completed_missions"`
}

// HandleEvidenceApproved is the entry point for the evidence-approved event.
// Counter and coin updates are transactional; the downstream evaluation fan-out
// is best-effort per target and never rolls back the committed approval.
func (p *ProgressionService) HandleEvidenceApproved(userID uint, activity *models.Activity) (*ApprovalResult, error) {
	now := time.Now().UTC()
	var streak int

	err := p.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		streak = nextStreak(user.CurrentStreak, user.LastStudyDate, now)
		best := user.BestStreak
		if streak > best {
			best = streak
		}

		return tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"total_activities_completed": gorm.Expr("total_activities_completed + ?", 1),
			"xavi_coints":                gorm.Expr("xavi_coints + ?", activity.CoinValue),
			"current_streak":             streak,
			"best_streak":                best,
			"last_study_date":            now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	result := &ApprovalResult{CoinsEarned: activity.CoinValue, CurrentStreak: streak}

	info, err := p.levels.ApplyExperience(userID, activity.XPValue)
	if err != nil {
		log.Printf("Error applying experience for user %d: %v", userID, err)
	} else {
		result.LevelInfo = info
	}

	for _, event := range []EventKind{EventEvidenceApproved, EventCoinsChanged, EventStreakUpdated} {
		unlocked, err := p.achievements.Evaluate(userID, event)
		if err != nil {
			log.Printf("Error evaluating %s achievements for user %d: %v", event, userID, err)
			continue
		}
		result.UnlockedAchievements = append(result.UnlockedAchievements, unlocked...)
	}

	completed, err := p.missions.IncrementAllMatching(userID, nil)
	if err != nil {
		log.Printf("Error advancing missions for user %d: %v", userID, err)
	} else {
		result.CompletedMissions = completed
	}

	return result, nil
}

// RecomputeRankings refreshes every non-guest user's stored ranking position
// from the experience leaderboard and re-evaluates ranking achievements for
// users whose position changed.
func (p *ProgressionService) RecomputeRankings() (int, error) {
	var users []models.User
	if err := p.db.Where("is_guest = ?", false).
		Order("experience DESC, level DESC, id ASC").
		Find(&users).Error; err != nil {
		return 0, err
	}

	changed := 0
	for i, user := range users {
		position := i + 1
		if user.RankingPosition == position {
			continue
		}
		if err := p.db.Model(&models.User{}).Where("id = ?", user.ID).
			Update("ranking_position", position).Error; err != nil {
			log.Printf("Error updating ranking for user %d: %v", user.ID, err)
			continue
		}
		changed++
		if _, err := p.achievements.Evaluate(user.ID, EventRankingUpdated); err != nil {
			log.Printf("Error evaluating ranking achievements for user %d: %v", user.ID, err)
		}
	}

	return changed, nil
}

// nextStreak computes the consecutive-study-days counter: same day keeps it,
// the next day extends it, any gap resets to 1.
func nextStreak(current int, last *time.Time, now time.Time) int {
	if current < 1 {
		return 1
	}
	if last == nil {
		return 1
	}
	today := dayStart(now)
	lastDay := dayStart(*last)
	switch {
	case lastDay.Equal(today):
		return current
	case lastDay.Equal(today.AddDate(0, 0, -1)):
		return current + 1
	default:
		return 1
	}
}
