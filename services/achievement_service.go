// services/achievement_service.go - Achievement Unlock & Claim State Machine
package services

import (
	"errors"
	"log"
	"time"
	"xavilearn/models"

	"gorm.io/gorm"
)

// AchievementService owns the Locked -> Unlocked -> Claimed lifecycle for every
// (user, achievement) pair. Unlock happens exactly once when the requirement
// first holds; the reward is granted exactly once on claim.
type AchievementService struct {
	db     *gorm.DB
	ledger *RewardLedger
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{db: db, ledger: NewRewardLedger(db)}
}

// RecomputeResult aggregates a reconciliation pass.
type RecomputeResult struct {
	Updated  int `json:"updated"`
	Unlocked int `json:"unlocked"`
	Errors   int `json:"errors"`
}

// Evaluate recomputes progress for every active achievement the event can move
// and unlocks the ones whose requirement now holds. A failing achievement is
// logged and skipped; the rest of the batch still runs. Returns the
// achievements that newly unlocked in this call.
func (s *AchievementService) Evaluate(userID uint, event EventKind) ([]models.Achievement, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	query := s.db.Where("is_active = ?", true)
	if event != EventCheckAll {
		kinds := requirementsForEvent(event)
		if len(kinds) == 0 {
			return nil, nil
		}
		query = query.Where("requirement_type IN ?", kinds)
	}

	var achievements []models.Achievement
	if err := query.Find(&achievements).Error; err != nil {
		return nil, err
	}

	var unlocked []models.Achievement
	for _, achievement := range achievements {
		wasUnlocked, err := s.evaluateOne(&user, &achievement, false)
		if err != nil {
			log.Printf("Error evaluating achievement %d for user %d: %v", achievement.ID, userID, err)
			continue
		}
		if wasUnlocked {
			unlocked = append(unlocked, achievement)
		}
	}

	return unlocked, nil
}

// Claim grants the achievement's reward. The claim flag flip and the grant run
// in one transaction, with the flag as a guarded update so a concurrent claim
// for the same pair yields exactly one grant and one ErrAlreadyClaimed.
func (s *AchievementService) Claim(userID, achievementID uint) (*models.UserAchievement, error) {
	var ua models.UserAchievement

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var achievement models.Achievement
		if err := tx.First(&achievement, achievementID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAchievementNotFound
			}
			return err
		}

		if err := tx.Where("user_id = ? AND achievement_id = ?", userID, achievementID).
			First(&ua).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotClaimable
			}
			return err
		}

		if !ua.IsUnlocked {
			return ErrNotClaimable
		}
		if ua.RewardClaimed {
			return ErrAlreadyClaimed
		}

		now := time.Now().UTC()
		res := tx.Model(&models.UserAchievement{}).
			Where("id = ? AND reward_claimed = ?", ua.ID, false).
			Updates(map[string]interface{}{
				"reward_claimed": true,
				"claimed_at":     now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race to another claim.
			return ErrAlreadyClaimed
		}

		if err := s.ledger.Grant(tx, userID, achievement.RewardType, achievement.RewardValue); err != nil {
			return err
		}

		ua.RewardClaimed = true
		ua.ClaimedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ua, nil
}

// AssignAll ensures every active achievement has a progress row for the user,
// creating missing rows with progress computed from current stats and unlocking
// the ones whose threshold already holds. Existing unlocked rows are left
// untouched; calling it repeatedly creates no duplicates.
func (s *AchievementService) AssignAll(userID uint) (RecomputeResult, error) {
	return s.recomputeAll(userID, false)
}

// ForceRecomputeAll refreshes progress on every row, unlocked ones included.
// Used for reconciliation after manual data fixes.
func (s *AchievementService) ForceRecomputeAll(userID uint) (RecomputeResult, error) {
	return s.recomputeAll(userID, true)
}

func (s *AchievementService) recomputeAll(userID uint, refreshUnlocked bool) (RecomputeResult, error) {
	var result RecomputeResult

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result, ErrUserNotFound
		}
		return result, err
	}

	var achievements []models.Achievement
	if err := s.db.Where("is_active = ?", true).Find(&achievements).Error; err != nil {
		return result, err
	}

	for _, achievement := range achievements {
		wasUnlocked, err := s.evaluateOne(&user, &achievement, refreshUnlocked)
		if err != nil {
			log.Printf("Error recomputing achievement %d for user %d: %v", achievement.ID, userID, err)
			result.Errors++
			continue
		}
		result.Updated++
		if wasUnlocked {
			result.Unlocked++
		}
	}

	return result, nil
}

// evaluateOne fetches or creates the progress row, recomputes progress, and
// applies the unlock transition if the requirement holds. Returns whether the
// achievement newly unlocked. Already-unlocked rows are skipped unless
// refreshUnlocked is set, and the unlock flag is never reset either way.
func (s *AchievementService) evaluateOne(user *models.User, achievement *models.Achievement, refreshUnlocked bool) (bool, error) {
	var ua models.UserAchievement
	err := s.db.Where(models.UserAchievement{UserID: user.ID, AchievementID: achievement.ID}).
		FirstOrCreate(&ua).Error
	if err != nil {
		return false, err
	}

	if ua.IsUnlocked && !refreshUnlocked {
		return false, nil
	}

	progress, err := evaluateRequirement(s.db, user, achievement)
	if err != nil {
		return false, err
	}

	if ua.IsUnlocked {
		// Reconciliation refresh: progress only, claim state untouched.
		return false, s.db.Model(&models.UserAchievement{}).
			Where("id = ?", ua.ID).
			Update("progress", progress).Error
	}

	if !meetsRequirement(achievement.RequirementType, progress, achievement.RequirementValue) {
		return false, s.db.Model(&models.UserAchievement{}).
			Where("id = ?", ua.ID).
			Update("progress", progress).Error
	}

	// Guarded transition: only one concurrent evaluator gets to stamp the unlock.
	now := time.Now().UTC()
	res := s.db.Model(&models.UserAchievement{}).
		Where("id = ? AND is_unlocked = ?", ua.ID, false).
		Updates(map[string]interface{}{
			"progress":    progress,
			"is_unlocked": true,
			"unlocked_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListUserAchievements returns the user's progress rows with definitions,
// newest unlocks first.
func (s *AchievementService) ListUserAchievements(userID uint) ([]models.UserAchievement, error) {
	var rows []models.UserAchievement
	err := s.db.Preload("Achievement").
		Where("user_id = ?", userID).
		Order("is_unlocked DESC, unlocked_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListDefinitions returns the active achievement catalog.
func (s *AchievementService) ListDefinitions() ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := s.db.Where("is_active = ?", true).Order("category, requirement_value").Find(&achievements).Error
	return achievements, err
}
