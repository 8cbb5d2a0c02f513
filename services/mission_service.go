// services/mission_service.go - Mission Assignment, Progress & Claim
package services

import (
	"errors"
	"log"
	"time"
	"xavilearn/models"

	"gorm.io/gorm"
)

// MissionService owns the Active -> Completed -> Claimed lifecycle for every
// (user, mission) pair. Unlike achievements, mission progress is a monotonic
// counter incremented by events, not a recomputed snapshot.
type MissionService struct {
	db     *gorm.DB
	ledger *RewardLedger
}

func NewMissionService(db *gorm.DB) *MissionService {
	return &MissionService{db: db, ledger: NewRewardLedger(db)}
}

// Assign creates a zeroed progress row for every active, unexpired mission the
// user does not have yet. Idempotent.
func (s *MissionService) Assign(userID uint) (int, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	now := time.Now().UTC()
	var missions []models.Mission
	if err := s.db.Where("is_active = ? AND end_date > ?", true, now).Find(&missions).Error; err != nil {
		return 0, err
	}

	created := 0
	for _, mission := range missions {
		var um models.UserMission
		res := s.db.Where(models.UserMission{UserID: userID, MissionID: mission.ID}).
			FirstOrCreate(&um)
		if res.Error != nil {
			log.Printf("Error assigning mission %d to user %d: %v", mission.ID, userID, res.Error)
			continue
		}
		if res.RowsAffected > 0 {
			created++
		}
	}

	return created, nil
}

// Increment advances the user's counter on a mission by delta. Already
// completed missions are a no-op returning current state. When the counter
// reaches the required count the mission completes and stamps CompletedAt.
func (s *MissionService) Increment(userID, missionID uint, delta int) (*models.UserMission, error) {
	um, _, err := s.increment(userID, missionID, delta)
	return um, err
}

// increment additionally reports whether this call performed the completion
// transition.
func (s *MissionService) increment(userID, missionID uint, delta int) (*models.UserMission, bool, error) {
	if delta < 1 {
		delta = 1
	}

	var mission models.Mission
	if err := s.db.First(&mission, missionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrMissionNotFound
		}
		return nil, false, err
	}
	completedNow := false

	var um models.UserMission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.UserMission{UserID: userID, MissionID: missionID}).
			FirstOrCreate(&um).Error; err != nil {
			return err
		}

		if um.IsCompleted {
			return nil
		}

		// Monotonic bump; the completed guard keeps a concurrent completion
		// from growing the counter afterwards.
		res := tx.Model(&models.UserMission{}).
			Where("id = ? AND is_completed = ?", um.ID, false).
			UpdateColumn("progress", gorm.Expr("progress + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return tx.First(&um, um.ID).Error
		}

		if err := tx.First(&um, um.ID).Error; err != nil {
			return err
		}

		if um.Progress >= mission.RequiredCount {
			now := time.Now().UTC()
			completed := tx.Model(&models.UserMission{}).
				Where("id = ? AND is_completed = ?", um.ID, false).
				Updates(map[string]interface{}{
					"is_completed": true,
					"completed_at": now,
				})
			if completed.Error != nil {
				return completed.Error
			}
			if completed.RowsAffected > 0 {
				um.IsCompleted = true
				um.CompletedAt = &now
				completedNow = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return &um, completedNow, nil
}

// MissionPredicate selects which missions an event should advance.
type MissionPredicate func(models.Mission) bool

// IncrementAllMatching assigns missions if the user has none yet, then bumps
// every active, non-completed mission matching the predicate by one. Returns
// the missions that completed during this call.
func (s *MissionService) IncrementAllMatching(userID uint, match MissionPredicate) ([]models.Mission, error) {
	var assigned int64
	if err := s.db.Model(&models.UserMission{}).Where("user_id = ?", userID).Count(&assigned).Error; err != nil {
		return nil, err
	}
	if assigned == 0 {
		if _, err := s.Assign(userID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	var missions []models.Mission
	if err := s.db.Where("is_active = ? AND end_date > ?", true, now).Find(&missions).Error; err != nil {
		return nil, err
	}

	var completed []models.Mission
	for _, mission := range missions {
		if match != nil && !match(mission) {
			continue
		}
		_, completedNow, err := s.increment(userID, mission.ID, 1)
		if err != nil {
			log.Printf("Error incrementing mission %d for user %d: %v", mission.ID, userID, err)
			continue
		}
		if completedNow {
			completed = append(completed, mission)
		}
	}

	return completed, nil
}

// Claim grants the mission reward, with the same one-grant guarantee as
// achievement claims.
func (s *MissionService) Claim(userID, missionID uint) (*models.UserMission, error) {
	var um models.UserMission

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var mission models.Mission
		if err := tx.First(&mission, missionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMissionNotFound
			}
			return err
		}

		if err := tx.Where("user_id = ? AND mission_id = ?", userID, missionID).
			First(&um).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotClaimable
			}
			return err
		}

		if !um.IsCompleted {
			return ErrNotClaimable
		}
		if um.RewardClaimed {
			return ErrAlreadyClaimed
		}

		now := time.Now().UTC()
		res := tx.Model(&models.UserMission{}).
			Where("id = ? AND reward_claimed = ?", um.ID, false).
			Updates(map[string]interface{}{
				"reward_claimed": true,
				"claimed_at":     now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyClaimed
		}

		if err := s.ledger.Grant(tx, userID, mission.RewardType, mission.RewardAmount); err != nil {
			return err
		}

		um.RewardClaimed = true
		um.ClaimedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &um, nil
}

// ListActive returns the user's progress on currently active, unexpired
// missions, assigning first so new missions show up immediately.
func (s *MissionService) ListActive(userID uint) ([]models.UserMission, error) {
	if _, err := s.Assign(userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var rows []models.UserMission
	err := s.db.Preload("Mission").
		Joins("JOIN missions ON missions.id = user_missions.mission_id").
		Where("user_missions.user_id = ? AND missions.is_active = ? AND missions.end_date > ?", userID, true, now).
		Order("missions.end_date ASC").
		Find(&rows).Error
	return rows, err
}

// History returns every mission the user was ever assigned, newest first.
func (s *MissionService) History(userID uint) ([]models.UserMission, error) {
	var rows []models.UserMission
	err := s.db.Preload("Mission").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
