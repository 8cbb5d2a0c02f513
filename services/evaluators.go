// services/evaluators.go - Requirement Evaluators
package services

import (
	"fmt"
	"xavilearn/models"

	"gorm.io/gorm"
)

// EventKind tags the external happening that triggered an evaluation pass.
type EventKind string

const (
	EventEvidenceApproved EventKind = "evidence_approved"
	EventCoinsChanged     EventKind = "coins_changed"
	EventLevelChanged     EventKind = "level_changed"
	EventStreakUpdated    EventKind = "streak_updated"
	EventRankingUpdated   EventKind = "ranking_updated"
	// EventCheckAll rescans every active achievement regardless of trigger.
	EventCheckAll EventKind = "check_all"
)

// requirementsForEvent maps an event to the requirement kinds it can move.
func requirementsForEvent(event EventKind) []models.RequirementType {
	switch event {
	case EventEvidenceApproved:
		return []models.RequirementType{
			models.RequirementActivitiesCompleted,
			models.RequirementPerfectScores,
			models.RequirementMathTopic,
		}
	case EventCoinsChanged:
		return []models.RequirementType{models.RequirementCoinsEarned}
	case EventLevelChanged:
		return []models.RequirementType{models.RequirementLevelReached}
	case EventStreakUpdated:
		return []models.RequirementType{models.RequirementStreakDays}
	case EventRankingUpdated:
		return []models.RequirementType{models.RequirementRankingPosition}
	default:
		return nil
	}
}

// evaluateRequirement computes the current progress value for one achievement.
// Evaluators are read-only; they never mutate state.
func evaluateRequirement(tx *gorm.DB, user *models.User, a *models.Achievement) (int, error) {
	switch a.RequirementType {
	case models.RequirementActivitiesCompleted:
		return countApprovedEvidences(tx, user.ID)

	case models.RequirementLevelReached:
		return user.Level, nil

	case models.RequirementStreakDays:
		return user.CurrentStreak, nil

	case models.RequirementCoinsEarned:
		return user.XaviCoints, nil

	case models.RequirementPerfectScores:
		// No per-evidence scoring signal exists yet; the approved-evidence
		// count stands in until grading lands.
		return countApprovedEvidences(tx, user.ID)

	case models.RequirementMathTopic:
		var count int64
		err := tx.Model(&models.Evidence{}).
			Joins("JOIN activities ON activities.id = evidences.activity_id").
			Where("evidences.user_id = ? AND evidences.status = ? AND activities.math_topic = ?",
				user.ID, models.EvidenceApproved, a.MathTopic).
			Count(&count).Error
		return int(count), err

	case models.RequirementRankingPosition:
		return currentRank(tx, user)

	default:
		return 0, fmt.Errorf("unknown requirement type %q", a.RequirementType)
	}
}

// meetsRequirement applies the comparison policy. ranking_position is the one
// inverted kind: lower rank numbers are better, so it unlocks at progress <=
// target (rank 0 means not ranked yet and never qualifies).
func meetsRequirement(rt models.RequirementType, progress, target int) bool {
	if rt == models.RequirementRankingPosition {
		return progress >= 1 && progress <= target
	}
	return progress >= target
}

func countApprovedEvidences(tx *gorm.DB, userID uint) (int, error) {
	var count int64
	err := tx.Model(&models.Evidence{}).
		Where("user_id = ? AND status = ?", userID, models.EvidenceApproved).
		Count(&count).Error
	return int(count), err
}

// currentRank computes the user's live leaderboard position by experience,
// ties broken by level. Guests are not on the leaderboard and report rank 0.
func currentRank(tx *gorm.DB, user *models.User) (int, error) {
	if user.IsGuest {
		return 0, nil
	}

	var ahead int64
	err := tx.Model(&models.User{}).
		Where("is_guest = ? AND (experience > ? OR (experience = ? AND level > ?))",
			false, user.Experience, user.Experience, user.Level).
		Count(&ahead).Error
	if err != nil {
		return 0, err
	}
	return int(ahead) + 1, nil
}
