// models/achievement.go - Achievement System Data Models
package models

import "time"

// RequirementType selects which evaluator computes an achievement's progress.
// Fixed enumeration; extending it means adding a new evaluator case.
type RequirementType string

const (
	RequirementActivitiesCompleted RequirementType = "activities_completed"
	RequirementLevelReached        RequirementType = "level_reached"
	RequirementStreakDays          RequirementType = "streak_days"
	RequirementCoinsEarned         RequirementType = "coins_earned"
	RequirementPerfectScores       RequirementType = "perfect_scores"
	RequirementMathTopic           RequirementType = "math_topic"
	RequirementRankingPosition     RequirementType = "ranking_position"
)

// RewardType identifies what a claim grants.
type RewardType string

const (
	RewardCoins RewardType = "coins"
	RewardBadge RewardType = "badge"
	RewardItem  RewardType = "item"
)

// Achievement is an immutable definition. Runtime progress lives in UserAchievement.
type Achievement struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null;uniqueIndex" json:"name"`
	Description string `gorm:"not null" json:"description"`
	Category    string `gorm:"not null;index" json:"category"` // Progress, Streak, Mastery, Ranking, Special
	Icon        string `json:"icon"`

	RequirementType  RequirementType `gorm:"not null;index" json:"requirement_type"`
	RequirementValue int             `gorm:"not null" json:"requirement_value"`
	MathTopic        string          `json:"math_topic,omitempty"` // only for math_topic requirements

	RewardType  RewardType `gorm:"not null;default:'coins'" json:"reward_type"`
	RewardValue int        `gorm:"default:0" json:"reward_value"`

	IsActive bool `gorm:"default:true;index" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserAchievement tracks one user's progress on one achievement.
// Created lazily on first evaluation or bulk-assignment, never deleted.
// Invariants: RewardClaimed implies IsUnlocked; IsUnlocked is never reset.
type UserAchievement struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	UserID        uint `gorm:"not null;index;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID uint `gorm:"not null;index;uniqueIndex:idx_user_achievement" json:"achievement_id"`

	Progress      int        `gorm:"default:0" json:"progress"`
	IsUnlocked    bool       `gorm:"default:false;index" json:"is_unlocked"`
	UnlockedAt    *time.Time `json:"unlocked_at,omitempty"`
	RewardClaimed bool       `gorm:"default:false" json:"reward_claimed"`
	ClaimedAt     *time.Time `json:"claimed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User        User        `gorm:"foreignKey:UserID" json:"-"`
	Achievement Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}

func (Achievement) TableName() string {
	return "achievements"
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
