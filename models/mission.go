// models/mission.go - Mission System Data Models
package models

import "time"

// MissionType groups missions by regeneration window.
type MissionType string

const (
	MissionDaily   MissionType = "DAILY"
	MissionWeekly  MissionType = "WEEKLY"
	MissionSpecial MissionType = "SPECIAL"
	MissionGroup   MissionType = "GROUP"
)

// Mission is a time-boxed definition. The scheduler creates DAILY/WEEKLY
// missions and soft-retires them at EndDate; SPECIAL/GROUP are seeded or
// admin-created. Rows are never deleted while UserMission history references them.
type Mission struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	Type        MissionType `gorm:"not null;index" json:"type"`

	RequiredCount int        `gorm:"not null;default:1" json:"required_count"`
	RewardType    RewardType `gorm:"not null;default:'coins'" json:"reward_type"`
	RewardAmount  int        `gorm:"default:0" json:"reward_amount"`

	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null;index" json:"end_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserMission tracks one user's counter on one mission. Progress only grows.
// Same claim invariants as UserAchievement.
type UserMission struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	UserID    uint `gorm:"not null;index;uniqueIndex:idx_user_mission" json:"user_id"`
	MissionID uint `gorm:"not null;index;uniqueIndex:idx_user_mission" json:"mission_id"`

	Progress      int        `gorm:"default:0" json:"progress"`
	IsCompleted   bool       `gorm:"default:false;index" json:"is_completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	RewardClaimed bool       `gorm:"default:false" json:"reward_claimed"`
	ClaimedAt     *time.Time `json:"claimed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Mission Mission `gorm:"foreignKey:MissionID" json:"mission,omitempty"`
}

func (Mission) TableName() string {
	return "missions"
}

func (UserMission) TableName() string {
	return "user_missions"
}
