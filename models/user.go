// models/user.go
package models

import (
	"time"
)

type User struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Username    string  `gorm:"uniqueIndex;not null" json:"username"`
	Email       *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Password    string  `gorm:"not null" json:"-"`
	DisplayName string  `json:"display_name"`
	Avatar      string  `json:"avatar"`
	IsGuest     bool    `gorm:"default:false" json:"is_guest"`
	IsAdmin     bool    `gorm:"default:false" json:"is_admin"`
	IsBanned    bool    `gorm:"default:false" json:"is_banned"`

	// Progression
	Level      int `gorm:"default:1" json:"level"`
	Experience int `gorm:"default:0" json:"experience"`
	XaviCoints int `gorm:"default:0" json:"xavicoints"`

	// Stats consumed by the achievement/mission evaluators
	CurrentStreak            int `gorm:"default:0" json:"current_streak"`
	BestStreak               int `gorm:"default:0" json:"best_streak"`
	TotalActivitiesCompleted int `gorm:"default:0" json:"total_activities_completed"`
	PerfectScores            int `gorm:"default:0" json:"perfect_scores"`
	RankingPosition          int `gorm:"default:0" json:"ranking_position"` // 0 = not ranked yet
	BadgesEarned             int `gorm:"default:0" json:"badges_earned"`

	LastStudyDate *time.Time `json:"last_study_date,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastLogin time.Time `json:"last_login"`

	// Relationships
	Achievements []UserAchievement `gorm:"foreignKey:UserID" json:"achievements,omitempty"`
	Missions     []UserMission     `gorm:"foreignKey:UserID" json:"missions,omitempty"`
	Evidences    []Evidence        `gorm:"foreignKey:UserID" json:"evidences,omitempty"`
}

func (User) TableName() string {
	return "users"
}
