// models/activity.go - Learning Activity & Evidence Models
package models

import "time"

// Evidence review states.
type EvidenceStatus string

const (
	EvidencePending  EvidenceStatus = "pending"
	EvidenceApproved EvidenceStatus = "approved"
	EvidenceRejected EvidenceStatus = "rejected"
)

// Activity is a learning activity students complete and submit evidence for.
type Activity struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	MathTopic   string `gorm:"index" json:"math_topic"` // aritmetica, geometria, algebra, ...
	Difficulty  string `gorm:"default:'medium';size:20" json:"difficulty"`
	XPValue     int    `gorm:"default:10" json:"xp_value"`
	CoinValue   int    `gorm:"default:5" json:"coin_value"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Evidence is a student's submission for an activity. Approval is the
// raw event that drives achievement evaluation and mission progress.
type Evidence struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	ActivityID uint           `gorm:"not null;index" json:"activity_id"`
	Comment    string         `gorm:"type:text" json:"comment"`
	Status     EvidenceStatus `gorm:"not null;default:'pending';index" json:"status"`
	ReviewedBy *uint          `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time     `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User     User     `gorm:"foreignKey:UserID" json:"-"`
	Activity Activity `gorm:"foreignKey:ActivityID" json:"activity,omitempty"`
}

func (Activity) TableName() string {
	return "activities"
}

func (Evidence) TableName() string {
	return "evidences"
}
