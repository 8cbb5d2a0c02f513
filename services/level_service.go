// services/level_service.go - Experience & Level Progression
package services

import (
	"errors"
	"log"
	"xavilearn/models"

	"gorm.io/gorm"
)

// experienceTable maps level -> cumulative experience required to hold it.
// Index 0 is unused; level 1 requires 0. Monotonically increasing.
var experienceTable = [...]int{
	0,     // padding
	0,     // level 1
	100,   // level 2
	250,   // level 3
	450,   // level 4
	700,   // level 5
	1000,  // level 6
	1400,  // level 7
	1900,  // level 8
	2500,  // level 9
	3200,  // level 10
	4000,  // level 11
	5000,  // level 12
	6200,  // level 13
	7600,  // level 14
	9200,  // level 15
	11000, // level 16
	13000, // level 17
	15500, // level 18
	18500, // level 19
	22000, // level 20
}

// MaxLevel is the highest reachable level.
const MaxLevel = len(experienceTable) - 1

// LevelInfo is the progression snapshot returned to callers.
type LevelInfo struct {
	Level                 int `json:"level"`
	Experience            int `json:"experience"`
	ExperienceToNextLevel int `json:"experience_to_next_level"`
}

// LevelUpHandler receives level-change notifications. Handlers run synchronously
// after the experience write commits; a failing handler is logged and never
// fails the experience update itself.
type LevelUpHandler func(userID uint, newLevel int)

type LevelService struct {
	db       *gorm.DB
	handlers []LevelUpHandler
}

func NewLevelService(db *gorm.DB) *LevelService {
	return &LevelService{db: db}
}

// OnLevelUp registers a handler for level-change notifications. Registration
// happens at wiring time, before any traffic; not safe to call concurrently
// with ApplyExperience.
func (s *LevelService) OnLevelUp(fn LevelUpHandler) {
	s.handlers = append(s.handlers, fn)
}

// ApplyExperience adds earned experience to the user's cumulative total and
// recomputes the level from the fixed table. The level never decreases.
func (s *LevelService) ApplyExperience(userID uint, amount int) (*LevelInfo, error) {
	if amount < 0 {
		return nil, errors.New("experience amount must not be negative")
	}

	var user models.User
	var oldLevel int

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		oldLevel = user.Level
		user.Experience += amount
		user.Level = levelForExperience(user.Experience, user.Level)

		return tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"experience": user.Experience,
			"level":      user.Level,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	if user.Level > oldLevel {
		s.emitLevelUp(user.ID, user.Level)
	}

	return &LevelInfo{
		Level:                 user.Level,
		Experience:            user.Experience,
		ExperienceToNextLevel: experienceToNext(user.Level, user.Experience),
	}, nil
}

// GetLevelInfo is a pure read of the progression table for the user.
func (s *LevelService) GetLevelInfo(userID uint) (*LevelInfo, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &LevelInfo{
		Level:                 user.Level,
		Experience:            user.Experience,
		ExperienceToNextLevel: experienceToNext(user.Level, user.Experience),
	}, nil
}

func (s *LevelService) emitLevelUp(userID uint, newLevel int) {
	for _, fn := range s.handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Level-up handler panicked for user %d: %v", userID, r)
				}
			}()
			fn(userID, newLevel)
		}()
	}
}

// levelForExperience returns the largest level whose cumulative requirement is
// covered by total, scanning upward from the current level.
func levelForExperience(total, current int) int {
	if current < 1 {
		current = 1
	}
	level := current
	for level < MaxLevel && experienceTable[level+1] <= total {
		level++
	}
	return level
}

// experienceToNext returns the remaining experience until the next level,
// or 0 at the table ceiling.
func experienceToNext(level, total int) int {
	if level >= MaxLevel {
		return 0
	}
	remaining := experienceTable[level+1] - total
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// ExperienceForLevel exposes the cumulative requirement for a level, clamped
// to the table bounds.
func ExperienceForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return experienceTable[level]
}
