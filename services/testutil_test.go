package services

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"xavilearn/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens an isolated in-memory database for one test.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Activity{},
		&models.Evidence{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Mission{},
		&models.UserMission{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{Username: username, Level: 1}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func createAchievement(t *testing.T, db *gorm.DB, rt models.RequirementType, value int, rewardValue int) *models.Achievement {
	t.Helper()

	a := &models.Achievement{
		Name:             fmt.Sprintf("%s %d (%s)", rt, value, t.Name()),
		Description:      "test achievement",
		Category:         "Test",
		RequirementType:  rt,
		RequirementValue: value,
		RewardType:       models.RewardCoins,
		RewardValue:      rewardValue,
		IsActive:         true,
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("failed to create achievement: %v", err)
	}
	return a
}

func createMission(t *testing.T, db *gorm.DB, mt models.MissionType, required, reward int) *models.Mission {
	t.Helper()

	now := time.Now().UTC()
	m := &models.Mission{
		Title:         fmt.Sprintf("%s mission (%s)", mt, t.Name()),
		Type:          mt,
		RequiredCount: required,
		RewardType:    models.RewardCoins,
		RewardAmount:  reward,
		IsActive:      true,
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(24 * time.Hour),
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to create mission: %v", err)
	}
	return m
}

// approveEvidences creates count approved evidences for the user on a fresh
// activity with the given math topic.
func approveEvidences(t *testing.T, db *gorm.DB, userID uint, topic string, count int) {
	t.Helper()

	activity := &models.Activity{Title: "test activity", MathTopic: topic, XPValue: 10, CoinValue: 5, IsActive: true}
	if err := db.Create(activity).Error; err != nil {
		t.Fatalf("failed to create activity: %v", err)
	}

	for i := 0; i < count; i++ {
		evidence := &models.Evidence{
			UserID:     userID,
			ActivityID: activity.ID,
			Status:     models.EvidenceApproved,
		}
		if err := db.Create(evidence).Error; err != nil {
			t.Fatalf("failed to create evidence: %v", err)
		}
	}
}

func coinsOf(t *testing.T, db *gorm.DB, userID uint) int {
	t.Helper()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		t.Fatalf("failed to reload user %d: %v", userID, err)
	}
	return user.XaviCoints
}
