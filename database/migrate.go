// database/migrate.go - Database Migration Runner
package database

import (
	"log"
	"xavilearn/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Activity{},
		&models.Evidence{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Mission{},
		&models.UserMission{},
	); err != nil {
		log.Fatalf("❌ Failed to run core migrations: %v", err)
	}

	log.Println("✅ Core migrations completed")

	createCoreIndexes()
	SeedDefaults()

	log.Println("✅ All migrations completed successfully")
}

// createCoreIndexes creates indexes for core tables
func createCoreIndexes() {
	db := GetDB()
	log.Println("Creating core indexes...")

	// User indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_level ON users(level DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_experience ON users(experience DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_guest ON users(is_guest)")

	// Evidence indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_evidences_user ON evidences(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_evidences_status ON evidences(status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_evidences_user_status ON evidences(user_id, status)")

	// Achievement indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_achievements_requirement ON achievements(requirement_type)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_user_achievements_user ON user_achievements(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_user_achievements_achievement ON user_achievements(achievement_id)")

	// Mission indexes. The unique window index is what makes concurrent
	// scheduler instances safe: at most one DAILY/WEEKLY definition per window.
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_missions_type_window ON missions(type, start_date) WHERE type IN ('DAILY','WEEKLY')")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_missions_type_active ON missions(type, is_active)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_missions_end_date ON missions(end_date)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_user_missions_user ON user_missions(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_user_missions_mission ON user_missions(mission_id)")

	log.Println("✅ Core indexes created successfully")
}
