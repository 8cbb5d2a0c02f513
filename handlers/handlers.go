// handlers/handlers.go - Service Wiring
package handlers

import (
	"log"
	"xavilearn/database"
	"xavilearn/services"
)

var (
	levelService       *services.LevelService
	achievementService *services.AchievementService
	missionService     *services.MissionService
	progressionService *services.ProgressionService
	missionScheduler   *services.MissionScheduler
)

// Init wires the engine services against the shared database connection and
// subscribes achievement evaluation to level-change events. Must run after
// database.InitDB and before any route is served.
func Init(scheduler *services.MissionScheduler) {
	db := database.GetDB()
	if db == nil {
		panic("Database not initialized before handlers.Init")
	}

	levelService = services.NewLevelService(db)
	achievementService = services.NewAchievementService(db)
	missionService = services.NewMissionService(db)
	progressionService = services.NewProgressionService(db, levelService, achievementService, missionService)
	missionScheduler = scheduler

	// Level-ups feed back into achievement evaluation without a direct
	// service-to-service call from inside the level engine.
	levelService.OnLevelUp(func(userID uint, newLevel int) {
		if _, err := achievementService.Evaluate(userID, services.EventLevelChanged); err != nil {
			log.Printf("Error evaluating level achievements for user %d: %v", userID, err)
		}
	})
}
