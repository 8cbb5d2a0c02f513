// database/seed.go - Default Catalog Seeding
package database

import (
	"log"
	"time"
	"xavilearn/models"
)

// SeedDefaults inserts the default achievement catalog and the launch special
// mission. Inserts are keyed by name so re-running is a no-op.
func SeedDefaults() {
	db := GetDB()

	achievements := []models.Achievement{
		{Name: "Primeros Pasos", Description: "Completa tu primera actividad", Category: "Progress", Icon: "🏁",
			RequirementType: models.RequirementActivitiesCompleted, RequirementValue: 1,
			RewardType: models.RewardCoins, RewardValue: 10, IsActive: true},
		{Name: "Estudiante Dedicado", Description: "Completa 5 actividades", Category: "Progress", Icon: "📚",
			RequirementType: models.RequirementActivitiesCompleted, RequirementValue: 5,
			RewardType: models.RewardCoins, RewardValue: 25, IsActive: true},
		{Name: "Imparable", Description: "Completa 25 actividades", Category: "Progress", Icon: "🚀",
			RequirementType: models.RequirementActivitiesCompleted, RequirementValue: 25,
			RewardType: models.RewardCoins, RewardValue: 100, IsActive: true},
		{Name: "Centuria", Description: "Completa 100 actividades", Category: "Progress", Icon: "💯",
			RequirementType: models.RequirementActivitiesCompleted, RequirementValue: 100,
			RewardType: models.RewardBadge, RewardValue: 1, IsActive: true},
		{Name: "Nivel 5", Description: "Alcanza el nivel 5", Category: "Progress", Icon: "⭐",
			RequirementType: models.RequirementLevelReached, RequirementValue: 5,
			RewardType: models.RewardCoins, RewardValue: 50, IsActive: true},
		{Name: "Nivel 10", Description: "Alcanza el nivel 10", Category: "Progress", Icon: "🌟",
			RequirementType: models.RequirementLevelReached, RequirementValue: 10,
			RewardType: models.RewardCoins, RewardValue: 150, IsActive: true},
		{Name: "Racha de 3", Description: "Estudia 3 días seguidos", Category: "Streak", Icon: "🔥",
			RequirementType: models.RequirementStreakDays, RequirementValue: 3,
			RewardType: models.RewardCoins, RewardValue: 15, IsActive: true},
		{Name: "Racha de 7", Description: "Estudia 7 días seguidos", Category: "Streak", Icon: "🔥",
			RequirementType: models.RequirementStreakDays, RequirementValue: 7,
			RewardType: models.RewardCoins, RewardValue: 50, IsActive: true},
		{Name: "Racha de 30", Description: "Estudia 30 días seguidos", Category: "Streak", Icon: "🌋",
			RequirementType: models.RequirementStreakDays, RequirementValue: 30,
			RewardType: models.RewardBadge, RewardValue: 1, IsActive: true},
		{Name: "Ahorrador", Description: "Acumula 100 XaviCoints", Category: "Special", Icon: "🪙",
			RequirementType: models.RequirementCoinsEarned, RequirementValue: 100,
			RewardType: models.RewardCoins, RewardValue: 20, IsActive: true},
		{Name: "Puntaje Perfecto", Description: "Obtén 10 puntajes perfectos", Category: "Mastery", Icon: "🎯",
			RequirementType: models.RequirementPerfectScores, RequirementValue: 10,
			RewardType: models.RewardCoins, RewardValue: 75, IsActive: true},
		{Name: "As de la Aritmética", Description: "Completa 10 actividades de aritmética", Category: "Mastery", Icon: "➗",
			RequirementType: models.RequirementMathTopic, RequirementValue: 10, MathTopic: "aritmetica",
			RewardType: models.RewardCoins, RewardValue: 60, IsActive: true},
		{Name: "Genio de la Geometría", Description: "Completa 10 actividades de geometría", Category: "Mastery", Icon: "📐",
			RequirementType: models.RequirementMathTopic, RequirementValue: 10, MathTopic: "geometria",
			RewardType: models.RewardCoins, RewardValue: 60, IsActive: true},
		{Name: "Podio", Description: "Entra al top 3 del ranking", Category: "Ranking", Icon: "🏆",
			RequirementType: models.RequirementRankingPosition, RequirementValue: 3,
			RewardType: models.RewardCoins, RewardValue: 200, IsActive: true},
		{Name: "Top 10", Description: "Entra al top 10 del ranking", Category: "Ranking", Icon: "🥇",
			RequirementType: models.RequirementRankingPosition, RequirementValue: 10,
			RewardType: models.RewardCoins, RewardValue: 80, IsActive: true},
	}

	seeded := 0
	for _, a := range achievements {
		var count int64
		db.Model(&models.Achievement{}).Where("name = ?", a.Name).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&a).Error; err != nil {
			log.Printf("Error seeding achievement %q: %v", a.Name, err)
			continue
		}
		seeded++
	}

	// Launch special mission, one month window from first boot
	var specials int64
	db.Model(&models.Mission{}).Where("type = ?", models.MissionSpecial).Count(&specials)
	if specials == 0 {
		now := time.Now().UTC()
		special := models.Mission{
			Title:         "Misión de Lanzamiento",
			Description:   "Completa 15 actividades durante el primer mes",
			Type:          models.MissionSpecial,
			RequiredCount: 15,
			RewardType:    models.RewardCoins,
			RewardAmount:  100,
			IsActive:      true,
			StartDate:     now,
			EndDate:       now.AddDate(0, 1, 0),
		}
		if err := db.Create(&special).Error; err != nil {
			log.Printf("Error seeding special mission: %v", err)
		}
	}

	if seeded > 0 {
		log.Printf("✅ Seeded %d achievements", seeded)
	}
}
