// handlers/progression.go
package handlers

import (
	"errors"
	"xavilearn/database"
	"xavilearn/middleware"
	"xavilearn/models"
	"xavilearn/services"

	"github.com/gofiber/fiber/v2"
)

type AwardXPRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

// AwardXP adds experience to the authenticated user and reports level changes
func AwardXP(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req AwardXPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Amount <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "XP amount must be positive"})
	}

	info, err := levelService.ApplyExperience(userID, req.Amount)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to apply experience"})
	}

	return c.JSON(fiber.Map{
		"success":                  true,
		"xp_awarded":               req.Amount,
		"level":                    info.Level,
		"experience":               info.Experience,
		"experience_to_next_level": info.ExperienceToNextLevel,
		"reason":                   req.Reason,
	})
}

// GetProgression returns the user's level info and evaluator-visible stats
func GetProgression(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	info, err := levelService.GetLevelInfo(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to compute level info"})
	}

	return c.JSON(fiber.Map{
		"success":                    true,
		"level":                      info.Level,
		"experience":                 info.Experience,
		"experience_to_next_level":   info.ExperienceToNextLevel,
		"xavicoints":                 user.XaviCoints,
		"current_streak":             user.CurrentStreak,
		"best_streak":                user.BestStreak,
		"total_activities_completed": user.TotalActivitiesCompleted,
		"perfect_scores":             user.PerfectScores,
		"ranking_position":           user.RankingPosition,
		"badges_earned":              user.BadgesEarned,
	})
}
