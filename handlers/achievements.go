// handlers/achievements.go
package handlers

import (
	"errors"
	"strconv"
	"xavilearn/middleware"
	"xavilearn/services"

	"github.com/gofiber/fiber/v2"
)

// GetAchievementDefinitions returns the active achievement catalog
func GetAchievementDefinitions(c *fiber.Ctx) error {
	achievements, err := achievementService.ListDefinitions()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch achievements"})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": achievements,
		"total":        len(achievements),
	})
}

// GetUserAchievements returns the user's progress on every assigned achievement
func GetUserAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	rows, err := achievementService.ListUserAchievements(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch achievements"})
	}

	unlocked := 0
	for _, row := range rows {
		if row.IsUnlocked {
			unlocked++
		}
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": rows,
		"total":        len(rows),
		"unlocked":     unlocked,
	})
}

// ClaimAchievement grants the reward for an unlocked achievement
func ClaimAchievement(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	achievementID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid achievement ID"})
	}

	ua, err := achievementService.Claim(userID, uint(achievementID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAchievementNotFound):
			return c.Status(404).JSON(fiber.Map{"error": "Achievement not found"})
		case errors.Is(err, services.ErrNotClaimable):
			return c.Status(409).JSON(fiber.Map{"error": "Achievement not unlocked yet"})
		case errors.Is(err, services.ErrAlreadyClaimed):
			return c.Status(409).JSON(fiber.Map{"error": "Reward already claimed"})
		default:
			return c.Status(500).JSON(fiber.Map{"error": "Failed to claim reward"})
		}
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"achievement": ua,
	})
}

// AssignAchievements backfills progress rows for every active achievement
func AssignAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := achievementService.AssignAll(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to assign achievements"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"result":  result,
	})
}

// CheckAchievements runs a full rescan of the user's achievements
func CheckAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	unlocked, err := achievementService.Evaluate(userID, services.EventCheckAll)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to evaluate achievements"})
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"new_achievements": unlocked,
	})
}

// RecomputeAchievements is the admin reconciliation endpoint for one user
func RecomputeAchievements(c *fiber.Ctx) error {
	targetID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	result, err := achievementService.ForceRecomputeAll(uint(targetID))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to recompute achievements"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"result":  result,
	})
}
