// handlers/missions.go
package handlers

import (
	"errors"
	"strconv"
	"xavilearn/middleware"
	"xavilearn/services"

	"github.com/gofiber/fiber/v2"
)

type IncrementMissionRequest struct {
	Delta int `json:"delta"`
}

// GetActiveMissions returns the user's progress on currently running missions
func GetActiveMissions(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	rows, err := missionService.ListActive(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch missions"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"missions": rows,
		"total":    len(rows),
	})
}

// GetMissionHistory returns every mission the user was ever assigned
func GetMissionHistory(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	rows, err := missionService.History(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch mission history"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"missions": rows,
		"total":    len(rows),
	})
}

// AssignMissions creates progress rows for active missions the user lacks
func AssignMissions(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	created, err := missionService.Assign(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to assign missions"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"assigned": created,
	})
}

// IncrementMission advances the user's counter on one mission
func IncrementMission(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	missionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid mission ID"})
	}

	var req IncrementMissionRequest
	_ = c.BodyParser(&req) // missing body means delta 1

	um, err := missionService.Increment(userID, uint(missionID), req.Delta)
	if err != nil {
		if errors.Is(err, services.ErrMissionNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Mission not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update mission progress"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"mission": um,
	})
}

// ClaimMission grants the reward for a completed mission
func ClaimMission(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	missionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid mission ID"})
	}

	um, err := missionService.Claim(userID, uint(missionID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissionNotFound):
			return c.Status(404).JSON(fiber.Map{"error": "Mission not found"})
		case errors.Is(err, services.ErrNotClaimable):
			return c.Status(409).JSON(fiber.Map{"error": "Mission not completed yet"})
		case errors.Is(err, services.ErrAlreadyClaimed):
			return c.Status(409).JSON(fiber.Map{"error": "Reward already claimed"})
		default:
			return c.Status(500).JSON(fiber.Map{"error": "Failed to claim reward"})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"mission": um,
	})
}

// RunSchedulerTick triggers one scheduler tick manually (admin maintenance)
func RunSchedulerTick(c *fiber.Ctx) error {
	kind := c.Params("kind")

	if err := missionScheduler.RunTick(kind); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"tick":    kind,
	})
}
