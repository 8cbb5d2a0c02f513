// handlers/leaderboard.go
package handlers

import (
	"strconv"
	"xavilearn/database"
	"xavilearn/models"

	"github.com/gofiber/fiber/v2"
)

// GetLeaderboard returns the global experience leaderboard
// GET /api/leaderboard?limit=100&offset=0
func GetLeaderboard(c *fiber.Ctx) error {
	limit := clampInt(queryInt(c, "limit", 100), 1, 100)
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	db := database.GetDB()
	var users []models.User

	if err := db.Where("is_guest = ?", false).
		Order("experience DESC, level DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch leaderboard"})
	}

	// Remove sensitive data
	for i := range users {
		users[i].Password = ""
		users[i].Email = nil
	}

	var total int64
	db.Model(&models.User{}).Where("is_guest = ?", false).Count(&total)

	return c.JSON(fiber.Map{
		"success": true,
		"users":   users,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// RecomputeRankings refreshes stored ranking positions and re-evaluates
// ranking achievements (admin maintenance)
func RecomputeRankings(c *fiber.Ctx) error {
	changed, err := progressionService.RecomputeRankings()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to recompute rankings"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"changed": changed,
	})
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
