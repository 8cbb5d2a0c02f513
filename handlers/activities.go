// handlers/activities.go
package handlers

import (
	"xavilearn/database"
	"xavilearn/models"

	"github.com/gofiber/fiber/v2"
)

type CreateActivityRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MathTopic   string `json:"math_topic"`
	Difficulty  string `json:"difficulty"`
	XPValue     int    `json:"xp_value"`
	CoinValue   int    `json:"coin_value"`
}

// GetActivities returns the active activity catalog
func GetActivities(c *fiber.Ctx) error {
	db := database.GetDB()

	var activities []models.Activity
	query := db.Where("is_active = ?", true)
	if topic := c.Query("math_topic"); topic != "" {
		query = query.Where("math_topic = ?", topic)
	}
	if err := query.Order("created_at DESC").Find(&activities).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch activities"})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"activities": activities,
		"total":      len(activities),
	})
}

// CreateActivity adds a new activity to the catalog (admin)
func CreateActivity(c *fiber.Ctx) error {
	var req CreateActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Title == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Title is required"})
	}
	if req.XPValue <= 0 {
		req.XPValue = 10
	}
	if req.CoinValue <= 0 {
		req.CoinValue = 5
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}

	activity := models.Activity{
		Title:       req.Title,
		Description: req.Description,
		MathTopic:   req.MathTopic,
		Difficulty:  req.Difficulty,
		XPValue:     req.XPValue,
		CoinValue:   req.CoinValue,
		IsActive:    true,
	}

	db := database.GetDB()
	if err := db.Create(&activity).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create activity"})
	}

	return c.Status(201).JSON(fiber.Map{
		"success":  true,
		"activity": activity,
	})
}
