// handlers/evidence.go
package handlers

import (
	"errors"
	"strconv"
	"time"
	"xavilearn/database"
	"xavilearn/middleware"
	"xavilearn/models"
	"xavilearn/services"

	"github.com/gofiber/fiber/v2"
)

type SubmitEvidenceRequest struct {
	ActivityID uint   `json:"activity_id"`
	Comment    string `json:"comment"`
}

// SubmitEvidence records a student's submission for an activity
func SubmitEvidence(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	// Evidence goes to a teacher for review; throwaway guest accounts don't
	// get to queue review work.
	if middleware.IsGuest(c) {
		return c.Status(403).JSON(fiber.Map{"error": "Guest accounts cannot submit evidence. Register to continue."})
	}

	var req SubmitEvidenceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	db := database.GetDB()
	var activity models.Activity
	if err := db.First(&activity, req.ActivityID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Activity not found"})
	}
	if !activity.IsActive {
		return c.Status(400).JSON(fiber.Map{"error": "Activity is not active"})
	}

	evidence := models.Evidence{
		UserID:     userID,
		ActivityID: req.ActivityID,
		Comment:    req.Comment,
		Status:     models.EvidencePending,
	}

	if err := db.Create(&evidence).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to submit evidence"})
	}

	return c.Status(201).JSON(fiber.Map{
		"success":  true,
		"evidence": evidence,
	})
}

// ListEvidences returns the authenticated user's submissions
func ListEvidences(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()
	var evidences []models.Evidence
	if err := db.Preload("Activity").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&evidences).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch evidences"})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"evidences": evidences,
		"total":     len(evidences),
	})
}

// ApproveEvidence marks a submission approved and fans the event out to the
// progression engine: counters, streak, coins, XP, achievements, missions.
func ApproveEvidence(c *fiber.Ctx) error {
	reviewerID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	evidenceID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid evidence ID"})
	}

	db := database.GetDB()
	var evidence models.Evidence
	if err := db.Preload("Activity").First(&evidence, evidenceID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Evidence not found"})
	}

	if evidence.Status == models.EvidenceApproved {
		return c.Status(409).JSON(fiber.Map{"error": "Evidence already approved"})
	}

	now := time.Now().UTC()
	res := db.Model(&models.Evidence{}).
		Where("id = ? AND status <> ?", evidence.ID, models.EvidenceApproved).
		Updates(map[string]interface{}{
			"status":      models.EvidenceApproved,
			"reviewed_by": reviewerID,
			"reviewed_at": now,
		})
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to approve evidence"})
	}
	if res.RowsAffected == 0 {
		return c.Status(409).JSON(fiber.Map{"error": "Evidence already approved"})
	}

	result, err := progressionService.HandleEvidenceApproved(evidence.UserID, &evidence.Activity)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Evidence approved but progression update failed"})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"evidence_id": evidence.ID,
		"progression": result,
	})
}

// RejectEvidence marks a submission rejected without touching progression
func RejectEvidence(c *fiber.Ctx) error {
	reviewerID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	evidenceID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid evidence ID"})
	}

	db := database.GetDB()
	now := time.Now().UTC()
	res := db.Model(&models.Evidence{}).
		Where("id = ? AND status = ?", evidenceID, models.EvidencePending).
		Updates(map[string]interface{}{
			"status":      models.EvidenceRejected,
			"reviewed_by": reviewerID,
			"reviewed_at": now,
		})
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to reject evidence"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "No pending evidence with that ID"})
	}

	return c.JSON(fiber.Map{"success": true})
}
