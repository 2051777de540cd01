package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/conradkoh/goals-sub001/internal/database"
	"github.com/conradkoh/goals-sub001/internal/middleware"
	"github.com/conradkoh/goals-sub001/internal/models"
)

func GetDomains(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var domains []models.Domain
	database.DB.Where("user_id = ?", userID).Order("created_at ASC").Find(&domains)
	return c.JSON(domains)
}

func CreateDomain(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.UpsertDomainRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	domain := models.Domain{UserID: userID, Name: req.Name, Color: req.Color}
	if err := database.DB.Create(&domain).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create domain",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(domain)
}

func UpdateDomain(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	domainID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid domain ID",
		})
	}

	var domain models.Domain
	if err := database.DB.First(&domain, "id = ?", domainID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Domain not found",
		})
	}
	if domain.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Domain not found",
		})
	}

	var req models.UpsertDomainRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Name != "" {
		domain.Name = req.Name
	}
	if req.Color != nil {
		domain.Color = req.Color
	}
	if err := database.DB.Save(&domain).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update domain",
		})
	}
	return c.JSON(domain)
}

func DeleteDomain(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	domainID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid domain ID",
		})
	}

	var domain models.Domain
	if err := database.DB.First(&domain, "id = ?", domainID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Domain not found",
		})
	}
	if domain.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Domain not found",
		})
	}

	// Adhoc goals keep existing; they just lose the association.
	database.DB.Model(&models.Goal{}).
		Where("user_id = ? AND domain_id = ?", userID, domainID).
		Update("domain_id", nil)

	if err := database.DB.Delete(&domain).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete domain",
		})
	}
	return c.JSON(fiber.Map{"deletedDomainId": domainID})
}
