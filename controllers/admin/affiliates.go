package admin

import (
	"betaffiliate/database"
	"betaffiliate/helpers"
	"betaffiliate/models"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type AffiliateRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64,slug"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
}

func CreateAffiliate(c *fiber.Ctx) error {
	var req AffiliateRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if err := validate.Struct(&req); err != nil {
		return helpers.JSONFailure(c, fiber.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	}

	username := strings.TrimSpace(req.Username)

	var existing models.Affiliate
	if err := database.DB.Where("username = ?", username).First(&existing).Error; err == nil {
		return helpers.JSONFailure(c, fiber.StatusConflict, "AFFILIATE_ALREADY_EXISTS", "username already in use")
	}

	affiliate := models.Affiliate{
		Username: username,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		IsActive: true,
	}
	if err := database.DB.Create(&affiliate).Error; err != nil {
		log.Error().Err(err).Str("username", username).Msg("failed to create affiliate")
		return helpers.JSONFailure(c, fiber.StatusInternalServerError, "FAILED_TO_CREATE_AFFILIATE", "could not create affiliate")
	}

	return helpers.JSONCreated(c, "Affiliate created successfully", affiliate)
}

func ListAffiliates(c *fiber.Ctx) error {
	page, limit := helpers.Pagination(c, 50, 200)

	q := database.DB.Model(&models.Affiliate{})
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("username LIKE ?", "%"+s+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helpers.JSONFailure(c, fiber.StatusInternalServerError, "FAILED_TO_LIST_AFFILIATES", "could not list affiliates")
	}

	var affiliates []models.Affiliate
	if err := q.Order("username").Offset((page - 1) * limit).Limit(limit).Find(&affiliates).Error; err != nil {
		return helpers.JSONFailure(c, fiber.StatusInternalServerError, "FAILED_TO_LIST_AFFILIATES", "could not list affiliates")
	}

	return helpers.JSONSuccess(c, "Affiliates retrieved successfully", fiber.Map{
		"items": affiliates,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}
