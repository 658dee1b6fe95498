package admin

import (
	"betaffiliate/database"
	"betaffiliate/helpers"
	"betaffiliate/models"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type LinkRequest struct {
	AffiliateID uint `json:"affiliate_id" validate:"required"`
	HouseID     uint `json:"house_id" validate:"required"`
}

// CreateLink returns the affiliate's active link for the house, creating it
// when there is none. At most one active link exists per pair.
func CreateLink(baseURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LinkRequest
		if err := c.BodyParser(&req); err != nil {
			return helpers.JSONError(c, "INVALID_JSON")
		}
		if err := validate.Struct(&req); err != nil {
			return helpers.JSONFailure(c, fiber.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		}

		var affiliate models.Affiliate
		if err := database.DB.Where("id = ? AND is_active = ?", req.AffiliateID, true).First(&affiliate).Error; err != nil {
			return helpers.JSONFailure(c, fiber.StatusNotFound, "AFFILIATE_NOT_FOUND", "affiliate not found or inactive")
		}
		var house models.BettingHouse
		if err := database.DB.Where("id = ? AND is_active = ?", req.HouseID, true).First(&house).Error; err != nil {
			return helpers.JSONFailure(c, fiber.StatusNotFound, "HOUSE_NOT_FOUND", "house not found or inactive")
		}

		var link models.AffiliateLink
		created := false
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			err := tx.Where("affiliate_id = ? AND house_id = ? AND is_active = ?", affiliate.ID, house.ID, true).
				First(&link).Error
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			code := helpers.GenerateLinkCode()
			link = models.AffiliateLink{
				AffiliateID:  affiliate.ID,
				HouseID:      house.ID,
				Code:         code,
				GeneratedURL: helpers.BuildTrackingURL(baseURL, code, affiliate.Username, house.Slug),
				IsActive:     true,
			}
			created = true
			return tx.Create(&link).Error
		})
		if err != nil {
			log.Error().Err(err).Uint("affiliate_id", affiliate.ID).Uint("house_id", house.ID).Msg("failed to create link")
			return helpers.JSONFailure(c, fiber.StatusInternalServerError, "FAILED_TO_CREATE_LINK", "could not create link")
		}

		if created {
			return helpers.JSONCreated(c, "Link created successfully", link)
		}
		return helpers.JSONSuccess(c, "Active link already exists", link)
	}
}

func DeactivateLink(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helpers.JSONFailure(c, fiber.StatusBadRequest, "INVALID_ID", "invalid link id")
	}

	res := database.DB.Model(&models.AffiliateLink{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return helpers.JSONFailure(c, fiber.StatusInternalServerError, "FAILED_TO_UPDATE_LINK", "could not deactivate link")
	}
	if res.RowsAffected == 0 {
		return helpers.JSONFailure(c, fiber.StatusNotFound, "LINK_NOT_FOUND", "active link not found")
	}
	return helpers.JSONSuccess(c, "Link deactivated", fiber.Map{"id": id})
}
