package user

import (
	"betaffiliate/database"
	"betaffiliate/helpers"
	"betaffiliate/middlewares"
	"betaffiliate/models"
	"betaffiliate/services/stats"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func currentAffiliateID(c *fiber.Ctx) (uint, bool) {
	claims, ok := middlewares.CurrentClaims(c)
	if !ok || claims.Role != helpers.RoleAffiliate || claims.AffiliateID == 0 {
		return 0, false
	}
	return claims.AffiliateID, true
}

func Stats(c *fiber.Ctx) error {
	affiliateID, ok := currentAffiliateID(c)
	if !ok {
		return helpers.JSONFailure(c, fiber.StatusForbidden, "FORBIDDEN", "affiliate token required")
	}

	from, to, err := helpers.ParseDateRange(c)
	if err != nil {
		return helpers.JSONFailure(c, fiber.StatusBadRequest, "INVALID_DATE_RANGE", err.Error())
	}

	summary, err := stats.AffiliateSummary(c.UserContext(), database.DB, affiliateID, stats.Filter{
		From:    from,
		To:      to,
		HouseID: uint(c.QueryInt("house_id")),
	})
	if err != nil {
		log.Error().Err(err).Uint("affiliate_id", affiliateID).Msg("affiliate stats failed")
		return helpers.JSONFailure(c, fiber.StatusInternalServerError, "FAILED_TO_FETCH_STATS", "could not fetch stats")
	}
	return helpers.JSONSuccess(c, "Stats retrieved successfully", summary)
}

func Links(c *fiber.Ctx) error {
	affiliateID, ok := currentAffiliateID(c)
	if !ok {
		return helpers.JSONFailure(c, fiber.StatusForbidden, "FORBIDDEN", "affiliate token required")
	}

	var links []models.AffiliateLink
	if err := database.DB.Where("affiliate_id = ? AND is_active = ?", affiliateID, true).
		Order("house_id").Find(&links).Error; err != nil {
		return helpers.JSONFailure(c, fiber.StatusInternalServerError, "FAILED_TO_FETCH_LINKS", "could not fetch links")
	}
	return helpers.JSONSuccess(c, "Links retrieved successfully", links)
}
