package webhook

import (
	"betaffiliate/helpers"
	"betaffiliate/middlewares"
	"betaffiliate/models"

	"github.com/gofiber/fiber/v2"
)

func Ping(c *fiber.Ctx) error {
	house, ok := c.Locals(middlewares.HouseLocal).(*models.BettingHouse)
	if !ok {
		return helpers.JSONFailure(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid house credentials")
	}

	return helpers.JSONSuccess(c, "pong", fiber.Map{
		"house": fiber.Map{
			"id":              house.ID,
			"name":            house.Name,
			"slug":            house.Slug,
			"commission_type": house.CommissionType,
		},
	})
}
