package webhook

import (
	"betaffiliate/database"
	"betaffiliate/helpers"
	"betaffiliate/middlewares"
	"betaffiliate/models"
	"betaffiliate/services/commission"
	"betaffiliate/services/postback"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ReceiveConversion handles GET/POST postbacks. The house was authenticated
// by middlewares.HouseAuth.
func ReceiveConversion(opts postback.Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		house, ok := c.Locals(middlewares.HouseLocal).(*models.BettingHouse)
		if !ok {
			return helpers.JSONFailure(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid house credentials")
		}

		ev, err := postback.ParseEvent(postback.RawInput{
			Query:       c.Queries(),
			Body:        c.Body(),
			ContentType: c.Get(fiber.HeaderContentType),
			PathEvent:   c.Params("event"),
		})
		if err != nil {
			log.Warn().
				Err(err).
				Str("component", "postback").
				Uint("house_id", house.ID).
				Str("query", string(c.Request().URI().QueryString())).
				Msg("malformed postback")
			return helpers.JSONFailure(c, fiber.StatusBadRequest, "MALFORMED_EVENT", err.Error())
		}

		out, err := postback.Ingest(c.UserContext(), database.DB, house, ev, opts)
		if err != nil {
			return ingestFailure(c, err)
		}

		resp := fiber.Map{
			"success":   true,
			"duplicate": out.Duplicate,
			"message":   "conversion recorded",
			"data":      conversionData(out),
		}
		if out.Duplicate {
			resp["message"] = "duplicate event, existing conversion returned"
		}
		if errors.Is(out.Warning, commission.ErrNoApplicableRule) {
			resp["warning"] = "NO_APPLICABLE_COMMISSION_RULE"
		}
		return c.Status(fiber.StatusOK).JSON(resp)
	}
}

func ingestFailure(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, postback.ErrAffiliateNotFound):
		return helpers.JSONFailure(c, fiber.StatusNotFound, "AFFILIATE_NOT_FOUND", "subid does not match any affiliate")
	case errors.Is(err, postback.ErrHouseInactive):
		return helpers.JSONFailure(c, fiber.StatusForbidden, "HOUSE_INACTIVE", "house is not active")
	default:
		return helpers.JSONFailure(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "temporary failure, retry later")
	}
}

func conversionData(out *postback.Outcome) fiber.Map {
	conv := out.Conversion
	return fiber.Map{
		"conversion_id":   conv.ID,
		"type":            conv.Type,
		"customer_id":     conv.CustomerID,
		"status":          conv.Status,
		"amount":          helpers.Money(conv.Amount),
		"commission":      helpers.Money(conv.Commission),
		"commission_rule": conv.CommissionRule,
		"converted_at":    conv.ConvertedAt,
		"affiliate": fiber.Map{
			"username": out.Affiliate.Username,
			"email":    out.Affiliate.Email,
		},
		"house": fiber.Map{
			"name": out.House.Name,
		},
	}
}
