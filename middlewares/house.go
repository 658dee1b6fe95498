package middlewares

import (
	"betaffiliate/database"
	"betaffiliate/helpers"
	"betaffiliate/models"
	"betaffiliate/services/postback"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const HouseLocal = "house"

// HouseAuth authenticates postback calls. The house comes from the :house
// path param, the X-House-ID header, the house_id query param or a house_id
// body field; the secret from X-API-Key or the token query param.
func HouseAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident := firstNonEmpty(c.Params("house"), c.Get("X-House-ID"), c.Query("house_id"), bodyHouseID(c))
		token := firstNonEmpty(c.Get("X-API-Key"), c.Query("token"), c.Query("api_key"))

		house, err := postback.ValidateToken(database.DB, ident, token)
		if err != nil {
			if errors.Is(err, postback.ErrUnauthorized) {
				log.Warn().
					Str("component", "postback").
					Str("house", ident).
					Str("ip", c.IP()).
					Bool("token_present", token != "").
					Msg("postback authentication failed")
				return helpers.JSONFailure(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "invalid house credentials")
			}
			log.Error().Err(err).Str("component", "postback").Msg("house lookup failed")
			return helpers.JSONFailure(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "temporary failure, retry later")
		}

		c.Locals(HouseLocal, house)
		return c.Next()
	}
}

// bodyHouseID reads house_id from a form or JSON body, mirroring how the
// postback parser reads bodies. Unparseable bodies are left for it to reject.
func bodyHouseID(c *fiber.Ctx) string {
	if len(c.Body()) == 0 {
		return ""
	}
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	if strings.Contains(ct, fiber.MIMEApplicationForm) || strings.Contains(ct, fiber.MIMEMultipartForm) {
		return c.FormValue("house_id")
	}
	var body struct {
		HouseID models.FlexibleString `json:"house_id"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return ""
	}
	return body.HouseID.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
