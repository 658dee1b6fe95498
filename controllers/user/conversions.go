package user

import (
	"betaffiliate/database"
	"betaffiliate/helpers"
	"betaffiliate/models"
	"betaffiliate/services/postback"
	"betaffiliate/services/stats"

	"github.com/gofiber/fiber/v2"
)

type conversionView struct {
	ID          uint                    `json:"id"`
	HouseID     uint                    `json:"house_id"`
	Type        models.EventType        `json:"type"`
	CustomerID  string                  `json:"customer_id"`
	Amount      any                     `json:"amount"`
	Commission  any                     `json:"commission"`
	Status      models.ConversionStatus `json:"status"`
	ConvertedAt string                  `json:"converted_at"`
}

func Conversions(c *fiber.Ctx) error {
	affiliateID, ok := currentAffiliateID(c)
	if !ok {
		return helpers.JSONFailure(c, fiber.StatusForbidden, "FORBIDDEN", "affiliate token required")
	}

	from, to, err := helpers.ParseDateRange(c)
	if err != nil {
		return helpers.JSONFailure(c, fiber.StatusBadRequest, "INVALID_DATE_RANGE", err.Error())
	}

	var eventType models.EventType
	if raw := c.Query("type"); raw != "" {
		t, ok := postback.NormalizeEventType(raw)
		if !ok {
			return helpers.JSONFailure(c, fiber.StatusBadRequest, "INVALID_TYPE", "unsupported event type")
		}
		eventType = t
	}

	page, limit := helpers.Pagination(c, 20, 100)
	rows, total, err := stats.ListConversions(c.UserContext(), database.DB, stats.Filter{
		From:        from,
		To:          to,
		AffiliateID: affiliateID,
		HouseID:     uint(c.QueryInt("house_id")),
	}, eventType, page, limit)
	if err != nil {
		return helpers.JSONFailure(c, fiber.StatusInternalServerError, "FAILED_TO_FETCH_CONVERSIONS", "could not fetch conversions")
	}

	items := make([]conversionView, 0, len(rows))
	for _, r := range rows {
		items = append(items, conversionView{
			ID:          r.ID,
			HouseID:     r.HouseID,
			Type:        r.Type,
			CustomerID:  r.CustomerID,
			Amount:      helpers.Money(r.Amount),
			Commission:  helpers.Money(r.Commission),
			Status:      r.Status,
			ConvertedAt: r.ConvertedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}

	return helpers.JSONSuccess(c, "Conversions retrieved successfully", fiber.Map{
		"items": items,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}
