package admin

import (
	"betaffiliate/database"
	"betaffiliate/helpers"
	"betaffiliate/services/stats"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Reports serves the admin rollups. Unfiltered requests are answered from the
// cached snapshot when it is younger than MaxAge.
type Reports struct {
	Cache  *stats.Cache
	MaxAge time.Duration
}

func (r *Reports) ByAffiliate(c *fiber.Ctx) error {
	return r.serve(c, func(s *stats.Snapshot) any { return s.ByAffiliate },
		func(f stats.Filter) (any, error) { return stats.ByAffiliate(c.UserContext(), database.DB, f) })
}

func (r *Reports) ByHouse(c *fiber.Ctx) error {
	return r.serve(c, func(s *stats.Snapshot) any { return s.ByHouse },
		func(f stats.Filter) (any, error) { return stats.ByHouse(c.UserContext(), database.DB, f) })
}

func (r *Reports) ByEvent(c *fiber.Ctx) error {
	return r.serve(c, func(s *stats.Snapshot) any { return s.ByEvent },
		func(f stats.Filter) (any, error) { return stats.ByEventType(c.UserContext(), database.DB, f) })
}

func (r *Reports) serve(c *fiber.Ctx, cached func(*stats.Snapshot) any, live func(stats.Filter) (any, error)) error {
	from, to, err := helpers.ParseDateRange(c)
	if err != nil {
		return helpers.JSONFailure(c, fiber.StatusBadRequest, "INVALID_DATE_RANGE", err.Error())
	}
	f := stats.Filter{
		From:        from,
		To:          to,
		AffiliateID: uint(c.QueryInt("affiliate_id")),
		HouseID:     uint(c.QueryInt("house_id")),
	}

	if f == (stats.Filter{}) {
		if snap := r.Cache.Fresh(c.UserContext(), r.MaxAge); snap != nil {
			return c.JSON(fiber.Map{
				"success":      true,
				"message":      "Report retrieved successfully",
				"generated_at": snap.GeneratedAt,
				"data":         cached(snap),
			})
		}
	}

	rows, err := live(f)
	if err != nil {
		log.Error().Err(err).Str("path", c.Path()).Msg("report query failed")
		return helpers.JSONFailure(c, fiber.StatusInternalServerError, "FAILED_TO_BUILD_REPORT", "could not build report")
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Report retrieved successfully",
		"generated_at": time.Now().UTC(),
		"data":         rows,
	})
}
