package helpers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// ParseDateRange reads optional from/to query params. A bare date for "to"
// includes that whole day.
func ParseDateRange(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	from, _, err := parseDate(c.Query("from"))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid from: %w", err)
	}
	to, dateOnly, err := parseDate(c.Query("to"))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid to: %w", err)
	}
	if to != nil && dateOnly {
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	return from, to, nil
}

func parseDate(s string) (*time.Time, bool, error) {
	if s == "" {
		return nil, false, nil
	}
	for i, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, i == 1, nil
		}
	}
	return nil, false, fmt.Errorf("unsupported date %q", s)
}

// Pagination reads page and limit, clamping limit to [1, max].
func Pagination(c *fiber.Ctx, def, max int) (int, int) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(def)))
	if err != nil || limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return page, limit
}
