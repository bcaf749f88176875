package http

import "github.com/gofiber/fiber/v2"

// pageParams lee limit/offset de la query con límites.
func pageParams(c *fiber.Ctx, def, max int) (limit, offset int) {
	limit = c.QueryInt("limit", def)
	offset = c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
