package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/virendrasuryawanshi09/ratings-website/internal/repository"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// storeSortColumns is the allow-list for store listings. Keys are the
// public field tokens, values the SQL columns they map to.
var storeSortColumns = map[string]string{
	"name":       "s.name",
	"email":      "s.email",
	"created_at": "s.created_at",
	"rating":     "s.overall_rating",
}

var userSortColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"role":       "role",
	"created_at": "created_at",
}

func parsePagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", defaultLimit)
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// parseSort accepts either "field:direction" or the enumerated
// "field_desc" / "field_asc" token forms. Anything outside the allow-list
// falls back to the zero OrderBy (repository default) without erroring.
func parseSort(raw string, columns map[string]string) repository.OrderBy {
	if raw == "" {
		return repository.OrderBy{}
	}

	field := raw
	dir := "asc"
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		field, dir = raw[:i], raw[i+1:]
	} else if strings.HasSuffix(raw, "_desc") {
		field, dir = strings.TrimSuffix(raw, "_desc"), "desc"
	} else if strings.HasSuffix(raw, "_asc") {
		field = strings.TrimSuffix(raw, "_asc")
	}

	column, ok := columns[field]
	if !ok {
		return repository.OrderBy{}
	}

	switch dir {
	case "asc", "desc":
	default:
		return repository.OrderBy{}
	}

	return repository.OrderBy{Column: column, Desc: dir == "desc"}
}
