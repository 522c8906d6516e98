package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"task-service/internal/model"
	"task-service/internal/service"
)

// ParseTaskQuery builds the listing options of GET /tasks:
// completed=true|false, sortBy=field:asc|desc, limit, skip.
func ParseTaskQuery(c *fiber.Ctx) (model.TaskQuery, error) {
	var query model.TaskQuery

	if raw := c.Query("completed"); raw != "" {
		completed := raw == "true"
		query.Completed = &completed
	}

	if raw := c.Query("sortBy"); raw != "" {
		field, direction, _ := strings.Cut(raw, ":")
		if field != "" {
			query.Sort = &model.TaskSort{Field: field, Descending: direction == "desc"}
		}
	}

	limit, err := parseCount(c.Query("limit"), "limit")
	if err != nil {
		return query, err
	}
	query.Limit = limit

	skip, err := parseCount(c.Query("skip"), "skip")
	if err != nil {
		return query, err
	}
	query.Skip = skip

	return query, nil
}

func parseCount(raw, name string) (*int, error) {
	if raw == "" {
		return nil, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, &service.ValidationError{Message: name + " must be a non-negative integer"}
	}

	return &n, nil
}
