package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/codebyviral/irms-backend/internal/auth"
	"github.com/codebyviral/irms-backend/internal/service"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

func principal(c *fiber.Ctx) (*auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok || p.User == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	return p, nil
}

func actorOf(p *auth.Principal) service.Actor {
	return service.Actor{ID: p.User.ID, Role: p.Role}
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func data(c *fiber.Ctx, v any) error {
	return c.JSON(fiber.Map{"data": v})
}

func created(c *fiber.Ctx, v any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": v})
}

// pathID returns the named route parameter when it is a well-formed id.
func pathID(c *fiber.Ctx, name string) (string, error) {
	value := c.Params(name)
	if _, err := uuid.Parse(value); err != nil {
		return "", apperrors.NewValidationError("invalid identifier", map[string]any{"param": name, "value": value})
	}
	return value, nil
}

// checkIDs rejects malformed ids supplied in a request body. Empty values are
// left to the service's required-field checks.
func checkIDs(field string, ids ...string) error {
	var invalid []string
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		return apperrors.NewValidationError("invalid identifier", map[string]any{"field": field, "values": invalid})
	}
	return nil
}

const dayLayout = "2006-01-02"

// parseDay accepts YYYY-MM-DD or RFC 3339. An empty value yields the zero time.
func parseDay(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dayLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("invalid date", map[string]any{"field": field, "value": value})
	}
	return t, nil
}
