package observability

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

// RequestLogger logs each request and feeds the request metrics.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		status := c.Response().StatusCode()
		var fe *fiber.Error
		var de *apperrors.DomainError
		switch {
		case errors.As(err, &de):
			status = de.HTTPStatus
		case errors.As(err, &fe):
			status = fe.Code
		}

		route := c.Route().Path
		if route == "" {
			route = c.Path()
		}
		metrics.RecordRequest(route, c.Method(), status, duration)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
		}
		if reqID, ok := c.Locals("request_id").(string); ok {
			fields = append(fields, zap.String("request_id", reqID))
		}
		logger.Info("http request", fields...)
		return err
	}
}
