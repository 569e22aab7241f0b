package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RouteLogger writes one line per request once it has been served: route, status,
// duration and the acting user when there is one. 5xx log at error, 4xx at warn.
// Health and metrics scrapes are only logged at debug.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		l := Logger(c)
		var ev *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = l.Error()
		case status >= fiber.StatusBadRequest:
			ev = l.Warn()
		case strings.HasPrefix(c.Path(), "/health") || c.Path() == "/metrics":
			ev = l.Debug()
		default:
			ev = l.Info()
		}
		if id, ok := ActorID(c); ok {
			ev = ev.Str("user_id", id.String())
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Int64("ms", time.Since(start).Milliseconds()).
			Msg("request")
		return err
	}
}
