package middleware

import (
	"context"
	"encoding/json"
	"time"

	"postmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const errorLogSize = 50

// ErrorHandler returns the global error handler. Unhandled errors are logged,
// appended to the Redis error log read by /health/errors, and returned in the
// standard error format.
func ErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}
		if code >= fiber.StatusInternalServerError {
			Logger(c).Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
			if rdb != nil {
				entry, _ := json.Marshal(map[string]interface{}{
					"time":     time.Now().UTC(),
					"path":     c.OriginalURL(),
					"method":   c.Method(),
					"error":    err.Error(),
					"trace_id": GetTraceID(c),
				})
				ctx := context.Background()
				_ = rdb.LPush(ctx, KeyErrorLog, entry).Err()
				_ = rdb.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1).Err()
			}
		}
		return response.Error(c, message, code, nil)
	}
}
