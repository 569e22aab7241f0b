package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	traceIDHeader = "X-Trace-Id"
	traceIDLocal  = "trace_id"
	loggerLocal   = "logger"
)

// Tracing tags each request with a trace id. An inbound X-Trace-Id is kept when it is a
// UUID so a proxy or the frontend can correlate its own logs; anything else is replaced.
// The id is echoed on the response and carried by the request logger.
func Tracing() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get(traceIDHeader)
		if _, err := uuid.Parse(traceID); err != nil {
			traceID = uuid.NewString()
		}
		c.Locals(traceIDLocal, traceID)
		c.Set(traceIDHeader, traceID)
		l := log.With().Str("trace_id", traceID).Logger()
		c.Locals(loggerLocal, &l)
		return c.Next()
	}
}

// GetTraceID returns the trace ID from context.
func GetTraceID(c *fiber.Ctx) string {
	if id, ok := c.Locals(traceIDLocal).(string); ok {
		return id
	}
	return ""
}

// Logger returns the request-scoped logger, or the global one outside Tracing.
func Logger(c *fiber.Ctx) *zerolog.Logger {
	if l, ok := c.Locals(loggerLocal).(*zerolog.Logger); ok {
		return l
	}
	return &log.Logger
}
