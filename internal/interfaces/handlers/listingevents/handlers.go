package listingevents

import (
	lesvc "postmarket-backend/internal/application/listingevents"
	"postmarket-backend/internal/middleware"
	"postmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *lesvc.Service
}

// Mine GET /api/v1/listing-events/mine: audit trail of the caller's listing changes.
func (h *Handlers) Mine(c *fiber.Ctx) error {
	actor, ok := middleware.ActorID(c)
	if !ok {
		return response.Error(c, "Unauthorized", fiber.StatusUnauthorized, nil)
	}
	events, err := h.Service.GetActorListingEvents(c.Context(), actor)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Listing events fetched successfully", events, fiber.Map{"count": len(events)})
}
