package user

import (
	"errors"

	usersvc "postmarket-backend/internal/application/user"
	"postmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers holds the user service.
type Handlers struct {
	Service *usersvc.Service
}

// Profile GET /api/v1/users/:username: public profile with the user's listings.
func (h *Handlers) Profile(c *fiber.Ctx) error {
	p, err := h.Service.GetProfile(c.Context(), c.Params("username"))
	if err != nil {
		if errors.Is(err, usersvc.ErrUserNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Profile fetched successfully", p, nil)
}
