package cart

import (
	"errors"

	cartsvc "postmarket-backend/internal/application/cart"
	orderssvc "postmarket-backend/internal/application/orders"
	"postmarket-backend/internal/middleware"
	"postmarket-backend/internal/pkg/links"
	"postmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *cartsvc.Service
}

// ViewCart GET /api/v1/cart: entries with the total at current prices.
func (h *Handlers) ViewCart(c *fiber.Ctx) error {
	user, _ := middleware.ActorID(c)
	v, err := h.Service.ViewCart(c.Context(), user)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Cart fetched successfully", v, nil)
}

// AddToCart POST /api/v1/cart/add/:listing_id
func (h *Handlers) AddToCart(c *fiber.Ctx) error {
	user, _ := middleware.ActorID(c)
	id, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return response.Error(c, cartsvc.ErrListingNotFound.Error(), fiber.StatusNotFound, nil)
	}
	entry, err := h.Service.AddToCart(c.Context(), user, id)
	if err != nil {
		if errors.Is(err, cartsvc.ErrListingNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Added to cart", entry, response.Redirect(links.Cart()))
}

// RemoveFromCart DELETE /api/v1/cart/remove/:entry_id: only the requester's own entries.
func (h *Handlers) RemoveFromCart(c *fiber.Ctx) error {
	user, _ := middleware.ActorID(c)
	id, err := uuid.Parse(c.Params("entry_id"))
	if err != nil {
		return response.Error(c, cartsvc.ErrCartEntryNotFound.Error(), fiber.StatusNotFound, nil)
	}
	if err := h.Service.RemoveFromCart(c.Context(), user, id); err != nil {
		if errors.Is(err, cartsvc.ErrCartEntryNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Removed from cart", nil, response.Redirect(links.Cart()))
}

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// Checkout POST /api/v1/cart/checkout: converts the cart into orders. An empty cart
// answers with the (empty) cart again.
func (h *Handlers) Checkout(c *fiber.Ctx) error {
	user, _ := middleware.ActorID(c)
	var req checkoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
		}
	}

	res, err := h.Service.Checkout(c.Context(), user, req.PaymentMethod)
	if err != nil {
		if errors.Is(err, orderssvc.ErrPaymentMethodRequired) || errors.Is(err, orderssvc.ErrInvalidPaymentMethod) {
			return response.Error(c, err.Error(), fiber.StatusBadRequest, response.Redirect(links.Cart()))
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	if len(res.Orders) == 0 {
		return response.Success(c, "Your cart is empty", cartsvc.View{Entries: []cartsvc.Line{}, Total: res.Total}, response.Redirect(links.Cart()))
	}
	return response.Success(c, "Checkout completed", res, response.Redirect(links.Purchases()))
}
