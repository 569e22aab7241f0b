package orders

import (
	orderssvc "postmarket-backend/internal/application/orders"
	"postmarket-backend/internal/middleware"
	"postmarket-backend/internal/pkg/links"
	"postmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *orderssvc.Service
}

type buyRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// BuyListing POST /api/v1/listings/:id/buy: one pending order at the current price.
// Without a payment method nothing is created and the client is sent back to the listing.
func (h *Handlers) BuyListing(c *fiber.Ctx) error {
	buyer, _ := middleware.ActorID(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, orderssvc.ErrListingNotFound.Error(), fiber.StatusNotFound, nil)
	}
	var req buyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
		}
	}

	order, err := h.Service.PurchaseSingle(c.Context(), buyer, id, req.PaymentMethod)
	switch err {
	case nil:
	case orderssvc.ErrPaymentMethodRequired, orderssvc.ErrInvalidPaymentMethod:
		return response.Error(c, err.Error(), fiber.StatusBadRequest, response.Redirect(links.Listing(id)))
	case orderssvc.ErrListingNotFound:
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	default:
		log.Error().Err(err).Str("listing_id", id.String()).Msg("purchase failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Order placed successfully", order, response.Redirect(links.PaymentSuccess(order.OrderID)))
}

// PaymentSuccess GET /api/v1/orders/:id/payment-success: the buyer's own order only.
func (h *Handlers) PaymentSuccess(c *fiber.Ctx) error {
	buyer, _ := middleware.ActorID(c)
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, orderssvc.ErrOrderNotFound.Error(), fiber.StatusNotFound, nil)
	}
	v, err := h.Service.PaymentSuccess(c.Context(), buyer, id)
	if err != nil {
		if err == orderssvc.ErrOrderNotFound {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Payment recorded", v, nil)
}

// MyPurchases GET /api/v1/orders/mine: newest first.
func (h *Handlers) MyPurchases(c *fiber.Ctx) error {
	buyer, _ := middleware.ActorID(c)
	rows, err := h.Service.ListPurchases(c.Context(), buyer)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Purchases fetched successfully", rows, fiber.Map{"count": len(rows)})
}

// MySales GET /api/v1/orders/sales: orders other users placed on the caller's listings.
func (h *Handlers) MySales(c *fiber.Ctx) error {
	seller, _ := middleware.ActorID(c)
	sales, err := h.Service.ListSales(c.Context(), seller)
	if err != nil {
		log.Error().Err(err).Msg("list sales failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Sales fetched successfully", sales, fiber.Map{"count": len(sales.Orders)})
}
