package messages

import (
	"errors"

	msgsvc "postmarket-backend/internal/application/messaging"
	"postmarket-backend/internal/middleware"
	"postmarket-backend/internal/pkg/links"
	"postmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *msgsvc.Service
}

var statusMap = map[error]int{
	msgsvc.ErrContentRequired:  fiber.StatusBadRequest,
	msgsvc.ErrReceiverNotFound: fiber.StatusNotFound,
	msgsvc.ErrListingNotFound:  fiber.StatusNotFound,
	msgsvc.ErrUserNotFound:     fiber.StatusNotFound,
}

func fail(c *fiber.Ctx, err error, back string) error {
	for target, code := range statusMap {
		if errors.Is(err, target) {
			var details interface{}
			if code == fiber.StatusBadRequest && back != "" {
				details = response.Redirect(back)
			}
			return response.Error(c, err.Error(), code, details)
		}
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("messaging request failed")
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

// Inbox GET /api/v1/messages/inbox: everything sent or received, newest first.
func (h *Handlers) Inbox(c *fiber.Ctx) error {
	user, _ := middleware.ActorID(c)
	rows, err := h.Service.GetInbox(c.Context(), user)
	if err != nil {
		return fail(c, err, "")
	}
	return response.Success(c, "Inbox fetched successfully", rows, fiber.Map{"count": len(rows)})
}

type negotiateRequest struct {
	ListingID string `json:"listing_id"`
	Content   string `json:"content"`
}

// Negotiate POST /api/v1/messages/negotiate/:receiver_id: opens or continues the
// thread about listing_id and points the client at the chat.
func (h *Handlers) Negotiate(c *fiber.Ctx) error {
	sender, _ := middleware.ActorID(c)
	receiverID, err := uuid.Parse(c.Params("receiver_id"))
	if err != nil {
		return fail(c, msgsvc.ErrReceiverNotFound, "")
	}
	var req negotiateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return fail(c, msgsvc.ErrListingNotFound, "")
	}
	msg, err := h.Service.SendMessage(c.Context(), sender, receiverID, listingID, req.Content)
	if err != nil {
		return fail(c, err, links.Listing(listingID))
	}
	return response.SuccessCreated(c, "Message sent", msg, response.Redirect(links.Chat(listingID, receiverID)))
}

type chatRequest struct {
	Content string `json:"content"`
}

func chatParams(c *fiber.Ctx) (listingID, otherID uuid.UUID, err error) {
	if listingID, err = uuid.Parse(c.Params("listing_id")); err != nil {
		return uuid.Nil, uuid.Nil, msgsvc.ErrListingNotFound
	}
	if otherID, err = uuid.Parse(c.Params("user_id")); err != nil {
		return uuid.Nil, uuid.Nil, msgsvc.ErrUserNotFound
	}
	return listingID, otherID, nil
}

// Chat GET /api/v1/messages/chat/:listing_id/:user_id
func (h *Handlers) Chat(c *fiber.Ctx) error {
	viewer, _ := middleware.ActorID(c)
	listingID, otherID, err := chatParams(c)
	if err != nil {
		return fail(c, err, "")
	}
	v, err := h.Service.Chat(c.Context(), viewer, listingID, otherID)
	if err != nil {
		return fail(c, err, "")
	}
	return response.Success(c, "Chat fetched successfully", v, nil)
}

// ChatSend POST /api/v1/messages/chat/:listing_id/:user_id: reply within the thread.
func (h *Handlers) ChatSend(c *fiber.Ctx) error {
	viewer, _ := middleware.ActorID(c)
	listingID, otherID, err := chatParams(c)
	if err != nil {
		return fail(c, err, "")
	}
	var req chatRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
		}
	}
	v, err := h.Service.ChatSend(c.Context(), viewer, listingID, otherID, req.Content)
	if err != nil {
		return fail(c, err, links.Chat(listingID, otherID))
	}
	return response.Success(c, "Message sent", v, nil)
}
