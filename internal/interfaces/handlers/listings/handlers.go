package listings

import (
	"errors"
	"strconv"

	commentsvc "postmarket-backend/internal/application/comments"
	listsvc "postmarket-backend/internal/application/listings"
	uploadsvc "postmarket-backend/internal/application/uploads"
	"postmarket-backend/internal/middleware"
	"postmarket-backend/internal/pkg/links"
	"postmarket-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service  *listsvc.Service
	Comments *commentsvc.Service
}

var statusMap = map[error]int{
	listsvc.ErrListingNotFound:      fiber.StatusNotFound,
	listsvc.ErrNotOwner:             fiber.StatusForbidden,
	listsvc.ErrTitleRequired:        fiber.StatusBadRequest,
	listsvc.ErrTitleTooLong:         fiber.StatusBadRequest,
	listsvc.ErrContentRequired:      fiber.StatusBadRequest,
	listsvc.ErrNegativePrice:        fiber.StatusBadRequest,
	listsvc.ErrListingHasOrders:     fiber.StatusConflict,
	commentsvc.ErrListingNotFound:   fiber.StatusNotFound,
	commentsvc.ErrContentRequired:   fiber.StatusBadRequest,
	uploadsvc.ErrFileNameRequired:   fiber.StatusBadRequest,
	uploadsvc.ErrUnsupportedImage:   fiber.StatusBadRequest,
	uploadsvc.ErrStorageUnavailable: fiber.StatusServiceUnavailable,
}

// fail maps a service error to its status. Validation errors carry a redirect to back.
func fail(c *fiber.Ctx, err error, back string) error {
	if code, ok := statusMap[err]; ok {
		var details interface{}
		if code == fiber.StatusBadRequest && back != "" {
			details = response.Redirect(back)
		}
		return response.Error(c, err.Error(), code, details)
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("listings handler failed")
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

func listingID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

// ListListings GET /api/v1/listings?page=N
func (h *Handlers) ListListings(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	p, err := h.Service.ListListings(c.Context(), page)
	if err != nil {
		return fail(c, err, "")
	}
	return response.Success(c, "Listings fetched successfully", p.Listings, response.Paged(p.Page, p.PageSize, p.Total))
}

// GetListing GET /api/v1/listings/:id
func (h *Handlers) GetListing(c *fiber.Ctx) error {
	id, ok := listingID(c)
	if !ok {
		return response.Error(c, listsvc.ErrListingNotFound.Error(), fiber.StatusNotFound, nil)
	}
	d, err := h.Service.GetListing(c.Context(), id)
	if err != nil {
		return fail(c, err, "")
	}
	return response.Success(c, "Listing fetched successfully", d, nil)
}

// CreateListing POST /api/v1/listings
func (h *Handlers) CreateListing(c *fiber.Ctx) error {
	actor, _ := middleware.ActorID(c)
	var in listsvc.ListingInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	l, err := h.Service.CreateListing(c.Context(), actor, in)
	if err != nil {
		return fail(c, err, links.Listings())
	}
	return response.SuccessCreated(c, "Listing created successfully", l, response.Redirect(links.Listing(l.ListingID)))
}

// UpdateListing PUT /api/v1/listings/:id: author only.
func (h *Handlers) UpdateListing(c *fiber.Ctx) error {
	actor, _ := middleware.ActorID(c)
	id, ok := listingID(c)
	if !ok {
		return response.Error(c, listsvc.ErrListingNotFound.Error(), fiber.StatusNotFound, nil)
	}
	var in listsvc.ListingInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	l, err := h.Service.UpdateListing(c.Context(), actor, id, in)
	if err != nil {
		return fail(c, err, links.Listing(id))
	}
	return response.Success(c, "Listing updated successfully", l, response.Redirect(links.Listing(id)))
}

// DeleteListing DELETE /api/v1/listings/:id: author only.
func (h *Handlers) DeleteListing(c *fiber.Ctx) error {
	actor, _ := middleware.ActorID(c)
	id, ok := listingID(c)
	if !ok {
		return response.Error(c, listsvc.ErrListingNotFound.Error(), fiber.StatusNotFound, nil)
	}
	if err := h.Service.DeleteListing(c.Context(), actor, id); err != nil {
		return fail(c, err, "")
	}
	return response.Success(c, "Listing deleted successfully", nil, response.Redirect(links.Listings()))
}

type imageRequest struct {
	FileName string `json:"file_name"`
}

// RequestImageUpload POST /api/v1/listings/:id/image: signed upload URL for the listing image.
func (h *Handlers) RequestImageUpload(c *fiber.Ctx) error {
	actor, _ := middleware.ActorID(c)
	id, ok := listingID(c)
	if !ok {
		return response.Error(c, listsvc.ErrListingNotFound.Error(), fiber.StatusNotFound, nil)
	}
	var req imageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, uploadsvc.ErrFileNameRequired.Error(), fiber.StatusBadRequest, nil)
	}
	res, err := h.Service.RequestImageUpload(c.Context(), actor, id, req.FileName)
	if err != nil {
		if !errors.Is(err, listsvc.ErrNotOwner) {
			log.Warn().Err(err).Str("listing_id", id.String()).Msg("upload: failed to generate signed URL")
		}
		return fail(c, err, links.Listing(id))
	}
	return response.Success(c, "Upload URL generated", res, nil)
}

type commentRequest struct {
	Content string `json:"content"`
}

// AddComment POST /api/v1/listings/:id/comments
func (h *Handlers) AddComment(c *fiber.Ctx) error {
	actor, _ := middleware.ActorID(c)
	id, ok := listingID(c)
	if !ok {
		return response.Error(c, listsvc.ErrListingNotFound.Error(), fiber.StatusNotFound, nil)
	}
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, response.Redirect(links.Listing(id)))
	}
	cm, err := h.Comments.AddComment(c.Context(), actor, id, req.Content)
	if err != nil {
		return fail(c, err, links.Listing(id))
	}
	return response.SuccessCreated(c, "Comment added successfully", cm, response.Redirect(links.Listing(id)))
}
