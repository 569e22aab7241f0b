package listings

import "errors"

var (
	ErrListingNotFound  = errors.New("Listing not found")
	ErrNotOwner         = errors.New("You can only modify your own listings")
	ErrTitleRequired    = errors.New("Title is required")
	ErrTitleTooLong     = errors.New("Title must be at most 100 characters")
	ErrContentRequired  = errors.New("Content is required")
	ErrNegativePrice    = errors.New("Price cannot be negative")
	ErrListingHasOrders = errors.New("Listing has orders and cannot be deleted")
)
