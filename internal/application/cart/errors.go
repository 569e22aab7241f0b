package cart

import "errors"

var (
	ErrListingNotFound   = errors.New("Listing not found")
	ErrCartEntryNotFound = errors.New("Cart entry not found")
)
