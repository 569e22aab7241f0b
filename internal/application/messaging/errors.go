package messaging

import "errors"

var (
	ErrContentRequired  = errors.New("Message content is required")
	ErrReceiverNotFound = errors.New("Receiver not found")
	ErrListingNotFound  = errors.New("Listing not found")
	ErrUserNotFound     = errors.New("User not found")
)
