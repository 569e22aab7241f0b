package orders

import "errors"

var (
	ErrPaymentMethodRequired = errors.New("Payment method is required")
	ErrInvalidPaymentMethod  = errors.New("Invalid payment method")
	ErrListingNotFound       = errors.New("Listing not found")
	ErrOrderNotFound         = errors.New("Order not found")
)
