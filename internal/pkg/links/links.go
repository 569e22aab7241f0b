// Package links builds the API paths used as redirect targets in response metadata.
package links

import (
	"fmt"

	"github.com/google/uuid"
)

const apiPrefix = "/api/v1"

func Listings() string { return apiPrefix + "/listings" }

func Listing(id uuid.UUID) string { return fmt.Sprintf("%s/listings/%s", apiPrefix, id) }

func PaymentSuccess(orderID uuid.UUID) string {
	return fmt.Sprintf("%s/orders/%s/payment-success", apiPrefix, orderID)
}

func Purchases() string { return apiPrefix + "/orders/mine" }

func Cart() string { return apiPrefix + "/cart" }

func Inbox() string { return apiPrefix + "/messages/inbox" }

func Chat(listingID, userID uuid.UUID) string {
	return fmt.Sprintf("%s/messages/chat/%s/%s", apiPrefix, listingID, userID)
}

func Login() string { return apiPrefix + "/auth/login" }
