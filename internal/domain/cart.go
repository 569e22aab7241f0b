package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartEntry is a user's pending intent to buy Quantity of one listing.
// (user_id, listing_id) is unique: repeated adds bump Quantity instead of inserting.
type CartEntry struct {
	EntryID   uuid.UUID `gorm:"column:entry_id;type:uuid;primaryKey" json:"entry_id"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_cart_user_listing" json:"user_id"`
	ListingID uuid.UUID `gorm:"column:listing_id;type:uuid;not null;uniqueIndex:idx_cart_user_listing" json:"listing_id"`
	Quantity  int       `gorm:"column:quantity;not null;default:1" json:"quantity"`
	DateAdded time.Time `gorm:"column:date_added;not null" json:"date_added"`
}

func (CartEntry) TableName() string {
	return "CartEntries"
}

func (e *CartEntry) BeforeCreate(tx *gorm.DB) error {
	if e.EntryID == uuid.Nil {
		e.EntryID = uuid.New()
	}
	if e.DateAdded.IsZero() {
		e.DateAdded = time.Now().UTC()
	}
	if e.Quantity <= 0 {
		e.Quantity = 1
	}
	return nil
}

// LineTotal is quantity × unit price.
func LineTotal(quantity int, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
