package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Listing is a post that its author offers for sale. Price is fixed-point and never negative.
type Listing struct {
	ListingID  uuid.UUID       `gorm:"column:listing_id;type:uuid;primaryKey" json:"listing_id"`
	Title      string          `gorm:"column:title;type:varchar(100);not null" json:"title"`
	Content    string          `gorm:"column:content;type:text;not null" json:"content"`
	Price      decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null;default:0" json:"price"`
	AuthorID   uuid.UUID       `gorm:"column:author_id;type:uuid;not null;index" json:"author_id"`
	ImageURL   *string         `gorm:"column:image_url" json:"image_url"`
	DatePosted time.Time       `gorm:"column:date_posted;not null;index" json:"date_posted"`
	UpdatedAt  time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Listing) TableName() string {
	return "Listings"
}

// BeforeCreate sets listing_id and date_posted when not provided.
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ListingID == uuid.Nil {
		l.ListingID = uuid.New()
	}
	if l.DatePosted.IsZero() {
		l.DatePosted = time.Now().UTC()
	}
	return nil
}

// OwnedBy reports whether userID authored the listing.
func (l *Listing) OwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && l.AuthorID == userID
}
