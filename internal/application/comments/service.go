package comments

import (
	"context"
	"errors"

	"postmarket-backend/internal/domain"
	"postmarket-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrListingNotFound = errors.New("Listing not found")
	ErrContentRequired = errors.New("Comment content is required")
)

type Service struct {
	DB *gorm.DB
}

// AddComment attaches a comment by authorID to an existing listing.
func (s *Service) AddComment(ctx context.Context, authorID, listingID uuid.UUID, content string) (*domain.Comment, error) {
	if !validation.Required(content) {
		return nil, ErrContentRequired
	}
	db := s.DB.WithContext(ctx)
	var n int64
	if err := db.Model(&domain.Listing{}).Where("listing_id = ?", listingID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrListingNotFound
	}
	c := &domain.Comment{ListingID: listingID, AuthorID: authorID, Content: content}
	if err := db.Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}
