package listingevents

import (
	"context"
	"errors"

	"postmarket-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// GetActorListingEvents returns the audit trail of listing changes made by actorID, oldest first.
// Events of deleted listings are included.
func (s *Service) GetActorListingEvents(ctx context.Context, actorID uuid.UUID) ([]domain.ListingEvent, error) {
	if actorID == uuid.Nil {
		return nil, errors.New("User ID is required")
	}
	events := make([]domain.ListingEvent, 0)
	if err := s.DB.WithContext(ctx).Where("actor_id = ?", actorID).Order(`"createdAt" ASC`).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
