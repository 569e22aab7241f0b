package listings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"postmarket-backend/internal/application/uploads"
	"postmarket-backend/internal/domain"
	"postmarket-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	titleMaxLen     = 100
	defaultPageSize = 10
)

type Service struct {
	DB       *gorm.DB
	Uploads  *uploads.Service
	PageSize int
}

// ListingInput is the body of create and update. Update replaces all three fields.
type ListingInput struct {
	Title   string          `json:"title"`
	Content string          `json:"content"`
	Price   decimal.Decimal `json:"price"`
}

// ListingView is a listing with its author's username.
type ListingView struct {
	domain.Listing
	AuthorUsername string `json:"author_username"`
}

// CommentView is a comment with its author's username.
type CommentView struct {
	domain.Comment
	AuthorUsername string `json:"author_username"`
}

// ListingDetail is the listing-detail payload: the listing and its comments, oldest first.
type ListingDetail struct {
	Listing  ListingView   `json:"listing"`
	Comments []CommentView `json:"comments"`
}

// Page is one page of listings, newest first.
type Page struct {
	Listings []ListingView `json:"listings"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int64         `json:"total"`
}

func (in *ListingInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	if !validation.Required(in.Title) {
		return ErrTitleRequired
	}
	if !validation.MaxRunes(in.Title, titleMaxLen) {
		return ErrTitleTooLong
	}
	if !validation.Required(in.Content) {
		return ErrContentRequired
	}
	if in.Price.IsNegative() {
		return ErrNegativePrice
	}
	in.Price = in.Price.Round(2)
	return nil
}

func (s *Service) pageSize() int {
	if s.PageSize > 0 {
		return s.PageSize
	}
	return defaultPageSize
}

// ListListings returns page (1-based) of all listings, newest first.
func (s *Service) ListListings(ctx context.Context, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	size := s.pageSize()
	db := s.DB.WithContext(ctx)

	var total int64
	if err := db.Model(&domain.Listing{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("Failed to count listings: %v", err)
	}
	var rows []domain.Listing
	if err := db.Order("date_posted DESC").Offset((page - 1) * size).Limit(size).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("Failed to fetch listings: %v", err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, l := range rows {
		ids = append(ids, l.AuthorID)
	}
	names, err := usernames(db, ids)
	if err != nil {
		return nil, err
	}
	out := make([]ListingView, 0, len(rows))
	for _, l := range rows {
		out = append(out, ListingView{Listing: l, AuthorUsername: names[l.AuthorID]})
	}
	return &Page{Listings: out, Page: page, PageSize: size, Total: total}, nil
}

// GetListing returns the listing with its author and comments.
func (s *Service) GetListing(ctx context.Context, listingID uuid.UUID) (*ListingDetail, error) {
	db := s.DB.WithContext(ctx)
	listing, err := findListing(db, listingID)
	if err != nil {
		return nil, err
	}
	var comments []domain.Comment
	if err := db.Where("listing_id = ?", listingID).Order(`"createdAt" ASC`).Find(&comments).Error; err != nil {
		return nil, err
	}

	ids := []uuid.UUID{listing.AuthorID}
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}
	names, err := usernames(db, ids)
	if err != nil {
		return nil, err
	}
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, CommentView{Comment: c, AuthorUsername: names[c.AuthorID]})
	}
	return &ListingDetail{
		Listing:  ListingView{Listing: *listing, AuthorUsername: names[listing.AuthorID]},
		Comments: views,
	}, nil
}

// CreateListing stores a listing authored by authorID and records a CREATED event.
func (s *Service) CreateListing(ctx context.Context, authorID uuid.UUID, in ListingInput) (*domain.Listing, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	listing := &domain.Listing{
		Title:    in.Title,
		Content:  in.Content,
		Price:    in.Price,
		AuthorID: authorID,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(listing).Error; err != nil {
			return fmt.Errorf("Failed to create listing: %v", err)
		}
		return recordEvent(tx, listing, authorID, domain.ListingEventCreated)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("listing_id", listing.ListingID.String()).Str("author_id", authorID.String()).Msg("listing created")
	return listing, nil
}

// UpdateListing replaces title, content and price. Only the author may update.
func (s *Service) UpdateListing(ctx context.Context, actorID, listingID uuid.UUID, in ListingInput) (*domain.Listing, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	var listing *domain.Listing
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, err := findListing(tx, listingID)
		if err != nil {
			return err
		}
		if !l.OwnedBy(actorID) {
			return ErrNotOwner
		}
		l.Title, l.Content, l.Price = in.Title, in.Content, in.Price
		if err := tx.Model(l).Select("title", "content", "price").Updates(l).Error; err != nil {
			return fmt.Errorf("Failed to update listing: %v", err)
		}
		listing = l
		return recordEvent(tx, l, actorID, domain.ListingEventUpdated)
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// DeleteListing removes a listing and everything hanging off it (cart entries, comments,
// messages). Listings that orders point at stay: orders are permanent records.
func (s *Service) DeleteListing(ctx context.Context, actorID, listingID uuid.UUID) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, err := findListing(tx, listingID)
		if err != nil {
			return err
		}
		if !l.OwnedBy(actorID) {
			return ErrNotOwner
		}
		var orders int64
		if err := tx.Model(&domain.Order{}).Where("listing_id = ?", listingID).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return ErrListingHasOrders
		}
		for _, model := range []interface{}{&domain.CartEntry{}, &domain.Comment{}, &domain.Message{}} {
			if err := tx.Where("listing_id = ?", listingID).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(l).Error; err != nil {
			return fmt.Errorf("Failed to delete listing: %v", err)
		}
		return recordEvent(tx, l, actorID, domain.ListingEventDeleted)
	})
	if err != nil {
		return err
	}
	log.Info().Str("listing_id", listingID.String()).Str("actor_id", actorID.String()).Msg("listing deleted")
	return nil
}

// RequestImageUpload signs an upload URL for the listing image and stores the public URL
// the object will be served from. Only the author may upload.
func (s *Service) RequestImageUpload(ctx context.Context, actorID, listingID uuid.UUID, fileName string) (*uploads.UploadResult, error) {
	db := s.DB.WithContext(ctx)
	l, err := findListing(db, listingID)
	if err != nil {
		return nil, err
	}
	if !l.OwnedBy(actorID) {
		return nil, ErrNotOwner
	}
	res, err := s.Uploads.SignListingImage(ctx, listingID, fileName)
	if err != nil {
		return nil, err
	}
	if err := db.Model(l).Update("image_url", res.PublicURL).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func findListing(db *gorm.DB, listingID uuid.UUID) (*domain.Listing, error) {
	if listingID == uuid.Nil {
		return nil, ErrListingNotFound
	}
	var l domain.Listing
	if err := db.Where("listing_id = ?", listingID).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &l, nil
}

func recordEvent(tx *gorm.DB, l *domain.Listing, actorID uuid.UUID, eventType string) error {
	data, _ := json.Marshal(map[string]interface{}{
		"title": l.Title,
		"price": l.Price.StringFixed(2),
	})
	if err := tx.Create(&domain.ListingEvent{
		ListingID: l.ListingID,
		ActorID:   actorID,
		EventType: eventType,
		EventData: datatypes.JSON(data),
	}).Error; err != nil {
		return fmt.Errorf("Failed to create listing event: %v", err)
	}
	return nil
}

// usernames batch-loads user_id → username.
func usernames(db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []domain.User
	if err := db.Select("user_id", "username").Where("user_id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.UserID] = u.Username
	}
	return out, nil
}
