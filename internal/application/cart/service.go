package cart

import (
	"context"
	"errors"

	"postmarket-backend/internal/application/events"
	"postmarket-backend/internal/application/orders"
	"postmarket-backend/internal/domain"
	"postmarket-backend/internal/infrastructure/database"
	"postmarket-backend/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	DB        *gorm.DB
	Publisher events.Publisher
}

// Line is one cart entry priced at the listing's current price.
type Line struct {
	domain.CartEntry
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// View is the cart with a total computed at read time, never stored.
type View struct {
	Entries []Line          `json:"entries"`
	Total   decimal.Decimal `json:"total"`
}

// CheckoutResult lists the orders a checkout created. Empty when the cart was empty.
type CheckoutResult struct {
	Orders []domain.Order  `json:"orders"`
	Total  decimal.Decimal `json:"total"`
}

// AddToCart puts listingID in userID's cart with quantity 1, or bumps the quantity of
// the existing entry.
func (s *Service) AddToCart(ctx context.Context, userID, listingID uuid.UUID) (*domain.CartEntry, error) {
	db := s.DB.WithContext(ctx)
	var n int64
	if err := db.Model(&domain.Listing{}).Where("listing_id = ?", listingID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrListingNotFound
	}

	bumped, err := increment(db, userID, listingID)
	if err != nil {
		return nil, err
	}
	if !bumped {
		entry := &domain.CartEntry{UserID: userID, ListingID: listingID, Quantity: 1}
		err := db.Create(entry).Error
		if err == nil {
			return entry, nil
		}
		// a concurrent add created the row between our update and insert
		if !database.IsUniqueViolation(err) {
			return nil, err
		}
		if _, err := increment(db, userID, listingID); err != nil {
			return nil, err
		}
	}

	var entry domain.CartEntry
	if err := db.Where("user_id = ? AND listing_id = ?", userID, listingID).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func increment(db *gorm.DB, userID, listingID uuid.UUID) (bool, error) {
	res := db.Model(&domain.CartEntry{}).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Update("quantity", gorm.Expr("quantity + ?", 1))
	return res.RowsAffected > 0, res.Error
}

// RemoveFromCart deletes entryID if it belongs to userID. Someone else's entry is
// reported as not found.
func (s *Service) RemoveFromCart(ctx context.Context, userID, entryID uuid.UUID) error {
	res := s.DB.WithContext(ctx).Where("entry_id = ? AND user_id = ?", entryID, userID).Delete(&domain.CartEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCartEntryNotFound
	}
	return nil
}

// ViewCart returns userID's entries, oldest first, priced at current listing prices.
func (s *Service) ViewCart(ctx context.Context, userID uuid.UUID) (*View, error) {
	lines, err := loadLines(s.DB.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	return &View{Entries: lines, Total: total(lines)}, nil
}

// Checkout turns every cart entry into a pending order priced quantity × current price
// and empties the cart, all in one transaction. An empty cart is a no-op.
func (s *Service) Checkout(ctx context.Context, userID uuid.UUID, paymentMethod string) (*CheckoutResult, error) {
	result := &CheckoutResult{Orders: []domain.Order{}, Total: decimal.Zero}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines, err := loadLines(tx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		pm, err := orders.ParsePaymentMethod(paymentMethod)
		if err != nil {
			return err
		}
		created := make([]domain.Order, 0, len(lines))
		for _, l := range lines {
			created = append(created, domain.Order{
				BuyerID:       userID,
				ListingID:     l.ListingID,
				Amount:        l.LineTotal,
				PaymentMethod: pm,
				Status:        domain.OrderPending,
			})
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&domain.CartEntry{}).Error; err != nil {
			return err
		}
		result.Orders = created
		result.Total = total(lines)
		return nil
	})
	if err != nil {
		if !errors.Is(err, orders.ErrPaymentMethodRequired) && !errors.Is(err, orders.ErrInvalidPaymentMethod) {
			metrics.RecordCheckout(metrics.CheckoutFailed)
			log.Error().Err(err).Str("user_id", userID.String()).Msg("checkout failed")
		}
		return nil, err
	}
	if len(result.Orders) == 0 {
		metrics.RecordCheckout(metrics.CheckoutEmpty)
		return result, nil
	}
	metrics.RecordCheckout(metrics.CheckoutCompleted)
	log.Info().Str("user_id", userID.String()).Int("orders", len(result.Orders)).
		Str("total", result.Total.StringFixed(2)).Msg("checkout completed")
	orders.Announce(ctx, s.Publisher, metrics.SourceCheckout, result.Orders)
	return result, nil
}

func loadLines(db *gorm.DB, userID uuid.UUID) ([]Line, error) {
	var entries []domain.CartEntry
	if err := db.Where("user_id = ?", userID).Order("date_added ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(entries))
	if len(entries) == 0 {
		return lines, nil
	}
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ListingID)
	}
	var listings []domain.Listing
	if err := db.Where("listing_id IN ?", ids).Find(&listings).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]domain.Listing, len(listings))
	for _, l := range listings {
		byID[l.ListingID] = l
	}
	for _, e := range entries {
		l, ok := byID[e.ListingID]
		if !ok {
			continue
		}
		lines = append(lines, Line{
			CartEntry: e,
			Title:     l.Title,
			UnitPrice: l.Price,
			LineTotal: domain.LineTotal(e.Quantity, l.Price),
		})
	}
	return lines, nil
}

func total(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineTotal)
	}
	return sum.Round(2)
}
