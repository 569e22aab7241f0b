package orders

import (
	"context"
	"errors"
	"strings"

	"postmarket-backend/internal/application/events"
	"postmarket-backend/internal/domain"
	"postmarket-backend/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Service struct {
	DB        *gorm.DB
	Publisher events.Publisher
}

// OrderView is an order with the title of the listing it bought.
type OrderView struct {
	domain.Order
	ListingTitle      string `json:"listing_title"`
	PaymentMethodName string `json:"payment_method_name"`
}

// ParsePaymentMethod validates a payment method label from a request.
func ParsePaymentMethod(raw string) (domain.PaymentMethod, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrPaymentMethodRequired
	}
	pm := domain.PaymentMethod(strings.ToLower(raw))
	if !pm.Valid() {
		return "", ErrInvalidPaymentMethod
	}
	return pm, nil
}

// PurchaseSingle records one pending order for listingID at its current price.
func (s *Service) PurchaseSingle(ctx context.Context, buyerID, listingID uuid.UUID, paymentMethod string) (*domain.Order, error) {
	pm, err := ParsePaymentMethod(paymentMethod)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	var listing domain.Listing
	if err := db.Where("listing_id = ?", listingID).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	order := &domain.Order{
		BuyerID:       buyerID,
		ListingID:     listing.ListingID,
		Amount:        listing.Price.Round(2),
		PaymentMethod: pm,
		Status:        domain.OrderPending,
	}
	if err := db.Create(order).Error; err != nil {
		return nil, err
	}
	Announce(ctx, s.Publisher, metrics.SourceSingle, []domain.Order{*order})
	return order, nil
}

// PaymentSuccess returns the buyer's own order; other buyers' orders are not found.
func (s *Service) PaymentSuccess(ctx context.Context, buyerID, orderID uuid.UUID) (*OrderView, error) {
	db := s.DB.WithContext(ctx)
	var o domain.Order
	if err := db.Where("order_id = ? AND buyer_id = ?", orderID, buyerID).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	views, err := withTitles(db, []domain.Order{o})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListPurchases returns every order of buyerID, newest first.
func (s *Service) ListPurchases(ctx context.Context, buyerID uuid.UUID) ([]OrderView, error) {
	db := s.DB.WithContext(ctx)
	var rows []domain.Order
	if err := db.Where("buyer_id = ?", buyerID).Order(`"createdAt" DESC`).Find(&rows).Error; err != nil {
		return nil, err
	}
	return withTitles(db, rows)
}

// Announce counts freshly committed orders and publishes one order.created event each.
// Call only after the transaction that created them has committed.
func Announce(ctx context.Context, p events.Publisher, source string, created []domain.Order) {
	metrics.RecordOrders(source, len(created))
	for _, o := range created {
		log.Info().Str("order_id", o.OrderID.String()).Str("buyer_id", o.BuyerID.String()).
			Str("amount", o.Amount.StringFixed(2)).Str("source", source).Msg("order created")
		events.PublishQuietly(ctx, p, events.TopicOrderCreated, o.OrderID.String(), events.OrderCreated{
			OrderID:       o.OrderID.String(),
			BuyerID:       o.BuyerID.String(),
			ListingID:     o.ListingID.String(),
			Amount:        o.Amount.StringFixed(2),
			PaymentMethod: string(o.PaymentMethod),
			Source:        source,
		})
	}
}

func withTitles(db *gorm.DB, rows []domain.Order) ([]OrderView, error) {
	out := make([]OrderView, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, o := range rows {
		ids = append(ids, o.ListingID)
	}
	var listings []domain.Listing
	if err := db.Select("listing_id", "title").Where("listing_id IN ?", ids).Find(&listings).Error; err != nil {
		return nil, err
	}
	titles := make(map[uuid.UUID]string, len(listings))
	for _, l := range listings {
		titles[l.ListingID] = l.Title
	}
	for _, o := range rows {
		out = append(out, OrderView{
			Order:             o,
			ListingTitle:      titles[o.ListingID],
			PaymentMethodName: domain.PaymentMethods[o.PaymentMethod],
		})
	}
	return out, nil
}
