package orders

import (
	"context"
	"testing"
	"time"

	"postmarket-backend/internal/application/events"
	"postmarket-backend/internal/domain"
	"postmarket-backend/internal/infrastructure/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	topics []string
	keys   []string
}

func (r *recordingPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	r.topics = append(r.topics, topic)
	r.keys = append(r.keys, key)
	return nil
}

func setup(t *testing.T) (*Service, *gorm.DB, *recordingPublisher) {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	pub := &recordingPublisher{}
	return &Service{DB: db, Publisher: pub}, db, pub
}

func createListing(t *testing.T, db *gorm.DB, price string) *domain.Listing {
	l := &domain.Listing{Title: "Item " + price, Content: "c", Price: decimal.RequireFromString(price), AuthorID: uuid.New()}
	require.NoError(t, db.Create(l).Error)
	return l
}

func TestParsePaymentMethod(t *testing.T) {
	_, err := ParsePaymentMethod("  ")
	assert.Equal(t, ErrPaymentMethodRequired, err)
	_, err = ParsePaymentMethod("bitcoin")
	assert.Equal(t, ErrInvalidPaymentMethod, err)
	pm, err := ParsePaymentMethod("PayPal")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPayPal, pm)
}

func TestPurchaseSingle_CapturesPrice(t *testing.T) {
	s, db, pub := setup(t)
	buyer := uuid.New()
	l := createListing(t, db, "12.50")

	o, err := s.PurchaseSingle(context.Background(), buyer, l.ListingID, "credit_card")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, o.Status)
	assert.True(t, decimal.RequireFromString("12.50").Equal(o.Amount))
	assert.Equal(t, []string{events.TopicOrderCreated}, pub.topics)
	assert.Equal(t, []string{o.OrderID.String()}, pub.keys)

	// later price changes do not touch the order
	require.NoError(t, db.Model(l).Update("price", decimal.RequireFromString("99.00")).Error)
	v, err := s.PaymentSuccess(context.Background(), buyer, o.OrderID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.50").Equal(v.Amount))
	assert.Equal(t, l.Title, v.ListingTitle)
	assert.Equal(t, "Credit Card", v.PaymentMethodName)
}

func TestPurchaseSingle_MissingPaymentMethodCreatesNothing(t *testing.T) {
	s, db, pub := setup(t)
	buyer := uuid.New()
	l := createListing(t, db, "3.00")

	_, err := s.PurchaseSingle(context.Background(), buyer, l.ListingID, "")
	assert.Equal(t, ErrPaymentMethodRequired, err)

	purchases, err := s.ListPurchases(context.Background(), buyer)
	require.NoError(t, err)
	assert.Empty(t, purchases)
	assert.Empty(t, pub.topics)
}

func TestPurchaseSingle_UnknownListing(t *testing.T) {
	s, _, _ := setup(t)
	_, err := s.PurchaseSingle(context.Background(), uuid.New(), uuid.New(), "paypal")
	assert.Equal(t, ErrListingNotFound, err)
}

func TestPaymentSuccess_OtherBuyerNotFound(t *testing.T) {
	s, db, _ := setup(t)
	l := createListing(t, db, "1.00")
	o, err := s.PurchaseSingle(context.Background(), uuid.New(), l.ListingID, "paypal")
	require.NoError(t, err)

	_, err = s.PaymentSuccess(context.Background(), uuid.New(), o.OrderID)
	assert.Equal(t, ErrOrderNotFound, err)
}

func TestListPurchases_NewestFirst(t *testing.T) {
	s, db, _ := setup(t)
	buyer := uuid.New()
	l := createListing(t, db, "1.00")
	base := time.Now().UTC()
	older := &domain.Order{BuyerID: buyer, ListingID: l.ListingID, Amount: l.Price, PaymentMethod: domain.PaymentStripe, CreatedAt: base.Add(-time.Hour)}
	newer := &domain.Order{BuyerID: buyer, ListingID: l.ListingID, Amount: l.Price, PaymentMethod: domain.PaymentPayPal, CreatedAt: base}
	require.NoError(t, db.Create(older).Error)
	require.NoError(t, db.Create(newer).Error)
	require.NoError(t, db.Create(&domain.Order{BuyerID: uuid.New(), ListingID: l.ListingID, Amount: l.Price, PaymentMethod: domain.PaymentPayPal}).Error)

	got, err := s.ListPurchases(context.Background(), buyer)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.OrderID, got[0].OrderID)
	assert.Equal(t, older.OrderID, got[1].OrderID)
}
